// Package stats 提供排考统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/paikao/paikao/pkg/model"
)

// TeacherStat 教师统计
type TeacherStat struct {
	TeacherID         int               `json:"teacher_id"`
	TeacherName       string            `json:"teacher_name"`
	Subject           model.SubjectType `json:"subject"`
	CurrentLoad       float64           `json:"current_load"`
	HistoricalLoad    float64           `json:"historical_load"`
	TotalWeightedLoad float64           `json:"total_weighted_load"`
	AssignmentCount   int               `json:"assignment_count"`
	LongExamCount     int               `json:"long_exam_count"`
}

// FairnessMetrics 公平性指标（基于加权总负荷）
type FairnessMetrics struct {
	MaxTotalLoad float64 `json:"max_total_load"`
	MinTotalLoad float64 `json:"min_total_load"`
	AvgTotalLoad float64 `json:"avg_total_load"`
	LoadRange    float64 `json:"load_range"`
	LoadStdDev   float64 `json:"load_std_dev"`
}

// Statistics 统计报表
type Statistics struct {
	TeacherStats  []TeacherStat    `json:"teacher_stats"`
	Fairness      FairnessMetrics  `json:"fairness_metrics"`
	ConflictCount int              `json:"conflict_count"`
	Conflicts     []model.Conflict `json:"conflicts,omitempty"`
}

// Generate 生成统计报表
// 纯函数：不修改聚合，重复调用返回相同结果；空聚合返回零值安全的指标
func Generate(s *model.Schedule) *Statistics {
	result := &Statistics{
		TeacherStats: make([]TeacherStat, 0, len(s.Teachers)),
	}

	loads := make([]float64, 0, len(s.Teachers))
	for _, t := range s.Teachers {
		current, historical, blended := s.CalculateLoad(t.ID)
		loads = append(loads, blended)

		result.TeacherStats = append(result.TeacherStats, TeacherStat{
			TeacherID:         t.ID,
			TeacherName:       t.Name,
			Subject:           t.Subject,
			CurrentLoad:       current,
			HistoricalLoad:    historical,
			TotalWeightedLoad: blended,
			AssignmentCount:   len(s.TeacherAssignments(t.ID)),
			LongExamCount:     s.LongExamCount(t.ID),
		})
	}

	// 按加权总负荷降序，便于报表阅读
	sort.SliceStable(result.TeacherStats, func(i, j int) bool {
		return result.TeacherStats[i].TotalWeightedLoad > result.TeacherStats[j].TotalWeightedLoad
	})

	result.Fairness = calculateFairness(loads)

	conflicts := s.CheckConflicts()
	result.ConflictCount = len(conflicts)
	result.Conflicts = conflicts

	return result
}

// calculateFairness 计算公平性指标
func calculateFairness(loads []float64) FairnessMetrics {
	if len(loads) == 0 {
		return FairnessMetrics{}
	}

	maxLoad, minLoad := loads[0], loads[0]
	sum := 0.0
	for _, v := range loads {
		if v > maxLoad {
			maxLoad = v
		}
		if v < minLoad {
			minLoad = v
		}
		sum += v
	}
	avg := sum / float64(len(loads))

	sumSquares := 0.0
	for _, v := range loads {
		diff := v - avg
		sumSquares += diff * diff
	}
	stdDev := math.Sqrt(sumSquares / float64(len(loads)))

	return FairnessMetrics{
		MaxTotalLoad: maxLoad,
		MinTotalLoad: minLoad,
		AvgTotalLoad: avg,
		LoadRange:    maxLoad - minLoad,
		LoadStdDev:   stdDev,
	}
}
