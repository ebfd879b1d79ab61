// Package constraint 定义两个求解器共用的约束语义
package constraint

import (
	"github.com/paikao/paikao/pkg/model"
)

// SoftBreakdown 软约束代价分解（用于诊断与测试）
type SoftBreakdown struct {
	Fairness      float64 `json:"fairness"`      // 加权总负荷极差
	LongExam      float64 `json:"long_exam"`     // 长时科目超均值
	Lunch         float64 `json:"lunch"`         // 午休配对违反
	DailyLimit    float64 `json:"daily_limit"`   // 每日舒适上限超出
	Concentration float64 `json:"concentration"` // 上下午割裂
}

// Total 返回加权后的总代价
func (b SoftBreakdown) Total() float64 {
	return b.Fairness + b.LongExam + b.Lunch + b.DailyLimit + b.Concentration
}

// SoftCost 计算一组安排的加权软约束代价
// 两个求解器的目标函数都由此定义
func (e *Evaluator) SoftCost(assignments []*model.Assignment) float64 {
	return e.SoftCostBreakdown(assignments).Total()
}

// SoftCostBreakdown 计算软约束代价并按约束类别分解
func (e *Evaluator) SoftCostBreakdown(assignments []*model.Assignment) SoftBreakdown {
	cfg := e.config
	var b SoftBreakdown

	// 每个教师的本次负荷、长时监考次数、按日安排情况
	currentLoad := make(map[int]float64, len(e.schedule.Teachers))
	longCount := make(map[int]int, len(e.schedule.Teachers))
	assignedSlots := make(map[int]map[string]bool) // teacherID -> slotID 集合
	type dayKey struct {
		teacherID int
		date      string
	}
	dailyCount := make(map[dayKey]int)
	morning := make(map[dayKey]bool)
	afternoon := make(map[dayKey]bool)

	for _, a := range assignments {
		ts := e.schedule.GetTimeSlot(a.TimeSlotID)
		if ts == nil {
			continue
		}
		duration := float64(ts.DurationMinutes)
		if a.IsInvigilation() {
			currentLoad[a.TeacherID] += duration * cfg.InvigilationCoefficient
			if e.schedule.IsLongSubject(a.Subject) {
				longCount[a.TeacherID]++
			}
		} else {
			currentLoad[a.TeacherID] += duration * cfg.StudyCoefficient
		}

		if assignedSlots[a.TeacherID] == nil {
			assignedSlots[a.TeacherID] = make(map[string]bool)
		}
		assignedSlots[a.TeacherID][ts.ID] = true

		dk := dayKey{a.TeacherID, ts.Date}
		dailyCount[dk]++
		if ts.IsMorning {
			morning[dk] = true
		}
		if ts.IsAfternoon {
			afternoon[dk] = true
		}
	}

	// 公平性：全体教师加权总负荷的极差（未被安排的教师也参与）
	if len(e.schedule.Teachers) > 0 {
		first := true
		var maxLoad, minLoad float64
		for _, t := range e.schedule.Teachers {
			blended := cfg.CurrentWeight*currentLoad[t.ID] + cfg.HistoricalWeight*t.HistoricalLoad
			if first {
				maxLoad, minLoad = blended, blended
				first = false
				continue
			}
			if blended > maxLoad {
				maxLoad = blended
			}
			if blended < minLoad {
				minLoad = blended
			}
		}
		b.Fairness = (maxLoad - minLoad) * cfg.FairnessWeight
	}

	// 长时科目平衡：超出全体教师均值的部分
	if len(e.schedule.Teachers) > 0 {
		mean := e.LongExamMean()
		for _, t := range e.schedule.Teachers {
			if excess := float64(longCount[t.ID]) - mean; excess > 0 {
				b.LongExam += excess * cfg.LongExamWeight
			}
		}
	}

	// 午休保障：同日占用午休配对的两个时间段
	// 配对关系只存储在上午末场一侧，因此每对只计一次
	for _, slots := range assignedSlots {
		for slotID := range slots {
			ts := e.schedule.GetTimeSlot(slotID)
			if ts == nil || ts.LunchPairWith == "" {
				continue
			}
			if slots[ts.LunchPairWith] {
				b.Lunch += cfg.LunchWeight
			}
		}
	}

	// 每日舒适上限与任务集中度
	for dk, count := range dailyCount {
		if excess := count - cfg.DailyComfortLimit; excess > 0 {
			b.DailyLimit += float64(excess) * cfg.DailyLimitWeight
		}
		// 同一天同时有上午和下午任务即为割裂
		if morning[dk] && afternoon[dk] {
			b.Concentration += cfg.ConcentrationWeight
		}
	}

	return b
}

// LongExamMean 返回长时监考任务在全体教师上的均值
// 每个长时任务最终恰好有一个监考教师，因此该均值在求解过程中不变
func (e *Evaluator) LongExamMean() float64 {
	if len(e.schedule.Teachers) == 0 {
		return 0
	}
	return float64(e.totalLongTasks) / float64(len(e.schedule.Teachers))
}
