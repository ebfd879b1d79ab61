package swap

import (
	"sort"

	"github.com/google/uuid"

	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
)

// Recommendation 替换推荐
type Recommendation struct {
	Target    *model.Teacher `json:"target"`
	CostDelta float64        `json:"cost_delta"`
	Rank      int            `json:"rank"`
}

// RecommendOptions 推荐选项
type RecommendOptions struct {
	MaxRecommendations int   // 最大推荐数量
	ExcludeTeachers    []int // 排除的教师
}

// DefaultRecommendOptions 返回默认选项
func DefaultRecommendOptions() *RecommendOptions {
	return &RecommendOptions{MaxRecommendations: 5}
}

// Recommender 替换推荐器
type Recommender struct {
	evaluator *SubstituteEvaluator
}

// NewRecommender 创建替换推荐器
func NewRecommender(ev *constraint.Evaluator) *Recommender {
	return &Recommender{evaluator: NewSubstituteEvaluator(ev)}
}

// Recommend 为一个安排推荐替换教师
// 遍历全体教师逐一评估，可行者按替换后软约束代价增量升序排列
func (r *Recommender) Recommend(s *model.Schedule, assignmentID uuid.UUID, options *RecommendOptions) []Recommendation {
	if options == nil {
		options = DefaultRecommendOptions()
	}
	exclude := make(map[int]bool, len(options.ExcludeTeachers))
	for _, id := range options.ExcludeTeachers {
		exclude[id] = true
	}

	var candidates []Recommendation
	for _, t := range s.Teachers {
		if exclude[t.ID] {
			continue
		}
		evaluation := r.evaluator.Evaluate(s, &SubstituteRequest{
			AssignmentID: assignmentID,
			Target:       t,
		})
		if !evaluation.Feasible {
			continue
		}
		candidates = append(candidates, Recommendation{
			Target:    t,
			CostDelta: evaluation.CostDelta,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CostDelta < candidates[j].CostDelta
	})
	if options.MaxRecommendations > 0 && len(candidates) > options.MaxRecommendations {
		candidates = candidates[:options.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}
