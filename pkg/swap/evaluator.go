// Package swap 提供监考替换功能
// 排考发布后教师临时不可用时，评估并推荐可接手的替换教师。
// 替换只改动单个安排，不触发重新求解
package swap

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
)

// SubstituteRequest 替换请求
type SubstituteRequest struct {
	AssignmentID uuid.UUID      `json:"assignment_id"`
	Target       *model.Teacher `json:"target"`
}

// Issue 替换问题
type Issue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // error/warning
	Message  string `json:"message"`
}

// Evaluation 替换评估结果
type Evaluation struct {
	Feasible bool    `json:"feasible"`
	Issues   []Issue `json:"issues"`

	// 替换后软约束代价相对当前方案的变化，负值表示方案变好
	CostDelta float64 `json:"cost_delta"`

	// 目标教师加权总负荷的变化
	TargetLoadChange float64 `json:"target_load_change"`
}

// SubstituteEvaluator 替换评估器
type SubstituteEvaluator struct {
	ev *constraint.Evaluator
}

// NewSubstituteEvaluator 创建替换评估器
func NewSubstituteEvaluator(ev *constraint.Evaluator) *SubstituteEvaluator {
	return &SubstituteEvaluator{ev: ev}
}

// Evaluate 评估把安排移交给目标教师的可行性与影响
// 聚合必须是求解器产出的带安排聚合
func (e *SubstituteEvaluator) Evaluate(s *model.Schedule, req *SubstituteRequest) *Evaluation {
	result := &Evaluation{Feasible: true, Issues: make([]Issue, 0)}

	source := findAssignment(s, req.AssignmentID)
	if source == nil || req.Target == nil {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Type: "invalid_request", Severity: "error", Message: "无效的替换请求",
		})
		return result
	}
	if req.Target.ID == source.TeacherID {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Type: "same_teacher", Severity: "error", Message: "目标教师即当前教师",
		})
		return result
	}

	ts := s.GetTimeSlot(source.TimeSlotID)
	if ts == nil {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Type: "dangling_slot", Severity: "error", Message: "安排指向不存在的时间段",
		})
		return result
	}

	if source.IsInvigilation() && req.Target.Subject == source.Subject {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Type: "subject_conflict", Severity: "error",
			Message: fmt.Sprintf("教师%s不能监考本人所授科目%s", req.Target.Name, source.Subject),
		})
	}
	if !e.ev.IsAvailable(req.Target, ts) {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Type: "unavailable", Severity: "error",
			Message: fmt.Sprintf("教师%s在时间段%s不可用", req.Target.Name, ts.ID),
		})
	}
	for _, a := range s.TeacherAssignments(req.Target.ID) {
		if a.TimeSlotID == source.TimeSlotID {
			result.Feasible = false
			result.Issues = append(result.Issues, Issue{
				Type: "slot_occupied", Severity: "error",
				Message: fmt.Sprintf("教师%s在时间段%s已有任务", req.Target.Name, ts.ID),
			})
			break
		}
	}
	if !result.Feasible {
		return result
	}

	// 模拟替换后结算软约束代价与负荷变化
	simulated := simulateSubstitute(s, source, req.Target.ID)
	before := e.ev.SoftCost(s.Assignments)
	after := e.ev.SoftCost(simulated)
	result.CostDelta = after - before

	coeff := s.Config.InvigilationCoefficient
	if !source.IsInvigilation() {
		coeff = s.Config.StudyCoefficient
	}
	result.TargetLoadChange = s.Config.CurrentWeight * float64(ts.DurationMinutes) * coeff

	return result
}

// simulateSubstitute 生成替换后的安排列表，原聚合不受影响
func simulateSubstitute(s *model.Schedule, source *model.Assignment, targetID int) []*model.Assignment {
	simulated := make([]*model.Assignment, 0, len(s.Assignments))
	for _, a := range s.Assignments {
		if a.ID == source.ID {
			replaced := *a
			replaced.TeacherID = targetID
			simulated = append(simulated, &replaced)
			continue
		}
		simulated = append(simulated, a)
	}
	return simulated
}

func findAssignment(s *model.Schedule, id uuid.UUID) *model.Assignment {
	for _, a := range s.Assignments {
		if a.ID == id {
			return a
		}
	}
	return nil
}
