package swap

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
)

// 已发布方案：张老师监考高三1班，李老师监考高三2班
func solvedSchedule() (*model.Schedule, *model.Assignment) {
	teachers := []*model.Teacher{
		{ID: 1, Name: "张老师", Subject: model.SubjectChinese},
		{ID: 2, Name: "李老师", Subject: model.SubjectEnglish},
		{ID: 3, Name: "王老师", Subject: model.SubjectHistory},
		{ID: 4, Name: "陈老师", Subject: model.SubjectMath},
		{ID: 5, Name: "赵老师", Subject: model.SubjectGeography,
			LeaveTimes: []model.LeaveTime{{Date: "2026-01-15", Period: "上午一"}}},
	}
	rooms := []*model.Room{{ID: 1, Name: "高三1班"}, {ID: 2, Name: "高三2班"}}
	slots := []*model.TimeSlot{
		{ID: "s1", Date: "2026-01-15", Period: "上午一", DurationMinutes: 120, IsMorning: true},
	}
	exams := []*model.Exam{
		{Subject: model.SubjectMath, TimeSlotID: "s1", RoomIDs: []int{1, 2}},
	}
	base := model.NewSchedule(teachers, rooms, slots, exams, model.DefaultConstraintConfig())
	source := model.NewAssignment(1, 1, "s1", model.SubjectMath, model.RoleInvigilation)
	s := base.WithAssignments([]*model.Assignment{
		source,
		model.NewAssignment(2, 2, "s1", model.SubjectMath, model.RoleInvigilation),
	})
	return s, source
}

func TestSubstituteEvaluator_Evaluate(t *testing.T) {
	s, source := solvedSchedule()
	evaluator := NewSubstituteEvaluator(constraint.NewEvaluator(s))

	tests := []struct {
		name      string
		targetID  int
		feasible  bool
		issueType string
	}{
		{name: "可行替换", targetID: 3, feasible: true},
		{name: "学科回避", targetID: 4, feasible: false, issueType: "subject_conflict"},
		{name: "请假教师", targetID: 5, feasible: false, issueType: "unavailable"},
		{name: "同时段已有任务", targetID: 2, feasible: false, issueType: "slot_occupied"},
		{name: "目标即当前教师", targetID: 1, feasible: false, issueType: "same_teacher"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := evaluator.Evaluate(s, &SubstituteRequest{
				AssignmentID: source.ID,
				Target:       s.GetTeacher(tt.targetID),
			})
			if result.Feasible != tt.feasible {
				t.Fatalf("Feasible = %v, expected %v (issues: %+v)", result.Feasible, tt.feasible, result.Issues)
			}
			if !tt.feasible {
				if len(result.Issues) == 0 || result.Issues[0].Type != tt.issueType {
					t.Errorf("issues = %+v, expected first type %s", result.Issues, tt.issueType)
				}
			}
		})
	}

	t.Run("负荷变化", func(t *testing.T) {
		result := evaluator.Evaluate(s, &SubstituteRequest{
			AssignmentID: source.ID,
			Target:       s.GetTeacher(3),
		})
		// 0.5 × 120 × 1.0
		if result.TargetLoadChange != 60 {
			t.Errorf("TargetLoadChange = %v, expected 60", result.TargetLoadChange)
		}
	})

	t.Run("安排不存在", func(t *testing.T) {
		result := evaluator.Evaluate(s, &SubstituteRequest{
			AssignmentID: uuid.New(),
			Target:       s.GetTeacher(3),
		})
		if result.Feasible {
			t.Error("unknown assignment should be infeasible")
		}
	})
}

func TestRecommender_Recommend(t *testing.T) {
	s, source := solvedSchedule()
	r := NewRecommender(constraint.NewEvaluator(s))

	recs := r.Recommend(s, source.ID, nil)
	// 只有王老师可行：陈老师学科回避，赵老师请假，李老师同时段已有任务
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d: %+v", len(recs), recs)
	}
	if recs[0].Target.ID != 3 || recs[0].Rank != 1 {
		t.Errorf("recommendation = %+v, expected teacher 3 at rank 1", recs[0])
	}

	t.Run("排除教师", func(t *testing.T) {
		recs := r.Recommend(s, source.ID, &RecommendOptions{
			MaxRecommendations: 5,
			ExcludeTeachers:    []int{3},
		})
		if len(recs) != 0 {
			t.Errorf("expected no recommendations after exclusion, got %d", len(recs))
		}
	})
}
