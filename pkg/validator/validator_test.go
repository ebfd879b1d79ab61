package validator

import (
	"strings"
	"testing"

	"github.com/paikao/paikao/pkg/model"
)

func validSchedule() *model.Schedule {
	teachers := []*model.Teacher{
		{ID: 1, Name: "张老师", Subject: model.SubjectChinese,
			FixedDuties: []model.FixedDuty{{Date: "2026-01-15", Period: "上午一", RoomName: "高三2班"}}},
		{ID: 2, Name: "李老师", Subject: model.SubjectEnglish},
	}
	rooms := []*model.Room{
		{ID: 1, Name: "高三1班"},
		{ID: 2, Name: "高三2班"},
	}
	slots := []*model.TimeSlot{
		{ID: "s1", Date: "2026-01-15", Period: "上午一", DurationMinutes: 120, IsMorning: true, LunchPairWith: "s2"},
		{ID: "s2", Date: "2026-01-15", Period: "下午一", DurationMinutes: 90, IsAfternoon: true},
	}
	exams := []*model.Exam{
		{Subject: model.SubjectMath, TimeSlotID: "s1", RoomIDs: []int{1}},
	}
	return model.NewSchedule(teachers, rooms, slots, exams, model.DefaultConstraintConfig())
}

func TestValidator_ValidInput(t *testing.T) {
	if err := New().ValidateSchedule(validSchedule()); err != nil {
		t.Errorf("valid input should pass, got: %v", err)
	}
}

func TestValidator_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *model.Schedule)
		expected string
	}{
		{
			name: "教师ID重复",
			mutate: func(s *model.Schedule) {
				s.Teachers = append(s.Teachers, &model.Teacher{ID: 1, Name: "影子", Subject: model.SubjectHistory})
			},
			expected: "教师ID重复",
		},
		{
			name: "考场名称重复",
			mutate: func(s *model.Schedule) {
				s.Rooms = append(s.Rooms, &model.Room{ID: 3, Name: "高三1班"})
			},
			expected: "考场名称重复",
		},
		{
			name: "时间段日期非法",
			mutate: func(s *model.Schedule) {
				s.TimeSlots[0].Date = "2026/01/15"
			},
			expected: "日期格式非法",
		},
		{
			name: "时长非正",
			mutate: func(s *model.Schedule) {
				s.TimeSlots[0].DurationMinutes = 0
			},
			expected: "时长必须为正",
		},
		{
			name: "午休配对悬空",
			mutate: func(s *model.Schedule) {
				s.TimeSlots[0].LunchPairWith = "ghost"
			},
			expected: "不存在的时间段",
		},
		{
			name: "固定坐班考场不存在",
			mutate: func(s *model.Schedule) {
				s.Teachers[0].FixedDuties[0].RoomName = "高四1班"
			},
			expected: "不存在的考场",
		},
		{
			name: "固定坐班场次无法解析",
			mutate: func(s *model.Schedule) {
				s.Teachers[0].FixedDuties[0].Period = "晚自习"
			},
			expected: "无法解析到时间段",
		},
		{
			name: "考试指向不存在的考场",
			mutate: func(s *model.Schedule) {
				s.Exams[0].RoomIDs = []int{99}
			},
			expected: "不存在的考场",
		},
		{
			name: "考场被多场考试占用",
			mutate: func(s *model.Schedule) {
				s.Exams = append(s.Exams, &model.Exam{
					Subject: model.SubjectPhysics, TimeSlotID: "s1", RoomIDs: []int{1},
				})
			},
			expected: "被多场考试占用",
		},
		{
			name: "约束配置为负",
			mutate: func(s *model.Schedule) {
				s.Config.FairnessWeight = -1
			},
			expected: "取值不能为负",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchedule()
			tt.mutate(s)
			err := New().ValidateSchedule(s)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("error %q should mention %q", err.Error(), tt.expected)
			}
		})
	}
}
