package model

import (
	"math"
	"testing"
)

func testSchedule() *Schedule {
	teachers := []*Teacher{
		{ID: 1, Name: "张老师", Subject: SubjectChinese, HistoricalLoad: 100},
		{ID: 2, Name: "李老师", Subject: SubjectEnglish, HistoricalLoad: 200},
	}
	rooms := []*Room{
		{ID: 1, Name: "高三1班", Capacity: 30},
		{ID: 2, Name: "高三2班", Capacity: 30},
	}
	slots := []*TimeSlot{
		{ID: "s1", Name: "第一场", Date: "2026-01-15", Period: "上午一", DurationMinutes: 120, IsMorning: true},
		{ID: "s2", Name: "第二场", Date: "2026-01-15", Period: "下午一", DurationMinutes: 90, IsAfternoon: true},
	}
	exams := []*Exam{
		{Subject: SubjectMath, TimeSlotID: "s1", RoomIDs: []int{1, 2}, IsLongSubject: true},
		{Subject: SubjectPhysics, TimeSlotID: "s2", RoomIDs: []int{1}},
	}
	return NewSchedule(teachers, rooms, slots, exams, DefaultConstraintConfig())
}

func TestSchedule_Tasks(t *testing.T) {
	s := testSchedule()
	tasks := s.Tasks()

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	// 任务按考试声明顺序、考场声明顺序稳定枚举
	expected := []Task{
		{ExamIndex: 0, TimeSlotID: "s1", RoomID: 1, Subject: SubjectMath, IsLong: true},
		{ExamIndex: 0, TimeSlotID: "s1", RoomID: 2, Subject: SubjectMath, IsLong: true},
		{ExamIndex: 1, TimeSlotID: "s2", RoomID: 1, Subject: SubjectPhysics, IsLong: false},
	}
	for i, want := range expected {
		if tasks[i] != want {
			t.Errorf("tasks[%d] = %+v, expected %+v", i, tasks[i], want)
		}
	}
}

func TestSchedule_CheckConflicts(t *testing.T) {
	tests := []struct {
		name        string
		assignments []*Assignment
		expected    int
		confType    ConflictType
	}{
		{
			name: "无冲突",
			assignments: []*Assignment{
				NewAssignment(1, 1, "s1", SubjectMath, RoleInvigilation),
				NewAssignment(2, 2, "s1", SubjectMath, RoleInvigilation),
			},
			expected: 0,
		},
		{
			name: "教师时空冲突",
			assignments: []*Assignment{
				NewAssignment(1, 1, "s1", SubjectMath, RoleInvigilation),
				NewAssignment(1, 2, "s1", SubjectMath, RoleInvigilation),
			},
			expected: 1,
			confType: ConflictTeacherSlot,
		},
		{
			name: "考场时空冲突",
			assignments: []*Assignment{
				NewAssignment(1, 1, "s1", SubjectMath, RoleInvigilation),
				NewAssignment(2, 1, "s1", SubjectMath, RoleInvigilation),
			},
			expected: 1,
			confType: ConflictRoomSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSchedule().WithAssignments(tt.assignments)
			conflicts := s.CheckConflicts()
			if len(conflicts) != tt.expected {
				t.Fatalf("expected %d conflicts, got %d: %+v", tt.expected, len(conflicts), conflicts)
			}
			if tt.expected > 0 && conflicts[0].Type != tt.confType {
				t.Errorf("conflict type = %s, expected %s", conflicts[0].Type, tt.confType)
			}
		})
	}
}

func TestSchedule_CalculateLoad(t *testing.T) {
	s := testSchedule().WithAssignments([]*Assignment{
		NewAssignment(1, 1, "s1", SubjectMath, RoleInvigilation), // 120 × 1.0
		NewAssignment(1, 1, "s2", SubjectChinese, RoleStudy),     // 90 × 0.5
	})

	current, historical, blended := s.CalculateLoad(1)
	if math.Abs(current-165.0) > 0.01 {
		t.Errorf("current = %.2f, expected 165.00", current)
	}
	if math.Abs(historical-100.0) > 0.01 {
		t.Errorf("historical = %.2f, expected 100.00", historical)
	}
	// 加权总负荷 = 0.5×165 + 0.5×100
	if math.Abs(blended-132.5) > 0.01 {
		t.Errorf("blended = %.2f, expected 132.50", blended)
	}

	t.Run("未安排教师负荷为零", func(t *testing.T) {
		current, _, blended := s.CalculateLoad(2)
		if current != 0 {
			t.Errorf("current = %.2f, expected 0", current)
		}
		if math.Abs(blended-100.0) > 0.01 {
			t.Errorf("blended = %.2f, expected 100.00", blended)
		}
	})

	t.Run("不存在的教师", func(t *testing.T) {
		current, historical, blended := s.CalculateLoad(999)
		if current != 0 || historical != 0 || blended != 0 {
			t.Errorf("expected all zero for unknown teacher, got %.2f/%.2f/%.2f", current, historical, blended)
		}
	})
}

func TestSchedule_WithAssignments(t *testing.T) {
	base := testSchedule()
	derived := base.WithAssignments([]*Assignment{
		NewAssignment(1, 1, "s1", SubjectMath, RoleInvigilation),
	})

	if len(base.Assignments) != 0 {
		t.Errorf("base aggregate should stay empty, got %d assignments", len(base.Assignments))
	}
	if len(derived.Assignments) != 1 {
		t.Errorf("derived aggregate should have 1 assignment, got %d", len(derived.Assignments))
	}
	if derived.GetTeacher(1) != base.GetTeacher(1) {
		t.Error("derived aggregate should share the teacher collection")
	}
	if got := len(derived.TeacherAssignments(1)); got != 1 {
		t.Errorf("TeacherAssignments(1) = %d, expected 1", got)
	}
}

func TestSchedule_Empty(t *testing.T) {
	s := NewSchedule(nil, nil, nil, nil, DefaultConstraintConfig())

	if got := len(s.Tasks()); got != 0 {
		t.Errorf("empty schedule Tasks() = %d, expected 0", got)
	}
	if got := len(s.CheckConflicts()); got != 0 {
		t.Errorf("empty schedule CheckConflicts() = %d, expected 0", got)
	}
	if got := len(s.Dates()); got != 0 {
		t.Errorf("empty schedule Dates() = %d, expected 0", got)
	}
	if current, _, blended := s.CalculateLoad(1); current != 0 || blended != 0 {
		t.Errorf("empty schedule load should be zero, got %.2f/%.2f", current, blended)
	}
}

func TestSchedule_ExamAt(t *testing.T) {
	s := testSchedule()

	if exam := s.ExamAt(1, "s1"); exam == nil || exam.Subject != SubjectMath {
		t.Errorf("ExamAt(1, s1) = %+v, expected 数学", exam)
	}
	if exam := s.ExamAt(2, "s2"); exam != nil {
		t.Errorf("ExamAt(2, s2) should be nil, got %+v", exam)
	}
}

func TestSchedule_LongExamCount(t *testing.T) {
	s := testSchedule().WithAssignments([]*Assignment{
		NewAssignment(1, 1, "s1", SubjectMath, RoleInvigilation),
		NewAssignment(1, 1, "s2", SubjectPhysics, RoleInvigilation),
	})

	if got := s.LongExamCount(1); got != 1 {
		t.Errorf("LongExamCount(1) = %d, expected 1", got)
	}
	if got := s.LongExamCount(2); got != 0 {
		t.Errorf("LongExamCount(2) = %d, expected 0", got)
	}
}
