package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/stats"
	"github.com/paikao/paikao/pkg/validator"
)

// 期末考试场景：两天四场、六个考场、十二名教师
// 覆盖请假、授课冲突、固定坐班、长时科目与午休配对的综合情况
func finalExamWeek() *model.Schedule {
	subjects := []model.SubjectType{
		model.SubjectChinese, model.SubjectMath, model.SubjectEnglish,
		model.SubjectPhysics, model.SubjectChemistry, model.SubjectBiology,
		model.SubjectHistory, model.SubjectGeography, model.SubjectPolitics,
		model.SubjectScience, model.SubjectChinese, model.SubjectMath,
	}
	teachers := make([]*model.Teacher, 0, len(subjects))
	for i, subject := range subjects {
		teachers = append(teachers, &model.Teacher{
			ID:             i + 1,
			Name:           fmt.Sprintf("教师%d", i+1),
			Subject:        subject,
			HistoricalLoad: float64(i * 20),
		})
	}
	// 教师3第一天下午请假；教师4第二天上午有课；教师5固定坐班非考试考场
	teachers[2].LeaveTimes = []model.LeaveTime{{Date: "2026-01-19", Period: "下午一"}}
	teachers[3].TeachingSchedule = map[string][]string{"2026-01-20": {"上午一"}}
	teachers[4].FixedDuties = []model.FixedDuty{
		{Date: "2026-01-19", Period: "上午一", RoomName: "备用教室"},
	}

	rooms := make([]*model.Room, 0, 7)
	for i := 1; i <= 6; i++ {
		rooms = append(rooms, &model.Room{ID: i, Name: fmt.Sprintf("高三%d班", i), Capacity: 40})
	}
	rooms = append(rooms, &model.Room{ID: 7, Name: "备用教室", Capacity: 40})

	slots := []*model.TimeSlot{
		{ID: "d1m", Name: "第一天上午", Date: "2026-01-19", Period: "上午一",
			StartTime: "08:00", EndTime: "10:30", DurationMinutes: 150, IsMorning: true, LunchPairWith: "d1a"},
		{ID: "d1a", Name: "第一天下午", Date: "2026-01-19", Period: "下午一",
			StartTime: "14:00", EndTime: "16:00", DurationMinutes: 120, IsAfternoon: true},
		{ID: "d2m", Name: "第二天上午", Date: "2026-01-20", Period: "上午一",
			StartTime: "08:00", EndTime: "10:00", DurationMinutes: 120, IsMorning: true, LunchPairWith: "d2a"},
		{ID: "d2a", Name: "第二天下午", Date: "2026-01-20", Period: "下午一",
			StartTime: "14:00", EndTime: "15:30", DurationMinutes: 90, IsAfternoon: true},
	}

	exams := []*model.Exam{
		{Subject: model.SubjectChinese, TimeSlotID: "d1m", RoomIDs: []int{1, 2}, IsLongSubject: true},
		{Subject: model.SubjectPhysics, TimeSlotID: "d1a", RoomIDs: []int{3}},
		{Subject: model.SubjectMath, TimeSlotID: "d2m", RoomIDs: []int{4, 5}, IsLongSubject: true},
		{Subject: model.SubjectGeography, TimeSlotID: "d2a", RoomIDs: []int{6}},
	}

	return model.NewSchedule(teachers, rooms, slots, exams, model.DefaultConstraintConfig())
}

func TestScenario_FinalExamWeek(t *testing.T) {
	s := finalExamWeek()

	if err := validator.New().ValidateSchedule(s); err != nil {
		t.Fatalf("场景输入应通过校验: %v", err)
	}

	params := DefaultParams()
	params.Seed = 2026
	res, err := NewEngine().Solve(context.Background(), s, params)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}

	t.Logf("策略=%s 状态=%s 目标值=%.2f 安排数=%d 用时=%s",
		res.Strategy, res.Status, res.Objective, len(res.Assignments), res.WallTime)

	if res.Strategy != "exact" {
		t.Errorf("策略 = %s, 期望 exact", res.Strategy)
	}
	// 6 个监考任务 + 1 个自习坐班
	if len(res.Assignments) != 7 {
		t.Fatalf("安排数 = %d, 期望 7", len(res.Assignments))
	}
	if conflicts := res.Schedule.CheckConflicts(); len(conflicts) != 0 {
		t.Fatalf("方案存在冲突: %+v", conflicts)
	}

	solved := res.Schedule
	for _, a := range solved.Assignments {
		teacher := solved.GetTeacher(a.TeacherID)
		slot := solved.GetTimeSlot(a.TimeSlotID)
		if teacher.IsOnLeave(slot.Date, slot.Period) {
			t.Errorf("请假教师被安排: %s @ %s", teacher.Name, slot.ID)
		}
		if teacher.IsTeachingAt(slot.Date, slot.Period) {
			t.Errorf("授课教师被安排: %s @ %s", teacher.Name, slot.ID)
		}
		if a.IsInvigilation() {
			if teacher.Subject == a.Subject {
				t.Errorf("学科回避被违反: %s 监考 %s", teacher.Name, a.Subject)
			}
			if solved.ExamAt(a.RoomID, a.TimeSlotID) == nil {
				t.Errorf("监考安排落在无考试的考场: %+v", a)
			}
		}
	}

	// 教师5的固定坐班必须成为自习安排
	var study int
	for _, a := range solved.TeacherAssignments(5) {
		if a.Role == model.RoleStudy && a.RoomID == 7 && a.TimeSlotID == "d1m" {
			study++
		}
	}
	if study != 1 {
		t.Errorf("教师5的固定坐班未被实现")
	}

	report := stats.Generate(solved)
	if report.ConflictCount != 0 {
		t.Errorf("统计报表冲突数 = %d, 期望 0", report.ConflictCount)
	}
	if len(report.TeacherStats) != 12 {
		t.Errorf("统计条目 = %d, 期望 12", len(report.TeacherStats))
	}
	if report.Fairness.MaxTotalLoad < report.Fairness.MinTotalLoad {
		t.Error("公平性指标不自洽")
	}
	for _, ts := range report.TeacherStats {
		if ts.CurrentLoad < 0 {
			t.Errorf("教师%s本次负荷为负", ts.TeacherName)
		}
	}
}
