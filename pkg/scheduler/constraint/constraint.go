// Package constraint 定义两个求解器共用的约束语义
// 硬约束与软约束的判定和代价公式在此单点实现，保证精确求解与遗传算法
// 在语义上完全一致
package constraint

import (
	"github.com/paikao/paikao/pkg/model"
)

// 硬约束违反惩罚值（遗传算法路径使用）
const (
	PenaltyTeacherSlotConflict = 1000.0 // 教师时空冲突
	PenaltyRoomSlotConflict    = 1000.0 // 考场时空冲突
	PenaltyUnavailable         = 500.0  // 教师不可用时间被安排
	PenaltySubjectConflict     = 500.0  // 监考本人所授科目
	PenaltyFixedDutyUnmet      = 200.0  // 固定坐班未实现

	// 硬约束惩罚放大系数：只要存在硬约束违反，跳过软约束评估
	HardPenaltyScale = 10000.0
)

// ResolvedDuty 解析后的固定坐班任务
type ResolvedDuty struct {
	TeacherID  int
	RoomID     int
	TimeSlotID string
	IsExamRoom bool // 该 (考场, 时间段) 是否属于某场考试
}

// Evaluator 约束评估器
// 构造时对只读聚合做一次预计算，之后的评估不再修改任何共享状态，
// 可在多个 goroutine 中并发使用
type Evaluator struct {
	schedule *model.Schedule
	config   model.ConstraintConfig

	// 每个科目最早的考试日期，用于改卷封闭期判断
	firstExamDate map[model.SubjectType]string

	// (日期, 场次) -> 时间段
	slotByDatePeriod map[[2]string]*model.TimeSlot

	// 考场名称 -> ID
	roomByName map[string]int

	// 解析后的固定坐班任务（按教师ID、任务声明顺序稳定排列）
	resolvedDuties []ResolvedDuty

	// 长时监考任务总数（用于长时科目平衡的固定均值）
	totalLongTasks int
}

// NewEvaluator 创建约束评估器
func NewEvaluator(s *model.Schedule) *Evaluator {
	e := &Evaluator{
		schedule:         s,
		config:           s.Config,
		firstExamDate:    make(map[model.SubjectType]string),
		slotByDatePeriod: make(map[[2]string]*model.TimeSlot),
		roomByName:       make(map[string]int),
	}

	for _, ts := range s.TimeSlots {
		e.slotByDatePeriod[[2]string{ts.Date, ts.Period}] = ts
	}
	for _, r := range s.Rooms {
		e.roomByName[r.Name] = r.ID
	}
	for _, exam := range s.Exams {
		slot := s.GetTimeSlot(exam.TimeSlotID)
		if slot == nil {
			continue
		}
		if first, ok := e.firstExamDate[exam.Subject]; !ok || slot.Date < first {
			e.firstExamDate[exam.Subject] = slot.Date
		}
		if exam.IsLongSubject {
			e.totalLongTasks += len(exam.RoomIDs)
		}
	}

	for _, t := range s.Teachers {
		for _, duty := range t.FixedDuties {
			slot := e.slotByDatePeriod[[2]string{duty.Date, duty.Period}]
			roomID, roomOK := e.roomByName[duty.RoomName]
			if slot == nil || !roomOK {
				continue // 无法解析的固定坐班由 pkg/validator 报告
			}
			e.resolvedDuties = append(e.resolvedDuties, ResolvedDuty{
				TeacherID:  t.ID,
				RoomID:     roomID,
				TimeSlotID: slot.ID,
				IsExamRoom: s.ExamAt(roomID, slot.ID) != nil,
			})
		}
	}

	return e
}

// Schedule 返回底层聚合
func (e *Evaluator) Schedule() *model.Schedule {
	return e.schedule
}

// ResolvedDuties 返回全部可解析的固定坐班任务
func (e *Evaluator) ResolvedDuties() []ResolvedDuty {
	return e.resolvedDuties
}

// ForcedStudyAssignments 生成落在非考试考场上的固定坐班安排（自习坐班）
// 这些安排由引擎直接实现，占用教师时段并计入负荷
func (e *Evaluator) ForcedStudyAssignments() []*model.Assignment {
	var result []*model.Assignment
	for _, duty := range e.resolvedDuties {
		if duty.IsExamRoom {
			continue
		}
		teacher := e.schedule.GetTeacher(duty.TeacherID)
		if teacher == nil {
			continue
		}
		result = append(result, model.NewAssignment(
			duty.TeacherID, duty.RoomID, duty.TimeSlotID, teacher.Subject, model.RoleStudy,
		))
	}
	return result
}

// IsAvailable 检查教师在指定时间段是否可用
// 请假与授课按 (日期, 场次) 精确匹配；同科目考试结束的次日起为改卷封闭期
func (e *Evaluator) IsAvailable(t *model.Teacher, ts *model.TimeSlot) bool {
	if t.IsOnLeave(ts.Date, ts.Period) {
		return false
	}
	if t.IsTeachingAt(ts.Date, ts.Period) {
		return false
	}
	if e.inGradingBlackout(t, ts) {
		return false
	}
	return true
}

// inGradingBlackout 判断时间段是否落在教师所授科目的改卷封闭期
func (e *Evaluator) inGradingBlackout(t *model.Teacher, ts *model.TimeSlot) bool {
	first, ok := e.firstExamDate[t.Subject]
	if !ok {
		return false
	}
	diff, err := model.DaysBetween(first, ts.Date)
	if err != nil {
		return false
	}
	return diff >= 1
}

// CanInvigilate 检查教师是否可以监考某个任务
// 综合可用性与学科回避
func (e *Evaluator) CanInvigilate(t *model.Teacher, task model.Task) bool {
	if t.Subject == task.Subject {
		return false
	}
	ts := e.schedule.GetTimeSlot(task.TimeSlotID)
	if ts == nil {
		return false
	}
	return e.IsAvailable(t, ts)
}
