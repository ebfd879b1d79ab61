// Package constraint 定义两个求解器共用的约束语义
package constraint

import (
	"github.com/paikao/paikao/pkg/model"
)

type pairKey struct {
	id     int
	slotID string
}

type tripleKey struct {
	teacherID int
	roomID    int
	slotID    string
}

// HardPenalty 计算一组安排的硬约束违反惩罚
// 返回 0 表示所有硬约束满足；遗传算法用非零值做廉价拒绝
func (e *Evaluator) HardPenalty(assignments []*model.Assignment) float64 {
	penalty := 0.0

	// 时空冲突：同一 (教师, 时间段) 或 (考场, 时间段) 出现多次，
	// 每个多余安排计一次惩罚
	teacherSlot := make(map[pairKey]bool)
	roomSlot := make(map[pairKey]bool)
	assignedTriple := make(map[tripleKey]bool)

	for _, a := range assignments {
		tk := pairKey{a.TeacherID, a.TimeSlotID}
		if teacherSlot[tk] {
			penalty += PenaltyTeacherSlotConflict
		}
		teacherSlot[tk] = true

		rk := pairKey{a.RoomID, a.TimeSlotID}
		if roomSlot[rk] {
			penalty += PenaltyRoomSlotConflict
		}
		roomSlot[rk] = true

		assignedTriple[tripleKey{a.TeacherID, a.RoomID, a.TimeSlotID}] = true
	}

	// 教师可用性与学科回避
	for _, a := range assignments {
		teacher := e.schedule.GetTeacher(a.TeacherID)
		ts := e.schedule.GetTimeSlot(a.TimeSlotID)
		if teacher == nil || ts == nil {
			penalty += PenaltyUnavailable
			continue
		}
		if !e.IsAvailable(teacher, ts) {
			penalty += PenaltyUnavailable
		}
		if a.IsInvigilation() && teacher.Subject == a.Subject {
			penalty += PenaltySubjectConflict
		}
	}

	// 固定坐班必须被精确实现
	for _, duty := range e.resolvedDuties {
		if !assignedTriple[tripleKey{duty.TeacherID, duty.RoomID, duty.TimeSlotID}] {
			penalty += PenaltyFixedDutyUnmet
		}
	}

	return penalty
}
