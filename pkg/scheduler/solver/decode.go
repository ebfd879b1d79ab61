package solver

import (
	"github.com/paikao/paikao/pkg/model"
)

// decodeAssignments 将逐任务的教师选择还原为完整的安排列表，
// 末尾附加固定职责产生的自习安排。genes[i] 对应 tasks[i] 的教师编号
func decodeAssignments(tasks []model.Task, genes []int, forcedStudy []*model.Assignment) []*model.Assignment {
	assignments := make([]*model.Assignment, 0, len(tasks)+len(forcedStudy))
	for i, task := range tasks {
		assignments = append(assignments, model.NewAssignment(
			genes[i], task.RoomID, task.TimeSlotID, task.Subject, model.RoleInvigilation,
		))
	}
	assignments = append(assignments, forcedStudy...)
	return assignments
}
