// Package model 定义排考引擎的核心数据模型
package model

import "github.com/google/uuid"

// Exam 考试
// 一个科目占用一个时间段和若干考场
type Exam struct {
	Subject       SubjectType `json:"subject"`
	TimeSlotID    string      `json:"time_slot_id"`
	RoomIDs       []int       `json:"room_ids"`
	IsLongSubject bool        `json:"is_long_subject"`
}

// TotalRooms 返回该考试占用的考场数
func (e *Exam) TotalRooms() int {
	return len(e.RoomIDs)
}

// HasRoom 检查考试是否占用指定考场
func (e *Exam) HasRoom(roomID int) bool {
	for _, id := range e.RoomIDs {
		if id == roomID {
			return true
		}
	}
	return false
}

// Assignment 监考安排
// 引擎唯一创建的实体
type Assignment struct {
	ID         uuid.UUID   `json:"id"`
	TeacherID  int         `json:"teacher_id"`
	RoomID     int         `json:"room_id"`
	TimeSlotID string      `json:"time_slot_id"`
	Subject    SubjectType `json:"subject"`
	Role       Role        `json:"role"`
}

// NewAssignment 创建监考安排
func NewAssignment(teacherID, roomID int, timeSlotID string, subject SubjectType, role Role) *Assignment {
	return &Assignment{
		ID:         uuid.New(),
		TeacherID:  teacherID,
		RoomID:     roomID,
		TimeSlotID: timeSlotID,
		Subject:    subject,
		Role:       role,
	}
}

// IsInvigilation 是否为监考任务（相对于自习坐班）
func (a *Assignment) IsInvigilation() bool {
	return a.Role == RoleInvigilation
}
