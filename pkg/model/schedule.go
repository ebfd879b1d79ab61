// Package model 定义排考引擎的核心数据模型
package model

import (
	"fmt"
	"sort"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictTeacherSlot ConflictType = "teacher_slot" // 教师同一时间多个任务
	ConflictRoomSlot    ConflictType = "room_slot"    // 考场同一时间多个任务
)

// Conflict 硬约束冲突描述
type Conflict struct {
	Type       ConflictType `json:"type"`
	TeacherID  int          `json:"teacher_id,omitempty"`
	RoomID     int          `json:"room_id,omitempty"`
	TimeSlotID string       `json:"time_slot_id"`
	Count      int          `json:"count"`
	Message    string       `json:"message"`
}

// Task 监考任务：一个需要监考的 (考试, 考场) 对
// 两个求解器共用同一稳定枚举顺序
type Task struct {
	ExamIndex  int         `json:"exam_index"`
	TimeSlotID string      `json:"time_slot_id"`
	RoomID     int         `json:"room_id"`
	Subject    SubjectType `json:"subject"`
	IsLong     bool        `json:"is_long"`
}

// Schedule 考试安排总表（聚合根）
// 教师/考场/时间段/考试集合为只读输入；Assignments 只由求解器产出，
// 每次求解通过 WithAssignments 生成共享输入集合的新聚合，绝不原地修改
type Schedule struct {
	Teachers    []*Teacher       `json:"teachers"`
	Rooms       []*Room          `json:"rooms"`
	TimeSlots   []*TimeSlot      `json:"time_slots"`
	Exams       []*Exam          `json:"exams"`
	Assignments []*Assignment    `json:"assignments"`
	Config      ConstraintConfig `json:"config"`

	// 构造时建立的索引
	teacherMap map[int]*Teacher
	roomMap    map[int]*Room
	slotMap    map[string]*TimeSlot

	assignmentsByTeacher map[int][]*Assignment
	assignmentsByRoom    map[int][]*Assignment
	assignmentsBySlot    map[string][]*Assignment

	examByRoomSlot map[roomSlotKey]*Exam
	longSubjects   map[SubjectType]bool
}

type roomSlotKey struct {
	roomID int
	slotID string
}

// NewSchedule 创建考试安排聚合并建立全部索引
func NewSchedule(teachers []*Teacher, rooms []*Room, slots []*TimeSlot, exams []*Exam, config ConstraintConfig) *Schedule {
	s := &Schedule{
		Teachers:  teachers,
		Rooms:     rooms,
		TimeSlots: slots,
		Exams:     exams,
		Config:    config,
	}
	s.buildIndexes()
	s.rebuildAssignmentIndexes()
	return s
}

// WithAssignments 返回共享输入集合、持有新安排列表的新聚合
func (s *Schedule) WithAssignments(assignments []*Assignment) *Schedule {
	clone := &Schedule{
		Teachers:       s.Teachers,
		Rooms:          s.Rooms,
		TimeSlots:      s.TimeSlots,
		Exams:          s.Exams,
		Assignments:    assignments,
		Config:         s.Config,
		teacherMap:     s.teacherMap,
		roomMap:        s.roomMap,
		slotMap:        s.slotMap,
		examByRoomSlot: s.examByRoomSlot,
		longSubjects:   s.longSubjects,
	}
	clone.rebuildAssignmentIndexes()
	return clone
}

// buildIndexes 建立只读实体索引
func (s *Schedule) buildIndexes() {
	s.teacherMap = make(map[int]*Teacher, len(s.Teachers))
	for _, t := range s.Teachers {
		s.teacherMap[t.ID] = t
	}
	s.roomMap = make(map[int]*Room, len(s.Rooms))
	for _, r := range s.Rooms {
		s.roomMap[r.ID] = r
	}
	s.slotMap = make(map[string]*TimeSlot, len(s.TimeSlots))
	for _, ts := range s.TimeSlots {
		s.slotMap[ts.ID] = ts
	}
	s.examByRoomSlot = make(map[roomSlotKey]*Exam)
	s.longSubjects = make(map[SubjectType]bool)
	for _, e := range s.Exams {
		for _, roomID := range e.RoomIDs {
			s.examByRoomSlot[roomSlotKey{roomID, e.TimeSlotID}] = e
		}
		if e.IsLongSubject {
			s.longSubjects[e.Subject] = true
		}
	}
}

// rebuildAssignmentIndexes 重建安排索引
func (s *Schedule) rebuildAssignmentIndexes() {
	s.assignmentsByTeacher = make(map[int][]*Assignment)
	s.assignmentsByRoom = make(map[int][]*Assignment)
	s.assignmentsBySlot = make(map[string][]*Assignment)
	for _, a := range s.Assignments {
		s.assignmentsByTeacher[a.TeacherID] = append(s.assignmentsByTeacher[a.TeacherID], a)
		s.assignmentsByRoom[a.RoomID] = append(s.assignmentsByRoom[a.RoomID], a)
		s.assignmentsBySlot[a.TimeSlotID] = append(s.assignmentsBySlot[a.TimeSlotID], a)
	}
}

// GetTeacher 获取教师
func (s *Schedule) GetTeacher(id int) *Teacher {
	return s.teacherMap[id]
}

// GetRoom 获取考场
func (s *Schedule) GetRoom(id int) *Room {
	return s.roomMap[id]
}

// GetTimeSlot 获取时间段
func (s *Schedule) GetTimeSlot(id string) *TimeSlot {
	return s.slotMap[id]
}

// TeacherAssignments 获取某个教师的所有监考安排
func (s *Schedule) TeacherAssignments(teacherID int) []*Assignment {
	return s.assignmentsByTeacher[teacherID]
}

// RoomAssignments 获取某个考场的所有监考安排
func (s *Schedule) RoomAssignments(roomID int) []*Assignment {
	return s.assignmentsByRoom[roomID]
}

// TimeSlotAssignments 获取某个时间段的所有监考安排
func (s *Schedule) TimeSlotAssignments(slotID string) []*Assignment {
	return s.assignmentsBySlot[slotID]
}

// ExamAt 返回占用指定 (考场, 时间段) 的考试，没有则返回 nil
func (s *Schedule) ExamAt(roomID int, slotID string) *Exam {
	return s.examByRoomSlot[roomSlotKey{roomID, slotID}]
}

// IsLongSubject 检查科目是否为长时科目
func (s *Schedule) IsLongSubject(subject SubjectType) bool {
	return s.longSubjects[subject]
}

// Tasks 按稳定顺序枚举所有监考任务（每个考试的每个考场一个）
func (s *Schedule) Tasks() []Task {
	var tasks []Task
	for i, e := range s.Exams {
		for _, roomID := range e.RoomIDs {
			tasks = append(tasks, Task{
				ExamIndex:  i,
				TimeSlotID: e.TimeSlotID,
				RoomID:     roomID,
				Subject:    e.Subject,
				IsLong:     e.IsLongSubject,
			})
		}
	}
	return tasks
}

// Dates 返回所有时间段涉及的日期（升序去重）
func (s *Schedule) Dates() []string {
	seen := make(map[string]bool)
	var dates []string
	for _, ts := range s.TimeSlots {
		if !seen[ts.Date] {
			seen[ts.Date] = true
			dates = append(dates, ts.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// CheckConflicts 检查硬约束冲突
// 按 (教师, 时间段) 和 (考场, 时间段) 分组，报告所有成员数大于1的分组
func (s *Schedule) CheckConflicts() []Conflict {
	var conflicts []Conflict

	type slotKey struct {
		id     int
		slotID string
	}
	teacherSlot := make(map[slotKey]int)
	roomSlot := make(map[slotKey]int)
	for _, a := range s.Assignments {
		teacherSlot[slotKey{a.TeacherID, a.TimeSlotID}]++
		roomSlot[slotKey{a.RoomID, a.TimeSlotID}]++
	}

	for _, t := range s.Teachers {
		for _, ts := range s.TimeSlots {
			count := teacherSlot[slotKey{t.ID, ts.ID}]
			if count > 1 {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictTeacherSlot,
					TeacherID:  t.ID,
					TimeSlotID: ts.ID,
					Count:      count,
					Message:    fmt.Sprintf("教师%s在时间段%s有%d个监考任务", t.Name, ts.ID, count),
				})
			}
		}
	}

	for _, r := range s.Rooms {
		for _, ts := range s.TimeSlots {
			count := roomSlot[slotKey{r.ID, ts.ID}]
			if count > 1 {
				conflicts = append(conflicts, Conflict{
					Type:       ConflictRoomSlot,
					RoomID:     r.ID,
					TimeSlotID: ts.ID,
					Count:      count,
					Message:    fmt.Sprintf("考场%s在时间段%s有%d个监考任务", r.Name, ts.ID, count),
				})
			}
		}
	}

	return conflicts
}

// CalculateLoad 计算教师负荷：(本次负荷, 历史负荷, 加权总负荷)
// 本次负荷 = Σ 时长 × 角色系数；加权总负荷按配置权重混合历史负荷
func (s *Schedule) CalculateLoad(teacherID int) (current, historical, blended float64) {
	teacher := s.teacherMap[teacherID]
	if teacher == nil {
		return 0, 0, 0
	}

	for _, a := range s.assignmentsByTeacher[teacherID] {
		slot := s.slotMap[a.TimeSlotID]
		if slot == nil {
			continue
		}
		duration := float64(slot.DurationMinutes)
		if a.IsInvigilation() {
			current += duration * s.Config.InvigilationCoefficient
		} else {
			current += duration * s.Config.StudyCoefficient
		}
	}

	historical = teacher.HistoricalLoad
	blended = s.Config.CurrentWeight*current + s.Config.HistoricalWeight*historical
	return current, historical, blended
}

// LongExamCount 统计教师的长时科目监考次数
func (s *Schedule) LongExamCount(teacherID int) int {
	count := 0
	for _, a := range s.assignmentsByTeacher[teacherID] {
		if a.IsInvigilation() && s.longSubjects[a.Subject] {
			count++
		}
	}
	return count
}
