// Package model 定义排考引擎的核心数据模型
package model

// LeaveTime 请假时间 (日期 + 场次)
type LeaveTime struct {
	Date   string `json:"date"`   // YYYY-MM-DD
	Period string `json:"period"` // 场次标识，与 TimeSlot.Period 精确相等才算冲突
}

// FixedDuty 固定坐班任务
// 必须被排入指定日期、场次和考场，未实现即为硬约束违反
type FixedDuty struct {
	Date     string `json:"date"`
	Period   string `json:"period"`
	RoomName string `json:"room_name"`
}

// Teacher 教师
// 求解过程中视为只读输入
type Teacher struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Subject SubjectType `json:"subject"`
	Grade   string      `json:"grade"` // 高一/高二/高三

	// 本学期历史核算负荷
	HistoricalLoad float64 `json:"historical_load"`

	// 授课时间表 {日期: [场次标识]}
	TeachingSchedule map[string][]string `json:"teaching_schedule,omitempty"`

	// 请假时间
	LeaveTimes []LeaveTime `json:"leave_times,omitempty"`

	// 固定坐班
	FixedDuties []FixedDuty `json:"fixed_duties,omitempty"`
}

// IsOnLeave 检查教师在指定日期和场次是否请假
// 按 (日期, 场次标识) 精确相等判断，不做子串匹配
func (t *Teacher) IsOnLeave(date, period string) bool {
	for _, lt := range t.LeaveTimes {
		if lt.Date == date && lt.Period == period {
			return true
		}
	}
	return false
}

// IsTeachingAt 检查教师在指定日期和场次是否有授课任务
func (t *Teacher) IsTeachingAt(date, period string) bool {
	for _, p := range t.TeachingSchedule[date] {
		if p == period {
			return true
		}
	}
	return false
}

// FixedDutyAt 返回教师在指定日期和场次的固定坐班任务
func (t *Teacher) FixedDutyAt(date, period string) *FixedDuty {
	for i := range t.FixedDuties {
		d := &t.FixedDuties[i]
		if d.Date == date && d.Period == period {
			return d
		}
	}
	return nil
}
