// Package model 定义排考引擎的核心数据模型
package model

// Room 考场
type Room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Building string `json:"building,omitempty"`
	Floor    string `json:"floor,omitempty"`
}

// TimeSlot 时间段
type TimeSlot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Date            string `json:"date"` // YYYY-MM-DD
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`

	// 场次标识（如 "上午一"），用于请假/授课/固定坐班的精确匹配
	Period string `json:"period"`

	IsMorning   bool `json:"is_morning"`
	IsAfternoon bool `json:"is_afternoon"`

	// 午休配对的时间段ID（上午末场指向下午首场）
	LunchPairWith string `json:"lunch_pair_with,omitempty"`
}
