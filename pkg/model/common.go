// Package model 定义排考引擎的核心数据模型
package model

import "time"

// SubjectType 科目类型
type SubjectType string

const (
	SubjectChinese   SubjectType = "语文"
	SubjectMath      SubjectType = "数学"
	SubjectEnglish   SubjectType = "英语"
	SubjectPhysics   SubjectType = "物理"
	SubjectChemistry SubjectType = "化学"
	SubjectBiology   SubjectType = "生物"
	SubjectHistory   SubjectType = "历史"
	SubjectGeography SubjectType = "地理"
	SubjectPolitics  SubjectType = "政治"
	SubjectScience   SubjectType = "技术"
)

// Role 监考任务角色
type Role string

const (
	RoleInvigilation Role = "invigilation" // 监考
	RoleStudy        Role = "study"        // 自习坐班
)

// DateFormat 日期格式 (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// DaysBetween 计算两个日期的天数差 (to - from)
func DaysBetween(from, to string) (int, error) {
	f, err := time.Parse(DateFormat, from)
	if err != nil {
		return 0, err
	}
	t, err := time.Parse(DateFormat, to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}
