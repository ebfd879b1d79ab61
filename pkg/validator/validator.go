// Package validator 提供排考输入的可选校验
// 引擎自身不调用校验：无法解析的固定坐班等问题由引擎静默忽略，
// 需要显式报告时由调用方在求解前执行 ValidateSchedule
package validator

import (
	"fmt"

	playground "github.com/go-playground/validator/v10"

	"github.com/paikao/paikao/pkg/errors"
	"github.com/paikao/paikao/pkg/model"
)

// Validator 输入校验器
type Validator struct {
	validate *playground.Validate
}

// New 创建输入校验器
func New() *Validator {
	return &Validator{validate: playground.New()}
}

// ValidateSchedule 校验求解输入的完整聚合
// 汇总全部问题后一次返回，调用方无需逐项修复重试
func (v *Validator) ValidateSchedule(s *model.Schedule) error {
	ve := &errors.ValidationErrors{}

	v.checkConfig(s.Config, ve)
	v.checkRooms(s, ve)
	v.checkTimeSlots(s, ve)
	v.checkTeachers(s, ve)
	v.checkExams(s, ve)

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

func (v *Validator) checkConfig(cfg model.ConstraintConfig, ve *errors.ValidationErrors) {
	if err := v.validate.Struct(cfg); err != nil {
		if fieldErrs, ok := err.(playground.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				ve.Add("config."+fe.Field(), "取值不能为负")
			}
			return
		}
		ve.Add("config", err.Error())
	}
}

func (v *Validator) checkRooms(s *model.Schedule, ve *errors.ValidationErrors) {
	seenID := make(map[int]bool)
	seenName := make(map[string]bool)
	for _, r := range s.Rooms {
		if seenID[r.ID] {
			ve.Add("rooms", fmt.Sprintf("考场ID重复: %d", r.ID))
		}
		seenID[r.ID] = true
		if r.Name == "" {
			ve.Add("rooms", fmt.Sprintf("考场%d缺少名称", r.ID))
			continue
		}
		if seenName[r.Name] {
			ve.Add("rooms", fmt.Sprintf("考场名称重复: %s", r.Name))
		}
		seenName[r.Name] = true
	}
}

func (v *Validator) checkTimeSlots(s *model.Schedule, ve *errors.ValidationErrors) {
	seen := make(map[string]bool)
	for _, ts := range s.TimeSlots {
		if ts.ID == "" {
			ve.Add("time_slots", "时间段缺少ID")
			continue
		}
		if seen[ts.ID] {
			ve.Add("time_slots", fmt.Sprintf("时间段ID重复: %s", ts.ID))
		}
		seen[ts.ID] = true
		if _, err := model.DaysBetween(ts.Date, ts.Date); err != nil {
			ve.Add("time_slots", fmt.Sprintf("时间段%s的日期格式非法: %s", ts.ID, ts.Date))
		}
		if ts.DurationMinutes <= 0 {
			ve.Add("time_slots", fmt.Sprintf("时间段%s的时长必须为正", ts.ID))
		}
		if ts.LunchPairWith != "" {
			pair := s.GetTimeSlot(ts.LunchPairWith)
			switch {
			case pair == nil:
				ve.Add("time_slots", fmt.Sprintf("时间段%s的午休配对指向不存在的时间段%s", ts.ID, ts.LunchPairWith))
			case pair.Date != ts.Date:
				ve.Add("time_slots", fmt.Sprintf("时间段%s与%s不在同一天，不能构成午休配对", ts.ID, ts.LunchPairWith))
			}
		}
	}
}

func (v *Validator) checkTeachers(s *model.Schedule, ve *errors.ValidationErrors) {
	seen := make(map[int]bool)
	roomNames := make(map[string]bool, len(s.Rooms))
	for _, r := range s.Rooms {
		roomNames[r.Name] = true
	}
	for _, t := range s.Teachers {
		if seen[t.ID] {
			ve.Add("teachers", fmt.Sprintf("教师ID重复: %d", t.ID))
		}
		seen[t.ID] = true
		for _, duty := range t.FixedDuties {
			if !roomNames[duty.RoomName] {
				ve.Add("teachers", fmt.Sprintf("教师%s的固定坐班指向不存在的考场: %s", t.Name, duty.RoomName))
			}
			if !v.periodExists(s, duty.Date, duty.Period) {
				ve.Add("teachers", fmt.Sprintf("教师%s的固定坐班无法解析到时间段: %s %s", t.Name, duty.Date, duty.Period))
			}
		}
	}
}

func (v *Validator) periodExists(s *model.Schedule, date, period string) bool {
	for _, ts := range s.TimeSlots {
		if ts.Date == date && ts.Period == period {
			return true
		}
	}
	return false
}

func (v *Validator) checkExams(s *model.Schedule, ve *errors.ValidationErrors) {
	occupied := make(map[string]bool)
	for _, exam := range s.Exams {
		if s.GetTimeSlot(exam.TimeSlotID) == nil {
			ve.Add("exams", fmt.Sprintf("考试%s指向不存在的时间段%s", exam.Subject, exam.TimeSlotID))
		}
		if len(exam.RoomIDs) == 0 {
			ve.Add("exams", fmt.Sprintf("考试%s没有安排考场", exam.Subject))
		}
		for _, roomID := range exam.RoomIDs {
			if s.GetRoom(roomID) == nil {
				ve.Add("exams", fmt.Sprintf("考试%s指向不存在的考场%d", exam.Subject, roomID))
			}
			key := fmt.Sprintf("%d/%s", roomID, exam.TimeSlotID)
			if occupied[key] {
				ve.Add("exams", fmt.Sprintf("考场%d在时间段%s被多场考试占用", roomID, exam.TimeSlotID))
			}
			occupied[key] = true
		}
	}
}
