// Package model 定义排考引擎的核心数据模型
package model

// ConstraintConfig 约束配置
// 由调用方提供，求解过程中保持不变。引擎不校验取值合法性
// （负权重、非正系数等由调用方负责，可用 pkg/validator 做可选检查）
type ConstraintConfig struct {
	// 负荷系数
	InvigilationCoefficient float64 `json:"invigilation_coefficient" validate:"gte=0"` // 监考负荷系数
	StudyCoefficient        float64 `json:"study_coefficient" validate:"gte=0"`        // 自习坐班负荷系数

	// 历史权重
	CurrentWeight    float64 `json:"current_weight" validate:"gte=0"`    // 本次负荷权重
	HistoricalWeight float64 `json:"historical_weight" validate:"gte=0"` // 历史负荷权重

	// 软约束权重
	FairnessWeight      float64 `json:"fairness_weight" validate:"gte=0"`      // 公平性权重
	LongExamWeight      float64 `json:"long_exam_weight" validate:"gte=0"`     // 长时科目平衡权重
	LunchWeight         float64 `json:"lunch_weight" validate:"gte=0"`         // 午休保障权重
	DailyLimitWeight    float64 `json:"daily_limit_weight" validate:"gte=0"`   // 每日负荷权重
	ConcentrationWeight float64 `json:"concentration_weight" validate:"gte=0"` // 任务集中度权重

	// 每日舒适负荷上限
	DailyComfortLimit int `json:"daily_comfort_limit" validate:"gte=0"`
}

// DefaultConstraintConfig 返回默认约束配置
func DefaultConstraintConfig() ConstraintConfig {
	return ConstraintConfig{
		InvigilationCoefficient: 1.0,
		StudyCoefficient:        0.5,
		CurrentWeight:           0.5,
		HistoricalWeight:        0.5,
		FairnessWeight:          1000.0,
		LongExamWeight:          100.0,
		LunchWeight:             200.0,
		DailyLimitWeight:        50.0,
		ConcentrationWeight:     30.0,
		DailyComfortLimit:       2,
	}
}
