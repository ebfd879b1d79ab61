// Package solver 提供排考求解器
// 精确求解器保证可行解零硬约束违反；遗传算法求解器允许少量残余违反，
// 调用方需要对其结果重新执行 CheckConflicts
package solver

import (
	"context"
	"time"

	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
)

// Status 求解终止状态
type Status string

const (
	StatusOptimal    Status = "optimal"    // 已证明最优
	StatusFeasible   Status = "feasible"   // 找到可行解但未证明最优
	StatusInfeasible Status = "infeasible" // 已证明无可行解
	StatusUnknown    Status = "unknown"    // 预算内未找到可行解
)

// GenerationStats 遗传算法单代适应度统计
type GenerationStats struct {
	Generation int     `json:"generation"`
	Min        float64 `json:"min"`
	Mean       float64 `json:"mean"`
	Max        float64 `json:"max"`
}

// Result 求解结果
type Result struct {
	Status      Status              `json:"status"`
	Assignments []*model.Assignment `json:"assignments"`
	Objective   float64             `json:"objective"`
	Duration    time.Duration       `json:"duration"`

	// 带新安排列表的聚合（共享输入集合）
	Schedule *model.Schedule `json:"-"`

	// 遗传算法的代际适应度轨迹（精确求解为空）
	Trace []GenerationStats `json:"trace,omitempty"`
}

// Found 是否产出了可用的安排
func (r *Result) Found() bool {
	return r.Status == StatusOptimal || r.Status == StatusFeasible
}

// Solver 求解器接口
type Solver interface {
	// Solve 生成排考方案，阻塞至求解结束
	Solve(ctx context.Context, ev *constraint.Evaluator) (*Result, error)

	// Name 返回求解器名称
	Name() string
}
