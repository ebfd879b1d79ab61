// Package scheduler 排考引擎入口
// 按问题规模在精确求解与遗传算法之间自动选择：小规模问题先尝试
// 精确求解，无解或预算内未解出时回退到遗传算法
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/paikao/paikao/pkg/errors"
	"github.com/paikao/paikao/pkg/logger"
	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
	"github.com/paikao/paikao/pkg/scheduler/solver"
)

// Strategy 求解策略
type Strategy string

const (
	StrategyAuto    Strategy = "auto"    // 按规模自动选择
	StrategyExact   Strategy = "exact"   // 只用精确求解
	StrategyGenetic Strategy = "genetic" // 只用遗传算法
)

// 自动策略的规模阈值：监考任务数与教师数都不超过阈值时先走精确求解
const (
	DefaultMaxExactTasks    = 100
	DefaultMaxExactTeachers = 200
)

// Params 求解参数
type Params struct {
	Strategy Strategy // 默认 StrategyAuto

	// 精确求解
	TimeBudget       time.Duration // 精确求解时间预算
	Workers          int           // 精确求解并行搜索数
	MaxExactTasks    int           // 自动策略的任务数阈值
	MaxExactTeachers int           // 自动策略的教师数阈值

	// 遗传算法
	PopulationSize int
	Generations    int
	CrossoverRate  float64
	MutationRate   float64
	TournamentSize int
	Parallelism    int

	// 两条路径共用的随机种子
	Seed int64
}

// DefaultParams 返回默认求解参数
func DefaultParams() Params {
	return Params{
		Strategy:         StrategyAuto,
		TimeBudget:       solver.DefaultExactTimeLimit,
		Workers:          solver.DefaultExactWorkers,
		MaxExactTasks:    DefaultMaxExactTasks,
		MaxExactTeachers: DefaultMaxExactTeachers,
		PopulationSize:   solver.DefaultPopulationSize,
		Generations:      solver.DefaultGenerations,
		CrossoverRate:    solver.DefaultCrossoverRate,
		MutationRate:     solver.DefaultMutationRate,
		TournamentSize:   solver.DefaultTournamentSize,
	}
}

// Result 引擎求解结果
type Result struct {
	Schedule    *model.Schedule          `json:"-"`
	Assignments []*model.Assignment      `json:"assignments"`
	Strategy    string                   `json:"strategy"` // 实际产出结果的求解器
	Status      solver.Status            `json:"status"`
	Objective   float64                  `json:"objective"`
	WallTime    time.Duration            `json:"wall_time"`
	Trace       []solver.GenerationStats `json:"trace,omitempty"`
}

// Engine 排考引擎
type Engine struct{}

// NewEngine 创建排考引擎
func NewEngine() *Engine {
	return &Engine{}
}

// Solve 生成排考方案
// 精确求解的产出保证零硬约束违反；遗传算法的产出可能残留违反，
// 以 Result.Status 与 Schedule.CheckConflicts 为准。两条路径都失败
// 时返回带错误码的 AppError
func (e *Engine) Solve(ctx context.Context, s *model.Schedule, params Params) (*Result, error) {
	start := time.Now()
	ev := constraint.NewEvaluator(s)
	tasks := s.Tasks()

	logger.Info().
		Int("teachers", len(s.Teachers)).
		Int("tasks", len(tasks)).
		Str("strategy", string(params.Strategy)).
		Msg("开始排考求解")

	if len(tasks) > 0 && len(s.Teachers) == 0 {
		return nil, errors.NoFeasibleSolution("没有可用教师")
	}

	useExact := params.Strategy == StrategyExact ||
		(params.Strategy != StrategyGenetic &&
			len(tasks) <= e.maxExactTasks(params) &&
			len(s.Teachers) <= e.maxExactTeachers(params))

	if useExact {
		exact := solver.NewExactSolver(solver.ExactOptions{
			Workers:   params.Workers,
			TimeLimit: params.TimeBudget,
			Seed:      params.Seed,
		})
		res, err := exact.Solve(ctx, ev)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "精确求解失败")
		}
		if res.Found() {
			return e.finish(res, exact.Name(), start), nil
		}
		if params.Strategy == StrategyExact {
			if res.Status == solver.StatusInfeasible {
				return nil, errors.InfeasibleModel("约束组合无可行解")
			}
			return nil, errors.SolveTimeout(
				fmt.Sprintf("精确求解在 %s 内未找到可行解", params.TimeBudget))
		}
		sl := logger.NewSolverLogger(string(StrategyAuto))
		sl.Fallback(exact.Name(), "genetic", string(res.Status))
	}

	genetic := solver.NewGeneticSolver(solver.GeneticOptions{
		PopulationSize: params.PopulationSize,
		Generations:    params.Generations,
		CrossoverRate:  params.CrossoverRate,
		MutationRate:   params.MutationRate,
		TournamentSize: params.TournamentSize,
		Seed:           params.Seed,
		Parallelism:    params.Parallelism,
	})
	res, err := genetic.Solve(ctx, ev)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "遗传算法求解失败")
	}
	if !res.Found() {
		return nil, errors.NoFeasibleSolution(noSolutionMessage(useExact))
	}
	return e.finish(res, genetic.Name(), start), nil
}

// noSolutionMessage 按实际走过的求解路径措辞
func noSolutionMessage(triedExact bool) string {
	if triedExact {
		return "两种求解策略均未产出方案"
	}
	return "遗传算法未产出可行方案"
}

func (e *Engine) maxExactTasks(p Params) int {
	if p.MaxExactTasks > 0 {
		return p.MaxExactTasks
	}
	return DefaultMaxExactTasks
}

func (e *Engine) maxExactTeachers(p Params) int {
	if p.MaxExactTeachers > 0 {
		return p.MaxExactTeachers
	}
	return DefaultMaxExactTeachers
}

func (e *Engine) finish(res *solver.Result, strategy string, start time.Time) *Result {
	result := &Result{
		Schedule:    res.Schedule,
		Assignments: res.Assignments,
		Strategy:    strategy,
		Status:      res.Status,
		Objective:   res.Objective,
		WallTime:    time.Since(start),
		Trace:       res.Trace,
	}
	logger.Info().
		Str("strategy", strategy).
		Str("status", string(res.Status)).
		Float64("objective", res.Objective).
		Dur("wall_time", result.WallTime).
		Int("assignments", len(result.Assignments)).
		Msg("排考求解完成")
	return result
}
