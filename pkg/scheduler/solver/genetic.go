package solver

import (
	"context"
	"math"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/paikao/paikao/pkg/logger"
	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
)

// 遗传算法默认参数
const (
	DefaultPopulationSize = 100
	DefaultGenerations    = 50
	DefaultCrossoverRate  = 0.7
	DefaultMutationRate   = 0.1
	DefaultTournamentSize = 3

	// 适应度评估崩溃时的兜底值，保证个体在选择中被淘汰
	worstFitness = math.MaxFloat64
)

// GeneticOptions 遗传算法配置
type GeneticOptions struct {
	PopulationSize int     // 种群规模，默认 DefaultPopulationSize
	Generations    int     // 演化代数，默认 DefaultGenerations
	CrossoverRate  float64 // 单点交叉概率，0 取默认值，负数关闭交叉
	MutationRate   float64 // 逐基因突变概率，0 取默认值，负数关闭突变
	TournamentSize int     // 锦标赛规模，默认 DefaultTournamentSize
	Seed           int64   // 随机种子，相同种子产生逐位相同的演化轨迹
	Parallelism    int     // 适应度评估并行度，0 或 1 为串行
}

// GeneticSolver 遗传算法求解器
// 染色体为逐任务的教师编号序列。硬约束以大额惩罚进入适应度，
// 结果可能残留硬约束违反，调用方须对产出重新执行 CheckConflicts。
// 随机源显式注入，演化过程不触碰全局随机状态
type GeneticSolver struct {
	opts GeneticOptions
	log  *logger.SolverLogger
}

// NewGeneticSolver 创建遗传算法求解器
func NewGeneticSolver(opts GeneticOptions) *GeneticSolver {
	if opts.PopulationSize <= 0 {
		opts.PopulationSize = DefaultPopulationSize
	}
	if opts.Generations <= 0 {
		opts.Generations = DefaultGenerations
	}
	switch {
	case opts.CrossoverRate == 0:
		opts.CrossoverRate = DefaultCrossoverRate
	case opts.CrossoverRate < 0:
		opts.CrossoverRate = 0
	}
	switch {
	case opts.MutationRate == 0:
		opts.MutationRate = DefaultMutationRate
	case opts.MutationRate < 0:
		opts.MutationRate = 0
	}
	if opts.TournamentSize <= 0 {
		opts.TournamentSize = DefaultTournamentSize
	}
	return &GeneticSolver{opts: opts, log: logger.NewSolverLogger("genetic")}
}

// Name 返回求解器名称
func (s *GeneticSolver) Name() string {
	return "genetic"
}

// individual 个体：基因与适应度一经评估不再修改
type individual struct {
	genes   []int
	fitness float64
}

// Solve 执行世代演化
// 每代完整替换种群，历史最优个体单独保留并作为最终结果返回
func (s *GeneticSolver) Solve(ctx context.Context, ev *constraint.Evaluator) (*Result, error) {
	start := time.Now()
	sched := ev.Schedule()
	tasks := sched.Tasks()
	forcedStudy := ev.ForcedStudyAssignments()
	s.log.StartSolve(len(sched.Teachers), len(tasks))

	if len(sched.Teachers) == 0 && len(tasks) > 0 {
		result := &Result{Status: StatusInfeasible, Duration: time.Since(start)}
		s.log.SolveComplete(string(result.Status), result.Duration, 0)
		return result, nil
	}

	rng := rand.New(rand.NewSource(s.opts.Seed))
	eval := func(genes []int) float64 {
		return s.evaluate(ev, tasks, genes, forcedStudy)
	}

	pop := make([]individual, s.opts.PopulationSize)
	for i := range pop {
		genes := make([]int, len(tasks))
		for j := range genes {
			genes[j] = sched.Teachers[rng.Intn(len(sched.Teachers))].ID
		}
		pop[i] = individual{genes: genes}
	}
	s.evaluateAll(pop, eval)

	var best individual
	best.fitness = worstFitness
	trace := make([]GenerationStats, 0, s.opts.Generations+1)
	record := func(gen int) {
		stats := populationStats(gen, pop)
		trace = append(trace, stats)
		s.log.Generation(gen, stats.Min, stats.Mean, stats.Max)
		for _, ind := range pop {
			if ind.fitness < best.fitness {
				best = ind
			}
		}
	}
	record(0)

	for gen := 1; gen <= s.opts.Generations; gen++ {
		if ctx.Err() != nil {
			break
		}
		offspring := make([]individual, 0, s.opts.PopulationSize)
		for len(offspring) < s.opts.PopulationSize {
			p1 := s.tournament(pop, rng)
			p2 := s.tournament(pop, rng)
			c1, c2 := p1.genes, p2.genes
			if rng.Float64() < s.opts.CrossoverRate {
				c1, c2 = crossover(p1.genes, p2.genes, rng)
			}
			offspring = append(offspring, individual{genes: s.mutate(c1, sched.Teachers, rng)})
			if len(offspring) < s.opts.PopulationSize {
				offspring = append(offspring, individual{genes: s.mutate(c2, sched.Teachers, rng)})
			}
		}
		s.evaluateAll(offspring, eval)
		pop = offspring
		record(gen)
	}

	result := &Result{Duration: time.Since(start), Trace: trace}
	if best.fitness == worstFitness {
		result.Status = StatusUnknown
		s.log.SolveComplete(string(result.Status), result.Duration, 0)
		return result, nil
	}
	result.Status = StatusFeasible
	result.Assignments = decodeAssignments(tasks, best.genes, forcedStudy)
	result.Objective = best.fitness
	result.Schedule = sched.WithAssignments(result.Assignments)
	s.log.SolveComplete(string(result.Status), result.Duration, result.Objective)
	return result, nil
}

// evaluate 计算单个染色体的适应度（越小越好）
// 存在硬约束违反时返回放大后的硬惩罚并跳过软约束；评估过程崩溃
// 时吞掉 panic 并返回最差适应度，单个坏个体不中断整次演化
func (s *GeneticSolver) evaluate(ev *constraint.Evaluator, tasks []model.Task, genes []int, forcedStudy []*model.Assignment) (fitness float64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("适应度评估崩溃，个体按最差适应度处理")
			fitness = worstFitness
		}
	}()
	assignments := decodeAssignments(tasks, genes, forcedStudy)
	if hard := ev.HardPenalty(assignments); hard > 0 {
		return hard * constraint.HardPenaltyScale
	}
	return ev.SoftCost(assignments)
}

// evaluateAll 评估一批个体
// 并行时按下标回填结果，评估纯函数且顺序固定，并行度不影响轨迹
func (s *GeneticSolver) evaluateAll(pop []individual, eval func([]int) float64) {
	if s.opts.Parallelism <= 1 {
		for i := range pop {
			pop[i].fitness = eval(pop[i].genes)
		}
		return
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.opts.Parallelism)
	for i := range pop {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			pop[i].fitness = eval(pop[i].genes)
		}(i)
	}
	wg.Wait()
}

// tournament 锦标赛选择：随机抽取若干个体，取适应度最小者
func (s *GeneticSolver) tournament(pop []individual, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < s.opts.TournamentSize; i++ {
		if c := pop[rng.Intn(len(pop))]; c.fitness < best.fitness {
			best = c
		}
	}
	return best
}

// crossover 单点交叉，返回两个新染色体，父代不受影响
func crossover(a, b []int, rng *rand.Rand) ([]int, []int) {
	if len(a) < 2 {
		return append([]int(nil), a...), append([]int(nil), b...)
	}
	point := 1 + rng.Intn(len(a)-1)
	c1 := make([]int, len(a))
	c2 := make([]int, len(b))
	copy(c1, a[:point])
	copy(c1[point:], b[point:])
	copy(c2, b[:point])
	copy(c2[point:], a[point:])
	return c1, c2
}

// mutate 逐基因独立突变，返回新染色体
func (s *GeneticSolver) mutate(genes []int, teachers []*model.Teacher, rng *rand.Rand) []int {
	mutated := append([]int(nil), genes...)
	for i := range mutated {
		if rng.Float64() < s.opts.MutationRate {
			mutated[i] = teachers[rng.Intn(len(teachers))].ID
		}
	}
	return mutated
}

func populationStats(gen int, pop []individual) GenerationStats {
	stats := GenerationStats{Generation: gen}
	if len(pop) == 0 {
		return stats
	}
	stats.Min = pop[0].fitness
	stats.Max = pop[0].fitness
	sum := 0.0
	for _, ind := range pop {
		if ind.fitness < stats.Min {
			stats.Min = ind.fitness
		}
		if ind.fitness > stats.Max {
			stats.Max = ind.fitness
		}
		sum += ind.fitness
	}
	stats.Mean = sum / float64(len(pop))
	return stats
}
