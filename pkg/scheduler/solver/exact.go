package solver

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/paikao/paikao/pkg/logger"
	"github.com/paikao/paikao/pkg/model"
	"github.com/paikao/paikao/pkg/scheduler/constraint"
)

const (
	// DefaultExactWorkers 精确求解默认并行搜索数
	DefaultExactWorkers = 8

	// DefaultExactTimeLimit 精确求解默认时间预算
	DefaultExactTimeLimit = 60 * time.Second

	// 每展开多少个搜索节点检查一次超时
	abortCheckInterval = 1024
)

// ExactOptions 精确求解器配置
type ExactOptions struct {
	Workers   int           // 并行搜索数，默认 DefaultExactWorkers
	TimeLimit time.Duration // 软性时间预算，默认 DefaultExactTimeLimit
	Seed      int64         // 随机搜索线程的种子
}

// ExactSolver 精确求解器
// 0 号搜索线程做确定性的完整深度优先搜索（任务按候选教师数升序展开），
// 跑完即可证明最优或无解；其余线程做随机候选顺序的下潜，与 0 号线程
// 共享当前最优解。剪枝依据已提交软约束代价的单调下界
type ExactSolver struct {
	workers   int
	timeLimit time.Duration
	seed      int64
	log       *logger.SolverLogger
}

// NewExactSolver 创建精确求解器
func NewExactSolver(opts ExactOptions) *ExactSolver {
	if opts.Workers <= 0 {
		opts.Workers = DefaultExactWorkers
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = DefaultExactTimeLimit
	}
	return &ExactSolver{
		workers:   opts.Workers,
		timeLimit: opts.TimeLimit,
		seed:      opts.Seed,
		log:       logger.NewSolverLogger("exact"),
	}
}

// Name 返回求解器名称
func (s *ExactSolver) Name() string {
	return "exact"
}

// Solve 执行分支定界搜索
// 无可行解返回 StatusInfeasible；预算耗尽且无可行解返回 StatusUnknown，
// 两者都不作为 error 返回
func (s *ExactSolver) Solve(ctx context.Context, ev *constraint.Evaluator) (*Result, error) {
	start := time.Now()
	sched := ev.Schedule()
	tasks := sched.Tasks()
	forcedStudy := ev.ForcedStudyAssignments()
	s.log.StartSolve(len(sched.Teachers), len(tasks))

	prob, feasible := buildProblem(ev, tasks, forcedStudy)
	if !feasible {
		result := &Result{Status: StatusInfeasible, Duration: time.Since(start)}
		s.log.SolveComplete(string(result.Status), result.Duration, 0)
		return result, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeLimit)
	defer cancel()

	inc := &incumbent{log: s.log}
	var proved atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := newSearchWorker(id, prob, inc, ctx)
			if id == 0 {
				// 确定性完整搜索：跑完即为证明
				if w.dfs(0) {
					proved.Store(true)
					cancel()
				}
				return
			}
			rng := rand.New(rand.NewSource(s.seed + int64(id)))
			for ctx.Err() == nil {
				w.shuffleCandidates(rng)
				if w.dfs(0) {
					proved.Store(true)
					cancel()
					return
				}
			}
		}(i)
	}
	wg.Wait()

	result := &Result{Duration: time.Since(start)}
	chosen, found := inc.snapshot()
	switch {
	case proved.Load() && found:
		result.Status = StatusOptimal
	case proved.Load():
		result.Status = StatusInfeasible
	case found:
		result.Status = StatusFeasible
	default:
		result.Status = StatusUnknown
	}
	if found {
		result.Assignments = decodeAssignments(tasks, chosen, forcedStudy)
		result.Objective = ev.SoftCost(result.Assignments)
		result.Schedule = sched.WithAssignments(result.Assignments)
	}
	s.log.SolveComplete(string(result.Status), result.Duration, result.Objective)
	return result, nil
}

// teacherSlot 教师时段占用键
type teacherSlot struct {
	teacherID int
	slotID    string
}

// roomSlot 考场时段占用键
type roomSlot struct {
	roomID int
	slotID string
}

// teacherDay 教师按日统计键
type teacherDay struct {
	teacherID int
	date      string
}

// problem 预处理后的搜索问题，搜索线程间只读共享
type problem struct {
	ev    *constraint.Evaluator
	sched *model.Schedule
	cfg   model.ConstraintConfig
	tasks []model.Task

	// order[k] 为第 k 个展开的任务下标，按候选教师数升序
	order      []int
	candidates [][]int

	// 午休配对的双向索引
	lunchPartner map[string]string

	longMean float64

	// 固定自习坐班固化后的初始状态，每个搜索线程克隆一份
	base searchSnapshot
}

// searchSnapshot 可变搜索状态的一个切面
type searchSnapshot struct {
	busy      map[teacherSlot]bool
	load      map[int]float64
	longCount map[int]int
	daily     map[teacherDay]int
	morning   map[teacherDay]bool
	afternoon map[teacherDay]bool
	slots     map[int]map[string]bool
	committed float64
}

func newSearchSnapshot() searchSnapshot {
	return searchSnapshot{
		busy:      make(map[teacherSlot]bool),
		load:      make(map[int]float64),
		longCount: make(map[int]int),
		daily:     make(map[teacherDay]int),
		morning:   make(map[teacherDay]bool),
		afternoon: make(map[teacherDay]bool),
		slots:     make(map[int]map[string]bool),
	}
}

func (s searchSnapshot) clone() searchSnapshot {
	c := newSearchSnapshot()
	for k, v := range s.busy {
		c.busy[k] = v
	}
	for k, v := range s.load {
		c.load[k] = v
	}
	for k, v := range s.longCount {
		c.longCount[k] = v
	}
	for k, v := range s.daily {
		c.daily[k] = v
	}
	for k, v := range s.morning {
		c.morning[k] = v
	}
	for k, v := range s.afternoon {
		c.afternoon[k] = v
	}
	for tid, set := range s.slots {
		inner := make(map[string]bool, len(set))
		for id := range set {
			inner[id] = true
		}
		c.slots[tid] = inner
	}
	c.committed = s.committed
	return c
}

// buildProblem 预处理搜索问题
// 返回 feasible=false 表示建模阶段即可证明无解：固定坐班互相冲突或教师不可用、
// 固定监考教师不满足硬约束、或某任务没有任何候选教师
func buildProblem(ev *constraint.Evaluator, tasks []model.Task, forcedStudy []*model.Assignment) (*problem, bool) {
	sched := ev.Schedule()
	p := &problem{
		ev:           ev,
		sched:        sched,
		cfg:          sched.Config,
		tasks:        tasks,
		lunchPartner: make(map[string]string),
		longMean:     ev.LongExamMean(),
		base:         newSearchSnapshot(),
	}
	for _, ts := range sched.TimeSlots {
		if ts.LunchPairWith != "" {
			p.lunchPartner[ts.ID] = ts.LunchPairWith
			p.lunchPartner[ts.LunchPairWith] = ts.ID
		}
	}

	// 固化自习坐班：占用教师时段、计入负荷与已提交代价
	roomBusy := make(map[roomSlot]bool)
	for _, a := range forcedStudy {
		key := teacherSlot{a.TeacherID, a.TimeSlotID}
		rk := roomSlot{a.RoomID, a.TimeSlotID}
		if p.base.busy[key] || roomBusy[rk] {
			return nil, false
		}
		t := sched.GetTeacher(a.TeacherID)
		ts := sched.GetTimeSlot(a.TimeSlotID)
		if t == nil || ts == nil || !ev.IsAvailable(t, ts) {
			return nil, false
		}
		roomBusy[rk] = true
		p.applyTo(&p.base, a.TeacherID, a.TimeSlotID, model.RoleStudy, false)
	}

	// 固定监考：落在考试考场上的固定职责锁定该任务的唯一候选
	forcedTeacher := make(map[roomSlot]int)
	for _, duty := range ev.ResolvedDuties() {
		if !duty.IsExamRoom {
			continue
		}
		rk := roomSlot{duty.RoomID, duty.TimeSlotID}
		if prev, ok := forcedTeacher[rk]; ok && prev != duty.TeacherID {
			return nil, false
		}
		forcedTeacher[rk] = duty.TeacherID
	}

	p.candidates = make([][]int, len(tasks))
	for i, task := range tasks {
		if tid, ok := forcedTeacher[roomSlot{task.RoomID, task.TimeSlotID}]; ok {
			t := sched.GetTeacher(tid)
			if t == nil || !ev.CanInvigilate(t, task) {
				return nil, false
			}
			p.candidates[i] = []int{tid}
			continue
		}
		for _, t := range sched.Teachers {
			if ev.CanInvigilate(t, task) {
				p.candidates[i] = append(p.candidates[i], t.ID)
			}
		}
		if len(p.candidates[i]) == 0 {
			return nil, false
		}
	}

	// 候选最少的任务先展开
	p.order = make([]int, len(tasks))
	for i := range p.order {
		p.order[i] = i
	}
	order := p.order
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && len(p.candidates[order[j]]) < len(p.candidates[order[j-1]]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	return p, true
}

// placeUndo 单次放置的撤销记录
type placeUndo struct {
	key          teacherSlot
	dk           teacherDay
	setMorning   bool
	setAfternoon bool
	longDelta    int
	loadDelta    float64
	costDelta    float64
}

// applyTo 把一次放置写入搜索状态并返回已提交代价增量
// 公平性只在叶子整体结算，其余软约束的边际增量在放置时累加，
// 各项边际非负，因此 committed 是剩余子树目标值的单调下界
func (p *problem) applyTo(st *searchSnapshot, teacherID int, slotID string, role model.Role, isLong bool) placeUndo {
	ts := p.sched.GetTimeSlot(slotID)
	undo := placeUndo{
		key: teacherSlot{teacherID, slotID},
		dk:  teacherDay{teacherID, ts.Date},
	}
	st.busy[undo.key] = true

	coeff := p.cfg.InvigilationCoefficient
	if role == model.RoleStudy {
		coeff = p.cfg.StudyCoefficient
	}
	undo.loadDelta = float64(ts.DurationMinutes) * coeff
	st.load[teacherID] += undo.loadDelta

	if isLong {
		undo.longDelta = 1
		st.longCount[teacherID]++
		c := float64(st.longCount[teacherID])
		undo.costDelta += (math.Max(0, c-p.longMean) - math.Max(0, c-1-p.longMean)) * p.cfg.LongExamWeight
	}

	st.daily[undo.dk]++
	if st.daily[undo.dk] > p.cfg.DailyComfortLimit {
		undo.costDelta += p.cfg.DailyLimitWeight
	}

	split := st.morning[undo.dk] && st.afternoon[undo.dk]
	if ts.IsMorning && !st.morning[undo.dk] {
		st.morning[undo.dk] = true
		undo.setMorning = true
	}
	if ts.IsAfternoon && !st.afternoon[undo.dk] {
		st.afternoon[undo.dk] = true
		undo.setAfternoon = true
	}
	if !split && st.morning[undo.dk] && st.afternoon[undo.dk] {
		undo.costDelta += p.cfg.ConcentrationWeight
	}

	if st.slots[teacherID] == nil {
		st.slots[teacherID] = make(map[string]bool)
	}
	if partner := p.lunchPartner[slotID]; partner != "" && st.slots[teacherID][partner] {
		undo.costDelta += p.cfg.LunchWeight
	}
	st.slots[teacherID][slotID] = true

	st.committed += undo.costDelta
	return undo
}

// revertOn 撤销一次放置，与 applyTo 严格后进先出配对
func (p *problem) revertOn(st *searchSnapshot, undo placeUndo) {
	delete(st.busy, undo.key)
	st.load[undo.key.teacherID] -= undo.loadDelta
	st.longCount[undo.key.teacherID] -= undo.longDelta
	st.daily[undo.dk]--
	if undo.setMorning {
		delete(st.morning, undo.dk)
	}
	if undo.setAfternoon {
		delete(st.afternoon, undo.dk)
	}
	delete(st.slots[undo.key.teacherID], undo.key.slotID)
	st.committed -= undo.costDelta
}

// incumbent 搜索线程共享的当前最优解
type incumbent struct {
	mu        sync.Mutex
	found     bool
	objective float64
	chosen    []int
	log       *logger.SolverLogger
}

func (in *incumbent) offer(chosen []int, objective float64, worker int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.found && objective >= in.objective {
		return
	}
	in.found = true
	in.objective = objective
	in.chosen = append(in.chosen[:0], chosen...)
	if in.log != nil {
		in.log.Incumbent(worker, objective)
	}
}

// bound 返回剪枝上界，无解时为 +Inf
func (in *incumbent) bound() float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.found {
		return math.Inf(1)
	}
	return in.objective
}

func (in *incumbent) snapshot() ([]int, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.found {
		return nil, false
	}
	chosen := make([]int, len(in.chosen))
	copy(chosen, in.chosen)
	return chosen, true
}

// searchWorker 单个搜索线程的私有状态
type searchWorker struct {
	id   int
	prob *problem
	inc  *incumbent
	ctx  context.Context

	candidates [][]int
	chosen     []int
	state      searchSnapshot

	nodes   int
	stopped bool
}

func newSearchWorker(id int, p *problem, inc *incumbent, ctx context.Context) *searchWorker {
	w := &searchWorker{
		id:         id,
		prob:       p,
		inc:        inc,
		ctx:        ctx,
		candidates: make([][]int, len(p.candidates)),
		chosen:     make([]int, len(p.tasks)),
		state:      p.base.clone(),
	}
	for i, c := range p.candidates {
		w.candidates[i] = append([]int(nil), c...)
	}
	for i := range w.chosen {
		w.chosen[i] = -1
	}
	return w
}

func (w *searchWorker) shuffleCandidates(rng *rand.Rand) {
	for _, c := range w.candidates {
		rng.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })
	}
}

func (w *searchWorker) aborted() bool {
	if w.stopped {
		return true
	}
	w.nodes++
	if w.nodes%abortCheckInterval == 0 && w.ctx.Err() != nil {
		w.stopped = true
	}
	return w.stopped
}

// leafObjective 叶子处整体结算公平性并加上已提交代价
func (w *searchWorker) leafObjective() float64 {
	cfg := w.prob.cfg
	first := true
	var maxLoad, minLoad float64
	for _, t := range w.prob.sched.Teachers {
		blended := cfg.CurrentWeight*w.state.load[t.ID] + cfg.HistoricalWeight*t.HistoricalLoad
		if first {
			maxLoad, minLoad = blended, blended
			first = false
			continue
		}
		if blended > maxLoad {
			maxLoad = blended
		}
		if blended < minLoad {
			minLoad = blended
		}
	}
	fairness := 0.0
	if !first {
		fairness = (maxLoad - minLoad) * cfg.FairnessWeight
	}
	return w.state.committed + fairness
}

// dfs 返回子树是否被完整搜索（含被界剪掉的分支）
// 完整搜索结束即证明：有解则当前最优解为全局最优，无解则问题无解
func (w *searchWorker) dfs(pos int) bool {
	if w.aborted() {
		return false
	}
	if pos == len(w.prob.order) {
		w.inc.offer(w.chosen, w.leafObjective(), w.id)
		return true
	}
	ti := w.prob.order[pos]
	task := w.prob.tasks[ti]
	complete := true
	for _, tid := range w.candidates[ti] {
		if w.state.busy[teacherSlot{tid, task.TimeSlotID}] {
			continue
		}
		undo := w.prob.applyTo(&w.state, tid, task.TimeSlotID, model.RoleInvigilation, task.IsLong)
		if w.state.committed < w.inc.bound() {
			w.chosen[ti] = tid
			if !w.dfs(pos + 1) {
				complete = false
			}
			w.chosen[ti] = -1
		}
		w.prob.revertOn(&w.state, undo)
		if w.stopped {
			return false
		}
	}
	return complete
}
