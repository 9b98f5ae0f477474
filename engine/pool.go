package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"chesscore/board"
)

const (
	// maxStates bounds how deep a worker can nest while helping at split
	// points below its own.
	maxStates = 10
	// splitsPerWorker is the number of split nodes a worker can own at
	// once. Further split attempts are skipped.
	splitsPerWorker = 32
	noSplit         = -1
)

// splitNode is a node whose remaining moves are shared among workers.
// Every field except cutoff is guarded by pool.mu.
type splitNode struct {
	node nodeParams
	pos  board.Position
	cm   board.CheckMap
	gen  *moveGenerator

	owner  *worker
	state  *searchState
	parent int32

	processed int
	bestValue int
	bestMove  board.Move

	// active has bit i set while worker i searches a move of this node,
	// using its state activeState[i].
	active      uint64
	activeState [MaxThreads]int8

	cutoff atomic.Bool
	done   bool
}

// worker is one search goroutine. Worker 0 drives the root, the others
// sleep until a split node is published.
type worker struct {
	pool  *pool
	index int
	cond  *sync.Cond

	abort atomic.Bool
	nodes atomic.Uint64
	stats CutStatistics

	states   [maxStates]*searchState
	stateTop int
	current  int32
	splitTop int
}

// cutoffAbove reports whether any split node the worker is nested in has
// failed high.
func (w *worker) cutoffAbove() bool { return w.pool.cutoffInTree(w.current) }

// pool runs the workers and hands out split work. At most one split node
// is published at a time.
type pool struct {
	mu        sync.Mutex
	workers   []*worker
	idle      []bool
	idleCount atomic.Int32
	work      int32
	arena     []splitNode
	quit      bool
	log       zerolog.Logger

	// calcCond is signaled when the root search goes idle.
	calcCond *sync.Cond

	group  *errgroup.Group
	cancel context.CancelFunc
}

func newPool(threads int, tt *TransTable, eval Evaluator, log zerolog.Logger) *pool {
	p := &pool{
		workers: make([]*worker, threads),
		idle:    make([]bool, threads),
		work:    noSplit,
		arena:   make([]splitNode, threads*splitsPerWorker),
		log:     log,
	}
	p.calcCond = sync.NewCond(&p.mu)
	for i := range p.workers {
		w := &worker{pool: p, index: i, cond: sync.NewCond(&p.mu), current: noSplit}
		for j := range w.states {
			w.states[j] = newSearchState(w, tt, eval)
		}
		p.workers[i] = w
	}
	return p
}

// start launches the goroutines. master runs on worker 0 and must return
// once stopping reports true.
func (p *pool) start(ctx context.Context, master func(ctx context.Context, w *worker)) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)
	context.AfterFunc(ctx, p.wakeAll)

	p.group.Go(func() error {
		master(ctx, p.workers[0])
		return nil
	})
	for _, w := range p.workers[1:] {
		w := w
		p.group.Go(func() error {
			w.run(ctx)
			return nil
		})
	}
	p.log.Debug().Int("threads", len(p.workers)).Msg("pool-started")
}

// stop terminates every goroutine and waits for them.
func (p *pool) stop() error {
	p.mu.Lock()
	p.quit = true
	p.mu.Unlock()
	p.cancel()
	p.wakeAll()
	err := p.group.Wait()
	p.log.Debug().Msg("pool-stopped")
	return err
}

func (p *pool) wakeAll() {
	p.mu.Lock()
	for _, w := range p.workers {
		w.cond.Broadcast()
	}
	p.calcCond.Broadcast()
	p.mu.Unlock()
}

func (p *pool) wakeCalc() {
	p.mu.Lock()
	p.calcCond.Broadcast()
	p.mu.Unlock()
}

func (p *pool) stopping(ctx context.Context) bool {
	return p.quit || ctx.Err() != nil
}

func (p *pool) setIdle(i int, idle bool) {
	if p.idle[i] == idle {
		return
	}
	p.idle[i] = idle
	if idle {
		p.idleCount.Add(1)
	} else {
		p.idleCount.Add(-1)
	}
}

func (p *pool) cutoffInTree(idx int32) bool {
	for idx != noSplit {
		n := &p.arena[idx]
		if n.cutoff.Load() {
			return true
		}
		idx = n.parent
	}
	return false
}

// finish marks n done once no move is left and nobody works on it, and
// wakes its owner. Callers hold p.mu.
func (p *pool) finish(n *splitNode) {
	if n.gen.currentPhase() == phaseDone && n.active == 0 && !n.done {
		n.done = true
		n.owner.cond.Signal()
	}
}

// abortLocked stops every search line. Callers hold p.mu.
func (p *pool) abortLocked() {
	if p.work != noSplit {
		n := &p.arena[p.work]
		p.work = noSplit
		n.gen.setDone()
		p.finish(n)
	}
	for _, w := range p.workers {
		w.abort.Store(true)
		for _, s := range w.states {
			s.abort.Store(true)
		}
	}
}

// clearAbortLocked re-arms the workers after an abort. Callers hold p.mu.
func (p *pool) clearAbortLocked() {
	for _, w := range p.workers {
		w.abort.Store(false)
	}
}

// prepare readies every state for a new search identified by clock.
// Callers hold p.mu and the pool must be idle.
func (p *pool) prepare(clock uint8) {
	for _, w := range p.workers {
		w.nodes.Store(0)
		w.stats = CutStatistics{}
		for _, s := range w.states {
			s.clock = clock
			s.history.reduce()
		}
	}
}

// clearHistory forgets killers and history, for a new game.
func (p *pool) clearHistory() {
	for _, w := range p.workers {
		for _, s := range w.states {
			s.history.clear()
			s.killers[board.White].clear()
			s.killers[board.Black].clear()
		}
	}
}

func (p *pool) nodes() uint64 {
	return sum(lo.Map(p.workers, func(w *worker, _ int) uint64 { return w.nodes.Load() }))
}

// stats sums the cut statistics. Only meaningful while the pool is idle.
func (p *pool) stats() CutStatistics {
	var total CutStatistics
	for _, w := range p.workers {
		total.add(&w.stats)
	}
	return total
}

// run is the loop of a helper worker: sleep until woken by a split, then
// help until no work is left.
func (w *worker) run(ctx context.Context) {
	p := w.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	for !p.stopping(ctx) {
		p.setIdle(w.index, true)
		w.cond.Wait()
		p.setIdle(w.index, false)
		w.processWork()
	}
	p.setIdle(w.index, false)
}

// processWork claims moves of the published split node until there are
// none left. Called with p.mu held; the lock is released while a move is
// searched.
func (w *worker) processWork() {
	p := w.pool
	for p.work != noSplit && !p.quit && !w.abort.Load() {
		idx := p.work
		n := &p.arena[idx]
		if p.cutoffInTree(n.parent) {
			p.work = noSplit
			n.cutoff.Store(true)
			n.gen.setDone()
		} else if m := n.gen.next(); m.IsEmpty() {
			p.work = noSplit
		} else {
			w.searchSplitMove(idx, n, m)
		}
		p.finish(n)
	}
}

func (w *worker) searchSplitMove(idx int32, n *splitNode, m board.Move) {
	p := w.pool
	st := w.states[w.stateTop]
	st.abort.Store(false)
	n.active |= 1 << uint(w.index)
	n.activeState[w.index] = int8(w.stateTop)
	w.stateTop++

	processed := n.processed
	n.processed++
	alpha := n.node.alpha
	ph := n.gen.currentPhase()
	best := n.bestValue
	prev := w.current
	w.current = idx

	p.mu.Unlock()
	st.seen.cloneFrom(&n.state.seen, n.node.ply)
	r := st.innerStep(&n.node, alpha, m, processed, ph, best)
	p.mu.Lock()

	w.current = prev
	n.active &^= 1 << uint(w.index)
	w.stateTop--

	if r.aborted() || w.abort.Load() || st.abort.Load() {
		return
	}
	pos := &n.pos
	if !r.pruned() && r.score > n.bestValue {
		n.bestValue = r.score
		if r.score > n.node.alpha {
			n.bestMove = m
			if r.score >= n.node.beta {
				if !m.IsCapture() {
					us := pos.SideToMove()
					st.killers[us].add(m, n.node.ply)
					st.history.recordCut(pos, m, processed)
					n.state.killers[us].add(m, n.node.ply)
					n.state.history.recordCut(pos, m, processed)
				}
				st.stats.BetaCutoffs++
				if p.work == idx {
					p.work = noSplit
				}
				n.cutoff.Store(true)
				for active := n.active; active != 0; active &= active - 1 {
					i := lsbIndex(active)
					p.workers[i].states[n.activeState[i]].abort.Store(true)
				}
				n.gen.setDone()
				return
			}
			n.node.alpha = r.score
		}
	}
	st.history.record(pos, m)
	n.state.history.record(pos, m)
}

// split offers the remaining moves of the node to idle workers and helps
// searching them until all are done. bestValue and bestMove are updated
// with the merged result. Nothing happens if no worker is idle or work is
// already published.
func (s *searchState) split(n *nodeParams, gen *moveGenerator, bestValue *int, bestMove *board.Move) {
	w := s.worker
	p := w.pool
	if p.idleCount.Load() == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if s.abort.Load() || w.abort.Load() {
		return
	}
	if p.work != noSplit || p.idleCount.Load() == 0 || w.splitTop >= splitsPerWorker {
		return
	}
	if p.cutoffInTree(w.current) {
		s.abort.Store(true)
		return
	}

	idx := int32(w.index*splitsPerWorker + w.splitTop)
	w.splitTop++
	sp := &p.arena[idx]
	sp.pos = *n.pos
	sp.cm = *n.cm
	sp.node = *n
	sp.node.pos = &sp.pos
	sp.node.cm = &sp.cm
	sp.gen = gen
	sp.owner = w
	sp.state = s
	sp.parent = w.current
	sp.processed = 1
	sp.bestValue = *bestValue
	sp.bestMove = *bestMove
	sp.active = 0
	sp.cutoff.Store(false)
	sp.done = false
	w.stats.Splits++

	p.work = idx
	for i, idle := range p.idle {
		if idle {
			p.workers[i].cond.Signal()
		}
	}

	for !sp.done {
		if w.stateTop < maxStates && p.publishedBelow(idx) {
			w.processWork()
			continue
		}
		w.cond.Wait()
	}

	*bestValue = sp.bestValue
	*bestMove = sp.bestMove
	w.splitTop--

	if p.cutoffInTree(w.current) {
		s.abort.Store(true)
	}
}

// publishedBelow reports whether the published work is idx or nested in
// it, so the owner of idx may help with it.
func (p *pool) publishedBelow(idx int32) bool {
	for pw := p.work; pw != noSplit; pw = p.arena[pw].parent {
		if pw == idx {
			return true
		}
	}
	return false
}
