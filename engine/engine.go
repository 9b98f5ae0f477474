package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"chesscore/board"
)

var ErrBusy = errors.New("engine: search already running")

// Info describes one principal variation reported while searching.
type Info struct {
	Line    int // 1-based MultiPV index
	Depth   int
	Score   int
	Nodes   uint64
	Elapsed time.Duration
	PV      []board.Move
}

// PVString formats the variation in coordinate notation.
func (i Info) PVString() string { return FormatPV(i.PV) }

// FormatPV joins moves in coordinate notation.
func FormatPV(pv []board.Move) string {
	return strings.Join(lo.Map(pv, func(m board.Move, _ int) string { return m.String() }), " ")
}

// Request describes one search.
type Request struct {
	Position board.Position
	// MaxDepth caps iterative deepening. Zero uses Config.MaxDepth.
	MaxDepth int
	// TimeLimit is the soft budget, Deadline the hard one. With neither set
	// the search runs until aborted or MaxDepth is reached.
	TimeLimit time.Duration
	Deadline  time.Duration
	// Start is when the clock started, defaults to now.
	Start time.Time
	// Clock identifies the search for transposition table aging. Zero
	// uses an internal counter.
	Clock int
	// History holds the hashes of the game positions before Position,
	// oldest first, for repetition detection.
	History []uint64
	// SearchMoves restricts the root moves when not empty.
	SearchMoves []board.Move

	// OnNewBestMove is called from the search goroutine whenever a root
	// line improves.
	OnNewBestMove func(Info)
	// ReportUpdatedOnly reports just the changed line instead of all
	// MultiPV lines.
	ReportUpdatedOnly bool
}

// Result is the outcome of a search.
type Result struct {
	BestMove      board.Move
	PonderMove    board.Move
	Forecast      int
	Depth         int
	Nodes         uint64
	UsedExtraTime time.Duration
	PV            []board.Move
	Stats         CutStatistics
}

type rootMove struct {
	move  board.Move
	score int
	depth int
	pv    []board.Move
}

// rootSearch is the state the master worker searches from. It is written
// by Calculate while the master is idle and read by the master while it
// is busy.
type rootSearch struct {
	pos       board.Position
	moves     []rootMove
	seen      seenPositions
	maxDepth  int
	multiPV   int
	start     time.Time
	onInfo    func(Info)
	onlyDelta bool
	idle      bool
}

// Engine searches positions with a pool of worker goroutines sharing one
// transposition table. Calculate must not be called concurrently.
type Engine struct {
	cfg  Config
	log  zerolog.Logger
	tt   *TransTable
	eval Evaluator
	pool *pool

	root     rootSearch
	aborting bool
	searches int
}

// NewEngine validates cfg and starts the worker goroutines.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:  cfg,
		log:  cfg.Logger,
		tt:   NewTransTable(cfg.HashMB),
		eval: cfg.Evaluator,
	}
	if e.eval == nil {
		e.eval = NewPSTEvaluator(cfg.PawnHashMB)
	}
	e.root = rootSearch{seen: newSeenPositions(), multiPV: cfg.MultiPV, idle: true}
	e.startPool(cfg.Threads)
	e.log.Info().
		Int("threads", cfg.Threads).
		Int("hash-mb", cfg.HashMB).
		Int("tt-entries", e.tt.Capacity()).
		Msg("engine-ready")
	return e, nil
}

func (e *Engine) startPool(threads int) {
	e.pool = newPool(threads, e.tt, e.eval, e.log)
	e.pool.start(context.Background(), e.runMaster)
}

// Close aborts any search and stops the workers.
func (e *Engine) Close() error {
	e.Abort()
	p := e.pool
	p.mu.Lock()
	e.waitIdleLocked()
	p.mu.Unlock()
	return p.stop()
}

// Abort stops the running search. Calculate returns the best result found
// so far.
func (e *Engine) Abort() {
	e.pool.mu.Lock()
	defer e.pool.mu.Unlock()
	e.abortLocked()
}

func (e *Engine) abortLocked() {
	e.aborting = true
	e.pool.abortLocked()
}

// ClearAbort re-arms the engine after Abort. Calculate does this itself
// when it starts.
func (e *Engine) ClearAbort() {
	e.pool.mu.Lock()
	defer e.pool.mu.Unlock()
	e.clearAbortLocked()
}

func (e *Engine) clearAbortLocked() {
	e.aborting = false
	e.pool.clearAbortLocked()
}

func (e *Engine) waitIdleLocked() {
	for !e.root.idle {
		e.pool.calcCond.Wait()
	}
}

// SetMultiPV sets the number of root lines kept exactly scored.
func (e *Engine) SetMultiPV(n int) error {
	if n < 1 || n > MaxMultiPV {
		return fmt.Errorf("%w: multipv %d outside 1..%d", ErrInvalidConfig, n, MaxMultiPV)
	}
	e.pool.mu.Lock()
	defer e.pool.mu.Unlock()
	e.cfg.MultiPV = n
	e.root.multiPV = n
	return nil
}

// SetThreads restarts the pool with n workers. It fails while searching.
func (e *Engine) SetThreads(n int) error {
	if n < 1 || n > MaxThreads {
		return fmt.Errorf("%w: threads %d outside 1..%d", ErrInvalidConfig, n, MaxThreads)
	}
	p := e.pool
	p.mu.Lock()
	busy := !e.root.idle
	p.mu.Unlock()
	if busy {
		return ErrBusy
	}
	if n == len(p.workers) {
		return nil
	}
	if err := p.stop(); err != nil {
		return err
	}
	e.cfg.Threads = n
	e.startPool(n)
	e.log.Info().Int("threads", n).Msg("threads-changed")
	return nil
}

// NewGame forgets everything learned from previous searches.
func (e *Engine) NewGame() error {
	p := e.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	if !e.root.idle {
		return ErrBusy
	}
	e.tt.Clear()
	if r, ok := e.eval.(interface{ Reset() }); ok {
		r.Reset()
	}
	p.clearHistory()
	e.searches = 0
	return nil
}

// TT exposes the shared transposition table.
func (e *Engine) TT() *TransTable { return e.tt }

// bookQueuePlies is how deep into the game positions missing from the
// book are queued for processing.
const bookQueuePlies = 20

// BookMove looks up pos in the configured book. history is the game from
// the book's start position. Early positions the book does not know are
// queued with Book.MarkForProcessing.
func (e *Engine) BookMove(pos *board.Position, history []board.Move) (BookEntry, error) {
	if e.cfg.Book == nil {
		return BookEntry{}, ErrNotInBook
	}
	entry, ok := pickBookMove(e.cfg.Book.Entries(pos, history), e.cfg.BookVariety)
	if !ok {
		if len(history) <= bookQueuePlies {
			if err := e.cfg.Book.MarkForProcessing(history); err != nil {
				e.log.Warn().Err(err).Int("plies", len(history)).Msg("book-queue-failed")
			} else {
				e.log.Debug().Int("plies", len(history)).Msg("book-queued")
			}
		}
		return BookEntry{}, ErrNotInBook
	}
	e.log.Debug().Stringer("move", entry.Move).Int("forecast", entry.Forecast).Msg("book-move")
	return entry, nil
}

func (e *Engine) nextClock(requested int) uint8 {
	e.searches++
	c := requested
	if c == 0 {
		c = e.searches
	}
	return uint8(c%255) + 1
}

// orderRootMoves sorts the legal root moves by a static guess, the hash
// move first. It also returns the best available score guess.
func (e *Engine) orderRootMoves(pos *board.Position, cm *board.CheckMap, searchMoves []board.Move) ([]rootMove, int) {
	legal := pos.GenerateInto(nil, board.GenAll, cm)
	if len(searchMoves) > 0 {
		legal = lo.Filter(legal, func(m board.Move, _ int) bool {
			return lo.ContainsBy(searchMoves, func(s board.Move) bool { return s.Same(m) })
		})
	}
	moves := lo.Map(legal, func(m board.Move, _ int) rootMove {
		score := e.eval.EvaluateMove(pos, m)
		if m.IsCapture() {
			score += board.MaterialValue[m.CapturedPiece().Type()].MG*1000000 -
				board.MaterialValue[m.MovedPiece().Type()].MG
		}
		return rootMove{move: m, score: score, pv: []board.Move{m}}
	})
	slices.SortStableFunc(moves, func(a, b rootMove) int { return cmp.Compare(b.score, a.score) })

	guess := noEval
	probe := e.tt.Lookup(pos.Hash(), 0, 0, 0, 0)
	if probe.Move != 0 {
		if i := slices.IndexFunc(moves, func(r rootMove) bool { return r.move.Compact() == probe.Move }); i >= 0 {
			first := moves[i]
			copy(moves[1:i+1], moves[:i])
			moves[0] = first
			if probe.Found() {
				guess = probe.Score
			}
		}
	}
	return moves, guess
}

// Calculate searches req.Position and returns the best move. A position
// without legal moves yields ErrNoMoves with the forecast set to a loss
// or a draw. Cancelling ctx aborts the search.
func (e *Engine) Calculate(ctx context.Context, req Request) (Result, error) {
	pos := req.Position
	start := req.Start
	if start.IsZero() {
		start = time.Now()
	}
	maxDepth := e.cfg.MaxDepth
	if req.MaxDepth > 0 {
		maxDepth = min(req.MaxDepth, MaxDepth)
	}

	cm := board.NewCheckMap(&pos)
	moves, guess := e.orderRootMoves(&pos, &cm, req.SearchMoves)
	var res Result
	if len(moves) == 0 {
		res.Forecast = ScoreDraw
		if cm.InCheck() {
			res.Forecast = ScoreLoss
		}
		return res, ErrNoMoves
	}

	if guess == noEval {
		guess = e.eval.Evaluate(&pos)
	}
	res.BestMove = moves[0].move
	res.Forecast = guess
	res.PV = moves[0].pv
	if req.OnNewBestMove != nil {
		req.OnNewBestMove(Info{Line: 1, Depth: 1, Score: guess, PV: moves[0].pv})
	}

	ponder := req.TimeLimit == 0 && req.Deadline == 0
	if len(moves) == 1 && !ponder {
		return res, nil
	}
	timeLimit := req.TimeLimit
	if timeLimit == 0 {
		timeLimit = req.Deadline
	}

	p := e.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	if !e.root.idle {
		return res, ErrBusy
	}
	e.clearAbortLocked()
	stop := context.AfterFunc(ctx, e.Abort)
	defer stop()

	clock := e.nextClock(req.Clock)
	p.prepare(clock)
	history := req.History
	if n := pos.HalfmoveClock(); len(history) > n {
		history = history[len(history)-n:]
	}
	e.root.pos = pos
	e.root.moves = moves
	e.root.seen.setHistory(history, pos.Hash())
	e.root.start = start
	e.root.onInfo = req.OnNewBestMove
	e.root.onlyDelta = req.ReportUpdatedOnly
	master := p.workers[0]

	e.log.Debug().
		Str("fen", pos.FEN()).
		Int("moves", len(moves)).
		Dur("limit", req.TimeLimit).
		Dur("deadline", req.Deadline).
		Msg("search-start")

	for depth := min(2, maxDepth); depth <= maxDepth && !e.aborting; depth++ {
		prevBest := e.root.moves[0].move
		e.root.maxDepth = depth
		e.root.idle = false
		master.cond.Signal()

		completed := true
		for !e.root.idle {
			if ponder {
				p.calcCond.Wait()
				continue
			}
			if elapsed := time.Since(start); elapsed < timeLimit {
				t := time.AfterFunc(timeLimit-elapsed, p.wakeCalc)
				p.calcCond.Wait()
				t.Stop()
			}
			if !e.aborting && time.Since(start) > timeLimit && !e.root.idle {
				e.log.Info().Int("depth", depth).Dur("limit", timeLimit).Msg("time-abort")
				e.abortLocked()
				e.waitIdleLocked()
				completed = false
				break
			}
		}
		if completed && !e.aborting {
			res.Depth = depth
		}

		best := &e.root.moves[0]
		if best.move != prevBest && !ponder && req.TimeLimit >= time.Second && depth > 4 &&
			time.Since(start) >= req.TimeLimit/10 {
			extra := req.TimeLimit / 3
			if req.Deadline > 0 && timeLimit+extra > req.Deadline {
				extra = req.Deadline - timeLimit
			}
			if extra > 0 {
				res.UsedExtraTime += extra
				timeLimit += extra
				e.log.Info().Dur("extra", extra).Int("depth", depth).Msg("pv-changed-extend")
			}
		}
		pushPVToTT(e.tt, &pos, best.pv, clock)

		e.log.Debug().
			Int("depth", depth).
			Int("score", best.score).
			Stringer("best", best.move).
			Uint64("nodes", p.nodes()).
			Dur("elapsed", time.Since(start)).
			Msg("depth-complete")

		if !ponder && req.TimeLimit > 0 && time.Since(start) > timeLimit*3/5 && depth < maxDepth && !e.aborting {
			e.log.Debug().Dur("elapsed", time.Since(start)).Msg("time-stop-deepening")
			break
		}
	}
	e.waitIdleLocked()

	best := e.root.moves[0]
	res.BestMove = best.move
	res.PV = best.pv
	if best.depth > 0 {
		res.Forecast = best.score
	}
	if len(best.pv) > 1 {
		res.PonderMove = best.pv[1]
	}
	res.Nodes = p.nodes()
	res.Stats = p.stats()

	e.log.Info().
		Stringer("best", res.BestMove).
		Int("score", res.Forecast).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Int("hashfull", e.tt.HashFull(clock)).
		Dur("elapsed", time.Since(start)).
		Msg("search-done")
	e.log.Debug().Object("cuts", res.Stats).Msg("search-stats")
	return res, nil
}

// runMaster is worker 0's loop: it runs one root iteration each time
// Calculate sets a depth.
func (e *Engine) runMaster(ctx context.Context, w *worker) {
	p := w.pool
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		for e.root.idle && !p.stopping(ctx) {
			w.cond.Wait()
		}
		if p.stopping(ctx) {
			e.root.idle = true
			p.calcCond.Broadcast()
			return
		}
		if len(e.root.moves) > 0 && !w.abort.Load() {
			w.stateTop = 1
			e.processRoot(w)
		}
		e.root.idle = true
		p.calcCond.Broadcast()
	}
}

// processRoot searches every root move once at root.maxDepth. Called with
// the pool lock held; it is released during the search.
func (e *Engine) processRoot(w *worker) {
	r := &e.root
	st := w.states[0]
	st.abort.Store(false)
	w.pool.mu.Unlock()
	defer w.pool.mu.Lock()

	rootAlpha, rootBeta := ScoreLoss, ScoreWin
	multiPV := min(len(r.moves), r.multiPV)
	depth := r.maxDepth*DepthFactor + MaxQDepth + 1

	for i := 0; i < len(r.moves) && !w.abort.Load(); i++ {
		d := &r.moves[i]
		child := r.pos.Apply(d.move)
		st.seen.copyFrom(&r.seen)

		value := ScoreDraw
		if !st.seen.isTwoFold(child.Hash(), 1) {
			st.seen.pushRoot(child.Hash())
			cm := board.NewCheckMap(&child)
			var ok bool
			value, ok = searchRootMove(st, &child, &cm, depth, d.score, rootAlpha, rootBeta, r.maxDepth > 4)
			if !ok {
				return
			}
		}

		if value <= rootAlpha || w.abort.Load() {
			continue
		}
		d.score = value
		d.depth = r.maxDepth
		d.pv = pvFromTT(e.tt, &r.pos, d.move, r.maxDepth)

		j := i
		for ; j > 0 && (j > multiPV || r.moves[j-1].score < value); j-- {
			r.moves[j], r.moves[j-1] = r.moves[j-1], r.moves[j]
		}
		e.report(j, multiPV)

		if i+1 >= multiPV {
			rootAlpha = r.moves[multiPV-1].score
		}
	}
}

// searchRootMove scores one root move: inside an aspiration window around
// its previous score while the MultiPV lines are not yet filled, else by a
// null window test against rootAlpha followed by a full search if it
// beats it.
func searchRootMove(st *searchState, child *board.Position, cm *board.CheckMap, depth, prev, rootAlpha, rootBeta int, aspirate bool) (int, bool) {
	search := func(alpha, beta int) result {
		return st.step(depth, 1, child, cm, -beta, -alpha, false, noEval, board.NoSquare).neg()
	}

	if rootAlpha == ScoreLoss && aspirate && prev != ScoreLoss {
		prev = clamp(prev, ScoreLoss, ScoreWin)
		window := 10
		alpha := max(ScoreLoss, prev-window)
		beta := min(ScoreWin, prev+window)
		for {
			r := search(alpha, beta)
			if r.aborted() {
				return 0, false
			}
			switch {
			case r.score >= beta:
				if ScoreWin-window > beta {
					beta += window
				} else {
					beta = ScoreWin
				}
			case r.score <= alpha:
				if ScoreLoss+window < alpha {
					alpha -= window
				} else {
					alpha = ScoreLoss
				}
			default:
				return r.score, true
			}
			window += window / 2
		}
	}

	if rootAlpha != ScoreLoss {
		r := search(rootAlpha, rootAlpha+1)
		if r.aborted() {
			return 0, false
		}
		if r.score <= rootAlpha {
			return r.score, true
		}
	}

	r := search(rootAlpha, rootBeta)
	if r.aborted() {
		return 0, false
	}
	return r.score, true
}

func (e *Engine) report(updated, multiPV int) {
	r := &e.root
	if r.onInfo == nil {
		return
	}
	nodes := e.pool.nodes()
	elapsed := time.Since(r.start)
	line := func(i int) {
		d := &r.moves[i]
		r.onInfo(Info{
			Line:    i + 1,
			Depth:   d.depth,
			Score:   d.score,
			Nodes:   nodes,
			Elapsed: elapsed,
			PV:      slices.Clone(d.pv),
		})
	}
	if r.onlyDelta {
		if updated < multiPV {
			line(updated)
		}
		return
	}
	for i := 0; i < multiPV; i++ {
		line(i)
	}
}

// pvFromTT follows hash moves from the position after first.
func pvFromTT(tt *TransTable, root *board.Position, first board.Move, maxDepth int) []board.Move {
	pv := []board.Move{first}
	pos := root.Apply(first)
	for len(pv) < maxDepth {
		probe := tt.Lookup(pos.Hash(), 0, 0, ScoreLoss, ScoreWin)
		if probe.Move == 0 {
			break
		}
		m := pos.FromCompact(probe.Move)
		if m.IsEmpty() {
			break
		}
		pv = append(pv, m)
		pos = pos.Apply(m)
	}
	return pv
}

// pushPVToTT stores the moves of pv so the next iteration searches them
// first even if their entries were overwritten.
func pushPVToTT(tt *TransTable, root *board.Position, pv []board.Move, clock uint8) {
	if len(pv) == 0 {
		return
	}
	pos := root.Apply(pv[0])
	for _, m := range pv[1:] {
		if tt.Lookup(pos.Hash(), 0, 0, ScoreLoss, ScoreWin).Move != m.Compact() {
			tt.StoreMove(pos.Hash(), m.Compact(), clock)
		}
		pos = pos.Apply(m)
	}
}
