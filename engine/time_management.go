package engine

import (
	"time"

	"github.com/rs/zerolog"

	"chesscore/board"
)

const (
	defaultOverhead = 50 * time.Millisecond
	minMoveTime     = 10 * time.Millisecond
)

// TimeControl turns the game clock into per-move budgets. Time left
// unused on a move is partly carried to the next one as a bonus, and the
// overhead grows when searches are seen to overrun.
type TimeControl struct {
	// Remaining is the clock time per side, zero when untimed.
	Remaining [2]time.Duration
	Increment [2]time.Duration
	MovesToGo int
	// MoveTime fixes the time for every move and overrides the clock.
	MoveTime time.Duration

	// CommunicationOverhead is added to the internal overhead for latency
	// outside the engine.
	CommunicationOverhead time.Duration

	Logger zerolog.Logger

	overhead time.Duration
	bonus    time.Duration
	limit    time.Duration
	start    time.Time
	side     board.Color
}

// NewTimeControl returns an untimed control.
func NewTimeControl() *TimeControl {
	return &TimeControl{overhead: defaultOverhead, Logger: zerolog.Nop()}
}

// Reset forgets the bonus, and with all also the clock settings.
func (tc *TimeControl) Reset(all bool) {
	tc.bonus = 0
	if all {
		tc.Remaining = [2]time.Duration{}
		tc.Increment = [2]time.Duration{}
		tc.MoveTime = 0
		tc.MovesToGo = 0
	}
}

// Start marks the moment side's clock started running.
func (tc *TimeControl) Start(t time.Time) { tc.start = t }

// Timed reports whether side plays with a clock or a fixed move time.
func (tc *TimeControl) Timed(side board.Color) bool {
	return tc.MoveTime > 0 || tc.Remaining[side] > 0
}

// Budget returns the soft limit and the hard deadline for side's next
// move, halfmoves into the game. A zero limit means no soft limit; both
// zero means the search is untimed.
func (tc *TimeControl) Budget(side board.Color, halfmoves int) (limit, deadline time.Duration) {
	tc.side = side
	overhead := tc.overhead + tc.CommunicationOverhead
	switch {
	case tc.MoveTime > 0:
		tc.limit = 0
		return 0, max(tc.MoveTime-overhead, minMoveTime)
	case tc.Remaining[side] == 0:
		tc.limit = 0
		return 0, 0
	}

	remaining := tc.Remaining[side]
	if tc.bonus > remaining {
		tc.bonus = 0
	}

	moves := max(20, (82-halfmoves)/2)
	if tc.MovesToGo > 0 {
		period := tc.MovesToGo * 2
		if left := (period - halfmoves%period + 2) / 2; left < moves {
			moves = left
		}
	}

	tc.limit = (remaining-tc.bonus)/time.Duration(moves) + tc.bonus
	if inc := tc.Increment[side]; inc > 0 && remaining > tc.limit+inc {
		tc.limit += inc
	}
	tc.limit = max(tc.limit-overhead, minMoveTime)
	deadline = max(remaining-overhead, minMoveTime)

	tc.Logger.Debug().
		Dur("limit", tc.limit).
		Dur("deadline", deadline).
		Int("moves-left", moves).
		Dur("bonus", tc.bonus).
		Msg("time-budget")
	return tc.limit, deadline
}

// AfterMove books the time spent since Start. usedExtra is the extension
// the search granted itself, so only time beyond it counts as overhead.
func (tc *TimeControl) AfterMove(usedExtra time.Duration, addIncrement, keepBonus bool) {
	elapsed := time.Since(tc.start)

	switch {
	case !keepBonus || tc.limit == 0 || elapsed < 0:
		tc.bonus = 0
	case tc.limit > elapsed:
		tc.bonus = (tc.limit - elapsed) / 2
	default:
		tc.bonus = 0
		if tc.limit+usedExtra < elapsed {
			if actual := elapsed - tc.limit - usedExtra; actual > tc.overhead {
				tc.Logger.Info().
					Dur("old", tc.overhead).
					Dur("new", actual).
					Msg("overhead-raised")
				tc.overhead = actual
			}
		}
	}

	if tc.Remaining[tc.side] == 0 {
		return
	}
	if addIncrement {
		tc.Remaining[tc.side] += tc.Increment[tc.side]
	}
	if elapsed > 0 {
		tc.Remaining[tc.side] = max(tc.Remaining[tc.side]-elapsed, time.Millisecond)
	}
}

// Overhead is the current internal overhead estimate.
func (tc *TimeControl) Overhead() time.Duration { return tc.overhead }
