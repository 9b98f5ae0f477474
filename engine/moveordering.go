package engine

import (
	"chesscore/board"
)

type phase uint8

const (
	phaseHashMove phase = iota
	phaseCapturesGen
	phaseCaptures
	phaseKillers
	phaseNoncapturesGen
	phaseNoncaptures
	phaseChecksGen
	phaseChecks
	phaseDone
)

type scoredMove struct {
	move  board.Move
	score int
}

// moveList is a reusable buffer owned by one search state and ply.
type moveList struct {
	moves   []scoredMove
	scratch []board.Move
}

// isCaptureMove reports whether m is produced by board.GenCaptures.
func isCaptureMove(m board.Move) bool {
	return m.IsCapture() || m.PromotionPiece().Type() == board.PieceTypeQueen
}

// mvvLva orders captures by victim value, then by cheaper attacker.
func mvvLva(m board.Move) int {
	score := board.MaterialValue[m.CapturedPiece().Type()].MG*1000 - board.MaterialValue[m.MovedPiece().Type()].MG
	if promo := m.PromotionPiece(); promo != board.NoPiece {
		score += board.MaterialValue[promo.Type()].MG * 1000
	}
	return score
}

// moveGenerator hands out the moves of one node lazily: the hash move, then
// captures by MVV/LVA, then killers, then quiet moves by history. In
// quiescence it hands out the hash move, then captures (or all evasions
// when in check), then quiet checks on the first quiescence ply.
type moveGenerator struct {
	pos  *board.Position
	cm   *board.CheckMap
	hist *history
	list *moveList

	hashMove board.Move
	killers  [2]board.Move

	quiescence bool
	checks     bool
	pruneBad   bool

	phase  phase
	cursor int
	killer int
}

func (g *moveGenerator) init(pos *board.Position, cm *board.CheckMap, hist *history, list *moveList) {
	*g = moveGenerator{pos: pos, cm: cm, hist: hist, list: list}
}

// initSearch prepares a generator for a full-width node.
func (g *moveGenerator) initSearch(pos *board.Position, cm *board.CheckMap, hist *history, list *moveList, killers [2]board.Move, hashMove board.Move) {
	g.init(pos, cm, hist, list)
	g.killers = killers
	g.hashMove = hashMove
}

// initQuiescence prepares a generator for a quiescence node. checks adds
// quiet checking moves after the captures. pruneBad skips captures that
// lose material by SEE.
func (g *moveGenerator) initQuiescence(pos *board.Position, cm *board.CheckMap, hist *history, list *moveList, hashMove board.Move, checks, pruneBad bool) {
	g.init(pos, cm, hist, list)
	g.quiescence = true
	g.checks = checks && !cm.InCheck()
	g.pruneBad = pruneBad && !cm.InCheck()
	g.hashMove = hashMove
}

// currentPhase is the phase the last returned move came from.
func (g *moveGenerator) currentPhase() phase { return g.phase }

// setDone stops the generator. Further calls to next return NoMove.
func (g *moveGenerator) setDone() { g.phase = phaseDone }

func (g *moveGenerator) generate(mode board.GenMode) {
	l := g.list
	l.scratch = g.pos.GenerateInto(l.scratch[:0], mode, g.cm)
	l.moves = l.moves[:0]
	c := g.pos.SideToMove()
	for _, m := range l.scratch {
		if !g.hashMove.IsEmpty() && m.Same(g.hashMove) {
			continue
		}
		var score int
		switch {
		case isCaptureMove(m):
			score = 1<<30 + mvvLva(m)
		case g.isKiller(m):
			continue
		default:
			score = g.hist.value(c, m)
		}
		l.moves = append(l.moves, scoredMove{m, score})
	}
	g.cursor = 0
}

func (g *moveGenerator) isKiller(m board.Move) bool {
	if g.quiescence {
		return false
	}
	return (!g.killers[0].IsEmpty() && g.killers[0].Same(m)) || (!g.killers[1].IsEmpty() && g.killers[1].Same(m))
}

// pick selects the best scored move left in the list.
func (g *moveGenerator) pick() board.Move {
	moves := g.list.moves
	for g.cursor < len(moves) {
		best := g.cursor
		for i := best + 1; i < len(moves); i++ {
			if moves[i].score > moves[best].score {
				best = i
			}
		}
		moves[g.cursor], moves[best] = moves[best], moves[g.cursor]
		m := moves[g.cursor].move
		g.cursor++
		if g.pruneBad && m.IsCapture() && SEE(g.pos, m) < 0 {
			continue
		}
		return m
	}
	return board.NoMove
}

// next returns the next move or NoMove once exhausted.
func (g *moveGenerator) next() board.Move {
	for {
		switch g.phase {
		case phaseHashMove:
			g.phase = phaseCapturesGen
			if g.hashMove.IsEmpty() {
				continue
			}
			if m := g.resolve(g.hashMove); !m.IsEmpty() {
				g.hashMove = m
				return m
			}
			g.hashMove = board.NoMove

		case phaseCapturesGen:
			mode := board.GenCaptures
			if g.quiescence && g.cm.InCheck() {
				mode = board.GenAll
			}
			g.generate(mode)
			g.phase = phaseCaptures

		case phaseCaptures:
			if m := g.pick(); !m.IsEmpty() {
				return m
			}
			switch {
			case !g.quiescence:
				g.phase = phaseKillers
			case g.checks:
				g.phase = phaseChecksGen
			default:
				g.phase = phaseDone
			}

		case phaseKillers:
			for g.killer < len(g.killers) {
				k := g.killers[g.killer]
				g.killer++
				if k.IsEmpty() || (!g.hashMove.IsEmpty() && k.Same(g.hashMove)) {
					continue
				}
				if m := g.resolve(k); !m.IsEmpty() && !isCaptureMove(m) {
					return m
				}
			}
			g.phase = phaseNoncapturesGen

		case phaseNoncapturesGen:
			g.generate(board.GenNoncaptures)
			g.phase = phaseNoncaptures

		case phaseNoncaptures:
			if m := g.pick(); !m.IsEmpty() {
				return m
			}
			g.phase = phaseDone

		case phaseChecksGen:
			g.generate(board.GenPseudoCheck)
			g.phase = phaseChecks

		case phaseChecks:
			if m := g.pick(); !m.IsEmpty() {
				return m
			}
			g.phase = phaseDone

		default:
			return board.NoMove
		}
	}
}

// resolve validates a move taken from the hash table or killer slots
// against the current position.
func (g *moveGenerator) resolve(m board.Move) board.Move {
	full := m
	if !g.pos.IsLegalWith(m, g.cm) {
		if full = g.pos.FromCompactWith(m.Compact(), g.cm); full.IsEmpty() {
			return board.NoMove
		}
	}
	if g.quiescence && !g.cm.InCheck() && !full.IsCapture() {
		return board.NoMove
	}
	return full
}
