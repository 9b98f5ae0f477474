package engine

import (
	"sync/atomic"

	"chesscore/board"
)

// searchState is one independent line of search. A worker owns several so
// it can help at split points below the one it is already working in.
type searchState struct {
	worker *worker
	tt     *TransTable
	eval   Evaluator
	clock  uint8
	stats  *CutStatistics

	// abort is set by the pool when this line's result is no longer
	// needed.
	abort atomic.Bool

	seen    seenPositions
	killers [2]killerTable
	history history
	lists   [MaxPly + MaxQDepth + 2]moveList
}

func newSearchState(w *worker, tt *TransTable, eval Evaluator) *searchState {
	return &searchState{
		worker: w,
		tt:     tt,
		eval:   eval,
		stats:  &w.stats,
		seen:   newSeenPositions(),
	}
}

// aborted reports whether this line must unwind: either the state or its
// worker was aborted, or a split node enclosing the worker's current
// position already failed high.
func (s *searchState) aborted() bool {
	if s.abort.Load() || s.worker.abort.Load() {
		return true
	}
	if s.worker.cutoffAbove() {
		s.abort.Store(true)
		return true
	}
	return false
}

// fiftyMoveDraw scores positions where the fifty move rule applies. A
// checkmate delivered on the hundredth half move still counts.
func fiftyMoveDraw(pos *board.Position, cm *board.CheckMap, ply int) (int, bool) {
	if pos.HalfmoveClock() < 100 {
		return 0, false
	}
	if cm.InCheck() && !pos.HasLegalMoves(cm) {
		return ScoreLoss + ply, true
	}
	return ScoreDraw, true
}

// relativeSeventh is the rank from which a pawn of side c promotes next.
func relativeSeventh(c board.Color) uint64 {
	if c == board.White {
		return board.Rank7
	}
	return board.Rank2
}

// step searches pos to depth (in DepthFactor units) within [alpha, beta].
// fullEval passes down a known static evaluation, lastCapture the target
// square of the move leading here if it captured.
func (s *searchState) step(depth, ply int, pos *board.Position, cm *board.CheckMap, alpha, beta int, lastWasNull bool, fullEval int, lastCapture board.Square) result {
	if depth < cutoff || ply >= MaxPly {
		return s.quiescence(ply, MaxQDepth, pos, cm, alpha, beta, noEval)
	}
	if s.aborted() {
		return abortedResult
	}
	s.worker.nodes.Add(1)

	if v, ok := fiftyMoveDraw(pos, cm, ply); ok {
		return valid(v)
	}
	if pos.IsInsufficientMaterial() {
		return valid(ScoreDraw)
	}

	pvNode := alpha+1 != beta
	oldAlpha := alpha

	// Mate distance pruning.
	beta = min(ScoreWin-ply-1, beta)
	alpha = max(ScoreLoss+ply, alpha)
	if alpha >= beta {
		return valid(alpha)
	}

	hash := pos.Hash()
	probe := s.tt.Lookup(hash, depth, ply, alpha, beta)
	if probe.Found() && (probe.Type == NodeExact || !pvNode) {
		s.stats.TTCutoffs++
		return valid(probe.Score)
	}
	if fullEval == noEval {
		fullEval = probe.Eval
	}
	ttMove := probe.Move

	us := pos.SideToMove()
	inCheck := cm.InCheck()
	pliesRemaining := (depth - cutoff) / DepthFactor
	betaIsMate := beta >= ScoreWinThreshold || beta <= ScoreLossThreshold

	if !pvNode && !inCheck && fullEval == noEval {
		fullEval = s.eval.Evaluate(pos)
		if ttMove == 0 {
			s.tt.StoreEval(hash, fullEval, s.clock)
		}
	}

	// Razoring: far below beta close to the horizon, trust quiescence.
	if !pvNode && !inCheck && pliesRemaining < len(razorMargins) && ttMove == 0 && !betaIsMate &&
		fullEval+razorMargins[pliesRemaining] < beta &&
		pos.Pieces(us, board.PieceTypePawn)&relativeSeventh(us) == 0 {
		newBeta := beta - razorMargins[pliesRemaining]
		r := s.quiescence(ply, MaxQDepth, pos, cm, newBeta-1, newBeta, fullEval)
		if r.aborted() {
			return r
		}
		if r.score < newBeta {
			s.stats.RazoringCutoffs++
			return r
		}
	}

	// Null move pruning, verified at high depths.
	if !pvNode && !inCheck && !lastWasNull && !betaIsMate && fullEval >= beta &&
		depth >= cutoff+DepthFactor && pos.NonPawnMaterial(us) != 0 {
		newDepth := depth - (nullReduction+1)*DepthFactor
		child := pos.ApplyNull()
		childCM := board.NewCheckMap(&child)
		barrier := s.seen.enterNull(child.Hash(), ply)
		r := s.step(newDepth, ply+1, &child, &childCM, -beta, -beta+1, true, noEval, board.NoSquare).neg()
		s.seen.leaveNull(barrier)
		if r.aborted() {
			return r
		}
		if r.score >= beta {
			value := r.score
			if value > ScoreWinThreshold {
				value = beta
			}
			if depth <= nullVerifyDepth {
				s.stats.NullMoveCutoffs++
				return valid(value)
			}
			v := s.step(newDepth, ply, pos, cm, alpha, beta, true, fullEval, lastCapture)
			if v.aborted() {
				return v
			}
			if v.score >= beta {
				s.stats.NullMoveCutoffs++
				return valid(value)
			}
			s.stats.NullVerifyFails++
		}
	}

	// Internal iterative deepening to find a move to try first.
	if ttMove == 0 && depth > DepthFactor*4+cutoff {
		r := s.step(depth-2*DepthFactor, ply, pos, cm, alpha, beta, true, fullEval, lastCapture)
		if r.aborted() {
			return r
		}
		ttMove = s.tt.Lookup(hash, depth, ply, alpha, beta).Move
	}

	var hashMove board.Move
	if ttMove != 0 {
		hashMove = pos.FromCompactWith(ttMove, cm)
	}
	var gen moveGenerator
	gen.initSearch(pos, cm, &s.history, &s.lists[ply], s.killers[us].get(ply), hashMove)

	node := nodeParams{
		depth:       depth,
		ply:         ply,
		pos:         pos,
		cm:          cm,
		beta:        beta,
		fullEval:    fullEval,
		lastCapture: lastCapture,
		pvNode:      pvNode,
	}
	bestValue := ScoreLoss
	var bestMove board.Move
	processed := 0

	for m := gen.next(); !m.IsEmpty(); m = gen.next() {
		r := s.innerStep(&node, alpha, m, processed, gen.currentPhase(), bestValue)
		if r.aborted() {
			return r
		}
		processed++

		if !r.pruned() && r.score > bestValue {
			bestValue = r.score
			if r.score > alpha {
				bestMove = m
				if r.score >= beta {
					if !m.IsCapture() {
						s.killers[us].add(m, ply)
						s.history.recordCut(pos, m, processed)
					}
					s.stats.BetaCutoffs++
					if processed == 1 {
						s.stats.FirstMoveCutoffs++
					}
					break
				}
				alpha = r.score
			}
		}
		s.history.record(pos, m)

		if processed == 1 && pliesRemaining > 4 {
			node.alpha = alpha
			s.split(&node, &gen, &bestValue, &bestMove)
			if s.aborted() {
				return abortedResult
			}
		}
	}

	if processed == 0 {
		if inCheck {
			return valid(ScoreLoss + ply)
		}
		return valid(ScoreDraw)
	}
	if bestValue == ScoreLoss {
		bestValue = oldAlpha
	}
	if s.aborted() {
		return abortedResult
	}
	s.tt.Store(hash, depth, ply, bestValue, oldAlpha, beta, bestMove.Compact(), s.clock, fullEval)
	return valid(bestValue)
}

// nodeParams describes a full width node whose moves are being searched,
// either by its owner alone or shared through a split point.
type nodeParams struct {
	depth, ply  int
	pos         *board.Position
	cm          *board.CheckMap
	alpha, beta int
	fullEval    int
	lastCapture board.Square
	pvNode      bool
}

// innerStep searches a single move of node with the current alpha. It
// applies extensions, futility pruning and late move reductions.
func (s *searchState) innerStep(n *nodeParams, alpha int, m board.Move, processed int, ph phase, bestValue int) result {
	pos := n.pos
	ply := n.ply
	child := pos.Apply(m)
	if s.seen.isTwoFold(child.Hash(), ply) {
		return valid(ScoreDraw)
	}
	s.seen.set(child.Hash(), ply)
	childCM := board.NewCheckMap(&child)

	newDepth := n.depth - DepthFactor
	extended := false
	dangerous := false

	if childCM.InCheck() {
		newDepth += checkExtension
		extended = true
	}
	if m.MovedPiece().Type() == board.PieceTypePawn {
		us := pos.SideToMove()
		to := m.To()
		if to < 16 || to >= 48 ||
			board.PassedMask(us, to)&pos.Pieces(us.Other(), board.PieceTypePawn) == 0 {
			dangerous = true
			if !extended && n.pvNode {
				newDepth += pawnPushExtension
				extended = true
			}
		}
	}
	if !extended && n.pvNode && m.IsCapture() && m.To() == n.lastCapture && SEE(pos, m) >= 0 {
		newDepth += recaptureExtension
		extended = true
	}

	newCapture := board.NoSquare
	if m.IsCapture() {
		newCapture = m.To()
	}

	var r result
	if processed > 0 || !n.pvNode {
		if !extended && !n.pvNode && ph == phaseNoncaptures && !n.cm.InCheck() && !dangerous &&
			(bestValue == ScoreLoss || bestValue > ScoreLossThreshold) {
			pr := (n.depth - cutoff) / DepthFactor
			if pr < len(futilityMargins) && n.fullEval+futilityMargins[pr] <= alpha {
				s.stats.FutilityPrunes++
				return prunedResult
			}
			if newDepth < cutoff+DepthFactor && SEE(pos, m) < 0 {
				s.stats.FutilityPrunes++
				return prunedResult
			}
		}

		full := true
		minProcessed := 3
		if n.pvNode {
			minProcessed = 5
		}
		if !extended && processed >= minProcessed && ph >= phaseNoncaptures && !n.cm.InCheck() && n.depth >= lmrMinDepth {
			reduction := DepthFactor * 2
			if n.pvNode {
				reduction = DepthFactor
			}
			reduction += (processed - 3) / 5
			s.stats.LateMoveSearches++
			r = s.step(newDepth-reduction, ply+1, &child, &childCM, -alpha-1, -alpha, false, noEval, board.NoSquare).neg()
			if r.aborted() {
				return r
			}
			full = r.score > alpha
			if full {
				s.stats.LateMoveRetries++
			}
		}
		if full {
			r = s.step(newDepth, ply+1, &child, &childCM, -alpha-1, -alpha, false, noEval, newCapture).neg()
			if r.aborted() {
				return r
			}
		}
	}

	if n.pvNode && (processed == 0 || (r.score > alpha && r.score < n.beta)) {
		r = s.step(newDepth, ply+1, &child, &childCM, -n.beta, -alpha, false, noEval, newCapture).neg()
	}
	return r
}

// quiescence resolves captures (and evasions, and quiet checks on its first
// ply) until the position is quiet. depth counts the remaining quiescence
// plies.
func (s *searchState) quiescence(ply, depth int, pos *board.Position, cm *board.CheckMap, alpha, beta, fullEval int) result {
	if s.aborted() {
		return abortedResult
	}
	s.worker.nodes.Add(1)

	if v, ok := fiftyMoveDraw(pos, cm, ply); ok {
		return valid(v)
	}
	if pos.IsInsufficientMaterial() {
		return valid(ScoreDraw)
	}
	if depth == 0 {
		return valid(ScoreDraw)
	}

	pvNode := alpha+1 != beta
	doChecks := depth >= MaxQDepth
	ttDepth := 1
	if doChecks {
		ttDepth = 2
	}

	hash := pos.Hash()
	probe := s.tt.Lookup(hash, ttDepth, ply, alpha, beta)
	if fullEval == noEval {
		fullEval = probe.Eval
	}
	if (!pvNode && probe.Found()) || probe.Type == NodeExact {
		s.stats.TTCutoffs++
		return valid(probe.Score)
	}

	inCheck := cm.InCheck()
	oldAlpha := alpha
	if !inCheck {
		if fullEval == noEval {
			fullEval = s.eval.Evaluate(pos)
		}
		if fullEval > alpha {
			if fullEval >= beta {
				s.stats.QStandPatCutoffs++
				if probe.Move == 0 && !s.aborted() {
					s.tt.Store(hash, ttDepth, ply, fullEval, alpha, beta, 0, s.clock, fullEval)
				}
				return valid(fullEval)
			}
			alpha = fullEval
		}
	}

	var hashMove board.Move
	if probe.Move != 0 {
		if hm := pos.FromCompactWith(probe.Move, cm); inCheck || doChecks || hm.IsCapture() {
			hashMove = hm
		}
	}
	var gen moveGenerator
	gen.initQuiescence(pos, cm, &s.history, &s.lists[ply], hashMove, doChecks, !pvNode)

	bestValue := fullEval
	if inCheck {
		bestValue = ScoreLoss
	}
	var bestMove board.Move

	for m := gen.next(); !m.IsEmpty(); m = gen.next() {
		child := pos.Apply(m)
		childCM := board.NewCheckMap(&child)
		givesCheck := childCM.InCheck()
		if !m.IsCapture() && !inCheck && !givesCheck {
			continue
		}

		if !pvNode && !inCheck && !givesCheck {
			to := m.To()
			if m.MovedPiece().Type() != board.PieceTypePawn || (to >= 16 && to < 48) {
				v := fullEval + board.MaterialValue[m.CapturedPiece().Type()].MG + deltaMargin
				if v <= alpha {
					s.stats.QDeltaPrunes++
					if v > bestValue {
						bestValue = v
					}
					continue
				}
			}
		}

		r := s.quiescence(ply+1, depth-1, &child, &childCM, -beta, -alpha, noEval).neg()
		if r.aborted() {
			return r
		}
		if r.score > bestValue {
			bestValue = r.score
			if r.score > alpha {
				bestMove = m
				if r.score >= beta {
					s.stats.QBetaCutoffs++
					break
				}
				alpha = r.score
			}
		}
	}

	if bestValue == ScoreLoss && inCheck {
		return valid(ScoreLoss + ply)
	}
	if s.aborted() {
		return abortedResult
	}
	s.tt.Store(hash, ttDepth, ply, bestValue, oldAlpha, beta, bestMove.Compact(), s.clock, fullEval)
	return valid(bestValue)
}
