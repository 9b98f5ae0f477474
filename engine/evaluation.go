package engine

import (
	"chesscore/board"
)

// Evaluator scores positions for the search. Implementations must be safe
// for concurrent use by all search threads.
type Evaluator interface {
	// Evaluate returns the static score from the side to move's view.
	Evaluate(pos *board.Position) int
	// EvaluateMove estimates the static gain of m for the side to move.
	// It only orders root moves.
	EvaluateMove(pos *board.Position, m board.Move) int
}

// PSTEvaluator is the default evaluator: material, piece-square tables,
// mobility, a few piece terms and pawn structure, tapered by game phase.
// Pawn structure is cached by pawn hash.
type PSTEvaluator struct {
	pawns *PawnCache
}

// NewPSTEvaluator creates an evaluator with a pawn cache of pawnHashMB.
func NewPSTEvaluator(pawnHashMB int) *PSTEvaluator {
	return &PSTEvaluator{pawns: NewPawnCache(pawnHashMB)}
}

// Reset drops cached pawn structures.
func (e *PSTEvaluator) Reset() { e.pawns.Clear() }

func relative(c board.Color, sq board.Square) board.Square {
	if c == board.Black {
		return sq ^ 56
	}
	return sq
}

func pieceSquare(c board.Color, pt board.PieceType, sq board.Square) board.Score {
	i := relative(c, sq)
	return board.Score{
		MG: pieceValueMG[pt] + psqtMG[pt][i],
		EG: pieceValueEG[pt] + psqtEG[pt][i],
	}
}

func gamePhase(pos *board.Position) int {
	phase := 0
	for c := board.White; c <= board.Black; c++ {
		for pt := board.PieceTypeKnight; pt <= board.PieceTypeQueen; pt++ {
			phase += phaseWeight[pt] * board.PopCount(pos.Pieces(c, pt))
		}
	}
	return min(phase, totalPhase)
}

func (e *PSTEvaluator) Evaluate(pos *board.Position) int {
	var side [2]board.Score
	occ := pos.All()

	for c := board.White; c <= board.Black; c++ {
		them := c.Other()
		ownPawns := pos.Pieces(c, board.PieceTypePawn)
		allPawns := ownPawns | pos.Pieces(them, board.PieceTypePawn)
		safe := ^pos.Occupancy(c) &^ pos.PawnControl(them)
		s := &side[c]

		for pt := board.PieceTypePawn; pt <= board.PieceTypeKing; pt++ {
			for bb := pos.Pieces(c, pt); bb != 0; bb &= bb - 1 {
				sq := board.Square(lsbIndex(bb))
				*s = s.Add(pieceSquare(c, pt, sq))

				var attacks uint64
				switch pt {
				case board.PieceTypeKnight:
					attacks = board.KnightAttacks(sq)
					if knightOutpost(pos, c, sq) {
						*s = s.Add(board.Score{MG: knightOutpostMG, EG: knightOutpostEG})
					}
				case board.PieceTypeBishop:
					attacks = board.BishopAttacks(sq, occ)
				case board.PieceTypeRook:
					attacks = board.RookAttacks(sq, occ)
					file := board.FileMask(sq.File())
					if file&allPawns == 0 {
						s.MG += rookOpenFileMG
					} else if file&ownPawns == 0 {
						s.MG += rookSemiOpenMG
					}
					if relative(c, sq).Rank() == 6 {
						s.EG += rookSeventhEG
					}
				case board.PieceTypeQueen:
					attacks = board.QueenAttacks(sq, occ)
				case board.PieceTypeKing:
					file := board.FileMask(sq.File())
					if file&allPawns == 0 {
						s.MG -= kingOpenFileMG
					} else if file&ownPawns == 0 {
						s.MG -= kingSemiOpenMG
					}
				}
				if attacks != 0 {
					n := board.PopCount(attacks & safe)
					s.MG += mobilityMG[pt] * n
					s.EG += mobilityEG[pt] * n
				}
			}
		}

		if board.PopCount(pos.Pieces(c, board.PieceTypeBishop)) >= 2 {
			*s = s.Add(board.Score{MG: bishopPairMG, EG: bishopPairEG})
		}
		rooks := pos.Pieces(c, board.PieceTypeRook)
		for f := 0; f < 8; f++ {
			if board.PopCount(rooks&board.FileMask(f)) >= 2 {
				s.MG += stackedRooksMG
			}
		}
	}

	total := side[board.White].Sub(side[board.Black]).Add(e.pawnStructure(pos).score)
	if pos.SideToMove() == board.White {
		total = total.Add(board.Score{MG: tempoBonus, EG: tempoBonus})
	} else {
		total = total.Sub(board.Score{MG: tempoBonus, EG: tempoBonus})
	}

	score := total.Taper(gamePhase(pos), totalPhase)
	if pos.SideToMove() == board.Black {
		score = -score
	}
	return score
}

// knightOutpost reports a knight on the opponent's half, defended by a pawn
// and out of reach of enemy pawns.
func knightOutpost(pos *board.Position, c board.Color, sq board.Square) bool {
	r := relative(c, sq).Rank()
	if r < 3 || r > 5 {
		return false
	}
	if pos.PawnControl(c)&(1<<uint(sq)) == 0 {
		return false
	}
	front := board.PassedMask(c, sq) &^ board.FileMask(sq.File())
	return front&pos.Pieces(c.Other(), board.PieceTypePawn) == 0
}

func (e *PSTEvaluator) pawnStructure(pos *board.Position) pawnEntry {
	key := pos.PawnHash()
	if entry, ok := e.pawns.Probe(key); ok {
		return entry
	}
	entry := evaluatePawns(pos)
	entry.key = key
	e.pawns.Store(entry)
	return entry
}

// evaluatePawns scores doubled, isolated, passed, connected, phalanx and
// backward pawns. The result is white minus black.
func evaluatePawns(pos *board.Position) pawnEntry {
	var entry pawnEntry
	var side [2]board.Score

	for c := board.White; c <= board.Black; c++ {
		them := c.Other()
		own := pos.Pieces(c, board.PieceTypePawn)
		enemy := pos.Pieces(them, board.PieceTypePawn)
		s := &side[c]

		for f := 0; f < 8; f++ {
			if n := board.PopCount(own & board.FileMask(f)); n > 1 {
				s.MG -= doubledPawnMG * (n - 1)
				s.EG -= doubledPawnEG * (n - 1)
			}
		}

		for bb := own; bb != 0; bb &= bb - 1 {
			sq := board.Square(lsbIndex(bb))
			f := sq.File()
			ahead := board.PassedMask(c, sq)
			adjacent := board.AdjacentFiles(f)

			isolated := adjacent&own == 0
			if isolated {
				s.MG -= isolatedPawnMG
				s.EG -= isolatedPawnEG
			}

			if ahead&enemy == 0 && ahead&board.FileMask(f)&own == 0 {
				entry.passed[c] |= 1 << uint(sq)
				i := relative(c, sq)
				s.MG += passedPawnMG[i]
				s.EG += passedPawnEG[i]
			}

			if pos.PawnControl(c)&(1<<uint(sq)) != 0 {
				s.MG += connectedPawnMG
				s.EG += connectedPawnEG
			}
			if adjacent&rankMask(sq.Rank())&own != 0 {
				s.MG += phalanxPawnMG
				s.EG += phalanxPawnEG
			}

			if !isolated && adjacent&^ahead&own == 0 {
				stop := sq + 8
				if c == board.Black {
					stop = sq - 8
				}
				if stop >= 0 && stop < 64 && pos.PawnControl(them)&(1<<uint(stop)) != 0 {
					s.MG -= backwardPawnMG
					s.EG -= backwardPawnEG
				}
			}
		}
	}

	entry.score = side[board.White].Sub(side[board.Black])
	return entry
}

func rankMask(r int) uint64 { return board.Rank1 << (8 * uint(r)) }

// EvaluateMove returns the tapered material and square-table delta of m.
func (e *PSTEvaluator) EvaluateMove(pos *board.Position, m board.Move) int {
	us := pos.SideToMove()
	them := us.Other()
	moved := m.MovedPiece().Type()
	from, to := m.From(), m.To()

	delta := pieceSquare(us, moved, to).Sub(pieceSquare(us, moved, from))
	if promo := m.PromotionPiece(); promo != board.NoPiece {
		delta = pieceSquare(us, promo.Type(), to).Sub(pieceSquare(us, moved, from))
	}
	if captured := m.CapturedPiece(); captured != board.NoPiece {
		capSq := to
		if m.Flags() == board.FlagEnPassant {
			capSq = board.NewSquare(to.File(), from.Rank())
		}
		delta = delta.Add(pieceSquare(them, captured.Type(), capSq))
	}
	if m.IsCastle() {
		rookFrom, rookTo := board.NewSquare(7, from.Rank()), board.NewSquare(5, from.Rank())
		if to.File() == 2 {
			rookFrom, rookTo = board.NewSquare(0, from.Rank()), board.NewSquare(3, from.Rank())
		}
		delta = delta.Add(pieceSquare(us, board.PieceTypeRook, rookTo)).Sub(pieceSquare(us, board.PieceTypeRook, rookFrom))
	}
	return delta.Taper(gamePhase(pos), totalPhase)
}
