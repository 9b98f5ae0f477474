package engine

import (
	"chesscore/board"
)

// leastValuableAttacker picks the cheapest piece of side c among attackers.
func leastValuableAttacker(pos *board.Position, c board.Color, attackers uint64) (uint64, board.PieceType) {
	for pt := board.PieceTypePawn; pt <= board.PieceTypeKing; pt++ {
		if match := pos.Pieces(c, pt) & attackers; match != 0 {
			return match & -match, pt
		}
	}
	return 0, board.PieceTypeNone
}

// SEE statically evaluates the exchange sequence started by m on its target
// square, with both sides always recapturing with their least valuable
// attacker. Sliders behind moved pieces join in as they are uncovered.
func SEE(pos *board.Position, m board.Move) int {
	var gain [32]int

	target := m.To()
	attacker := m.MovedPiece().Type()

	rq := pos.Pieces(board.White, board.PieceTypeRook) | pos.Pieces(board.White, board.PieceTypeQueen) |
		pos.Pieces(board.Black, board.PieceTypeRook) | pos.Pieces(board.Black, board.PieceTypeQueen)
	bq := pos.Pieces(board.White, board.PieceTypeBishop) | pos.Pieces(board.White, board.PieceTypeQueen) |
		pos.Pieces(board.Black, board.PieceTypeBishop) | pos.Pieces(board.Black, board.PieceTypeQueen)

	occ := pos.All() &^ (1 << uint(m.From()))
	if m.Flags() == board.FlagEnPassant {
		occ &^= 1 << uint(board.NewSquare(target.File(), m.From().Rank()))
	}
	attackers := pos.AttackersTo(target, occ) & occ

	gain[0] = board.MaterialValue[m.CapturedPiece().Type()].MG

	side := pos.SideToMove().Other()
	if attackers&pos.Occupancy(side) == 0 {
		return gain[0]
	}

	depth := 1
	for {
		gain[depth] = board.MaterialValue[attacker].MG - gain[depth-1]
		if gain[depth] < 0 && gain[depth-1] < 0 {
			break
		}

		var from uint64
		from, attacker = leastValuableAttacker(pos, side, attackers)

		depth++
		side = side.Other()

		occ ^= from
		attackers |= (board.RookAttacks(target, occ) & rq) | (board.BishopAttacks(target, occ) & bq)
		attackers &= occ

		if attackers&pos.Occupancy(side) == 0 {
			break
		}
		if attacker == board.PieceTypeKing {
			// The king captured into a defended square.
			gain[depth] = board.MaterialValue[board.PieceTypeKing].MG
			depth++
			break
		}
		if depth >= len(gain)-1 {
			break
		}
	}

	for depth--; depth > 0; depth-- {
		gain[depth-1] = -max(gain[depth], -gain[depth-1])
	}
	return gain[0]
}
