package board

// ==========================
// Attack queries
// ==========================

// AttackersTo returns every piece of either color attacking sq under occ.
func (p *Position) AttackersTo(sq Square, occ uint64) uint64 {
	rq := p.byType[White][PieceTypeRook] | p.byType[White][PieceTypeQueen] |
		p.byType[Black][PieceTypeRook] | p.byType[Black][PieceTypeQueen]
	bq := p.byType[White][PieceTypeBishop] | p.byType[White][PieceTypeQueen] |
		p.byType[Black][PieceTypeBishop] | p.byType[Black][PieceTypeQueen]
	return (pawnAttacks[Black][sq] & p.byType[White][PieceTypePawn]) |
		(pawnAttacks[White][sq] & p.byType[Black][PieceTypePawn]) |
		(knightMoves[sq] & (p.byType[White][PieceTypeKnight] | p.byType[Black][PieceTypeKnight])) |
		(kingMoves[sq] & (p.byType[White][PieceTypeKing] | p.byType[Black][PieceTypeKing])) |
		(RookAttacks(sq, occ) & rq) |
		(BishopAttacks(sq, occ) & bq)
}

// attackedWithOcc reports whether side by attacks sq when the board
// occupancy is occ. Pieces of by that are not in occ still attack, so
// callers remove captured attackers themselves.
func (p *Position) attackedWithOcc(sq Square, by Color, occ uint64) bool {
	t := &p.byType[by]
	if pawnAttacks[by.Other()][sq]&t[PieceTypePawn] != 0 {
		return true
	}
	if knightMoves[sq]&t[PieceTypeKnight] != 0 {
		return true
	}
	if kingMoves[sq]&t[PieceTypeKing] != 0 {
		return true
	}
	if RookAttacks(sq, occ)&(t[PieceTypeRook]|t[PieceTypeQueen]) != 0 {
		return true
	}
	return BishopAttacks(sq, occ)&(t[PieceTypeBishop]|t[PieceTypeQueen]) != 0
}

// IsSquareAttacked reports whether side by attacks sq in the current position.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.attackedWithOcc(sq, by, p.All())
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.attackedWithOcc(p.king[p.sideToMove], p.sideToMove.Other(), p.All())
}

// GivesCheck reports whether the legal move m leaves the opponent in check.
// It checks direct attacks by the arriving piece and discovered slider
// attacks without applying the move.
func (p *Position) GivesCheck(m Move) bool {
	us := p.sideToMove
	them := us.Other()
	ek := p.king[them]
	from, to := m.From(), m.To()

	pt := m.MovedPiece().Type()
	if promo := m.PromotionPiece(); promo != NoPiece {
		pt = promo.Type()
	}

	occ := (p.All() &^ bb(from)) | bb(to)
	rq := p.byType[us][PieceTypeRook] | p.byType[us][PieceTypeQueen]
	bq := p.byType[us][PieceTypeBishop] | p.byType[us][PieceTypeQueen]
	rq &^= bb(from)
	bq &^= bb(from)

	switch m.Flags() {
	case FlagEnPassant:
		occ &^= bb(epVictim(to, us))
	case FlagCastle:
		rFrom, rTo := castleRookSquares(to)
		occ = (occ &^ bb(rFrom)) | bb(rTo)
		rq = (rq &^ bb(rFrom)) | bb(rTo)
	}

	switch pt {
	case PieceTypePawn:
		if pawnAttacks[us][to]&bb(ek) != 0 {
			return true
		}
	case PieceTypeKnight:
		if knightMoves[to]&bb(ek) != 0 {
			return true
		}
	case PieceTypeBishop:
		bq |= bb(to)
	case PieceTypeRook:
		rq |= bb(to)
	case PieceTypeQueen:
		bq |= bb(to)
		rq |= bb(to)
	}
	return RookAttacks(ek, occ)&rq != 0 || BishopAttacks(ek, occ)&bq != 0
}

// epVictim returns the square of the pawn removed by an en-passant capture
// landing on target when side us captures.
func epVictim(target Square, us Color) Square {
	if us == White {
		return target - 8
	}
	return target + 8
}

// castleRookSquares maps the king's castling destination to the rook's
// origin and destination.
func castleRookSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}
