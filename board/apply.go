package board

// castleClear[sq] lists the rights lost when a piece leaves or lands on sq,
// indexed [color]. Only king and rook home squares are non-zero.
var castleClear = func() (t [64][2]uint8) {
	t[E1][White] = CastleKingSide | CastleQueenSide
	t[H1][White] = CastleKingSide
	t[A1][White] = CastleQueenSide
	t[E8][Black] = CastleKingSide | CastleQueenSide
	t[H8][Black] = CastleKingSide
	t[A8][Black] = CastleQueenSide
	return
}()

// Apply returns the position after the legal move m. The receiver is a
// value, so the caller's position is never modified.
func (p Position) Apply(m Move) Position {
	us := p.sideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	moved := m.MovedPiece()

	if p.enPassant != NoSquare {
		p.hash ^= zobristEnPassant[p.enPassant.File()]
		p.enPassant = NoSquare
	}
	p.hash ^= castleKey(p.castle)

	p.halfmove++
	switch m.Flags() {
	case FlagEnPassant:
		p.removePiece(epVictim(to, us))
	case FlagCastle:
		rFrom, rTo := castleRookSquares(to)
		p.addPiece(rTo, p.removePiece(rFrom))
	}
	if p.pieces[to] != NoPiece {
		p.removePiece(to)
		p.halfmove = 0
	}

	p.removePiece(from)
	if promo := m.PromotionPiece(); promo != NoPiece {
		p.addPiece(to, promo)
	} else {
		p.addPiece(to, moved)
	}

	if moved.Type() == PieceTypePawn {
		p.halfmove = 0
		if m.Flags() == FlagDoublePush {
			ep := (from + to) / 2
			// Only record a target an enemy pawn could actually capture on,
			// so transpositions hash alike.
			if pawnAttacks[us][ep]&p.byType[them][PieceTypePawn] != 0 {
				p.enPassant = ep
				p.hash ^= zobristEnPassant[ep.File()]
			}
		}
		p.updatePawnControl()
	} else if m.CapturedPiece().Type() == PieceTypePawn {
		p.updatePawnControl()
	}

	p.castle[White] &^= castleClear[from][White] | castleClear[to][White]
	p.castle[Black] &^= castleClear[from][Black] | castleClear[to][Black]
	p.hash ^= castleKey(p.castle)

	if us == Black {
		p.fullmove++
	}
	p.sideToMove = them
	p.hash ^= zobristSide
	return p
}

// ApplyNull passes the turn without moving. The en-passant target is
// cleared and the hash updated accordingly.
func (p Position) ApplyNull() Position {
	if p.enPassant != NoSquare {
		p.hash ^= zobristEnPassant[p.enPassant.File()]
		p.enPassant = NoSquare
	}
	p.halfmove++
	if p.sideToMove == Black {
		p.fullmove++
	}
	p.sideToMove = p.sideToMove.Other()
	p.hash ^= zobristSide
	return p
}
