package board

// GenMode selects which legal moves a generator call emits.
type GenMode uint8

const (
	// GenAll emits every legal move.
	GenAll GenMode = iota
	// GenCaptures emits captures, en passant, capture promotions and quiet
	// queen promotions.
	GenCaptures
	// GenNoncaptures emits everything GenCaptures does not.
	GenNoncaptures
	// GenPseudoCheck emits the noncaptures that give check.
	GenPseudoCheck
)

// LegalMoves returns all legal moves of the side to move.
func (p *Position) LegalMoves() []Move {
	cm := NewCheckMap(p)
	return p.GenerateInto(make([]Move, 0, 64), GenAll, &cm)
}

// GenerateInto appends the legal moves selected by mode to dst. cm must be
// the check map of p.
func (p *Position) GenerateInto(dst []Move, mode GenMode, cm *CheckMap) []Move {
	return p.generate(dst, mode, cm, ^uint64(0))
}

// HasLegalMoves reports whether the side to move can move at all.
func (p *Position) HasLegalMoves(cm *CheckMap) bool {
	var buf [64]Move
	return len(p.generate(buf[:0], GenAll, cm, ^uint64(0))) > 0
}

// IsLegal reports whether m is a legal move in p, including its decoration
// (moved and captured piece, flag). Used to vet hash and killer moves.
func (p *Position) IsLegal(m Move) bool {
	cm := NewCheckMap(p)
	return p.IsLegalWith(m, &cm)
}

// IsLegalWith is IsLegal with a precomputed check map.
func (p *Position) IsLegalWith(m Move, cm *CheckMap) bool {
	if m == NoMove {
		return false
	}
	pc := p.pieces[m.From()]
	if pc == NoPiece || pc != m.MovedPiece() || pc.Color() != p.sideToMove {
		return false
	}
	var buf [32]Move
	for _, c := range p.generate(buf[:0], GenAll, cm, bb(m.From())) {
		if c == m {
			return true
		}
	}
	return false
}

// generate is the shared generator. Only pieces standing on fromMask move.
func (p *Position) generate(dst []Move, mode GenMode, cm *CheckMap, fromMask uint64) []Move {
	start := len(dst)
	us := p.sideToMove
	own := p.occupancy[us]
	enemy := p.occupancy[us.Other()]
	occ := own | enemy

	var targets uint64
	switch mode {
	case GenAll:
		targets = ^own
	case GenCaptures:
		targets = enemy
	default:
		targets = ^occ
	}

	if ksq := p.king[us]; fromMask&bb(ksq) != 0 {
		dst = p.genKing(dst, ksq, targets, occ, mode, cm)
	}

	// Double check: only the king may move.
	if cm.Check < 2 {
		dst = p.genPawns(dst, mode, cm, fromMask)

		pieceTargets := targets & cm.Mask
		for pt := PieceTypeKnight; pt <= PieceTypeQueen; pt++ {
			moved := MakePiece(us, pt)
			pcs := p.byType[us][pt] & fromMask
			for pcs != 0 {
				from := popLSB(&pcs)
				var att uint64
				switch pt {
				case PieceTypeKnight:
					att = knightMoves[from]
				case PieceTypeBishop:
					att = BishopAttacks(from, occ)
				case PieceTypeRook:
					att = RookAttacks(from, occ)
				case PieceTypeQueen:
					att = QueenAttacks(from, occ)
				}
				att &= pieceTargets
				if cm.Pinned&bb(from) != 0 {
					att &= cm.pinLine[from]
				}
				for att != 0 {
					to := popLSB(&att)
					dst = append(dst, NewMove(from, to, moved, p.pieces[to], NoPiece, FlagNone))
				}
			}
		}
	}

	if mode == GenPseudoCheck {
		kept := dst[:start]
		for _, m := range dst[start:] {
			if p.GivesCheck(m) {
				kept = append(kept, m)
			}
		}
		dst = kept
	}
	return dst
}

func (p *Position) genKing(dst []Move, ksq Square, targets, occ uint64, mode GenMode, cm *CheckMap) []Move {
	us := p.sideToMove
	them := us.Other()
	moved := MakePiece(us, PieceTypeKing)

	// Test destinations with the king lifted so sliders see through it.
	occNoKing := occ &^ bb(ksq)
	att := kingMoves[ksq] & targets
	for att != 0 {
		to := popLSB(&att)
		if !p.attackedWithOcc(to, them, occNoKing) {
			dst = append(dst, NewMove(ksq, to, moved, p.pieces[to], NoPiece, FlagNone))
		}
	}

	if mode == GenCaptures || cm.Check != 0 || p.castle[us] == 0 {
		return dst
	}
	home, rook := E1, WhiteRook
	if us == Black {
		home, rook = E8, BlackRook
	}
	if ksq != home {
		return dst
	}
	if p.castle[us]&CastleKingSide != 0 && p.pieces[home+3] == rook &&
		occ&(bb(home+1)|bb(home+2)) == 0 &&
		!p.attackedWithOcc(home+1, them, occ) && !p.attackedWithOcc(home+2, them, occ) {
		dst = append(dst, NewMove(home, home+2, moved, NoPiece, NoPiece, FlagCastle))
	}
	if p.castle[us]&CastleQueenSide != 0 && p.pieces[home-4] == rook &&
		occ&(bb(home-1)|bb(home-2)|bb(home-3)) == 0 &&
		!p.attackedWithOcc(home-1, them, occ) && !p.attackedWithOcc(home-2, them, occ) {
		dst = append(dst, NewMove(home, home-2, moved, NoPiece, NoPiece, FlagCastle))
	}
	return dst
}

func (p *Position) genPawns(dst []Move, mode GenMode, cm *CheckMap, fromMask uint64) []Move {
	us := p.sideToMove
	them := us.Other()
	pawns := p.byType[us][PieceTypePawn] & fromMask
	if pawns == 0 {
		return dst
	}
	occ := p.All()
	enemy := p.occupancy[them]
	moved := MakePiece(us, PieceTypePawn)
	wantCaptures := mode == GenAll || mode == GenCaptures
	wantQuiets := mode != GenCaptures

	push, startRank, promoRank := Square(8), Rank2, Rank8
	if us == Black {
		push, startRank, promoRank = -8, Rank7, Rank1
	}

	for pawns != 0 {
		from := popLSB(&pawns)
		allowed := cm.Mask
		if cm.Pinned&bb(from) != 0 {
			allowed &= cm.pinLine[from]
		}

		fwd := from + push
		if occ&bb(fwd) == 0 {
			if bb(fwd)&allowed != 0 {
				if bb(fwd)&promoRank != 0 {
					dst = addPromotions(dst, from, fwd, moved, NoPiece, wantCaptures, wantQuiets)
				} else if wantQuiets {
					dst = append(dst, NewMove(from, fwd, moved, NoPiece, NoPiece, FlagNone))
				}
			}
			if wantQuiets && bb(from)&startRank != 0 {
				fwd2 := fwd + push
				if occ&bb(fwd2) == 0 && bb(fwd2)&allowed != 0 {
					dst = append(dst, NewMove(from, fwd2, moved, NoPiece, NoPiece, FlagDoublePush))
				}
			}
		}

		if !wantCaptures {
			continue
		}
		att := pawnAttacks[us][from] & enemy & allowed
		for att != 0 {
			to := popLSB(&att)
			if bb(to)&promoRank != 0 {
				dst = addPromotions(dst, from, to, moved, p.pieces[to], true, true)
			} else {
				dst = append(dst, NewMove(from, to, moved, p.pieces[to], NoPiece, FlagNone))
			}
		}
		if p.enPassant != NoSquare && pawnAttacks[us][from]&bb(p.enPassant) != 0 && p.epLegal(from, cm) {
			dst = append(dst, NewMove(from, p.enPassant, moved, MakePiece(them, PieceTypePawn), NoPiece, FlagEnPassant))
		}
	}
	return dst
}

// addPromotions appends the queen promotion when queen is set and the
// three underpromotions when under is set.
func addPromotions(dst []Move, from, to Square, moved, captured Piece, queen, under bool) []Move {
	c := moved.Color()
	if queen {
		dst = append(dst, NewMove(from, to, moved, captured, MakePiece(c, PieceTypeQueen), FlagNone))
	}
	if under {
		dst = append(dst,
			NewMove(from, to, moved, captured, MakePiece(c, PieceTypeKnight), FlagNone),
			NewMove(from, to, moved, captured, MakePiece(c, PieceTypeRook), FlagNone),
			NewMove(from, to, moved, captured, MakePiece(c, PieceTypeBishop), FlagNone))
	}
	return dst
}

// epLegal validates an en-passant capture from from. Both pawns leave their
// squares at once, so rank and diagonal discovered checks are found by
// recomputing slider attacks on the king with the post-capture occupancy.
func (p *Position) epLegal(from Square, cm *CheckMap) bool {
	us := p.sideToMove
	them := us.Other()
	to := p.enPassant
	victim := epVictim(to, us)
	if cm.Check != 0 && (bb(to)|bb(victim))&cm.Mask == 0 {
		return false
	}
	occ := (p.All() &^ (bb(from) | bb(victim))) | bb(to)
	ksq := p.king[us]
	t := &p.byType[them]
	return RookAttacks(ksq, occ)&(t[PieceTypeRook]|t[PieceTypeQueen]) == 0 &&
		BishopAttacks(ksq, occ)&(t[PieceTypeBishop]|t[PieceTypeQueen]) == 0
}

// ==========================
// Perft
// ==========================

type perftCtx struct {
	bufs [][]Move
}

func (pc *perftCtx) bufFor(depth int) []Move {
	for len(pc.bufs) <= depth {
		pc.bufs = append(pc.bufs, make([]Move, 0, 128))
	}
	return pc.bufs[depth][:0]
}

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(p *Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	pc := &perftCtx{}
	return perftRec(p, depth, pc)
}

func perftRec(p *Position, depth int, pc *perftCtx) uint64 {
	cm := NewCheckMap(p)
	moves := p.GenerateInto(pc.bufFor(depth), GenAll, &cm)
	pc.bufs[depth] = moves
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := p.Apply(m)
		nodes += perftRec(&child, depth-1, pc)
	}
	return nodes
}

// PerftDivide returns the perft count below each root move.
func PerftDivide(p *Position, depth int) map[Move]uint64 {
	out := make(map[Move]uint64)
	if depth <= 0 {
		return out
	}
	pc := &perftCtx{}
	for _, m := range p.LegalMoves() {
		child := p.Apply(m)
		if depth == 1 {
			out[m] = 1
			continue
		}
		out[m] = perftRec(&child, depth-1, pc)
	}
	return out
}
