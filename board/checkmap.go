package board

// CheckMap describes the check and pin state of the side to move. It is
// computed once per node and consulted by the generator for legality.
type CheckMap struct {
	// Check is the number of pieces giving check: 0, 1 or 2.
	Check int
	// Checkers holds the checking pieces.
	Checkers uint64
	// Mask holds the squares a non-king move must land on: the checker and
	// the squares between it and the king. All squares when not in check.
	Mask uint64
	// Pinned holds own pieces pinned against the king.
	Pinned  uint64
	pinLine [64]uint64
}

// NewCheckMap computes checkers, the evasion mask and pin lines for the
// side to move in p.
func NewCheckMap(p *Position) CheckMap {
	var cm CheckMap
	us := p.sideToMove
	them := us.Other()
	ksq := p.king[us]
	occ := p.All()

	cm.Checkers = p.AttackersTo(ksq, occ) & p.occupancy[them]
	cm.Check = PopCount(cm.Checkers)
	if cm.Check > 2 {
		cm.Check = 2
	}
	switch cm.Check {
	case 0:
		cm.Mask = ^uint64(0)
	case 1:
		c := lsb(cm.Checkers)
		cm.Mask = bb(c) | between[ksq][c]
	}

	// Enemy sliders that see the king through exactly one own piece pin it.
	snipers := (RookAttacks(ksq, 0) & (p.byType[them][PieceTypeRook] | p.byType[them][PieceTypeQueen])) |
		(BishopAttacks(ksq, 0) & (p.byType[them][PieceTypeBishop] | p.byType[them][PieceTypeQueen]))
	for snipers != 0 {
		s := popLSB(&snipers)
		blockers := between[ksq][s] & occ
		if blockers != 0 && blockers&(blockers-1) == 0 && blockers&p.occupancy[us] != 0 {
			sq := lsb(blockers)
			cm.Pinned |= blockers
			cm.pinLine[sq] = between[ksq][s] | bb(s)
		}
	}
	return cm
}

// InCheck reports whether the side to move is in check.
func (cm *CheckMap) InCheck() bool { return cm.Check != 0 }

// PinLine returns the squares a pinned piece on sq may move to: the ray from
// the king up to and including the pinner. It is zero for unpinned pieces.
func (cm *CheckMap) PinLine(sq Square) uint64 { return cm.pinLine[sq] }
