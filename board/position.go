package board

import (
	"errors"
	"fmt"
)

// Position is a complete game state. It is a plain value: copying it
// yields an independent snapshot, and Apply returns a new Position instead
// of mutating the receiver.
type Position struct {
	byType      [2][7]uint64 // indexed by color, then PieceType
	occupancy   [2]uint64
	pawnControl [2]uint64 // squares attacked by each side's pawns

	pieces [64]Piece

	sideToMove Color
	castle     [2]uint8 // CastleKingSide | CastleQueenSide per color
	enPassant  Square   // target square behind a double-pushed pawn, or NoSquare
	halfmove   int
	fullmove   int
	king       [2]Square

	hash     uint64
	pawnHash uint64
	material [2]Score // excludes kings
}

// Bitboards exposes the per-piece bitboards for a color.
type Bitboards struct {
	Pawns   uint64
	Knights uint64
	Bishops uint64
	Rooks   uint64
	Queens  uint64
	Kings   uint64
	All     uint64
}

// ErrCorrupt is returned by Validate when derived state disagrees with a
// recomputation.
var ErrCorrupt = errors.New("board: inconsistent position")

// NewPosition returns the standard initial position.
func NewPosition() Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// ==========================
// Accessors
// ==========================

func (p *Position) SideToMove() Color         { return p.sideToMove }
func (p *Position) Hash() uint64              { return p.hash }
func (p *Position) PawnHash() uint64          { return p.pawnHash }
func (p *Position) EnPassant() Square         { return p.enPassant }
func (p *Position) HalfmoveClock() int        { return p.halfmove }
func (p *Position) FullmoveNumber() int       { return p.fullmove }
func (p *Position) PieceAt(sq Square) Piece   { return p.pieces[sq] }
func (p *Position) KingSquare(c Color) Square { return p.king[c] }

// CastleRights returns the rights of side c as CastleKingSide|CastleQueenSide bits.
func (p *Position) CastleRights(c Color) uint8 { return p.castle[c] }

// Pieces returns the bitboard of side c's pieces of type pt.
func (p *Position) Pieces(c Color, pt PieceType) uint64 { return p.byType[c][pt] }

// Occupancy returns all squares occupied by side c.
func (p *Position) Occupancy(c Color) uint64 { return p.occupancy[c] }

// All returns every occupied square.
func (p *Position) All() uint64 { return p.occupancy[White] | p.occupancy[Black] }

// PawnControl returns the squares attacked by side c's pawns.
func (p *Position) PawnControl(c Color) uint64 { return p.pawnControl[c] }

// Material returns side c's incrementally maintained material, kings excluded.
func (p *Position) Material(c Color) Score { return p.material[c] }

// NonPawnMaterial returns side c's midgame material without pawns.
func (p *Position) NonPawnMaterial(c Color) int {
	return p.material[c].MG - PopCount(p.byType[c][PieceTypePawn])*MaterialValue[PieceTypePawn].MG
}

// Bitboards returns a copy of the per-piece bitboards for side c.
func (p *Position) Bitboards(c Color) Bitboards {
	return Bitboards{
		Pawns:   p.byType[c][PieceTypePawn],
		Knights: p.byType[c][PieceTypeKnight],
		Bishops: p.byType[c][PieceTypeBishop],
		Rooks:   p.byType[c][PieceTypeRook],
		Queens:  p.byType[c][PieceTypeQueen],
		Kings:   p.byType[c][PieceTypeKing],
		All:     p.occupancy[c],
	}
}

// IsInsufficientMaterial reports positions without pawns whose combined
// endgame material cannot force mate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.byType[White][PieceTypePawn]|p.byType[Black][PieceTypePawn] != 0 {
		return false
	}
	return p.material[White].EG+p.material[Black].EG <= InsufficientMaterialThreshold
}

// ==========================
// Incremental piece updates
// ==========================

// addPiece places a piece on an empty square and updates every derived field
// except pawnControl, which callers refresh once per move.
func (p *Position) addPiece(sq Square, pc Piece) {
	c, pt := pc.Color(), pc.Type()
	p.pieces[sq] = pc
	p.byType[c][pt] |= bb(sq)
	p.occupancy[c] |= bb(sq)
	p.hash ^= zobristPiece[pc][sq]
	switch pt {
	case PieceTypeKing:
		p.king[c] = sq
	case PieceTypePawn:
		p.pawnHash ^= zobristPiece[pc][sq]
		p.material[c] = p.material[c].Add(MaterialValue[pt])
	default:
		p.material[c] = p.material[c].Add(MaterialValue[pt])
	}
}

// removePiece clears a square and returns what stood there.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.pieces[sq]
	if pc == NoPiece {
		return NoPiece
	}
	c, pt := pc.Color(), pc.Type()
	p.pieces[sq] = NoPiece
	p.byType[c][pt] &^= bb(sq)
	p.occupancy[c] &^= bb(sq)
	p.hash ^= zobristPiece[pc][sq]
	if pt == PieceTypePawn {
		p.pawnHash ^= zobristPiece[pc][sq]
	}
	if pt != PieceTypeKing {
		p.material[c] = p.material[c].Sub(MaterialValue[pt])
	}
	return pc
}

func (p *Position) updatePawnControl() {
	w := p.byType[White][PieceTypePawn]
	b := p.byType[Black][PieceTypePawn]
	p.pawnControl[White] = ((w &^ FileA) << 7) | ((w &^ FileH) << 9)
	p.pawnControl[Black] = ((b &^ FileA) >> 9) | ((b &^ FileH) >> 7)
}

// ComputeMaterial recomputes both sides' material from the piece boards.
func (p *Position) ComputeMaterial() [2]Score {
	var m [2]Score
	for c := White; c <= Black; c++ {
		for pt := PieceTypePawn; pt < PieceTypeKing; pt++ {
			m[c] = m[c].Add(MaterialValue[pt].Scale(PopCount(p.byType[c][pt])))
		}
	}
	return m
}

// Validate checks that every derived field matches a recomputation from the
// piece array. It returns a wrapped ErrCorrupt describing the first mismatch.
func (p *Position) Validate() error {
	var byType [2][7]uint64
	var occ [2]uint64
	for sq := Square(0); sq < 64; sq++ {
		pc := p.pieces[sq]
		if pc == NoPiece {
			continue
		}
		if pc.Type() == PieceTypeNone || pc.Type() > PieceTypeKing {
			return fmt.Errorf("%w: bad piece code %d on %s", ErrCorrupt, pc, sq)
		}
		byType[pc.Color()][pc.Type()] |= bb(sq)
		occ[pc.Color()] |= bb(sq)
	}
	if byType != p.byType {
		return fmt.Errorf("%w: piece bitboards", ErrCorrupt)
	}
	if occ != p.occupancy {
		return fmt.Errorf("%w: occupancy", ErrCorrupt)
	}
	for c := White; c <= Black; c++ {
		var union uint64
		for pt := PieceTypePawn; pt <= PieceTypeKing; pt++ {
			union |= p.byType[c][pt]
		}
		if union != p.occupancy[c] {
			return fmt.Errorf("%w: %s occupancy is not the union of its pieces", ErrCorrupt, c)
		}
		if PopCount(p.byType[c][PieceTypeKing]) != 1 {
			return fmt.Errorf("%w: %s must have exactly one king", ErrCorrupt, c)
		}
		if lsb(p.byType[c][PieceTypeKing]) != p.king[c] {
			return fmt.Errorf("%w: %s king square", ErrCorrupt, c)
		}
	}
	if p.hash != p.ComputeHash() {
		return fmt.Errorf("%w: zobrist hash", ErrCorrupt)
	}
	if p.pawnHash != p.ComputePawnHash() {
		return fmt.Errorf("%w: pawn hash", ErrCorrupt)
	}
	if p.material != p.ComputeMaterial() {
		return fmt.Errorf("%w: material", ErrCorrupt)
	}
	ctl := *p
	ctl.updatePawnControl()
	if ctl.pawnControl != p.pawnControl {
		return fmt.Errorf("%w: pawn control", ErrCorrupt)
	}
	return nil
}
