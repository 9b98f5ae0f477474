package board

import "math/bits"

// Piece is a colored piece code. Black pieces carry bit 3 so that
// piece&7 yields the type and piece&8 the color.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// PieceType is a colorless piece kind used for table lookups.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypePawn   PieceType = 1
	PieceTypeKnight PieceType = 2
	PieceTypeBishop PieceType = 3
	PieceTypeRook   PieceType = 4
	PieceTypeQueen  PieceType = 5
	PieceTypeKing   PieceType = 6
)

// Type returns the colorless type of the piece.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the side owning the piece. NoPiece reports White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// MakePiece combines a side and a type into a colored piece code.
func MakePiece(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	if c == Black {
		return Piece(pt) | 8
	}
	return Piece(pt)
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Castling rights are kept per side: bit 0 king side, bit 1 queen side.
const (
	CastleKingSide  uint8 = 1
	CastleQueenSide uint8 = 2
)

// Square is a board index 0..63 with a1 = 0 and h8 = 63.
type Square int

const NoSquare Square = -1

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
)

const (
	A8 Square = 56 + iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// File returns the 0-based file (a = 0).
func (s Square) File() int { return int(s) & 7 }

// Rank returns the 0-based rank (rank 1 = 0).
func (s Square) Rank() int { return int(s) >> 3 }

// NewSquare builds a square from file and rank.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return string([]byte{'a' + byte(s.File()), '1' + byte(s.Rank())})
}

// ParseSquare converts "e4" style coordinates.
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, false
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), true
}

// Score is a midgame/endgame value pair.
type Score struct {
	MG int
	EG int
}

func (s Score) Add(o Score) Score { return Score{s.MG + o.MG, s.EG + o.EG} }
func (s Score) Sub(o Score) Score { return Score{s.MG - o.MG, s.EG - o.EG} }

// Scale multiplies both halves by n.
func (s Score) Scale(n int) Score { return Score{s.MG * n, s.EG * n} }

// Taper blends the two halves by phase, where phase runs from 0 (endgame)
// to maxPhase (opening).
func (s Score) Taper(phase, maxPhase int) int {
	if maxPhase == 0 {
		return s.EG
	}
	return (s.MG*phase + s.EG*(maxPhase-phase)) / maxPhase
}

// MaterialValue holds the per-type material worth used for incremental
// material bookkeeping, SEE and MVV/LVA ordering.
var MaterialValue = [7]Score{
	PieceTypeNone:   {0, 0},
	PieceTypePawn:   {77, 92},
	PieceTypeKnight: {375, 276},
	PieceTypeBishop: {406, 360},
	PieceTypeRook:   {541, 504},
	PieceTypeQueen:  {1217, 963},
	PieceTypeKing:   {20000, 20000},
}

// InsufficientMaterialThreshold is the largest combined endgame material
// (with no pawns on the board) that cannot force mate.
var InsufficientMaterialThreshold = max(MaterialValue[PieceTypeKnight].EG, MaterialValue[PieceTypeBishop].EG)

// ==========================
// Bitboard helpers
// ==========================

// bb returns a bitboard with the given square bit set.
func bb(sq Square) uint64 { return 1 << uint64(sq) }

// popLSB removes and returns the least significant set bit from the mask.
func popLSB(mask *uint64) Square {
	idx := bits.TrailingZeros64(*mask)
	*mask &= *mask - 1
	return Square(idx)
}

// lsb returns the least significant set square of a non-empty mask.
func lsb(mask uint64) Square { return Square(bits.TrailingZeros64(mask)) }

// PopCount counts set bits.
func PopCount(mask uint64) int { return bits.OnesCount64(mask) }

const (
	FileA uint64 = 0x0101010101010101
	FileH uint64 = FileA << 7
	Rank1 uint64 = 0xFF
	Rank2 uint64 = Rank1 << 8
	Rank7 uint64 = Rank1 << 48
	Rank8 uint64 = Rank1 << 56
)

// ForEach calls fn for each set square of mask, lowest first.
func ForEach(mask uint64, fn func(Square)) {
	for mask != 0 {
		fn(popLSB(&mask))
	}
}
