package board

// Move encodes a chess move in a 32-bit value.
type Move uint32

// Bitfield layout within Move (from LSB to MSB)
const (
	moveFromShift    = 0  // 6 bits
	moveToShift      = 6  // 6 bits
	movePieceShift   = 12 // 4 bits
	moveCaptureShift = 16 // 4 bits
	movePromoteShift = 20 // 4 bits
	moveFlagShift    = 24 // 2 bits
)

// Move flags. Promotion is indicated by a non-zero promotion piece.
const (
	FlagNone       = 0
	FlagCastle     = 1
	FlagEnPassant  = 2
	FlagDoublePush = 3
)

// NoMove is the empty move.
const NoMove Move = 0

// NewMove constructs a Move value from components.
func NewMove(from, to Square, piece, captured, promotion Piece, flag uint8) Move {
	return Move(uint32(from&0x3F) |
		(uint32(to&0x3F) << moveToShift) |
		(uint32(piece&0xF) << movePieceShift) |
		(uint32(captured&0xF) << moveCaptureShift) |
		(uint32(promotion&0xF) << movePromoteShift) |
		(uint32(flag&0x3) << moveFlagShift))
}

// From returns the source square of the move.
func (m Move) From() Square { return Square((uint32(m) >> moveFromShift) & 0x3F) }

// To returns the destination square of the move.
func (m Move) To() Square { return Square((uint32(m) >> moveToShift) & 0x3F) }

// MovedPiece returns the colored piece code that is moved.
func (m Move) MovedPiece() Piece { return Piece((uint32(m) >> movePieceShift) & 0xF) }

// CapturedPiece returns the captured piece code, NoPiece if none.
func (m Move) CapturedPiece() Piece { return Piece((uint32(m) >> moveCaptureShift) & 0xF) }

// PromotionPiece returns the promotion piece code, NoPiece if none.
func (m Move) PromotionPiece() Piece { return Piece((uint32(m) >> movePromoteShift) & 0xF) }

// Flags returns the special move flag.
func (m Move) Flags() uint8 { return uint8((uint32(m) >> moveFlagShift) & 0x3) }

func (m Move) IsEmpty() bool     { return m == NoMove }
func (m Move) IsCapture() bool   { return m.CapturedPiece() != NoPiece }
func (m Move) IsPromotion() bool { return m.PromotionPiece() != NoPiece }
func (m Move) IsCastle() bool    { return m.Flags() == FlagCastle }

// IsTactical reports captures and promotions.
func (m Move) IsTactical() bool { return m.IsCapture() || m.IsPromotion() }

// Same compares the squares and promotion only, so a move stored in
// compact form matches its fully decorated counterpart.
func (m Move) Same(o Move) bool {
	const mask = 0xFFF | 0xF<<movePromoteShift
	return uint32(m)&mask == uint32(o)&mask
}

// Compact packs the move into 14 bits: from, to and a 2-bit promotion
// kind (0 knight / none, 1 bishop, 2 rook, 3 queen). Knight promotion is
// disambiguated on expansion because only pawns reaching the last rank can
// promote.
func (m Move) Compact() uint16 {
	c := uint16(m.From()) | uint16(m.To())<<6
	if pt := m.PromotionPiece().Type(); pt != PieceTypeNone {
		c |= uint16(pt-PieceTypeKnight) << 12
	}
	return c
}

// CompactFrom returns the source square of a compact move.
func CompactFrom(c uint16) Square { return Square(c & 0x3F) }

// CompactTo returns the target square of a compact move.
func CompactTo(c uint16) Square { return Square((c >> 6) & 0x3F) }

// FromCompact resolves a compact move against pos. It returns NoMove when
// the compact move is empty or not legal in pos.
func (p *Position) FromCompact(c uint16) Move {
	if c == 0 {
		return NoMove
	}
	cm := NewCheckMap(p)
	return p.FromCompactWith(c, &cm)
}

// FromCompactWith is FromCompact with a precomputed check map.
func (p *Position) FromCompactWith(c uint16, cm *CheckMap) Move {
	if c == 0 {
		return NoMove
	}
	from, to := CompactFrom(c), CompactTo(c)
	moved := p.pieces[from]
	if moved == NoPiece || moved.Color() != p.sideToMove {
		return NoMove
	}
	var promo Piece
	if moved.Type() == PieceTypePawn && (to.Rank() == 7 || to.Rank() == 0) {
		promo = MakePiece(p.sideToMove, PieceTypeKnight+PieceType(c>>12))
	}
	var buf [32]Move
	for _, m := range p.generate(buf[:0], GenAll, cm, bb(from)) {
		if m.To() == to && m.PromotionPiece() == promo {
			return m
		}
	}
	return NoMove
}

// String produces the coordinate form ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if promo := m.PromotionPiece(); promo != NoPiece {
		s += string(pieceTypeChar[promo.Type()])
	}
	return s
}

var pieceTypeChar = [7]byte{' ', 'p', 'n', 'b', 'r', 'q', 'k'}
