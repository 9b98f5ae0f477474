package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	// ErrInvalidFEN wraps every FEN parsing failure.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrIllegalMove is returned when a move string does not name a legal move.
	ErrIllegalMove = errors.New("illegal move")
)

var fenPieces = map[rune]Piece{
	'P': WhitePawn, 'N': WhiteKnight, 'B': WhiteBishop, 'R': WhiteRook, 'Q': WhiteQueen, 'K': WhiteKing,
	'p': BlackPawn, 'n': BlackKnight, 'b': BlackBishop, 'r': BlackRook, 'q': BlackQueen, 'k': BlackKing,
}

// pieceChar returns the FEN letter of a piece.
func pieceChar(p Piece) byte {
	c := "?PNBRQK"[p.Type()]
	if p.Color() == Black {
		c += 'a' - 'A'
	}
	return c
}

// ParseFEN parses a FEN string. The halfmove and fullmove fields are optional.
func ParseFEN(fen string) (Position, error) {
	Init()
	var p Position
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return p, fmt.Errorf("%w: not enough fields", ErrInvalidFEN)
	}
	p.enPassant = NoSquare
	p.fullmove = 1

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return p, fmt.Errorf("%w: incorrect number of ranks", ErrInvalidFEN)
	}
	kings := [2]int{}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			pc, ok := fenPieces[ch]
			if !ok {
				return p, fmt.Errorf("%w: unrecognized piece character %q", ErrInvalidFEN, ch)
			}
			if file >= 8 {
				return p, fmt.Errorf("%w: too many squares in rank %d", ErrInvalidFEN, rank+1)
			}
			if pc.Type() == PieceTypeKing {
				kings[pc.Color()]++
			}
			p.addPiece(NewSquare(file, rank), pc)
			file++
		}
		if file != 8 {
			return p, fmt.Errorf("%w: rank %d does not have 8 columns", ErrInvalidFEN, rank+1)
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return p, fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}

	switch fields[1] {
	case "w":
		p.sideToMove = White
	case "b":
		p.sideToMove = Black
	default:
		return p, fmt.Errorf("%w: side to move must be 'w' or 'b'", ErrInvalidFEN)
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				p.castle[White] |= CastleKingSide
			case 'Q':
				p.castle[White] |= CastleQueenSide
			case 'k':
				p.castle[Black] |= CastleKingSide
			case 'q':
				p.castle[Black] |= CastleQueenSide
			default:
				return p, fmt.Errorf("%w: invalid castling rights character %q", ErrInvalidFEN, ch)
			}
		}
	}
	// Drop rights whose king or rook is not at home.
	for c, home := range [2]Square{E1, E8} {
		rook := MakePiece(Color(c), PieceTypeRook)
		if p.pieces[home] != MakePiece(Color(c), PieceTypeKing) {
			p.castle[c] = 0
		}
		if p.pieces[home+3] != rook {
			p.castle[c] &^= CastleKingSide
		}
		if p.pieces[home-4] != rook {
			p.castle[c] &^= CastleQueenSide
		}
	}

	if fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return p, fmt.Errorf("%w: invalid en passant square %q", ErrInvalidFEN, fields[3])
		}
		if (p.sideToMove == White && sq.Rank() != 5) || (p.sideToMove == Black && sq.Rank() != 2) {
			return p, fmt.Errorf("%w: en passant square %s on wrong rank", ErrInvalidFEN, sq)
		}
		p.enPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return p, fmt.Errorf("%w: halfmove clock %q", ErrInvalidFEN, fields[4])
		}
		p.halfmove = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fields[5])
		}
		p.fullmove = n
	}

	p.updatePawnControl()
	p.hash = p.ComputeHash()
	p.pawnHash = p.ComputePawnHash()

	// The side not to move must not be in check.
	if p.IsSquareAttacked(p.king[p.sideToMove.Other()], p.sideToMove) {
		return p, fmt.Errorf("%w: side not to move is in check", ErrInvalidFEN)
	}
	return p, nil
}

// FEN produces the FEN string of the position.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.pieces[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte('0' + byte(empty))
				empty = 0
			}
			sb.WriteByte(pieceChar(pc))
		}
		if empty > 0 {
			sb.WriteByte('0' + byte(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.sideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if p.castle[White]|p.castle[Black] == 0 {
		sb.WriteByte('-')
	} else {
		for _, r := range []struct {
			c    Color
			bit  uint8
			char byte
		}{{White, CastleKingSide, 'K'}, {White, CastleQueenSide, 'Q'}, {Black, CastleKingSide, 'k'}, {Black, CastleQueenSide, 'q'}} {
			if p.castle[r.c]&r.bit != 0 {
				sb.WriteByte(r.char)
			}
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(p.enPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.halfmove))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.fullmove))
	return sb.String()
}

func (p Position) String() string { return p.FEN() }

// ParseMove resolves a coordinate move string ("e2e4", "e7e8q") against the
// legal moves of p.
func ParseMove(p *Position, s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}
	from, ok1 := ParseSquare(s[0:2])
	to, ok2 := ParseSquare(s[2:4])
	if !ok1 || !ok2 {
		return NoMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}
	promo := PieceTypeNone
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = PieceTypeKnight
		case 'b':
			promo = PieceTypeBishop
		case 'r':
			promo = PieceTypeRook
		case 'q':
			promo = PieceTypeQueen
		default:
			return NoMove, fmt.Errorf("%w: bad promotion in %q", ErrIllegalMove, s)
		}
	}
	cm := NewCheckMap(p)
	var buf [32]Move
	for _, m := range p.generate(buf[:0], GenAll, &cm, bb(from)) {
		if m.To() == to && m.PromotionPiece().Type() == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, p.FEN())
}
