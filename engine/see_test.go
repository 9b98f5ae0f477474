package engine

import (
	"testing"

	"chesscore/board"
)

func mustPosition(t testing.TB, fen string) board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN %q: %v", fen, err)
	}
	return pos
}

func mustParseMove(t testing.TB, pos *board.Position, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(pos, s)
	if err != nil {
		t.Fatalf("parse move %s: %v", s, err)
	}
	return m
}

func TestSEE(t *testing.T) {
	pawn := board.MaterialValue[board.PieceTypePawn].MG
	knight := board.MaterialValue[board.PieceTypeKnight].MG
	bishop := board.MaterialValue[board.PieceTypeBishop].MG
	rook := board.MaterialValue[board.PieceTypeRook].MG

	tests := []struct {
		name string
		fen  string
		move string
		want int
	}{
		{"undefended pawn", "4k3/8/8/3p4/8/8/8/3RK3 w - - 0 1", "d1d5", pawn},
		{"defended pawn by rook", "4k3/4p3/3p4/8/8/8/8/3RK3 w - - 0 1", "d1d6", pawn - rook},
		{"revealed slider defends", "6k1/4q1p1/4n3/8/2B5/8/8/6K1 w - - 0 1", "c4e6", knight - bishop},
		{"xray rook behind rook", "3r3k/3r4/8/8/8/8/3R4/3RK3 w - - 0 1", "d2d7", rook},
		{"en passant", "7k/8/8/3pP3/8/8/8/6K1 w - d6 0 1", "e5d6", pawn},
		{"king takes undefended pawn", "8/8/8/4k3/4P3/8/8/4K3 b - - 0 1", "e5e4", pawn},
		{"pawn takes defended knight", "4k3/8/2p5/3n4/4P3/8/8/4K3 w - - 0 1", "e4d5", knight - pawn},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustPosition(t, tc.fen)
			m := mustParseMove(t, &pos, tc.move)
			if got := SEE(&pos, m); got != tc.want {
				t.Fatalf("SEE(%s) = %d, want %d", tc.move, got, tc.want)
			}
		})
	}
}
