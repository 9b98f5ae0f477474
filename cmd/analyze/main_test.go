package main

import (
	"testing"

	"chesscore/board"
)

func TestGamePly(t *testing.T) {
	tests := []struct {
		fen   string
		moves []string
		want  int
	}{
		{board.StartFEN, nil, 0},
		{board.StartFEN, []string{"e2e4"}, 1},
		{board.StartFEN, []string{"e2e4", "e7e5"}, 2},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 30", nil, 58},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 2 30", nil, 59},
	}
	for _, tt := range tests {
		pos, err := board.ParseFEN(tt.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tt.fen, err)
		}
		for _, s := range tt.moves {
			m, err := board.ParseMove(&pos, s)
			if err != nil {
				t.Fatalf("ParseMove(%s): %v", s, err)
			}
			pos = pos.Apply(m)
		}
		if got := gamePly(&pos); got != tt.want {
			t.Fatalf("%s %v: gamePly = %d, want %d", tt.fen, tt.moves, got, tt.want)
		}
	}
}
