package board_test

import (
	"testing"

	"chesscore/board"
)

func square(t *testing.T, s string) board.Square {
	t.Helper()
	sq, ok := board.ParseSquare(s)
	if !ok {
		t.Fatalf("bad square %q", s)
	}
	return sq
}

func TestGameStatus(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		inCheck bool
		noMoves bool
	}{
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", true, true},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, true},
		{"check with escape", "4k3/8/8/8/8/8/8/4K2r w - - 0 1", true, false},
		{"start", board.StartFEN, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			cm := board.NewCheckMap(&pos)
			if pos.InCheck() != tt.inCheck || cm.InCheck() != tt.inCheck {
				t.Fatalf("in check = %v / %v, want %v", pos.InCheck(), cm.InCheck(), tt.inCheck)
			}
			if pos.HasLegalMoves(&cm) == tt.noMoves {
				t.Fatalf("has legal moves = %v, want %v", !tt.noMoves, !tt.noMoves)
			}
			if got := len(pos.LegalMoves()) == 0; got != tt.noMoves {
				t.Fatalf("LegalMoves empty = %v, want %v", got, tt.noMoves)
			}
		})
	}
}

func TestMateInOneApplyAndDetect(t *testing.T) {
	pos := mustFEN(t, "7k/6pp/6Q1/8/8/2B5/8/6K1 w - - 0 1")
	m, err := board.ParseMove(&pos, "g6g7")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if !m.IsCapture() || m.CapturedPiece().Type() != board.PieceTypePawn {
		t.Fatalf("g6g7 should capture a pawn, got %v", m.CapturedPiece())
	}
	if !pos.GivesCheck(m) {
		t.Fatalf("GivesCheck(g6g7) = false")
	}
	child := pos.Apply(m)
	cm := board.NewCheckMap(&child)
	if !child.InCheck() || child.HasLegalMoves(&cm) {
		t.Fatalf("expected checkmate after g6g7")
	}
}

func TestSquareAttacks(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		sq       string
		by       board.Color
		attacked bool
	}{
		{"rook on file", "k3r3/8/8/8/8/8/8/4K3 w - - 0 1", "e1", board.Black, true},
		{"rook blocked", "k3r3/8/8/8/8/4P3/8/4K3 w - - 0 1", "e1", board.Black, false},
		{"bishop diagonal", "7k/8/8/8/1b6/8/8/4K3 w - - 0 1", "e1", board.Black, true},
		{"bishop blocked", "7k/8/8/8/1b6/8/3P4/4K3 w - - 0 1", "e1", board.Black, false},
		{"pawn", "7k/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4", board.Black, true},
		{"pawn does not attack forward", "7k/8/8/4p3/4P3/8/8/4K3 w - - 0 1", "e4", board.Black, false},
		{"knight", "7k/8/8/8/8/5n2/8/4K3 w - - 0 1", "e1", board.Black, true},
		{"king", "8/8/8/8/8/8/3k4/6K1 w - - 0 1", "e1", board.Black, true},
		{"own pieces do not count", "4R3/8/8/8/8/8/8/4K2k w - - 0 1", "e1", board.Black, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustFEN(t, tt.fen)
			sq := square(t, tt.sq)
			if got := pos.IsSquareAttacked(sq, tt.by); got != tt.attacked {
				t.Fatalf("IsSquareAttacked(%s) = %v, want %v", tt.sq, got, tt.attacked)
			}
			theirs := pos.AttackersTo(sq, pos.All()) & pos.Occupancy(tt.by)
			if (theirs != 0) != tt.attacked {
				t.Fatalf("AttackersTo(%s) = %#x disagrees", tt.sq, theirs)
			}
		})
	}
}
