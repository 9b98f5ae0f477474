package board_test

import (
	"math/rand"
	"sort"
	"testing"

	"chesscore/board"
)

func mustFEN(t testing.TB, fen string) board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func moveStrings(moves []board.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	sort.Strings(out)
	return out
}

func hasMove(moves []board.Move, s string) bool {
	for _, m := range moves {
		if m.String() == s {
			return true
		}
	}
	return false
}

// walk plays a seeded random game from fen and calls visit at every node.
func walk(t *testing.T, fen string, plies int, seed int64, visit func(pos *board.Position, moves []board.Move)) {
	t.Helper()
	rnd := rand.New(rand.NewSource(seed))
	pos := mustFEN(t, fen)
	for i := 0; i < plies; i++ {
		moves := pos.LegalMoves()
		visit(&pos, moves)
		if len(moves) == 0 {
			pos = mustFEN(t, fen)
			continue
		}
		pos = pos.Apply(moves[rnd.Intn(len(moves))])
	}
}

var walkFENs = []string{
	board.StartFEN,
	kiwipete,
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
}

func TestMoveGenerationInitial(t *testing.T) {
	pos := board.NewPosition()
	if moves := pos.LegalMoves(); len(moves) != 20 {
		t.Errorf("initial position: expected 20 moves, got %d", len(moves))
	}
}

func TestLegalitySoundness(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 300, int64(i+1), func(pos *board.Position, moves []board.Move) {
			us := pos.SideToMove()
			for _, m := range moves {
				child := pos.Apply(m)
				if child.IsSquareAttacked(child.KingSquare(us), us.Other()) {
					t.Fatalf("%s: move %s leaves king attacked", pos.FEN(), m)
				}
			}
		})
	}
}

func TestGenModesPartitionAll(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 200, int64(i+10), func(pos *board.Position, all []board.Move) {
			cm := board.NewCheckMap(pos)
			caps := pos.GenerateInto(nil, board.GenCaptures, &cm)
			quiet := pos.GenerateInto(nil, board.GenNoncaptures, &cm)
			union := append(append([]board.Move{}, caps...), quiet...)
			got, want := moveStrings(union), moveStrings(all)
			if len(got) != len(want) {
				t.Fatalf("%s: captures+noncaptures=%d, all=%d", pos.FEN(), len(got), len(want))
			}
			for j := range got {
				if got[j] != want[j] {
					t.Fatalf("%s: mismatch %s vs %s", pos.FEN(), got[j], want[j])
				}
			}
			for _, m := range caps {
				if !m.IsCapture() && m.PromotionPiece().Type() != board.PieceTypeQueen {
					t.Fatalf("%s: %s in captures is neither capture nor queen promotion", pos.FEN(), m)
				}
			}
		})
	}
}

func TestPseudoCheckMovesGiveCheck(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 200, int64(i+20), func(pos *board.Position, all []board.Move) {
			cm := board.NewCheckMap(pos)
			checks := pos.GenerateInto(nil, board.GenPseudoCheck, &cm)
			for _, m := range checks {
				if m.IsCapture() {
					t.Fatalf("%s: pseudo-check move %s is a capture", pos.FEN(), m)
				}
				child := pos.Apply(m)
				if !child.InCheck() {
					t.Fatalf("%s: %s generated as check but does not check", pos.FEN(), m)
				}
			}
		})
	}
}

func TestGivesCheckMatchesApply(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 200, int64(i+30), func(pos *board.Position, all []board.Move) {
			for _, m := range all {
				child := pos.Apply(m)
				if got, want := pos.GivesCheck(m), child.InCheck(); got != want {
					t.Fatalf("%s: GivesCheck(%s)=%v, position after move in check=%v", pos.FEN(), m, got, want)
				}
			}
		})
	}
}

func TestCompactRoundTrip(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 100, int64(i+40), func(pos *board.Position, all []board.Move) {
			for _, m := range all {
				if got := pos.FromCompact(m.Compact()); got != m {
					t.Fatalf("%s: FromCompact(%s.Compact()) = %s", pos.FEN(), m, got)
				}
				if !pos.IsLegal(m) {
					t.Fatalf("%s: IsLegal(%s) = false", pos.FEN(), m)
				}
			}
		})
	}
}

func TestIsLegalRejectsForeignMoves(t *testing.T) {
	pos := board.NewPosition()
	bogus := []board.Move{
		board.NoMove,
		board.NewMove(board.E2, board.E2+24, board.WhitePawn, board.NoPiece, board.NoPiece, board.FlagNone),
		board.NewMove(board.E1, board.G1, board.WhiteKing, board.NoPiece, board.NoPiece, board.FlagCastle),
		board.NewMove(board.B8, board.A8-16, board.BlackKnight, board.NoPiece, board.NoPiece, board.FlagNone),
	}
	for _, m := range bogus {
		if pos.IsLegal(m) {
			t.Fatalf("IsLegal(%s) accepted an illegal move", m)
		}
	}
}

func TestEnPassantDiscoveredChecks(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		move string
		want bool
	}{
		{"plain", "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", "e5d6", true},
		{"rank-pin", "8/8/8/8/k2Pp2Q/8/8/3K4 b - d3 0 1", "e4d3", false},
		{"diagonal-through-victim", "8/8/8/2k5/3Pp3/8/8/6BK b - d3 0 1", "e4d3", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			if got := hasMove(pos.LegalMoves(), tc.move); got != tc.want {
				t.Fatalf("%s present=%v want %v; moves=%v", tc.move, got, tc.want, moveStrings(pos.LegalMoves()))
			}
		})
	}

	// Double push gives check; en passant removes the checker.
	pos := mustFEN(t, "8/8/8/4k3/5p2/8/3P4/4K3 w - - 0 1")
	pos = pos.Apply(mustMove(t, &pos, "d2d4"))
	if !pos.InCheck() {
		t.Fatalf("expected black in check after d2d4")
	}
	if pos.EnPassant() != board.NoSquare {
		t.Fatalf("en passant set without a capturing pawn: %s", pos.EnPassant())
	}
	pos = mustFEN(t, "8/8/8/4k3/2p5/8/3P4/4K3 w - - 0 1")
	pos = pos.Apply(mustMove(t, &pos, "d2d4"))
	if pos.EnPassant().String() != "d3" {
		t.Fatalf("expected en passant on d3, got %s", pos.EnPassant())
	}
	if !hasMove(pos.LegalMoves(), "c4d3") {
		t.Fatalf("expected en passant capture c4d3")
	}
}

func mustMove(t *testing.T, pos *board.Position, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(pos, s)
	if err != nil {
		t.Fatalf("ParseMove(%s): %v", s, err)
	}
	return m
}

func TestCastlingRules(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want []string
		deny []string
	}{
		{"both-sides", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"e1g1", "e1c1"}, nil},
		{"through-attack", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", []string{"e1c1"}, []string{"e1g1"}},
		{"in-check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", nil, []string{"e1g1", "e1c1"}},
		{"b1-attacked-is-fine", "r3k2r/8/8/8/8/8/1r6/R3K2R w KQkq - 0 1", []string{"e1c1", "e1g1"}, nil},
		{"blocked", "r3k2r/8/8/8/8/8/8/RN2K1NR w KQkq - 0 1", nil, []string{"e1g1", "e1c1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			moves := pos.LegalMoves()
			for _, s := range tc.want {
				if !hasMove(moves, s) {
					t.Fatalf("expected %s in %v", s, moveStrings(moves))
				}
			}
			for _, s := range tc.deny {
				if hasMove(moves, s) {
					t.Fatalf("did not expect %s", s)
				}
			}
		})
	}
}

func TestPromotionsSplitAcrossModes(t *testing.T) {
	pos := mustFEN(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	cm := board.NewCheckMap(&pos)
	caps := moveStrings(pos.GenerateInto(nil, board.GenCaptures, &cm))
	quiet := moveStrings(pos.GenerateInto(nil, board.GenNoncaptures, &cm))
	for _, s := range []string{"a7b8q", "a7b8r", "a7b8b", "a7b8n", "a7a8q"} {
		if !contains(caps, s) {
			t.Fatalf("captures missing %s: %v", s, caps)
		}
	}
	for _, s := range []string{"a7a8r", "a7a8b", "a7a8n"} {
		if !contains(quiet, s) {
			t.Fatalf("noncaptures missing %s: %v", s, quiet)
		}
	}
	if contains(quiet, "a7a8q") {
		t.Fatalf("quiet queen promotion belongs to captures")
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func TestCheckMap(t *testing.T) {
	// Rook on e8 checks; bishop b4 pins the d2 knight.
	pos := mustFEN(t, "4r1k1/8/8/8/1b6/8/3N4/4K3 w - - 0 1")
	cm := board.NewCheckMap(&pos)
	if cm.Check != 1 {
		t.Fatalf("check count: got %d want 1", cm.Check)
	}
	if cm.Pinned != 1<<board.Square(11) {
		t.Fatalf("pinned: got %x want d2", cm.Pinned)
	}
	if cm.PinLine(11)&(1<<board.Square(25)) == 0 {
		t.Fatalf("pin line must include the pinner on b4")
	}
	for _, m := range pos.LegalMoves() {
		if m.MovedPiece() != board.WhiteKing {
			t.Fatalf("pinned knight or other piece moved while in check: %s", m)
		}
	}

	dbl := mustFEN(t, "4r1k1/8/8/8/7b/8/8/4K3 w - - 0 1")
	cm = board.NewCheckMap(&dbl)
	if cm.Check != 2 {
		t.Fatalf("double check: got %d want 2", cm.Check)
	}
}
