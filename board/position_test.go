package board_test

import (
	"errors"
	"testing"

	"chesscore/board"
)

func TestIncrementalStateMatchesRecompute(t *testing.T) {
	for i, fen := range walkFENs {
		walk(t, fen, 400, int64(i+100), func(pos *board.Position, moves []board.Move) {
			if err := pos.Validate(); err != nil {
				t.Fatalf("%s: %v", pos.FEN(), err)
			}
		})
	}
}

func TestApplyDoesNotMutateParent(t *testing.T) {
	pos := mustFEN(t, kiwipete)
	before := pos.FEN()
	hash := pos.Hash()
	for _, m := range pos.LegalMoves() {
		_ = pos.Apply(m)
	}
	if pos.FEN() != before || pos.Hash() != hash {
		t.Fatalf("Apply modified its receiver")
	}
}

func TestHashTranspositions(t *testing.T) {
	a := board.NewPosition()
	for _, s := range []string{"g1f3", "g8f6", "b1c3", "b8c6"} {
		a = a.Apply(mustMove(t, &a, s))
	}
	b := board.NewPosition()
	for _, s := range []string{"b1c3", "b8c6", "g1f3", "g8f6"} {
		b = b.Apply(mustMove(t, &b, s))
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("transposed move orders produced different hashes")
	}
	start := board.NewPosition()
	if a.PawnHash() != start.PawnHash() {
		t.Fatalf("pawn hash changed without pawn moves")
	}
}

func TestApplyNull(t *testing.T) {
	pos := mustFEN(t, "8/8/8/4k3/2p5/8/3P4/4K3 w - - 0 1")
	pos = pos.Apply(mustMove(t, &pos, "d2d4"))
	null := pos.ApplyNull()
	if null.SideToMove() != board.White {
		t.Fatalf("null move did not pass the turn")
	}
	if null.EnPassant() != board.NoSquare {
		t.Fatalf("null move kept the en passant square")
	}
	if err := null.Validate(); err != nil {
		t.Fatalf("null move: %v", err)
	}
	back := null.ApplyNull()
	if back.Hash() == pos.Hash() {
		t.Fatalf("two null moves must not restore the lost en passant state")
	}
}

func TestCastlingRightsUpdates(t *testing.T) {
	pos := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")

	castled := pos.Apply(mustMove(t, &pos, "e1g1"))
	if castled.PieceAt(board.F1) != board.WhiteRook || castled.PieceAt(board.G1) != board.WhiteKing {
		t.Fatalf("castling placed pieces wrong: %s", castled.FEN())
	}
	if castled.CastleRights(board.White) != 0 {
		t.Fatalf("castling must clear both white rights")
	}

	rookTakes := pos.Apply(mustMove(t, &pos, "a1a8"))
	if rookTakes.CastleRights(board.White) != board.CastleKingSide {
		t.Fatalf("white queen side right must go when the a1 rook leaves")
	}
	if rookTakes.CastleRights(board.Black) != board.CastleKingSide {
		t.Fatalf("black queen side right must go when the a8 rook is captured")
	}
	if err := rookTakes.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestPromotionMaterial(t *testing.T) {
	pos := mustFEN(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	before := pos.Material(board.White)
	after := pos.Apply(mustMove(t, &pos, "a7b8q"))
	want := before.Sub(board.MaterialValue[board.PieceTypePawn]).Add(board.MaterialValue[board.PieceTypeQueen])
	if got := after.Material(board.White); got != want {
		t.Fatalf("material after promotion: got %+v want %+v", got, want)
	}
	if after.Material(board.Black).MG != 0 {
		t.Fatalf("captured knight still counted")
	}
	if err := after.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestInsufficientMaterial(t *testing.T) {
	cases := []struct {
		fen  string
		want bool
	}{
		{"8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/3NK3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/3BK3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/3RK3 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false},
		{"8/8/8/4k3/8/8/8/2NNK3 w - - 0 1", false},
	}
	for _, tc := range cases {
		pos := mustFEN(t, tc.fen)
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("%s: insufficient=%v want %v", tc.fen, got, tc.want)
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	for _, tc := range perftCases {
		pos := mustFEN(t, tc.fen)
		if got := pos.FEN(); got != tc.fen {
			t.Errorf("round trip: got %q want %q", got, tc.fen)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkz - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2r b - - 0 1",
	}
	for _, fen := range bad {
		if _, err := board.ParseFEN(fen); !errors.Is(err, board.ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q): got %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestParseMove(t *testing.T) {
	pos := board.NewPosition()
	m, err := board.ParseMove(&pos, "e2e4")
	if err != nil {
		t.Fatal(err)
	}
	if m.Flags() != board.FlagDoublePush || m.MovedPiece() != board.WhitePawn {
		t.Fatalf("e2e4 decoded as %032b", uint32(m))
	}
	for _, s := range []string{"e2e5", "e7e5", "zz", "e2e4x", "0000"} {
		if _, err := board.ParseMove(&pos, s); !errors.Is(err, board.ErrIllegalMove) {
			t.Errorf("ParseMove(%q): got %v, want ErrIllegalMove", s, err)
		}
	}
}

func TestMoveSame(t *testing.T) {
	pos := mustFEN(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	q := mustMove(t, &pos, "a7b8q")
	n := mustMove(t, &pos, "a7b8n")
	bare := board.NewMove(q.From(), q.To(), board.NoPiece, board.NoPiece, q.PromotionPiece(), board.FlagNone)
	if !q.Same(bare) {
		t.Fatalf("Same must ignore piece decoration")
	}
	if q.Same(n) {
		t.Fatalf("Same must compare promotion")
	}
}
