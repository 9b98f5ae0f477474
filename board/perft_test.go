package board_test

import (
	"testing"

	"chesscore/board"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

var perftCases = []struct {
	name  string
	fen   string
	nodes []uint64 // by depth, starting at 1
}{
	{"initial", board.StartFEN, []uint64{20, 400, 8902}},
	{"kiwipete", kiwipete, []uint64{48, 2039, 97862}},
	{"endgame-pins", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812}},
	{"promotions", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
	{"checks", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []uint64{44, 1486, 62379}},
	{"middlegame", "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10", []uint64{46, 2079, 89890}},
}

func TestPerft(t *testing.T) {
	for _, tc := range perftCases {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			for i, want := range tc.nodes {
				depth := i + 1
				if testing.Short() && depth > 2 {
					break
				}
				if got := board.Perft(&pos, depth); got != want {
					t.Fatalf("perft depth%d: got %d want %d", depth, got, want)
				}
			}
		})
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	pos, err := board.ParseFEN(kiwipete)
	if err != nil {
		t.Fatal(err)
	}
	div := board.PerftDivide(&pos, 2)
	if len(div) != 48 {
		t.Fatalf("divide: got %d root moves want 48", len(div))
	}
	var sum uint64
	for _, n := range div {
		sum += n
	}
	if sum != 2039 {
		t.Fatalf("divide sum: got %d want 2039", sum)
	}
}

func benchPerft(b *testing.B, fen string, depth int) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.Perft(&pos, depth)
	}
}

func BenchmarkPerft_Initial_D4(b *testing.B) {
	benchPerft(b, board.StartFEN, 4)
}

func BenchmarkPerft_Kiwipete_D3(b *testing.B) {
	benchPerft(b, kiwipete, 3)
}

func benchGenerate(b *testing.B, fen string, mode board.GenMode) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	cm := board.NewCheckMap(&pos)
	buf := make([]board.Move, 0, 256)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = pos.GenerateInto(buf[:0], mode, &cm)
	}
}

func BenchmarkGenerateMoves_Initial(b *testing.B) {
	benchGenerate(b, board.StartFEN, board.GenAll)
}

func BenchmarkGenerateMoves_Kiwipete(b *testing.B) {
	benchGenerate(b, kiwipete, board.GenAll)
}

func BenchmarkGenerateCaptures_Kiwipete(b *testing.B) {
	benchGenerate(b, kiwipete, board.GenCaptures)
}

func BenchmarkCheckMap_Kiwipete(b *testing.B) {
	pos, err := board.ParseFEN(kiwipete)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.NewCheckMap(&pos)
	}
}
