package bench

import (
	"testing"

	"chesscore/board"
)

const (
	kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	pos6     = "r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10"
)

func mustFEN(b *testing.B, fen string) board.Position {
	b.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		b.Fatalf("ParseFEN: %v", err)
	}
	return pos
}

func benchGenerate(b *testing.B, fen string, mode board.GenMode) {
	pos := mustFEN(b, fen)
	cm := board.NewCheckMap(&pos)
	buf := make([]board.Move, 0, 256)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = pos.GenerateInto(buf[:0], mode, &cm)
	}
}

func BenchmarkGenerateMoves_Initial(b *testing.B)  { benchGenerate(b, board.StartFEN, board.GenAll) }
func BenchmarkGenerateMoves_Kiwipete(b *testing.B) { benchGenerate(b, kiwipete, board.GenAll) }
func BenchmarkGenerateMoves_Pos6(b *testing.B)     { benchGenerate(b, pos6, board.GenAll) }

func BenchmarkGenerateCaptures_EP(b *testing.B) {
	benchGenerate(b, "k7/8/8/3pP3/8/8/8/7K w - d6 0 2", board.GenCaptures)
}

func BenchmarkGenerateQuiets_Initial(b *testing.B) {
	benchGenerate(b, board.StartFEN, board.GenNoncaptures)
}

func BenchmarkGenerateChecks_Kiwipete(b *testing.B) {
	benchGenerate(b, kiwipete, board.GenPseudoCheck)
}

func BenchmarkCheckMap_Kiwipete(b *testing.B) {
	pos := mustFEN(b, kiwipete)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.NewCheckMap(&pos)
	}
}

func BenchmarkApply_AllMoves_Kiwipete(b *testing.B) {
	pos := mustFEN(b, kiwipete)
	moves := pos.LegalMoves()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, m := range moves {
			_ = pos.Apply(m)
		}
	}
}
