package bench

import (
	"testing"

	"github.com/Oliverans/GooseEngineMG/goosemg"

	"chesscore/board"
)

func benchPerft(b *testing.B, fen string, depth int) {
	pos := mustFEN(b, fen)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = board.Perft(&pos, depth)
	}
}

func BenchmarkPerft_Initial_D4(b *testing.B)  { benchPerft(b, board.StartFEN, 4) }
func BenchmarkPerft_Kiwipete_D3(b *testing.B) { benchPerft(b, kiwipete, 3) }

// The reference generator, for comparing throughput on the same trees.
func benchPerftGoose(b *testing.B, fen string, depth int) {
	ref, err := goosemg.ParseFEN(fen)
	if err != nil {
		b.Fatalf("goosemg.ParseFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = goosemg.Perft(ref, depth)
	}
}

func BenchmarkPerftGoose_Initial_D4(b *testing.B)  { benchPerftGoose(b, board.StartFEN, 4) }
func BenchmarkPerftGoose_Kiwipete_D3(b *testing.B) { benchPerftGoose(b, kiwipete, 3) }
