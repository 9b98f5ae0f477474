package bench

import (
	"context"
	"testing"

	"chesscore/board"
	"chesscore/engine"
)

func benchSearch(b *testing.B, fen string, depth, threads int) {
	pos := mustFEN(b, fen)
	cfg := engine.DefaultConfig()
	cfg.Threads = threads
	cfg.HashMB = 16
	e, err := engine.NewEngine(cfg)
	if err != nil {
		b.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	var nodes uint64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		if err := e.NewGame(); err != nil {
			b.Fatalf("NewGame: %v", err)
		}
		b.StartTimer()
		res, err := e.Calculate(context.Background(), engine.Request{Position: pos, MaxDepth: depth})
		if err != nil {
			b.Fatalf("Calculate: %v", err)
		}
		nodes += res.Nodes
	}
	b.ReportMetric(float64(nodes)/b.Elapsed().Seconds(), "nodes/s")
}

func BenchmarkSearch_Initial_D8(b *testing.B)           { benchSearch(b, board.StartFEN, 8, 1) }
func BenchmarkSearch_Kiwipete_D6(b *testing.B)          { benchSearch(b, kiwipete, 6, 1) }
func BenchmarkSearch_Kiwipete_D6_4Threads(b *testing.B) { benchSearch(b, kiwipete, 6, 4) }
func BenchmarkSearch_Pos6_D7_4Threads(b *testing.B)     { benchSearch(b, pos6, 7, 4) }

func BenchmarkEvaluate_Kiwipete(b *testing.B) {
	pos := mustFEN(b, kiwipete)
	ev := engine.NewPSTEvaluator(1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ev.Evaluate(&pos)
	}
}

func BenchmarkTransTable_StoreLookup(b *testing.B) {
	tt := engine.NewTransTable(16)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := uint64(i) * 0x9E3779B97F4A7C15
		tt.Store(h, 6, 0, 10, -100, 100, 0, 1, 0)
		_ = tt.Lookup(h, 6, 0, -100, 100)
	}
}
