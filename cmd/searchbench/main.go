package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"chesscore/board"
	"chesscore/engine"
)

var benchFENs = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r4rk1/1pp1qppp/p1np1n2/2b1p3/2B1P3/2NP1N2/PPP1QPPP/R4RK1 w - - 0 10",
}

func main() {
	depth := flag.Int("depth", 10, "search depth in plies")
	maxThreads := flag.Int("threads", 1, "benchmark 1, 2, 4, ... up to this many threads")
	hash := flag.Int("hash", 64, "transposition table size in MB")
	fenFile := flag.String("fens", "", "file with one FEN per line (empty = built-in set)")
	cpuProfile := flag.String("cpuprofile", "", "write a CPU profile into this directory")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	if *depth <= 0 || *depth > engine.MaxDepth {
		log.Fatal().Int("depth", *depth).Msg("depth out of range")
	}

	fens := benchFENs
	if *fenFile != "" {
		var err error
		if fens, err = readFENs(*fenFile); err != nil {
			log.Fatal().Err(err).Msg("reading positions")
		}
	}
	positions := make([]board.Position, len(fens))
	for i, fen := range fens {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			log.Fatal().Err(err).Msg("bad fen")
		}
		positions[i] = pos
	}

	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile), profile.Quiet).Stop()
	}

	fmt.Printf("searchbench: positions=%d depth=%d\n", len(positions), *depth)
	fmt.Println("THREADS \tNODES \t\tTIME \t\tNPS \tSPLITS")

	var baseline time.Duration
	for threads := 1; threads <= *maxThreads; threads *= 2 {
		cfg := engine.DefaultConfig()
		cfg.Threads = threads
		cfg.HashMB = *hash
		cfg.Logger = log
		e, err := engine.NewEngine(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("engine")
		}

		var (
			nodes   uint64
			splits  uint64
			elapsed time.Duration
		)
		for i, pos := range positions {
			if err := e.NewGame(); err != nil {
				log.Fatal().Err(err).Msg("new game")
			}
			start := time.Now()
			res, err := e.Calculate(context.Background(), engine.Request{Position: pos, MaxDepth: *depth})
			if err != nil {
				log.Warn().Err(err).Int("position", i).Msg("skipped")
				continue
			}
			elapsed += time.Since(start)
			nodes += res.Nodes
			splits += res.Stats.Splits
			log.Debug().Int("position", i).Str("bestmove", res.BestMove.String()).Int("forecast", res.Forecast).Msg("searched")
		}
		_ = e.Close()

		if threads == 1 {
			baseline = elapsed
		}
		fmt.Printf("%d \t\t%d \t%s \t%.0f \t%d", threads, nodes, elapsed.Round(time.Millisecond), float64(nodes)/elapsed.Seconds(), splits)
		if threads > 1 && elapsed > 0 {
			fmt.Printf(" \tspeedup %.2f", baseline.Seconds()/elapsed.Seconds())
		}
		fmt.Println()
	}
}

func readFENs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lo.Filter(lines, func(l string, _ int) bool { return l != "" && !strings.HasPrefix(l, "#") }), nil
}
