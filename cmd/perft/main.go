package main

import (
	"cmp"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/Oliverans/GooseEngineMG/goosemg"
	"github.com/pkg/profile"
	"github.com/samber/lo"

	"chesscore/board"
)

func main() {
	os.Exit(run())
}

func run() int {
	fen := flag.String("fen", board.StartFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "Cross-check counts against the GooseEngineMG generator")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write a CPU profile into this directory")
	memProf := flag.String("memprofile", "", "Write a heap profile into this directory")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		return 2
	}

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseFEN error: %v\n", err)
		return 2
	}

	switch {
	case *cpuProf != "":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProf), profile.Quiet).Stop()
	case *memProf != "":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*memProf), profile.Quiet).Stop()
	}

	if *divide {
		return runDivide(&pos, *fen, *depth, *verify)
	}

	var totalNodes uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		totalNodes += board.Perft(&pos, *depth)
	}
	elapsed := time.Since(start)
	nps := float64(totalNodes) / elapsed.Seconds()

	// Label Depth Nodes Time NPS
	fmt.Printf("%s \t%d \t\t%d \t\t%s \t%.0f\n", *label, *depth, totalNodes, elapsed, nps)

	if *verify {
		ref, err := goosemg.ParseFEN(*fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "goosemg ParseFEN error: %v\n", err)
			return 2
		}
		want := goosemg.Perft(ref, *depth)
		if got := totalNodes / uint64(*repeat); got != want {
			fmt.Fprintf(os.Stderr, "MISMATCH: %d nodes, goosemg counts %d\n", got, want)
			return 1
		}
		fmt.Println("verified against goosemg")
	}
	return 0
}

// runDivide prints the per-move counts, sorted for stable output, and with
// verify marks every move whose count differs from the reference.
func runDivide(pos *board.Position, fen string, depth int, verify bool) int {
	div := board.PerftDivide(pos, depth)

	var ref map[string]uint64
	if verify {
		g, err := goosemg.ParseFEN(fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "goosemg ParseFEN error: %v\n", err)
			return 2
		}
		ref = lo.MapKeys(goosemg.PerftDivide(g, depth), func(_ uint64, m goosemg.Move) string { return m.String() })
	}

	moves := lo.Keys(div)
	slices.SortFunc(moves, func(a, b board.Move) int { return cmp.Compare(a.String(), b.String()) })

	code := 0
	for _, m := range moves {
		n := div[m]
		if !verify {
			fmt.Printf("%s: %d\n", m, n)
			continue
		}
		want, ok := ref[m.String()]
		delete(ref, m.String())
		if !ok || want != n {
			fmt.Printf("%s: %d (goosemg %d) MISMATCH\n", m, n, want)
			code = 1
			continue
		}
		fmt.Printf("%s: %d\n", m, n)
	}
	for m, n := range ref {
		fmt.Printf("%s: missing (goosemg %d) MISMATCH\n", m, n)
		code = 1
	}
	fmt.Printf("Total: %d\n", lo.Sum(lo.Values(div)))
	return code
}
