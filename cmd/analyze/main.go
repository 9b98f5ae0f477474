// Command analyze searches a single position and prints the principal
// variations as they improve.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chesscore/board"
	"chesscore/engine"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "FEN of the position to analyze")
	moves := flag.String("moves", "", "Space separated moves played from -fen before analyzing")
	depth := flag.Int("depth", 0, "Maximum depth in plies (0 = engine maximum)")
	moveTime := flag.Duration("movetime", 0, "Fixed search time")
	wtime := flag.Duration("wtime", 0, "White clock")
	btime := flag.Duration("btime", 0, "Black clock")
	winc := flag.Duration("winc", 0, "White increment")
	binc := flag.Duration("binc", 0, "Black increment")
	movesToGo := flag.Int("movestogo", 0, "Moves until the next time control")
	threads := flag.Int("threads", 1, "Search threads")
	multiPV := flag.Int("multipv", 1, "Number of lines")
	hash := flag.Int("hash", 64, "Transposition table size in MB")
	searchMoves := flag.String("searchmoves", "", "Restrict the root to these moves")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal().Err(err).Msg("bad fen")
	}

	// Hashes of the positions before the analyzed one, for repetitions.
	var history []uint64
	for _, s := range strings.Fields(*moves) {
		m, err := board.ParseMove(&pos, s)
		if err != nil {
			log.Fatal().Err(err).Str("move", s).Msg("bad move")
		}
		history = append(history, pos.Hash())
		pos = pos.Apply(m)
	}

	var restrict []board.Move
	for _, s := range strings.Fields(*searchMoves) {
		m, err := board.ParseMove(&pos, s)
		if err != nil {
			log.Fatal().Err(err).Str("move", s).Msg("bad searchmove")
		}
		restrict = append(restrict, m)
	}

	cfg := engine.DefaultConfig()
	cfg.Threads = *threads
	cfg.HashMB = *hash
	cfg.MultiPV = *multiPV
	cfg.Logger = log
	e, err := engine.NewEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine")
	}
	defer e.Close()

	tc := engine.NewTimeControl()
	tc.Logger = log
	tc.MoveTime = *moveTime
	tc.Remaining = [2]time.Duration{*wtime, *btime}
	tc.Increment = [2]time.Duration{*winc, *binc}
	tc.MovesToGo = *movesToGo
	start := time.Now()
	tc.Start(start)
	limit, deadline := tc.Budget(pos.SideToMove(), gamePly(&pos))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := e.Calculate(ctx, engine.Request{
		Position:      pos,
		MaxDepth:      *depth,
		TimeLimit:     limit,
		Deadline:      deadline,
		Start:         start,
		History:       history,
		SearchMoves:   restrict,
		OnNewBestMove: printInfo,
	})
	if err != nil {
		log.Error().Err(err).Int("forecast", res.Forecast).Msg("no search")
		return
	}

	fmt.Printf("bestmove %s", res.BestMove)
	if !res.PonderMove.IsEmpty() {
		fmt.Printf(" ponder %s", res.PonderMove)
	}
	fmt.Println()
	tt := e.TT().Stats()
	log.Info().
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", time.Since(start)).
		Uint64("tt-entries", tt.Entries).
		Uint64("tt-hits", tt.Hits).
		Msg("done")
}

func printInfo(info engine.Info) {
	score := fmt.Sprintf("cp %d", info.Score)
	if engine.IsMateScore(info.Score) {
		score = fmt.Sprintf("mate %d", engine.MateIn(info.Score))
	}
	ms := info.Elapsed.Milliseconds()
	nps := uint64(0)
	if ms > 0 {
		nps = info.Nodes * 1000 / uint64(ms)
	}
	fmt.Printf("info depth %d multipv %d score %s nodes %d nps %d time %d pv %s\n",
		info.Depth, info.Line, score, info.Nodes, nps, ms, info.PVString())
}

// gamePly is the number of half moves played before pos, from its fullmove
// number and side to move.
func gamePly(pos *board.Position) int {
	return max(0, (pos.FullmoveNumber()-1)*2+int(pos.SideToMove()))
}
