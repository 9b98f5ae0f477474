package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidConfig = errors.New("engine: invalid config")
	ErrNoMoves       = errors.New("engine: no legal moves")
)

const (
	MaxThreads = 64
	MaxMultiPV = 99
)

// Config configures an Engine.
type Config struct {
	Threads    int // Search threads, master included
	HashMB     int // Transposition table size
	PawnHashMB int // Pawn structure cache size
	MultiPV    int // Number of root lines kept fully scored
	MaxDepth   int // Upper bound for iterative deepening, in plies
	Logger     zerolog.Logger

	// Evaluator defaults to the piece-square evaluator when nil.
	Evaluator Evaluator

	// Book is consulted by BookMove. May be nil.
	Book Book

	// BookVariety is the forecast tolerance, in centipawns, within which
	// book moves are considered equal. Zero always plays the top entry.
	BookVariety int
}

// DefaultConfig returns a single-threaded configuration with a 64 MB hash
// and a disabled logger.
func DefaultConfig() Config {
	return Config{
		Threads:    1,
		HashMB:     64,
		PawnHashMB: 4,
		MultiPV:    1,
		MaxDepth:   MaxDepth,
		Logger:     zerolog.Nop(),
	}
}

// Validate checks the configuration, filling in defaults for zero values
// the way DefaultConfig would.
func (c *Config) Validate() error {
	if c.Threads == 0 {
		c.Threads = 1
	}
	if c.Threads < 1 || c.Threads > MaxThreads {
		return fmt.Errorf("%w: threads %d outside 1..%d", ErrInvalidConfig, c.Threads, MaxThreads)
	}
	if c.HashMB == 0 {
		c.HashMB = 64
	}
	if c.HashMB < 1 {
		return fmt.Errorf("%w: hash size %d MB", ErrInvalidConfig, c.HashMB)
	}
	if c.PawnHashMB == 0 {
		c.PawnHashMB = 4
	}
	if c.PawnHashMB < 1 {
		return fmt.Errorf("%w: pawn hash size %d MB", ErrInvalidConfig, c.PawnHashMB)
	}
	if c.MultiPV == 0 {
		c.MultiPV = 1
	}
	if c.MultiPV < 1 || c.MultiPV > MaxMultiPV {
		return fmt.Errorf("%w: multipv %d outside 1..%d", ErrInvalidConfig, c.MultiPV, MaxMultiPV)
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = MaxDepth
	}
	if c.MaxDepth < 1 || c.MaxDepth > MaxDepth {
		return fmt.Errorf("%w: max depth %d outside 1..%d", ErrInvalidConfig, c.MaxDepth, MaxDepth)
	}
	if c.BookVariety < 0 {
		return fmt.Errorf("%w: negative book variety", ErrInvalidConfig)
	}
	return nil
}
