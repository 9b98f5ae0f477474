package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"chesscore/board"
)

var ErrNotInBook = errors.New("engine: position not in book")

// BookEntry is one scored move of a book position.
type BookEntry struct {
	Move     board.Move
	Forecast int
	Depth    int
}

// Book supplies precomputed moves. Entries must be sorted by forecast,
// highest first, deeper searches first among equal forecasts.
type Book interface {
	Entries(pos *board.Position, history []board.Move) []BookEntry
	// MarkForProcessing queues the position reached by history for a
	// later search.
	MarkForProcessing(history []board.Move) error
}

// BookWork is a queued book position.
type BookWork struct {
	History  []board.Move
	Position board.Position
}

// MemoryBook is a Book kept in memory, keyed by the move sequence from the
// start position.
type MemoryBook struct {
	mu      sync.RWMutex
	start   board.Position
	entries map[string][]BookEntry
	queued  map[string]BookWork
}

// NewMemoryBook returns an empty book rooted at the standard start
// position.
func NewMemoryBook() *MemoryBook {
	start, _ := board.ParseFEN(board.StartFEN)
	return &MemoryBook{
		start:   start,
		entries: make(map[string][]BookEntry),
		queued:  make(map[string]BookWork),
	}
}

func historyKey(history []board.Move) string {
	return strings.Join(lo.Map(history, func(m board.Move, _ int) string { return m.String() }), " ")
}

func sortBookEntries(entries []BookEntry) {
	slices.SortStableFunc(entries, func(a, b BookEntry) int {
		if a.Forecast != b.Forecast {
			return b.Forecast - a.Forecast
		}
		return b.Depth - a.Depth
	})
}

// replay applies history to the start position.
func (b *MemoryBook) replay(history []board.Move) (board.Position, error) {
	pos := b.start
	for i, m := range history {
		if !pos.IsLegal(m) {
			return pos, fmt.Errorf("%w: move %d (%s)", board.ErrIllegalMove, i+1, m)
		}
		pos = pos.Apply(m)
	}
	return pos, nil
}

// AddEntries stores entries for the position after history, replacing
// entries for the same moves.
func (b *MemoryBook) AddEntries(history []board.Move, entries []BookEntry) error {
	pos, err := b.replay(history)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !pos.IsLegal(e.Move) {
			return fmt.Errorf("%w: book move %s", board.ErrIllegalMove, e.Move)
		}
	}

	key := historyKey(history)
	b.mu.Lock()
	defer b.mu.Unlock()
	merged := lo.Filter(b.entries[key], func(old BookEntry, _ int) bool {
		return !lo.ContainsBy(entries, func(e BookEntry) bool { return e.Move.Same(old.Move) })
	})
	merged = append(merged, entries...)
	sortBookEntries(merged)
	b.entries[key] = merged
	delete(b.queued, key)
	return nil
}

// Entries implements Book.
func (b *MemoryBook) Entries(pos *board.Position, history []board.Move) []BookEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := b.entries[historyKey(history)]
	return lo.Filter(entries, func(e BookEntry, _ int) bool { return pos.IsLegal(e.Move) })
}

// MarkForProcessing implements Book.
func (b *MemoryBook) MarkForProcessing(history []board.Move) error {
	pos, err := b.replay(history)
	if err != nil {
		return err
	}
	key := historyKey(history)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[key]; ok {
		return nil
	}
	b.queued[key] = BookWork{History: slices.Clone(history), Position: pos}
	return nil
}

// Unprocessed lists the queued positions.
func (b *MemoryBook) Unprocessed() []BookWork {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return lo.Values(b.queued)
}

// Size is the number of positions with entries.
func (b *MemoryBook) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// pickBookMove chooses among the entries whose forecast is within variety
// of the best one.
func pickBookMove(entries []BookEntry, variety int) (BookEntry, bool) {
	if len(entries) == 0 {
		return BookEntry{}, false
	}
	best := entries[0].Forecast
	candidates := lo.Filter(entries, func(e BookEntry, _ int) bool { return e.Forecast >= best-variety })
	if variety > 0 && len(candidates) > 1 {
		frand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}
	return candidates[0], true
}
