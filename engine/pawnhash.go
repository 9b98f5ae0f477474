package engine

import (
	"sync"

	"chesscore/board"
)

const pawnLockRegions = 64

// pawnEntry caches the pawn structure term for one pawn hash.
type pawnEntry struct {
	key    uint64
	score  board.Score // white minus black
	passed [2]uint64
}

// PawnCache is a direct-mapped cache of pawn structure evaluations keyed by
// the position's pawn hash. Like the transposition table it is shared by
// all search threads and guarded by lock regions.
type PawnCache struct {
	entries []pawnEntry
	mask    uint64
	locks   [pawnLockRegions]sync.RWMutex
}

// NewPawnCache creates a cache of roughly sizeMB megabytes.
func NewPawnCache(sizeMB int) *PawnCache {
	const entrySize = 40
	n := max(sizeMB, 1) * 1024 * 1024 / entrySize

	size := 1
	for size*2 <= n {
		size *= 2
	}
	return &PawnCache{
		entries: make([]pawnEntry, size),
		mask:    uint64(size - 1),
	}
}

func (pc *PawnCache) lock(idx uint64) *sync.RWMutex {
	return &pc.locks[idx%pawnLockRegions]
}

// Probe returns the cached entry for key.
func (pc *PawnCache) Probe(key uint64) (pawnEntry, bool) {
	idx := key & pc.mask
	l := pc.lock(idx)
	l.RLock()
	e := pc.entries[idx]
	l.RUnlock()
	return e, e.key == key && key != 0
}

// Store overwrites the slot for e.key.
func (pc *PawnCache) Store(e pawnEntry) {
	idx := e.key & pc.mask
	l := pc.lock(idx)
	l.Lock()
	pc.entries[idx] = e
	l.Unlock()
}

// Clear empties the cache.
func (pc *PawnCache) Clear() {
	for i := range pc.locks {
		pc.locks[i].Lock()
	}
	clear(pc.entries)
	for i := range pc.locks {
		pc.locks[i].Unlock()
	}
}
