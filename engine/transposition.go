package engine

import (
	"sync"
	"sync/atomic"
)

// NodeType tells how a stored score bounds the true value of a node.
type NodeType uint8

const (
	NodeNone  NodeType = iota // no usable bound, entry only caches a move or static eval
	NodeExact                 // score within the window
	NodeLower                 // failed high, true value >= score
	NodeUpper                 // failed low, true value <= score
)

func (t NodeType) String() string {
	switch t {
	case NodeExact:
		return "exact"
	case NodeLower:
		return "lower"
	case NodeUpper:
		return "upper"
	}
	return "none"
}

const (
	bucketEntries = 4
	entryBytes    = 16
	ttLockRegions = 256
)

// Packed entry layout:
//
//	field      bit  width
//	age         0    8
//	depth       8    8
//	move       16   14   from 6, to 6, promotion kind 2
//	node type  32    2
//	eval       34   14   signed static evaluation, evalUnset if unknown
//	score      48   16   signed
const (
	ageShift   = 0
	depthShift = 8
	moveShift  = 16
	typeShift  = 32
	evalShift  = 34
	scoreShift = 48

	moveMask = 0x3FFF
	evalBits = 14
	evalMask = 1<<evalBits - 1

	evalUnset = -(1 << (evalBits - 1))
	evalMax   = 1<<(evalBits-1) - 1
)

type ttEntry struct {
	key  uint64
	data uint64
}

func packEntry(clock uint8, depth int, move uint16, t NodeType, eval, score int) uint64 {
	v := uint64(clock) << ageShift
	v |= uint64(uint8(clamp(depth, 0, 255))) << depthShift
	v |= uint64(move&moveMask) << moveShift
	v |= uint64(t&3) << typeShift
	if eval == noEval {
		eval = evalUnset
	} else {
		eval = clamp(eval, evalUnset+1, evalMax)
	}
	v |= (uint64(eval) & evalMask) << evalShift
	v |= uint64(uint16(int16(score))) << scoreShift
	return v
}

func (e ttEntry) age() uint8         { return uint8(e.data >> ageShift) }
func (e ttEntry) depth() int         { return int(uint8(e.data >> depthShift)) }
func (e ttEntry) move() uint16       { return uint16(e.data>>moveShift) & moveMask }
func (e ttEntry) nodeType() NodeType { return NodeType(e.data>>typeShift) & 3 }
func (e ttEntry) score() int         { return int(int16(e.data >> scoreShift)) }

func (e ttEntry) eval() int {
	raw := int((e.data >> evalShift) & evalMask)
	if raw&(1<<(evalBits-1)) != 0 {
		raw -= 1 << evalBits
	}
	if raw == evalUnset {
		return noEval
	}
	return raw
}

// TTStats are cumulative probe counters.
type TTStats struct {
	Hits     uint64 // lookups returning a usable bound
	Misses   uint64 // lookups finding no entry
	BestMove uint64 // lookups finding an entry that only served a move
	Entries  uint64 // slots filled since the last Clear
}

// TransTable is a fixed-size, bucketed transposition table shared by all
// search threads. Buckets hold four entries and are guarded by a fixed set
// of read/write lock regions, so the lock count does not depend on the
// table size.
type TransTable struct {
	entries       []ttEntry
	bucketCount   uint64
	lockBlockSize uint64
	locks         [ttLockRegions]sync.RWMutex

	hits     atomic.Uint64
	misses   atomic.Uint64
	bestMove atomic.Uint64
	filled   atomic.Uint64
}

// NewTransTable allocates a table of roughly sizeMB megabytes.
func NewTransTable(sizeMB int) *TransTable {
	tt := &TransTable{}
	tt.Init(sizeMB)
	return tt
}

// Init re-allocates the table, dropping every entry. It must not run
// concurrently with lookups or stores.
func (tt *TransTable) Init(sizeMB int) {
	size := uint64(max(sizeMB, 1)) * 1024 * 1024
	tt.bucketCount = max(size/(entryBytes*bucketEntries), 1)
	n := tt.bucketCount * bucketEntries
	tt.lockBlockSize = (n + ttLockRegions - 1) / ttLockRegions
	tt.entries = make([]ttEntry, n)
	tt.resetStats()
}

// Clear zeroes every entry.
func (tt *TransTable) Clear() {
	for i := range tt.locks {
		tt.locks[i].Lock()
	}
	clear(tt.entries)
	for i := range tt.locks {
		tt.locks[i].Unlock()
	}
	tt.resetStats()
}

func (tt *TransTable) resetStats() {
	tt.hits.Store(0)
	tt.misses.Store(0)
	tt.bestMove.Store(0)
	tt.filled.Store(0)
}

// Capacity is the number of entry slots.
func (tt *TransTable) Capacity() int { return len(tt.entries) }

func (tt *TransTable) bucket(hash uint64) (offset uint64, lock *sync.RWMutex) {
	offset = (hash % tt.bucketCount) * bucketEntries
	return offset, &tt.locks[offset/tt.lockBlockSize]
}

// Probe is the outcome of a Lookup.
type Probe struct {
	// Type is NodeNone unless Score may be used as a cutoff for the
	// requested depth and window.
	Type  NodeType
	Score int
	// Move is the stored best move in compact form, zero if none. It is
	// returned even when the bound is not usable.
	Move uint16
	// Eval is the cached static evaluation or noEval.
	Eval int
}

// Found reports whether the probe produced a usable bound.
func (p Probe) Found() bool { return p.Type != NodeNone }

// Lookup searches for hash. The bound is usable if the stored depth is at
// least depth and it is exact, or a lower bound >= beta, or an upper bound
// <= alpha. Mate scores are converted back to be relative to ply.
func (tt *TransTable) Lookup(hash uint64, depth, ply, alpha, beta int) Probe {
	offset, lock := tt.bucket(hash)
	lock.RLock()
	var e ttEntry
	found := false
	for i := offset; i < offset+bucketEntries; i++ {
		if tt.entries[i].key == hash {
			e, found = tt.entries[i], true
			break
		}
	}
	lock.RUnlock()

	if !found {
		tt.misses.Add(1)
		return Probe{Eval: noEval}
	}

	probe := Probe{Move: e.move(), Eval: e.eval()}
	t := e.nodeType()
	if t != NodeNone && e.depth() >= depth {
		score := scoreFromTT(e.score(), ply)
		if t == NodeExact || (t == NodeLower && score >= beta) || (t == NodeUpper && score <= alpha) {
			tt.hits.Add(1)
			probe.Type = t
			probe.Score = score
			return probe
		}
	}
	tt.bestMove.Add(1)
	return probe
}

// Store records a search result. The node type is derived from score
// relative to the window [alpha, beta] the node was searched with.
func (tt *TransTable) Store(hash uint64, depth, ply, score, alpha, beta int, move uint16, clock uint8, eval int) {
	t := NodeExact
	if score >= beta {
		t = NodeLower
	} else if score <= alpha {
		t = NodeUpper
	}
	tt.write(hash, packEntry(clock, depth, move, t, eval, scoreToTT(score, ply)), clock)
}

// StoreEval caches a static evaluation without any bound.
func (tt *TransTable) StoreEval(hash uint64, eval int, clock uint8) {
	tt.write(hash, packEntry(clock, 0, 0, NodeNone, eval, 0), clock)
}

// StoreMove records a best move without a bound or evaluation.
func (tt *TransTable) StoreMove(hash uint64, move uint16, clock uint8) {
	tt.write(hash, packEntry(clock, 0, move, NodeNone, noEval, 0), clock)
}

// write picks a slot: the one holding the same key, else the shallowest
// entry from an older search, else the shallowest entry overall.
func (tt *TransTable) write(hash, data uint64, clock uint8) {
	offset, lock := tt.bucket(hash)
	lock.Lock()
	defer lock.Unlock()

	b := tt.entries[offset : offset+bucketEntries]
	for i := range b {
		if b[i].key == hash {
			b[i].data = data
			return
		}
	}

	slot := -1
	lowest := 256
	for i := range b {
		if b[i].age() != clock && b[i].depth() < lowest {
			lowest = b[i].depth()
			slot = i
		}
	}
	if slot < 0 {
		lowest = 256
		for i := range b {
			if b[i].depth() < lowest {
				lowest = b[i].depth()
				slot = i
			}
		}
	}

	if b[slot].key == 0 {
		tt.filled.Add(1)
	}
	b[slot] = ttEntry{key: hash, data: data}
}

// Stats returns the probe counters.
func (tt *TransTable) Stats() TTStats {
	return TTStats{
		Hits:     tt.hits.Load(),
		Misses:   tt.misses.Load(),
		BestMove: tt.bestMove.Load(),
		Entries:  tt.filled.Load(),
	}
}

// HashFull returns the permille of sampled slots written during the search
// identified by clock.
func (tt *TransTable) HashFull(clock uint8) int {
	n := min(1000, len(tt.entries))
	used := 0
	for i := 0; i < n; i++ {
		lock := &tt.locks[uint64(i)/tt.lockBlockSize]
		lock.RLock()
		e := tt.entries[i]
		lock.RUnlock()
		if e.key != 0 && e.age() == clock {
			used++
		}
	}
	return used * 1000 / n
}

func scoreToTT(score, ply int) int {
	if score >= ScoreWinThreshold {
		return score + ply
	}
	if score <= ScoreLossThreshold {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score >= ScoreWinThreshold {
		return score - ply
	}
	if score <= ScoreLossThreshold {
		return score + ply
	}
	return score
}
