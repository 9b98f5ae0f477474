package engine

// seenPositions tracks the hashes along the game and the current search
// line for repetition detection. Index root holds the position searched at
// ply 1; the position searched at ply n lives at root+n-1.
type seenPositions struct {
	hashes []uint64
	root   int
	// barrier is the first index a repetition may match. It moves forward
	// across null moves.
	barrier int
}

func newSeenPositions() seenPositions {
	return seenPositions{hashes: make([]uint64, 0, 256+MaxPly)}
}

// reset starts a new history at the given position.
func (s *seenPositions) reset(hash uint64) {
	s.hashes = append(s.hashes[:0], hash)
	s.root = 0
	s.barrier = 0
}

// pushRoot appends a game position and makes it the root.
func (s *seenPositions) pushRoot(hash uint64) {
	s.root++
	s.ensure(s.root + 1)
	s.hashes[s.root] = hash
}

func (s *seenPositions) ensure(n int) {
	for len(s.hashes) < n {
		s.hashes = append(s.hashes, 0)
	}
}

// set records the position reached at ply.
func (s *seenPositions) set(hash uint64, ply int) {
	i := s.root + ply
	s.ensure(i + 1)
	s.hashes[i] = hash
}

// isTwoFold reports whether the position reached at ply already occurred
// with the same side to move since the barrier.
func (s *seenPositions) isTwoFold(hash uint64, ply int) bool {
	i := s.root + ply - 2
	if i >= len(s.hashes) {
		return false
	}
	for ; i >= s.barrier; i -= 2 {
		if s.hashes[i] == hash {
			return true
		}
	}
	return false
}

// copyFrom makes s an exact copy of o.
func (s *seenPositions) copyFrom(o *seenPositions) {
	s.hashes = append(s.hashes[:0], o.hashes...)
	s.root = o.root
	s.barrier = o.barrier
}

// cloneFrom copies the part of o's line that leads to a node at ply, so a
// helper thread can search that node's children.
func (s *seenPositions) cloneFrom(o *seenPositions, ply int) {
	n := min(o.root+ply, len(o.hashes))
	s.hashes = append(s.hashes[:0], o.hashes[:n]...)
	s.root = o.root
	s.barrier = o.barrier
}

// enterNull records a null move made at ply and blocks repetitions across
// it. The returned value restores the previous barrier.
func (s *seenPositions) enterNull(hash uint64, ply int) int {
	old := s.barrier
	s.set(hash, ply)
	s.barrier = s.root + ply
	return old
}

func (s *seenPositions) leaveNull(barrier int) {
	s.barrier = barrier
}

// setHistory starts from the game positions before the root, oldest
// first, followed by the root itself.
func (s *seenPositions) setHistory(history []uint64, root uint64) {
	s.hashes = append(append(s.hashes[:0], history...), root)
	s.root = len(history)
	s.barrier = 0
}
