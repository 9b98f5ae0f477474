package engine

import "testing"

func TestSeenPositionsTwoFold(t *testing.T) {
	s := newSeenPositions()
	// Game: A B C, root is C. Searching from C: ply 1 = D, ply 2 = E.
	const a, b, c, d, e = 1, 2, 3, 4, 5
	s.setHistory([]uint64{a, b}, c)

	if !s.isTwoFold(b, 1) {
		t.Fatalf("ply 1 position equal to the game position before the root not detected")
	}
	if s.isTwoFold(c, 1) {
		t.Fatalf("ply 1 matched a position with the other side to move")
	}
	s.set(d, 1)
	if !s.isTwoFold(c, 2) || !s.isTwoFold(a, 2) {
		t.Fatalf("ply 2 repetition of root or older game position not detected")
	}
	if s.isTwoFold(d, 2) || s.isTwoFold(e, 2) {
		t.Fatalf("false repetition at ply 2")
	}
	s.set(e, 2)
	if !s.isTwoFold(d, 3) {
		t.Fatalf("ply 3 repetition of ply 1 not detected")
	}
}

func TestSeenPositionsNullBarrier(t *testing.T) {
	s := newSeenPositions()
	s.setHistory([]uint64{1, 2}, 3)
	s.set(4, 1)

	barrier := s.enterNull(5, 2)
	if s.isTwoFold(3, 4) || s.isTwoFold(1, 4) {
		t.Fatalf("repetition detected across a null move")
	}
	s.set(6, 3)
	if !s.isTwoFold(5, 4) {
		t.Fatalf("repetition after the null move not detected")
	}
	s.leaveNull(barrier)
	if !s.isTwoFold(3, 2) {
		t.Fatalf("barrier not restored")
	}
}

func TestSeenPositionsCloneFrom(t *testing.T) {
	var master, helper seenPositions
	master.setHistory([]uint64{1}, 2)
	master.set(3, 1)
	master.set(4, 2)
	master.set(5, 3)

	helper.cloneFrom(&master, 2)
	if len(helper.hashes) != master.root+2 {
		t.Fatalf("clone kept %d hashes, want %d", len(helper.hashes), master.root+2)
	}
	if !helper.isTwoFold(3, 3) {
		t.Fatalf("clone lost the line leading to the split node")
	}
	helper.set(9, 2)
	if master.hashes[master.root+2] != 4 {
		t.Fatalf("clone shares storage with its source")
	}
}
