package engine

import (
	"testing"

	"chesscore/board"
)

func TestKillerTable(t *testing.T) {
	pos := mustPosition(t, board.StartFEN)
	a := mustParseMove(t, &pos, "g1f3")
	b := mustParseMove(t, &pos, "b1c3")
	c := mustParseMove(t, &pos, "e2e4")

	var k killerTable
	k.add(a, 3)
	k.add(a, 3)
	if got := k.get(3); got[0] != a || !got[1].IsEmpty() {
		t.Fatalf("after adding twice: %v", got)
	}
	k.add(b, 3)
	k.add(c, 3)
	if got := k.get(3); got[0] != c || got[1] != b {
		t.Fatalf("killers = %v, want [%s %s]", got, c, b)
	}
	if got := k.get(4); !got[0].IsEmpty() {
		t.Fatalf("killer leaked to another ply")
	}
	if got := k.get(MaxPly + 5); !got[0].IsEmpty() {
		t.Fatalf("out of range ply returned a killer")
	}
	k.clear()
	if got := k.get(3); !got[0].IsEmpty() {
		t.Fatalf("clear kept killers")
	}
}

func TestHistory(t *testing.T) {
	pos := mustPosition(t, board.StartFEN)
	good := mustParseMove(t, &pos, "g1f3")
	bad := mustParseMove(t, &pos, "a2a3")

	var h history
	for i := 0; i < 4; i++ {
		h.record(&pos, good)
		h.record(&pos, bad)
	}
	h.recordCut(&pos, good, 3)

	if h.value(board.White, good) <= h.value(board.White, bad) {
		t.Fatalf("cutoff move not preferred: %d vs %d", h.value(board.White, good), h.value(board.White, bad))
	}
	if h.value(board.Black, good) != 0 {
		t.Fatalf("history leaked to the other side")
	}

	before := h.value(board.White, good)
	h.reduce()
	if h.all[board.White][good.From()][good.To()] != 2 || h.cut[board.White][good.From()][good.To()] != 1 {
		t.Fatalf("reduce did not halve counters")
	}
	if h.value(board.White, good) == 0 || before == 0 {
		t.Fatalf("reduce lost the ordering signal")
	}

	capture := mustPosition(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	m := mustParseMove(t, &capture, "e4d5")
	h.clear()
	h.record(&capture, m)
	h.recordCut(&capture, m, 1)
	if h.all[board.White][m.From()][m.To()] != 0 {
		t.Fatalf("captures must not enter the history")
	}
}
