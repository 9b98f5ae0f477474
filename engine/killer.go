package engine

import (
	"chesscore/board"
)

// killerTable keeps two quiet moves per ply that recently caused a cutoff.
type killerTable struct {
	moves [MaxPly + 1][2]board.Move
}

func (k *killerTable) add(m board.Move, ply int) {
	if ply > MaxPly {
		return
	}
	slot := &k.moves[ply]
	if !slot[0].Same(m) {
		slot[1] = slot[0]
		slot[0] = m
	}
}

func (k *killerTable) get(ply int) [2]board.Move {
	if ply > MaxPly {
		return [2]board.Move{}
	}
	return k.moves[ply]
}

func (k *killerTable) clear() {
	*k = killerTable{}
}

// history scores quiet moves by how often trying them led to a cutoff.
type history struct {
	all [2][64][64]uint32
	cut [2][64][64]uint32
}

const historyLimit = 1 << 28

// record notes that m was searched.
func (h *history) record(pos *board.Position, m board.Move) {
	if m.IsCapture() {
		return
	}
	c := pos.SideToMove()
	v := &h.all[c][m.From()][m.To()]
	*v++
	if *v > historyLimit {
		h.reduce()
	}
}

// recordCut notes that m caused a cutoff after processed moves had been
// tried at the node. Early cutoffs weigh less than late ones since the
// ordering already found them.
func (h *history) recordCut(pos *board.Position, m board.Move, processed int) {
	if m.IsCapture() {
		return
	}
	c := pos.SideToMove()
	v := &h.cut[c][m.From()][m.To()]
	*v += uint32(max(processed, 1))
	if *v > historyLimit {
		h.reduce()
	}
}

// value orders quiet moves: cutoff share of all tries, scaled.
func (h *history) value(c board.Color, m board.Move) int {
	from, to := m.From(), m.To()
	return int(uint64(h.cut[c][from][to]) << 10 / uint64(h.all[c][from][to]+1))
}

// reduce halves every counter so older searches count less.
func (h *history) reduce() {
	for c := range h.all {
		for from := range h.all[c] {
			for to := range h.all[c][from] {
				h.all[c][from][to] /= 2
				h.cut[c][from][to] /= 2
			}
		}
	}
}

func (h *history) clear() {
	*h = history{}
}
