package board

import "math/rand"

// Sliding attacks use multiplicative ("fancy") magic bitboards: the relevant
// occupancy is masked, multiplied by a per-square constant and shifted down
// to an index into one shared table per slider type.

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   uint64 // relevant occupancy, edges excluded
	Magic  uint64
	Shift  uint8
	Offset uint32 // start of this square's slice of the attack table
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	bishopTable [5248]uint64
	rookTable   [102400]uint64
)

var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

func initMagics() {
	// Candidates that collide for a square are replaced by a searched
	// constant, so the tables are always exact.
	rnd := rand.New(rand.NewSource(0x5EED))
	fillMagics(bishopMagics[:], bishopTable[:], bishopMagicNumbers[:], bishopRelevantMask, bishopAttacksSlow, rnd)
	fillMagics(rookMagics[:], rookTable[:], rookMagicNumbers[:], rookRelevantMask, rookAttacksSlow, rnd)
}

func fillMagics(magics []Magic, table []uint64, candidates []uint64,
	maskFn func(Square) uint64, slow func(Square, uint64) uint64, rnd *rand.Rand) {
	var offset uint32
	occs := make([]uint64, 4096)
	atks := make([]uint64, 4096)
	for sq := Square(0); sq < 64; sq++ {
		mask := maskFn(sq)
		n := PopCount(mask)
		entries := 1 << n
		for i := 0; i < entries; i++ {
			occs[i] = indexToOccupancy(i, n, mask)
			atks[i] = slow(sq, occs[i])
		}
		slot := table[offset : offset+uint32(entries)]
		magic := candidates[sq]
		for !tryMagic(slot, magic, uint8(64-n), occs[:entries], atks[:entries]) {
			magic = rnd.Uint64() & rnd.Uint64() & rnd.Uint64()
		}
		magics[sq] = Magic{Mask: mask, Magic: magic, Shift: uint8(64 - n), Offset: offset}
		offset += uint32(entries)
	}
}

// tryMagic fills slot and reports whether magic maps every occupancy
// without a destructive collision.
func tryMagic(slot []uint64, magic uint64, shift uint8, occs, atks []uint64) bool {
	used := make([]bool, len(slot))
	for i, occ := range occs {
		idx := (occ * magic) >> shift
		if used[idx] && slot[idx] != atks[i] {
			return false
		}
		used[idx] = true
		slot[idx] = atks[i]
	}
	return true
}

func bishopRelevantMask(sq Square) uint64 {
	return bishopAttacksSlow(sq, 0) &^ (Rank1 | Rank8 | FileA | FileH)
}

func rookRelevantMask(sq Square) uint64 {
	file, rank := sq.File(), sq.Rank()
	var mask uint64
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= bb(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= bb(NewSquare(file, r))
		}
	}
	return mask
}

// indexToOccupancy spreads the low bits of index over the set bits of mask.
func indexToOccupancy(index, bits int, mask uint64) uint64 {
	var occ uint64
	for i := 0; i < bits; i++ {
		sq := popLSB(&mask)
		if index&(1<<i) != 0 {
			occ |= bb(sq)
		}
	}
	return occ
}

var (
	rookDirs   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

func slideAttacks(sq Square, occ uint64, dirs *[4][2]int) uint64 {
	var attacks uint64
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			s := NewSquare(f, r)
			attacks |= bb(s)
			if occ&bb(s) != 0 {
				break
			}
			f, r = f+d[0], r+d[1]
		}
	}
	return attacks
}

// bishopAttacksSlow computes bishop attacks by ray casting; init only.
func bishopAttacksSlow(sq Square, occ uint64) uint64 { return slideAttacks(sq, occ, &bishopDirs) }

// rookAttacksSlow computes rook attacks by ray casting; init only.
func rookAttacksSlow(sq Square, occ uint64) uint64 { return slideAttacks(sq, occ, &rookDirs) }

// BishopAttacks returns bishop attacks from sq given occupancy occ.
func BishopAttacks(sq Square, occ uint64) uint64 {
	m := &bishopMagics[sq]
	return bishopTable[m.Offset+uint32(((occ&m.Mask)*m.Magic)>>m.Shift)]
}

// RookAttacks returns rook attacks from sq given occupancy occ.
func RookAttacks(sq Square, occ uint64) uint64 {
	m := &rookMagics[sq]
	return rookTable[m.Offset+uint32(((occ&m.Mask)*m.Magic)>>m.Shift)]
}

// QueenAttacks is the union of rook and bishop attacks.
func QueenAttacks(sq Square, occ uint64) uint64 {
	return BishopAttacks(sq, occ) | RookAttacks(sq, occ)
}
