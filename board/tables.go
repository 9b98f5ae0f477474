package board

import "sync"

// Precomputed attack masks for knights and kings from each square.
var knightMoves [64]uint64
var kingMoves [64]uint64

// pawnAttacks[color][sq] gives the squares a pawn of color attacks from sq.
var pawnAttacks [2][64]uint64

// between[a][b] holds the squares strictly between a and b when they share a
// rank, file or diagonal. line[a][b] is the full line through both squares.
var between [64][64]uint64
var line [64][64]uint64

// passedMask[color][sq]: squares in front of sq on its own and adjacent files.
var passedMask [2][64]uint64

// fileMask and adjacentFiles are indexed by file.
var fileMask [8]uint64
var adjacentFiles [8]uint64

var initOnce sync.Once

// Init builds every lookup table used by the package. It is idempotent and
// is called by all constructors, so callers rarely need it directly.
func Init() {
	initOnce.Do(func() {
		initZobrist()
		initJumpTables()
		initMagics()
		initLineTables()
		initPawnMasks()
	})
}

// initJumpTables precomputes knight, king and pawn capture masks.
func initJumpTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		knightMoves[sq] = offsetMask(file, rank, knightOffsets[:])
		kingMoves[sq] = offsetMask(file, rank, kingOffsets[:])

		if rank < 7 {
			if file > 0 {
				pawnAttacks[White][sq] |= uint64(1) << ((rank+1)*8 + file - 1)
			}
			if file < 7 {
				pawnAttacks[White][sq] |= uint64(1) << ((rank+1)*8 + file + 1)
			}
		}
		if rank > 0 {
			if file > 0 {
				pawnAttacks[Black][sq] |= uint64(1) << ((rank-1)*8 + file - 1)
			}
			if file < 7 {
				pawnAttacks[Black][sq] |= uint64(1) << ((rank-1)*8 + file + 1)
			}
		}
	}
}

func offsetMask(file, rank int, offsets [][2]int) uint64 {
	var mask uint64
	for _, off := range offsets {
		rf, ff := rank+off[0], file+off[1]
		if rf >= 0 && rf < 8 && ff >= 0 && ff < 8 {
			mask |= uint64(1) << (rf*8 + ff)
		}
	}
	return mask
}

// initLineTables needs the magic tables to be ready.
func initLineTables() {
	for a := Square(0); a < 64; a++ {
		for b := Square(0); b < 64; b++ {
			if a == b {
				continue
			}
			switch {
			case rookAttacksSlow(a, 0)&bb(b) != 0:
				between[a][b] = rookAttacksSlow(a, bb(b)) & rookAttacksSlow(b, bb(a))
				line[a][b] = (rookAttacksSlow(a, 0) & rookAttacksSlow(b, 0)) | bb(a) | bb(b)
			case bishopAttacksSlow(a, 0)&bb(b) != 0:
				between[a][b] = bishopAttacksSlow(a, bb(b)) & bishopAttacksSlow(b, bb(a))
				line[a][b] = (bishopAttacksSlow(a, 0) & bishopAttacksSlow(b, 0)) | bb(a) | bb(b)
			}
		}
	}
}

func initPawnMasks() {
	for f := 0; f < 8; f++ {
		fileMask[f] = FileA << f
		if f > 0 {
			adjacentFiles[f] |= FileA << (f - 1)
		}
		if f < 7 {
			adjacentFiles[f] |= FileA << (f + 1)
		}
	}
	for sq := Square(0); sq < 64; sq++ {
		files := fileMask[sq.File()] | adjacentFiles[sq.File()]
		var ahead, behind uint64
		for r := sq.Rank() + 1; r < 8; r++ {
			ahead |= Rank1 << (8 * r)
		}
		for r := sq.Rank() - 1; r >= 0; r-- {
			behind |= Rank1 << (8 * r)
		}
		passedMask[White][sq] = files & ahead
		passedMask[Black][sq] = files & behind
	}
}

// Exported views used by evaluation and search.

// KnightAttacks returns the knight jump mask for sq.
func KnightAttacks(sq Square) uint64 { return knightMoves[sq] }

// KingAttacks returns the king step mask for sq.
func KingAttacks(sq Square) uint64 { return kingMoves[sq] }

// PawnAttacks returns the squares a pawn of color c attacks from sq.
func PawnAttacks(c Color, sq Square) uint64 { return pawnAttacks[c][sq] }

// Between returns the squares strictly between a and b on a shared line.
func Between(a, b Square) uint64 { return between[a][b] }

// Line returns the full line through a and b, or 0 if they are not aligned.
func Line(a, b Square) uint64 { return line[a][b] }

// PassedMask returns the squares that must be free of enemy pawns for a
// pawn of color c on sq to be passed.
func PassedMask(c Color, sq Square) uint64 { return passedMask[c][sq] }

// FileMask returns all squares of file f.
func FileMask(f int) uint64 { return fileMask[f] }

// AdjacentFiles returns the files left and right of f.
func AdjacentFiles(f int) uint64 { return adjacentFiles[f] }
