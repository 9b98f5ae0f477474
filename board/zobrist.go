package board

import "math/rand"

// Zobrist hashing tables for pieces, castling, en passant, and side to move.
var zobristPiece [15][64]uint64 // indexed by colored piece code
var zobristCastle [16]uint64    // white rights in bits 0-1, black in bits 2-3
var zobristEnPassant [8]uint64  // by file
var zobristSide uint64          // XORed in when Black is to move

func initZobrist() {
	// Fixed seed so hashes are reproducible across runs.
	rnd := rand.New(rand.NewSource(0xC0DE))

	for p := 0; p < 15; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rnd.Uint64()
		}
	}
	for cr := 0; cr < 16; cr++ {
		zobristCastle[cr] = rnd.Uint64()
	}
	for f := 0; f < 8; f++ {
		zobristEnPassant[f] = rnd.Uint64()
	}
	zobristSide = rnd.Uint64()
}

func castleKey(castle [2]uint8) uint64 {
	return zobristCastle[int(castle[White])|int(castle[Black])<<2]
}

// ComputeHash recomputes the Zobrist key from scratch.
func (p *Position) ComputeHash() uint64 {
	var key uint64
	for sq := 0; sq < 64; sq++ {
		if pc := p.pieces[sq]; pc != NoPiece {
			key ^= zobristPiece[pc][sq]
		}
	}
	if p.sideToMove == Black {
		key ^= zobristSide
	}
	key ^= castleKey(p.castle)
	if p.enPassant != NoSquare {
		key ^= zobristEnPassant[p.enPassant.File()]
	}
	return key
}

// ComputePawnHash recomputes the pawn-structure key: pawns of both colors
// only, independent of side to move.
func (p *Position) ComputePawnHash() uint64 {
	var key uint64
	for c := White; c <= Black; c++ {
		pawns := p.byType[c][PieceTypePawn]
		for pawns != 0 {
			sq := popLSB(&pawns)
			key ^= zobristPiece[MakePiece(c, PieceTypePawn)][sq]
		}
	}
	return key
}
