package board

import "math/rand"

// ZobristHash is a 64-bit position hash over occupied (square, piece) pairs,
// with the side-to-move folded in by inverting the key (rather than XOR-ing a
// dedicated side-to-move constant -- see ZobristTable.Hash).
type ZobristHash uint64

// numPieceCodes is the number of real (non-Empty) piece encodings.
const numPieceCodes = 4

// ZobristTable is a process-wide, once-initialized table of random numbers
// indexed by (square, piece). It must not be re-seeded mid-run: keys computed
// against two different tables are not comparable.
type ZobristTable struct {
	pieces [NumSquares][numPieceCodes]ZobristHash
}

// NewZobristTable builds a table from the given seed. Construct exactly once
// per process and share it across every board derived from it.
func NewZobristTable(seed int64) *ZobristTable {
	t := &ZobristTable{}
	r := rand.New(rand.NewSource(seed))
	for s := ZeroSquare; s < NumSquares; s++ {
		for p := 0; p < numPieceCodes; p++ {
			t.pieces[s][p] = ZobristHash(r.Uint64())
		}
	}
	return t
}

// Hash computes the full-rehash Zobrist key for the given position and side
// to move. The key is bit-inverted when Black is to move rather than XOR-ed
// with a dedicated side-to-move constant; both are correct when applied
// consistently, and the inversion keeps keys bit-compatible with earlier
// game records hashed the same way.
func (z *ZobristTable) Hash(pos *Position, turn Color) ZobristHash {
	var key ZobristHash
	for s := ZeroSquare; s < NumSquares; s++ {
		if p := pos.At(s); !p.IsEmpty() {
			key ^= z.pieces[s][p]
		}
	}
	if turn == Black {
		key = ^key
	}
	return key
}
