package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/pentago/board"
)

const bignum = 1<<63 - 2

// Zobrist hashes a Pentago position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	// posTable[i][0] is a white piece on slot i, posTable[i][1] a black one.
	posTable  [][2]uint64
	blackTurn uint64
}

func (z *Zobrist) Initialize(totalEntries int) {
	z.posTable = make([][2]uint64, totalEntries)
	for i := range z.posTable {
		for j := 0; j < 2; j++ {
			z.posTable[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	z.blackTurn = frand.Uint64n(bignum) + 1
}

func (z *Zobrist) Initialized() bool {
	return len(z.posTable) > 0
}

// Hash computes the key of the board from scratch. Rotations move many
// pieces at once, so there is no incremental form worth keeping.
func (z *Zobrist) Hash(b *board.Board) uint64 {
	key := uint64(0)
	n := b.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			key = z.Toggle(key, x+y*n, b.GetAbsolute(x, y))
		}
	}
	return key
}

// HashWithTurn also folds in who is on move.
func (z *Zobrist) HashWithTurn(b *board.Board, onTurn board.PlayerColor) uint64 {
	key := z.Hash(b)
	if onTurn == board.BlackPlayer {
		key ^= z.blackTurn
	}
	return key
}

// Toggle adds or removes a piece at absolute index idx.
func (z *Zobrist) Toggle(key uint64, idx int, e board.BoardEntry) uint64 {
	switch e {
	case board.White:
		return key ^ z.posTable[idx][0]
	case board.Black:
		return key ^ z.posTable[idx][1]
	}
	return key
}
