package minimax

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/zobrist"
)

const entrySize = 24

const (
	minSizePowerOf2 = 10
	maxSizePowerOf2 = 26
)

type cacheEntry struct {
	hash  uint64
	score float64
	valid bool
}

// EvalCache remembers static scores by position. The key also folds in
// the color the score was computed for, so one cache can serve both
// sides. It is not safe for concurrent use; give every solver its own.
type EvalCache struct {
	table        []cacheEntry
	sizePowerOf2 int
	sizeMask     uint64
	zobrist      *zobrist.Zobrist

	lookups atomic.Uint64
	hits    atomic.Uint64
	created atomic.Uint64
}

// NewEvalCache sizes the cache to about fractionOfMemory of the total
// system memory, rounded down to a power of two.
func NewEvalCache(fractionOfMemory float64) *EvalCache {
	c := &EvalCache{}
	c.Reset(fractionOfMemory)
	return c
}

func (c *EvalCache) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	c.sizePowerOf2 = minSizePowerOf2
	if desiredNElems > 1 {
		c.sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	c.sizePowerOf2 = max(minSizePowerOf2, min(maxSizePowerOf2, c.sizePowerOf2))
	numElems := 1 << c.sizePowerOf2
	c.sizeMask = uint64(numElems - 1)
	if len(c.table) == numElems {
		clear(c.table)
	} else {
		c.table = make([]cacheEntry, numElems)
	}
	if c.zobrist == nil {
		c.zobrist = &zobrist.Zobrist{}
		c.zobrist.Initialize(board.MaxEntries)
	}
	log.Debug().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("eval-cache-size")
	c.lookups.Store(0)
	c.hits.Store(0)
	c.created.Store(0)
}

func (c *EvalCache) key(b *board.Board, color board.PlayerColor) uint64 {
	return c.zobrist.HashWithTurn(b, color)
}

func (c *EvalCache) lookup(key uint64) (float64, bool) {
	c.lookups.Add(1)
	e := c.table[key&c.sizeMask]
	if !e.valid || e.hash != key {
		return 0, false
	}
	c.hits.Add(1)
	return e.score, true
}

func (c *EvalCache) store(key uint64, score float64) {
	c.table[key&c.sizeMask] = cacheEntry{hash: key, score: score, valid: true}
	c.created.Add(1)
}

// Len is the number of slots in the table.
func (c *EvalCache) Len() int {
	return len(c.table)
}

// Stats returns lookups and hits since the last Reset.
func (c *EvalCache) Stats() (lookups, hits uint64) {
	return c.lookups.Load(), c.hits.Load()
}
