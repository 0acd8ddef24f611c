// Package movegen contains the move-generating functions. Every Pentago
// move is a placement on an empty slot followed by a quarter turn of some
// quadrant, so the full move set is just slots × rotations.
package movegen

import (
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/move"
)

var directions = [2]move.Direction{move.RotateLeft, move.RotateRight}

// Slot is a quadrant/slot pair.
type Slot struct {
	Cell int
	Slot int
}

// RotationsPerSlot is the number of distinct moves that share one play
// slot. Static lists are grouped in runs of this length.
func RotationsPerSlot(b *board.Board) int {
	return b.CellCount() * len(directions)
}

// AllSlots lists every slot on the board, quadrant by quadrant.
func AllSlots(b *board.Board) []Slot {
	slots := make([]Slot, 0, b.TotalEntries())
	for cell := 0; cell < b.CellCount(); cell++ {
		for s := 0; s < b.EntriesPerCell(); s++ {
			slots = append(slots, Slot{cell, s})
		}
	}
	return slots
}

// EmptySlots lists the slots a piece can go on.
func EmptySlots(b *board.Board) []Slot {
	return lo.Filter(AllSlots(b), func(s Slot, _ int) bool {
		return b.IsCellEmpty(s.Cell, s.Slot)
	})
}

// StaticList returns every legal move of b with the play slots in
// shuffled order. The moves for one slot are contiguous, RotationsPerSlot(b)
// long, so a searcher reusing the list deeper in the tree can skip the
// whole group once it finds the slot taken. A nil rng uses the shared
// generator.
func StaticList(b *board.Board, rng *frand.RNG) []move.Move {
	return expand(b, shuffled(EmptySlots(b), rng))
}

// RandomMove picks an empty slot and a rotation uniformly. It returns
// move.Invalid on a full board.
func RandomMove(b *board.Board, rng *frand.RNG) move.Move {
	var empties [board.MaxEntries]Slot
	n := 0
	for cell := 0; cell < b.CellCount(); cell++ {
		for s := 0; s < b.EntriesPerCell(); s++ {
			if b.IsCellEmpty(cell, s) {
				empties[n] = Slot{cell, s}
				n++
			}
		}
	}
	if n == 0 {
		return move.Invalid
	}
	pick := empties[intn(rng, n)]
	return move.New(pick.Cell, pick.Slot, intn(rng, b.CellCount()),
		directions[intn(rng, len(directions))])
}

func expand(b *board.Board, slots []Slot) []move.Move {
	moves := make([]move.Move, 0, len(slots)*RotationsPerSlot(b))
	for _, s := range slots {
		for rc := 0; rc < b.CellCount(); rc++ {
			for _, d := range directions {
				moves = append(moves, move.New(s.Cell, s.Slot, rc, d))
			}
		}
	}
	return moves
}

func shuffled(slots []Slot, rng *frand.RNG) []Slot {
	swap := func(i, j int) { slots[i], slots[j] = slots[j], slots[i] }
	if rng == nil {
		frand.Shuffle(len(slots), swap)
	} else {
		rng.Shuffle(len(slots), swap)
	}
	return slots
}

func intn(rng *frand.RNG, n int) int {
	if rng == nil {
		return frand.Intn(n)
	}
	return rng.Intn(n)
}
