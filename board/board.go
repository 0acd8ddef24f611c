// Package board implements the Pentago board: a square grid tiled by
// quadrants that can each be twisted a quarter turn.
package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/domino14/pentago/move"
)

const (
	// WinSize is the length of an unbroken line needed to win.
	WinSize = 5
	// MaxEntries is the capacity of the backing array. It fits the standard
	// 6x6 board.
	MaxEntries = 36

	StandardCellSize    = 3
	StandardCellsPerRow = 2
)

// BoardEntry is the content of a single slot.
type BoardEntry uint8

const (
	Empty BoardEntry = iota
	White
	Black
)

func (e BoardEntry) String() string {
	switch e {
	case Empty:
		return "."
	case White:
		return "w"
	case Black:
		return "b"
	}
	return "?"
}

func entryFromRune(r rune) (BoardEntry, bool) {
	switch r {
	case '.':
		return Empty, true
	case 'w', 'W':
		return White, true
	case 'b', 'B':
		return Black, true
	}
	return Empty, false
}

type PlayerColor uint8

const (
	WhitePlayer PlayerColor = iota
	BlackPlayer
)

// Entry maps a color to the piece it places on the board.
func (c PlayerColor) Entry() BoardEntry {
	if c == BlackPlayer {
		return Black
	}
	return White
}

func (c PlayerColor) Opponent() PlayerColor {
	if c == WhitePlayer {
		return BlackPlayer
	}
	return WhitePlayer
}

func (c PlayerColor) String() string {
	if c == BlackPlayer {
		return "B"
	}
	return "W"
}

// ColorFromString parses "W" or "B" (either case).
func ColorFromString(s string) (PlayerColor, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "W":
		return WhitePlayer, nil
	case "B":
		return BlackPlayer, nil
	}
	return WhitePlayer, fmt.Errorf("unknown color %q", s)
}

type WinStatus uint8

const (
	NoWin WinStatus = iota
	WhiteWin
	BlackWin
	// Tie means both colors have a winning line at once, which can only
	// happen through a rotation.
	Tie
)

func (w WinStatus) String() string {
	switch w {
	case WhiteWin:
		return "white wins"
	case BlackWin:
		return "black wins"
	case Tie:
		return "tie"
	case NoWin:
		return "no win"
	}
	return "invalid value"
}

// WinFor returns the status that means color has won.
func WinFor(c PlayerColor) WinStatus {
	if c == BlackPlayer {
		return BlackWin
	}
	return WhiteWin
}

var ErrBadGeometry = errors.New("board geometry does not fit")

// Board is a value type. Copying a Board (or calling Clone) yields a fully
// independent position; nothing is shared between copies.
type Board struct {
	cellSize    int
	cellsPerRow int
	size        int
	entries     [MaxEntries]BoardEntry
}

// New returns an empty standard board: 3x3 quadrants arranged 2x2.
func New() *Board {
	b, _ := NewWithGeometry(StandardCellSize, StandardCellsPerRow)
	return b
}

// NewWithGeometry returns an empty board made of cellsPerRow x cellsPerRow
// quadrants of cellSize x cellSize slots.
func NewWithGeometry(cellSize, cellsPerRow int) (*Board, error) {
	size := cellSize * cellsPerRow
	if cellSize < 1 || cellsPerRow < 1 || size*size > MaxEntries {
		return nil, fmt.Errorf("%w: cell size %d, cells per row %d", ErrBadGeometry, cellSize, cellsPerRow)
	}
	return &Board{cellSize: cellSize, cellsPerRow: cellsPerRow, size: size}, nil
}

func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// CopyFrom overwrites b with the contents of o without allocating.
func (b *Board) CopyFrom(o *Board) {
	*b = *o
}

// CellSize is the width of one quadrant.
func (b *Board) CellSize() int { return b.cellSize }

func (b *Board) CellsPerRow() int { return b.cellsPerRow }

// CellCount is the number of quadrants.
func (b *Board) CellCount() int { return b.cellsPerRow * b.cellsPerRow }

// EntriesPerCell is the number of slots in one quadrant.
func (b *Board) EntriesPerCell() int { return b.cellSize * b.cellSize }

// Size is the width of the whole board.
func (b *Board) Size() int { return b.size }

func (b *Board) TotalEntries() int { return b.size * b.size }

// CenterSlot is the slot index of a quadrant's middle.
func (b *Board) CenterSlot() int { return b.EntriesPerCell() / 2 }

// ToAbsolute converts (quadrant, slot) addressing to (x, y).
func (b *Board) ToAbsolute(cell, slot int) (int, int) {
	x := (cell%b.cellsPerRow)*b.cellSize + slot%b.cellSize
	y := (cell/b.cellsPerRow)*b.cellSize + slot/b.cellSize
	return x, y
}

// FromAbsolute converts (x, y) to (quadrant, slot) addressing.
func (b *Board) FromAbsolute(x, y int) (int, int) {
	cell := (y/b.cellSize)*b.cellsPerRow + x/b.cellSize
	slot := (y%b.cellSize)*b.cellSize + x%b.cellSize
	return cell, slot
}

func (b *Board) Get(cell, slot int) BoardEntry {
	x, y := b.ToAbsolute(cell, slot)
	return b.entries[x+y*b.size]
}

func (b *Board) Set(cell, slot int, e BoardEntry) {
	x, y := b.ToAbsolute(cell, slot)
	b.entries[x+y*b.size] = e
}

func (b *Board) GetAbsolute(x, y int) BoardEntry {
	return b.entries[x+y*b.size]
}

func (b *Board) SetAbsolute(x, y int, e BoardEntry) {
	b.entries[x+y*b.size] = e
}

func (b *Board) IsCellEmpty(cell, slot int) bool {
	return b.Get(cell, slot) == Empty
}

// Count returns how many slots hold e.
func (b *Board) Count(e BoardEntry) int {
	n := 0
	for _, v := range b.entries[:b.TotalEntries()] {
		if v == e {
			n++
		}
	}
	return n
}

func (b *Board) IsFull() bool {
	return b.Count(Empty) == 0
}

func (b *Board) IsEmpty() bool {
	return b.Count(Empty) == b.TotalEntries()
}

// Equals compares geometry and contents.
func (b *Board) Equals(o *Board) bool {
	return *b == *o
}

// Clear empties every slot.
func (b *Board) Clear() {
	b.entries = [MaxEntries]BoardEntry{}
}

// RotateCell twists one quadrant a quarter turn in place. Only positions
// inside the quadrant are permuted.
func (b *Board) RotateCell(cell int, dir move.Direction) {
	var tmp [MaxEntries]BoardEntry
	cs := b.cellSize
	sx, sy := b.ToAbsolute(cell, 0)
	for y := 0; y < cs; y++ {
		for x := 0; x < cs; x++ {
			tmp[x+y*cs] = b.entries[(sx+x)+(sy+y)*b.size]
		}
	}
	for y := 0; y < cs; y++ {
		for x := 0; x < cs; x++ {
			var rx, ry int
			if dir == move.RotateLeft {
				rx, ry = y, cs-1-x
			} else {
				rx, ry = cs-1-y, x
			}
			b.entries[(sx+rx)+(sy+ry)*b.size] = tmp[x+y*cs]
		}
	}
}

// ApplyMove places the piece for color, then twists. A win already present
// after placement is never taken away by the twist: the twist is kept only
// when it leaves the same result or turns it into a Tie; otherwise it is
// undone and the placement-only result is returned.
func (b *Board) ApplyMove(m move.Move, color PlayerColor) WinStatus {
	b.Set(m.PlayCell, m.PlaySlot, color.Entry())
	pre := b.CheckForWins()
	b.RotateCell(m.RotateCell, m.Direction)
	if pre == NoWin {
		return b.CheckForWins()
	}
	post := b.CheckForWins()
	if post == Tie || post == pre {
		return post
	}
	b.RotateCell(m.RotateCell, m.Direction.Opposite())
	return pre
}

// ApplyMoveNoCheck places and twists without looking for wins.
func (b *Board) ApplyMoveNoCheck(m move.Move, color PlayerColor) {
	b.Set(m.PlayCell, m.PlaySlot, color.Entry())
	b.RotateCell(m.RotateCell, m.Direction)
}
