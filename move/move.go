package move

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Direction is the way a quadrant is twisted after a piece is placed.
type Direction uint8

const (
	RotateLeft Direction = iota
	RotateRight
)

func (d Direction) String() string {
	switch d {
	case RotateLeft:
		return "L"
	case RotateRight:
		return "R"
	}
	return "?"
}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	if d == RotateLeft {
		return RotateRight
	}
	return RotateLeft
}

// Valid returns true for RotateLeft and RotateRight only.
func (d Direction) Valid() bool {
	return d == RotateLeft || d == RotateRight
}

// ErrBadFormat is returned when a line of text cannot be read as a move.
// It says nothing about whether the move is legal.
var ErrBadFormat = errors.New("badly formatted move")

// Move is a single Pentago turn: put a piece in PlaySlot of quadrant
// PlayCell, then twist quadrant RotateCell in Direction. Moves are small
// plain values and are compared with ==.
type Move struct {
	PlayCell   int
	PlaySlot   int
	RotateCell int
	Direction  Direction
}

// Invalid is the sentinel for "no move". Check IsInvalid before using a
// move that came out of a search.
var Invalid = Move{PlayCell: -1, PlaySlot: -1, RotateCell: -1}

func New(cell, slot, rotateCell int, dir Direction) Move {
	return Move{PlayCell: cell, PlaySlot: slot, RotateCell: rotateCell, Direction: dir}
}

func (m Move) IsInvalid() bool {
	return m.PlayCell == -1
}

// String renders the move in 1-based notation, e.g. "1/5 2R".
func (m Move) String() string {
	if m.IsInvalid() {
		return "invalid"
	}
	return fmt.Sprintf("%d/%d %d%s", m.PlayCell+1, m.PlaySlot+1, m.RotateCell+1, m.Direction)
}

// FromString parses the notation written by String. Numbers are 1-based;
// the separator between cell and slot may be any non-digit, and the
// direction letter is case-insensitive.
func FromString(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Invalid, ErrBadFormat
	}
	cell, rest, ok := leadingInt(s)
	if !ok {
		return Invalid, fmt.Errorf("%w: expected quadrant number in %q", ErrBadFormat, s)
	}
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	if rest == "" || unicode.IsDigit(rune(rest[0])) {
		return Invalid, fmt.Errorf("%w: expected separator in %q", ErrBadFormat, s)
	}
	rest = rest[1:]
	slot, rest, ok := leadingInt(strings.TrimLeftFunc(rest, unicode.IsSpace))
	if !ok {
		return Invalid, fmt.Errorf("%w: expected slot number in %q", ErrBadFormat, s)
	}
	rot, rest, ok := leadingInt(strings.TrimLeftFunc(rest, unicode.IsSpace))
	if !ok {
		return Invalid, fmt.Errorf("%w: expected rotation quadrant in %q", ErrBadFormat, s)
	}
	rest = strings.TrimSpace(rest)
	var dir Direction
	switch rest {
	case "L", "l":
		dir = RotateLeft
	case "R", "r":
		dir = RotateRight
	default:
		return Invalid, fmt.Errorf("%w: expected L or R, got %q", ErrBadFormat, rest)
	}
	return New(cell-1, slot-1, rot-1, dir), nil
}

func leadingInt(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return n, s[i:], true
}
