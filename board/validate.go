package board

import (
	"errors"
	"fmt"

	"github.com/domino14/pentago/move"
)

var (
	ErrInvalidMove          = errors.New("that is not a valid move")
	ErrCellOutOfRange       = fmt.Errorf("%w: play quadrant out of range", ErrInvalidMove)
	ErrSlotOutOfRange       = fmt.Errorf("%w: slot out of range", ErrInvalidMove)
	ErrRotateCellOutOfRange = fmt.Errorf("%w: rotate quadrant out of range", ErrInvalidMove)
	ErrBadDirection         = fmt.Errorf("%w: bad rotation direction", ErrInvalidMove)
	ErrOccupied             = fmt.Errorf("%w: slot is not empty", ErrInvalidMove)
)

// ValidateMove checks m against the rules. It does not care how the move
// was produced; format problems are the parser's business.
func (b *Board) ValidateMove(m move.Move) error {
	if m.PlayCell < 0 || m.PlayCell >= b.CellCount() {
		return ErrCellOutOfRange
	}
	if m.RotateCell < 0 || m.RotateCell >= b.CellCount() {
		return ErrRotateCellOutOfRange
	}
	if m.PlaySlot < 0 || m.PlaySlot >= b.EntriesPerCell() {
		return ErrSlotOutOfRange
	}
	if !m.Direction.Valid() {
		return ErrBadDirection
	}
	if !b.IsCellEmpty(m.PlayCell, m.PlaySlot) {
		return ErrOccupied
	}
	return nil
}

// IsValidMove is a shorthand for ValidateMove(m) == nil.
func (b *Board) IsValidMove(m move.Move) bool {
	return b.ValidateMove(m) == nil
}
