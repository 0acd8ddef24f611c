package turnplayer

import (
	"context"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/movegen"
)

// RandomController places on a random empty slot and turns a random
// quadrant a random way.
type RandomController struct {
	Base
}

func NewRandomController(name string, color board.PlayerColor) *RandomController {
	return &RandomController{Base: NewBase(name, color)}
}

func (r *RandomController) MakeMove(ctx context.Context, b *board.Board) (move.Move, error) {
	m := movegen.RandomMove(b, nil)
	if m.IsInvalid() {
		return m, ErrNoMoves
	}
	return m, nil
}
