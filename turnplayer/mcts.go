package turnplayer

import (
	"context"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/montecarlo"
	"github.com/domino14/pentago/move"
)

type MCTSController struct {
	Base
	simmer *montecarlo.Simmer
}

func NewMCTSController(name string, color board.PlayerColor, trials, threads int) *MCTSController {
	s := &montecarlo.Simmer{}
	s.Init(color, trials)
	s.SetThreads(threads)
	return &MCTSController{Base: NewBase(name, color), simmer: s}
}

func (c *MCTSController) Simmer() *montecarlo.Simmer {
	return c.simmer
}

func (c *MCTSController) MakeMove(ctx context.Context, b *board.Board) (move.Move, error) {
	m, err := c.simmer.BestMove(ctx, b)
	if err == montecarlo.ErrNoPlays {
		return move.Invalid, ErrNoMoves
	}
	return m, err
}
