package turnplayer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/minimax"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/movegen"
)

type MinimaxController struct {
	Base
	solver *minimax.Solver
}

func NewMinimaxController(name string, color board.PlayerColor, depth int, maxTime time.Duration) *MinimaxController {
	return &MinimaxController{
		Base:   NewBase(name, color),
		solver: minimax.NewSolver(color, depth, maxTime),
	}
}

func (c *MinimaxController) Solver() *minimax.Solver {
	return c.solver
}

// EnableEvalCache gives the solver a cache of fractionOfMemory of RAM.
func (c *MinimaxController) EnableEvalCache(fractionOfMemory float64) {
	c.solver.SetEvalCache(minimax.NewEvalCache(fractionOfMemory))
}

// UseEvalCache shares an existing cache with the solver. The cache must
// not be used by another solver at the same time.
func (c *MinimaxController) UseEvalCache(cache *minimax.EvalCache) {
	c.solver.SetEvalCache(cache)
}

func (c *MinimaxController) MakeMove(ctx context.Context, b *board.Board) (move.Move, error) {
	tstart := time.Now()
	score := c.solver.Evaluator().ScoreBoard(b)
	m, v, err := c.solver.Solve(ctx, b)
	if err != nil && !errors.Is(err, minimax.ErrNoSolution) {
		return move.Invalid, err
	}
	if m.IsInvalid() {
		moves := movegen.StaticList(b, nil)
		if len(moves) == 0 {
			return move.Invalid, ErrNoMoves
		}
		log.Warn().Str("player", c.Name()).Str("fallback", moves[0].String()).
			Msg("minimax-found-no-move")
		return moves[0], nil
	}
	log.Debug().
		Str("player", c.Name()).
		Float64("score", score).
		Float64("max", v).
		Uint64("node-evals", c.solver.Nodes()).
		Int("depth", c.solver.CompletedDepth()).
		Float64("move-time-sec", time.Since(tstart).Seconds()).
		Msg("minimax-move")
	return m, nil
}
