// Package minimax is a depth-bounded alpha-beta searcher for Pentago with
// killer moves, iterative deepening and a wall-clock deadline.
package minimax

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/equity"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/movegen"
)

// textbook alpha-beta, split into a max and a min half:
/*
function max-value(state, α, β) is
    if terminal(state) then return utility(state)
    v := −∞
    for each a in actions(state) do
        v := max(v, min-value(result(state, a), α, β))
        if v > β then return v
        α := max(α, v)
    return v
**/

const MaxKillers = 2

var (
	ErrNoSolution = errors.New("no move found before the deadline")
)

// LogIteration is written to the log stream after every completed depth.
type LogIteration struct {
	Depth      int     `yaml:"depth"`
	Move       string  `yaml:"move"`
	Value      float64 `yaml:"value"`
	Nodes      uint64  `yaml:"nodes"`
	ElapsedSec float64 `yaml:"elapsed_sec"`
}

type Solver struct {
	color    board.PlayerColor
	eval     equity.Scorer
	maxDepth int
	maxTime  time.Duration

	iterativeDeepeningOptim bool
	killerPlayOptim         bool

	// moves is rebuilt at the start of every depth and shared by all nodes
	// of that iteration.
	moves     []move.Move
	groupSize int
	// killers[d] holds the latest cutoff moves at d plies remaining, most
	// recent first.
	killers [][MaxKillers]move.Move

	cache *EvalCache
	nodes atomic.Uint64

	completedDepth int
	logStream      io.Writer
}

// NewSolver searches on behalf of color. A zero maxTime means no deadline.
func NewSolver(color board.PlayerColor, maxDepth int, maxTime time.Duration) *Solver {
	return &Solver{
		color:                   color,
		eval:                    equity.NewEvaluator(color),
		maxDepth:                maxDepth,
		maxTime:                 maxTime,
		iterativeDeepeningOptim: true,
		killerPlayOptim:         true,
	}
}

func (s *Solver) score(b *board.Board) float64 {
	if s.cache == nil {
		return s.eval.ScoreBoard(b)
	}
	key := s.cache.key(b, s.color)
	if v, ok := s.cache.lookup(key); ok {
		return v
	}
	v := s.eval.ScoreBoard(b)
	s.cache.store(key, v)
	return v
}

func (s *Solver) storeKiller(depth int, m move.Move) {
	if !s.killerPlayOptim {
		return
	}
	if s.killers[depth][0] != m {
		s.killers[depth][1] = s.killers[depth][0]
		s.killers[depth][0] = m
	}
}

// ClearKillers forgets every stored killer.
func (s *Solver) ClearKillers() {
	for d := range s.killers {
		for i := range s.killers[d] {
			s.killers[d][i] = move.Invalid
		}
	}
}

func (s *Solver) growKillers(depth int) {
	for len(s.killers) < depth+1 {
		s.killers = append(s.killers, [MaxKillers]move.Move{move.Invalid, move.Invalid})
	}
}

// search returns the best move at this node and its value from the
// solver's point of view. Moves for a max node are made by the solver's
// color, moves for a min node by the opponent.
func (s *Solver) search(ctx context.Context, b *board.Board, depth int,
	α, β float64, maximizing, root bool) (move.Move, float64, error) {

	if err := ctx.Err(); err != nil {
		return move.Invalid, 0, err
	}
	s.nodes.Add(1)
	if !root {
		if v := s.score(b); equity.IsDecisive(v) {
			return move.Invalid, v, nil
		}
	}

	mover := s.color
	value := equity.NegInf * 10
	if !maximizing {
		mover = s.color.Opponent()
		value = equity.PosInf * 10
	}
	best := move.Invalid
	visited := 0
	var child board.Board

	visit := func(m move.Move) (bool, error) {
		visited++
		child.CopyFrom(b)
		child.ApplyMoveNoCheck(m, mover)
		var inner float64
		if depth > 0 {
			var err error
			_, inner, err = s.search(ctx, &child, depth-1, α, β, !maximizing, false)
			if err != nil {
				return false, err
			}
		} else {
			inner = s.score(&child)
		}
		if maximizing {
			if inner > value {
				value, best = inner, m
			}
			if value > β {
				s.storeKiller(depth, m)
				return true, nil
			}
			α = max(α, value)
		} else {
			if inner < value {
				value, best = inner, m
			}
			if value < α {
				s.storeKiller(depth, m)
				return true, nil
			}
			β = min(β, value)
		}
		return false, nil
	}

	tried := [MaxKillers]move.Move{move.Invalid, move.Invalid}
	if s.killerPlayOptim {
		for i, k := range s.killers[depth] {
			if k.IsInvalid() || !b.IsCellEmpty(k.PlayCell, k.PlaySlot) {
				continue
			}
			tried[i] = k
			cut, err := visit(k)
			if err != nil {
				return move.Invalid, 0, err
			}
			if cut {
				return best, value, nil
			}
		}
	}

	for i := 0; i < len(s.moves); i++ {
		m := s.moves[i]
		if !b.IsCellEmpty(m.PlayCell, m.PlaySlot) {
			// the rest of this slot's group is taken too.
			i += s.groupSize - 1
			continue
		}
		if m == tried[0] || m == tried[1] {
			continue
		}
		cut, err := visit(m)
		if err != nil {
			return move.Invalid, 0, err
		}
		if cut {
			return best, value, nil
		}
	}
	if visited == 0 {
		// every slot from the root list is filled; nothing left to try.
		return move.Invalid, s.score(b), nil
	}
	return best, value, nil
}

func (s *Solver) iterativelyDeepen(ctx context.Context, b *board.Board) (move.Move, float64, error) {
	tstart := time.Now()
	best := move.Invalid
	bestV := 0.0
	start := 0
	if !s.iterativeDeepeningOptim {
		start = s.maxDepth
	}
	for depth := start; depth <= s.maxDepth; depth++ {
		s.moves = movegen.StaticList(b, nil)
		s.groupSize = movegen.RotationsPerSlot(b)
		s.growKillers(depth)
		log.Debug().Int("depth", depth).Int("moves", len(s.moves)).Msg("deepening-iteratively")

		m, v, err := s.search(ctx, b, depth, equity.NegInf*10, equity.PosInf*10, true, true)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				log.Debug().Int("depth", depth).Msg("search-interrupted")
				break
			}
			return best, bestV, err
		}
		best, bestV = m, v
		s.completedDepth = depth
		log.Debug().Int("depth", depth).Str("move", m.String()).Float64("value", v).
			Uint64("nodes", s.nodes.Load()).Msg("depth-completed")
		if err := s.logIteration(depth, m, v, time.Since(tstart)); err != nil {
			log.Err(err).Msg("minimax-log-stream")
		}
		if v > equity.DecisiveThreshold {
			break
		}
	}
	if best.IsInvalid() {
		return move.Invalid, 0, ErrNoSolution
	}
	return best, bestV, nil
}

func (s *Solver) logIteration(depth int, m move.Move, v float64, elapsed time.Duration) error {
	if s.logStream == nil {
		return nil
	}
	out, err := yaml.Marshal([]LogIteration{{
		Depth:      depth,
		Move:       m.String(),
		Value:      v,
		Nodes:      s.nodes.Load(),
		ElapsedSec: elapsed.Seconds(),
	}})
	if err != nil {
		return err
	}
	_, err = s.logStream.Write(out)
	return err
}

// Solve picks a move for the solver's color on b. b is not modified. The
// value is the minimax score of the deepest search that finished in time.
func (s *Solver) Solve(ctx context.Context, b *board.Board) (move.Move, float64, error) {
	if b.IsFull() {
		return move.Invalid, 0, ErrNoSolution
	}
	if s.maxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.maxTime)
		defer cancel()
	}
	tstart := time.Now()
	s.nodes.Store(0)
	s.completedDepth = -1
	s.ClearKillers()
	if s.cache != nil {
		lookups, hits := s.cache.Stats()
		log.Debug().Uint64("lookups", lookups).Uint64("hits", hits).Msg("eval-cache-before-solve")
	}

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	var bestMove move.Move
	var bestV float64
	g.Go(func() error {
		defer close(done)
		var err error
		bestMove, bestV, err = s.iterativelyDeepen(ctx, b)
		return err
	})

	err := g.Wait()
	log.Debug().
		Uint64("nodes", s.nodes.Load()).
		Int("completed-depth", s.completedDepth).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Str("move", bestMove.String()).
		Float64("value", bestV).
		Msg("solve-returning")
	return bestMove, bestV, err
}

// Nodes returns the number of nodes visited by the last Solve.
func (s *Solver) Nodes() uint64 {
	return s.nodes.Load()
}

// CompletedDepth is the deepest iteration of the last Solve that ran to
// the end, or -1 if none did.
func (s *Solver) CompletedDepth() int {
	return s.completedDepth
}

func (s *Solver) Color() board.PlayerColor {
	return s.color
}

func (s *Solver) Evaluator() equity.Scorer {
	return s.eval
}

// SetScorer replaces the static evaluation. Scores must be from the
// solver's color's point of view. A cache set earlier is not cleared.
func (s *Solver) SetScorer(sc equity.Scorer) {
	s.eval = sc
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetKillerPlayOptim(k bool) {
	s.killerPlayOptim = k
}

func (s *Solver) SetEvalCache(c *EvalCache) {
	s.cache = c
}

func (s *Solver) EvalCache() *EvalCache {
	return s.cache
}

func (s *Solver) SetLogStream(l io.Writer) {
	s.logStream = l
}

func (s *Solver) SetMaxDepth(d int) {
	s.maxDepth = d
}

func (s *Solver) SetMaxTime(t time.Duration) {
	s.maxTime = t
}
