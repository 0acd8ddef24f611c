package minimax

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/equity"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/movegen"
	"github.com/domino14/pentago/stats"
)

func rows(t testing.TB, r ...string) *board.Board {
	t.Helper()
	b, err := board.FromRows(r)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func midgame(t testing.TB) *board.Board {
	return rows(t,
		"w..b..",
		".wb...",
		"..w...",
		"...b..",
		".b..w.",
		"......")
}

func TestDepthZeroMaximizesImmediateScore(t *testing.T) {
	is := is.New(t)
	b := midgame(t)
	before := b.Clone()
	s := NewSolver(board.WhitePlayer, 0, 0)
	m, v, err := s.Solve(context.Background(), b)
	is.NoErr(err)
	is.NoErr(b.ValidateMove(m))
	is.True(before.Equals(b))

	eval := equity.NewEvaluator(board.WhitePlayer)
	best := equity.NegInf * 10
	for _, cand := range movegen.StaticList(b, nil) {
		c := b.Clone()
		c.ApplyMoveNoCheck(cand, board.WhitePlayer)
		best = max(best, eval.ScoreBoard(c))
	}
	is.True(stats.FuzzyEqual(v, best))

	c := b.Clone()
	c.ApplyMoveNoCheck(m, board.WhitePlayer)
	is.True(stats.FuzzyEqual(eval.ScoreBoard(c), best))
	is.Equal(s.CompletedDepth(), 0)
	is.True(s.Nodes() > 0)
}

func TestFindsImmediateWin(t *testing.T) {
	is := is.New(t)
	b := rows(t,
		"wwww..",
		"......",
		"......",
		"..b...",
		"...b..",
		"b.....")
	s := NewSolver(board.WhitePlayer, 3, 10*time.Second)
	m, v, err := s.Solve(context.Background(), b)
	is.NoErr(err)
	is.True(v > equity.DecisiveThreshold)
	// a decisive first iteration ends the search.
	is.Equal(s.CompletedDepth(), 0)
	b.ApplyMoveNoCheck(m, board.WhitePlayer)
	is.Equal(b.CheckForWins(), board.WhiteWin)
}

func TestBlocksOpponentWin(t *testing.T) {
	is := is.New(t)
	b := rows(t,
		"bbbb..",
		"......",
		"......",
		"......",
		"......",
		"......")
	s := NewSolver(board.WhitePlayer, 1, 0)
	m, v, err := s.Solve(context.Background(), b)
	is.NoErr(err)
	is.True(!equity.IsDecisive(v))

	b.ApplyMoveNoCheck(m, board.WhitePlayer)
	eval := equity.NewEvaluator(board.WhitePlayer)
	for _, reply := range movegen.StaticList(b, nil) {
		c := b.Clone()
		c.ApplyMoveNoCheck(reply, board.BlackPlayer)
		is.True(eval.ScoreBoard(c) > -equity.DecisiveThreshold)
	}
}

func TestKillersAndCacheKeepTheValue(t *testing.T) {
	is := is.New(t)
	b := midgame(t)

	plain := NewSolver(board.BlackPlayer, 1, 0)
	plain.SetKillerPlayOptim(false)
	_, v1, err := plain.Solve(context.Background(), b)
	is.NoErr(err)

	killers := NewSolver(board.BlackPlayer, 1, 0)
	_, v2, err := killers.Solve(context.Background(), b)
	is.NoErr(err)

	cached := NewSolver(board.BlackPlayer, 1, 0)
	cached.SetEvalCache(NewEvalCache(0))
	cached.SetIterativeDeepening(false)
	_, v3, err := cached.Solve(context.Background(), b)
	is.NoErr(err)

	is.True(stats.FuzzyEqual(v1, v2))
	is.True(stats.FuzzyEqual(v1, v3))
}

func TestRespectsTimeBudget(t *testing.T) {
	is := is.New(t)
	s := NewSolver(board.WhitePlayer, 6, 200*time.Millisecond)
	b := board.New()
	tstart := time.Now()
	m, _, err := s.Solve(context.Background(), b)
	elapsed := time.Since(tstart)
	is.NoErr(err)
	is.NoErr(b.ValidateMove(m))
	is.True(elapsed < 2*time.Second)
	is.True(s.CompletedDepth() < 6)
	is.True(s.CompletedDepth() >= 0)
}

func TestNoSolution(t *testing.T) {
	is := is.New(t)
	s := NewSolver(board.WhitePlayer, 2, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, _, err := s.Solve(ctx, board.New())
	is.Equal(err, ErrNoSolution)
	is.True(m.IsInvalid())

	full := rows(t,
		"wbwbwb",
		"wbwbwb",
		"bwbwbw",
		"bwbwbw",
		"wbwbwb",
		"wbwbwb")
	m, _, err = s.Solve(context.Background(), full)
	is.Equal(err, ErrNoSolution)
	is.True(m.IsInvalid())
}

func TestLogStream(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	s := NewSolver(board.WhitePlayer, 1, 0)
	s.SetLogStream(&buf)
	// Nothing on an empty board is decisive, so both depths are searched.
	_, _, err := s.Solve(context.Background(), board.New())
	is.NoErr(err)

	var iters []LogIteration
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &iters))
	is.Equal(len(iters), 2)
	is.Equal(len(iters), s.CompletedDepth()+1)
	is.Equal(iters[0].Depth, 0)
	is.Equal(iters[1].Depth, 1)
	is.True(iters[1].Nodes >= iters[0].Nodes)
}

// centerOnly prefers boards with white on quadrant centers.
type centerOnly struct{ calls int }

func (c *centerOnly) ScoreBoard(b *board.Board) float64 {
	c.calls++
	n := 0.0
	for cell := 0; cell < b.CellCount(); cell++ {
		if b.Get(cell, b.CenterSlot()) == board.White {
			n++
		}
	}
	return n
}

func TestCustomScorer(t *testing.T) {
	is := is.New(t)
	s := NewSolver(board.WhitePlayer, 0, 0)
	sc := &centerOnly{}
	s.SetScorer(sc)
	m, v, err := s.Solve(context.Background(), board.New())
	is.NoErr(err)
	is.Equal(v, 1.0)
	is.Equal(m.PlaySlot, 4)
	is.True(sc.calls > 0)
}

func TestKillerSlots(t *testing.T) {
	is := is.New(t)
	s := NewSolver(board.WhitePlayer, 2, 0)
	s.growKillers(2)
	is.Equal(len(s.killers), 3)
	for d := range s.killers {
		is.Equal(s.killers[d], [MaxKillers]move.Move{move.Invalid, move.Invalid})
	}

	a := move.New(0, 4, 0, move.RotateRight)
	b := move.New(1, 4, 1, move.RotateLeft)
	c := move.New(2, 0, 3, move.RotateRight)

	s.storeKiller(1, a)
	s.storeKiller(1, a)
	is.Equal(s.killers[1], [MaxKillers]move.Move{a, move.Invalid})

	s.storeKiller(1, b)
	is.Equal(s.killers[1], [MaxKillers]move.Move{b, a})

	// Storing the older killer again brings it to the front without a copy.
	s.storeKiller(1, a)
	is.Equal(s.killers[1], [MaxKillers]move.Move{a, b})

	// A new killer pushes out the oldest.
	s.storeKiller(1, c)
	is.Equal(s.killers[1], [MaxKillers]move.Move{c, a})

	// Other depths are untouched.
	is.Equal(s.killers[0], [MaxKillers]move.Move{move.Invalid, move.Invalid})
	is.Equal(s.killers[2], [MaxKillers]move.Move{move.Invalid, move.Invalid})

	// Growing keeps what is stored.
	s.growKillers(4)
	is.Equal(len(s.killers), 5)
	is.Equal(s.killers[1], [MaxKillers]move.Move{c, a})

	s.ClearKillers()
	for d := range s.killers {
		is.Equal(s.killers[d], [MaxKillers]move.Move{move.Invalid, move.Invalid})
	}

	s.SetKillerPlayOptim(false)
	s.storeKiller(1, a)
	is.Equal(s.killers[1], [MaxKillers]move.Move{move.Invalid, move.Invalid})
}
