package montecarlo

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/domino14/pentago/board"
)

func rows(t testing.TB, r ...string) *board.Board {
	t.Helper()
	b, err := board.FromRows(r)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestFindsWinningPlay(t *testing.T) {
	is := is.New(t)
	b := rows(t,
		"wwww..",
		"......",
		"......",
		"..b...",
		"...b..",
		"b.b...")
	s := &Simmer{}
	s.Init(board.WhitePlayer, 50)
	s.SetThreads(2)
	m, err := s.BestMove(context.Background(), b)
	is.NoErr(err)

	wp := s.WinningPlay()
	is.Equal(wp.Move(), m)
	is.Equal(wp.WinRate(), 1.0)
	b.ApplyMoveNoCheck(m, board.WhitePlayer)
	is.Equal(b.CheckForWins(), board.WhiteWin)
}

func TestEveryPlayGetsAllTrials(t *testing.T) {
	is := is.New(t)
	b := rows(t,
		"w..b..",
		".wb...",
		"..w...",
		"...b..",
		".b..w.",
		"......")
	s := &Simmer{}
	s.Init(board.BlackPlayer, 10)
	s.SetThreads(4)
	is.NoErr(s.PrepareSim(b))
	is.True(s.Ready())
	is.NoErr(s.Simulate(context.Background()))
	is.True(!s.Ready())
	is.Equal(s.Iterations(), 10)
	is.True(s.Nodes() > 0)

	plays := s.PlaysByWinRate().PlaysNoLock()
	is.Equal(len(plays), 28*8)
	for i, p := range plays {
		is.Equal(p.Trials(), 10)
		is.True(p.WinRate() >= 0 && p.WinRate() <= 1)
		if i > 0 {
			is.True(plays[i-1].WinRate() >= p.WinRate())
		}
	}
	details := s.ShortDetails(3)
	is.True(strings.HasPrefix(details, "1) "))
	is.True(strings.Contains(details, "iters = 10"))
	is.True(strings.Contains(s.EquityStats(), "Iterations: 10"))
}

func TestStoppingConditionCutsPlays(t *testing.T) {
	is := is.New(t)
	b := rows(t,
		"wwww..",
		"......",
		"......",
		"......",
		"......",
		"b.b.b.")
	s := &Simmer{}
	s.Init(board.WhitePlayer, 400)
	s.SetStoppingCondition(Stop95)
	is.NoErr(s.PrepareSim(b))
	is.NoErr(s.Simulate(context.Background()))
	is.True(s.Iterations() <= 400)

	wp := s.WinningPlay()
	is.True(!wp.Ignored())
	ignored := 0
	for _, p := range s.PlaysByWinRate().PlaysNoLock() {
		if p.Ignored() {
			ignored++
		}
	}
	is.True(ignored > 0)
}

func TestCancelledSimIsNotAnError(t *testing.T) {
	is := is.New(t)
	s := &Simmer{}
	s.Init(board.WhitePlayer, 1000)
	is.Equal(s.Simulate(context.Background()), ErrNotPrepared)

	is.NoErr(s.PrepareSim(board.New()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	is.NoErr(s.Simulate(ctx))
	is.Equal(s.Iterations(), 0)
}

func TestNoPlaysOnFullBoard(t *testing.T) {
	is := is.New(t)
	full := rows(t,
		"wbwbwb",
		"wbwbwb",
		"bwbwbw",
		"bwbwbw",
		"wbwbwb",
		"wbwbwb")
	s := &Simmer{}
	s.Init(board.WhitePlayer, 10)
	is.Equal(s.PrepareSim(full), ErrNoPlays)
	_, err := s.BestMove(context.Background(), full)
	is.Equal(err, ErrNoPlays)
}

func TestLogStream(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	s := &Simmer{}
	s.Init(board.WhitePlayer, 5)
	s.SetLogStream(&buf)
	b := rows(t,
		"wbwbwb",
		"wbwbwb",
		"bwbwbw",
		"bwbwbw",
		"wbwbwb",
		"wbwb..")
	_, err := s.BestMove(context.Background(), b)
	is.NoErr(err)

	var plays []LogPlay
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &plays))
	is.Equal(len(plays), 2*8)
	for _, p := range plays {
		is.Equal(p.Trials, 5)
	}
}
