package turnplayer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/config"
	"github.com/domino14/pentago/move"
)

func fullBoard(t *testing.T) *board.Board {
	b, err := board.FromRows([]string{
		"wbwbwb",
		"wbwbwb",
		"bwbwbw",
		"bwbwbw",
		"wbwbwb",
		"wbwbwb"})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestFactory(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	f := NewDefaultFactory(cfg, strings.NewReader(""), io.Discard)
	is.Equal(f.Prompts(), []string{KindHuman, KindRandom, KindMinimax, KindMCTS})

	for id, prompt := range f.Prompts() {
		c, err := f.Construct(id, "p"+prompt, board.BlackPlayer, board.New())
		is.NoErr(err)
		is.Equal(c.KindID(), id)
		is.Equal(c.Name(), "p"+prompt)
		is.Equal(c.Color(), board.BlackPlayer)
		got, ok := f.ByPrompt(prompt)
		is.True(ok)
		is.Equal(got, id)
	}
	_, err := f.Construct(4, "x", board.WhitePlayer, board.New())
	is.True(errors.Is(err, ErrUnknownController))
	_, err = f.Construct(-1, "x", board.WhitePlayer, board.New())
	is.True(errors.Is(err, ErrUnknownController))
	_, err = f.ConstructByPrompt("alphazero", "x", board.WhitePlayer, board.New())
	is.True(errors.Is(err, ErrUnknownController))
	_, ok := f.ByPrompt("alphazero")
	is.True(!ok)

	c, err := f.ConstructByPrompt(KindMinimax, "m", board.WhitePlayer, board.New())
	is.NoErr(err)
	_, isMinimax := c.(*MinimaxController)
	is.True(isMinimax)

	// a controller made outside the factory has no kind.
	is.Equal(NewRandomController("r", board.WhitePlayer).KindID(), -1)
}

func TestRandomController(t *testing.T) {
	is := is.New(t)
	c := NewRandomController("r", board.WhitePlayer)
	b := board.New()
	for i := 0; i < 10; i++ {
		m, err := c.MakeMove(context.Background(), b)
		is.NoErr(err)
		is.NoErr(b.ValidateMove(m))
		b.ApplyMoveNoCheck(m, board.WhitePlayer)
	}
	_, err := c.MakeMove(context.Background(), fullBoard(t))
	is.Equal(err, ErrNoMoves)
}

func TestHumanController(t *testing.T) {
	is := is.New(t)
	in := strings.NewReader("garbage\n\n2/3 4L\n")
	var out bytes.Buffer
	h := NewHumanController("h", board.WhitePlayer, in, &out)
	m, err := h.MakeMove(context.Background(), board.New())
	is.NoErr(err)
	is.Equal(m, move.New(1, 2, 3, move.RotateLeft))
	is.Equal(strings.Count(out.String(), "Enter move: "), 3)
	is.True(strings.Contains(out.String(), "Invalid move format"))

	_, err = h.MakeMove(context.Background(), board.New())
	is.Equal(err, io.EOF)
}

func TestHumanControllersShareInput(t *testing.T) {
	is := is.New(t)
	f := NewDefaultFactory(config.DefaultConfig(), strings.NewReader("1/1 1L\n4/9 4R\n"), nil)
	w, err := f.ConstructByPrompt(KindHuman, "w", board.WhitePlayer, board.New())
	is.NoErr(err)
	bl, err := f.ConstructByPrompt(KindHuman, "b", board.BlackPlayer, board.New())
	is.NoErr(err)
	m1, err := w.MakeMove(context.Background(), board.New())
	is.NoErr(err)
	m2, err := bl.MakeMove(context.Background(), board.New())
	is.NoErr(err)
	is.Equal(m1, move.New(0, 0, 0, move.RotateLeft))
	is.Equal(m2, move.New(3, 8, 3, move.RotateRight))
}

func TestMinimaxController(t *testing.T) {
	is := is.New(t)
	c := NewMinimaxController("m", board.BlackPlayer, 1, 5*time.Second)
	c.EnableEvalCache(0)
	b, err := board.FromRows([]string{
		"bbbb..",
		"......",
		"......",
		"..w...",
		"...w..",
		"w.....",
	})
	is.NoErr(err)
	m, err := c.MakeMove(context.Background(), b)
	is.NoErr(err)
	b.ApplyMoveNoCheck(m, board.BlackPlayer)
	is.Equal(b.CheckForWins(), board.BlackWin)
}

func TestMinimaxControllerFallsBack(t *testing.T) {
	is := is.New(t)
	c := NewMinimaxController("m", board.WhitePlayer, 3, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := board.New()
	m, err := c.MakeMove(ctx, b)
	is.NoErr(err)
	is.NoErr(b.ValidateMove(m))

	_, err = c.MakeMove(context.Background(), fullBoard(t))
	is.Equal(err, ErrNoMoves)
}

func TestMCTSController(t *testing.T) {
	is := is.New(t)
	c := NewMCTSController("mc", board.WhitePlayer, 20, 2)
	b := board.New()
	m, err := c.MakeMove(context.Background(), b)
	is.NoErr(err)
	is.NoErr(b.ValidateMove(m))
	is.Equal(c.Simmer().Iterations(), 20)

	_, err = c.MakeMove(context.Background(), fullBoard(t))
	is.Equal(err, ErrNoMoves)
}

func TestParsePlayerSpec(t *testing.T) {
	is := is.New(t)
	p, err := ParsePlayerSpec("alice:Minimax")
	is.NoErr(err)
	is.Equal(p, PlayerSpec{Name: "alice", Kind: "minimax"})
	p, err = ParsePlayerSpec("mcts")
	is.NoErr(err)
	is.Equal(p, PlayerSpec{Name: "mcts", Kind: "mcts"})
	_, err = ParsePlayerSpec("bob:")
	is.True(errors.Is(err, ErrBadPlayerSpec))
	_, err = ParsePlayerSpec(" ")
	is.True(errors.Is(err, ErrBadPlayerSpec))

	m, err := ParseMove([]string{"1/5", "1R"})
	is.NoErr(err)
	is.Equal(m, move.New(0, 4, 0, move.RotateRight))
	_, err = ParseMove(nil)
	is.True(errors.Is(err, move.ErrBadFormat))
}
