package turnplayer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/config"
)

var ErrUnknownController = errors.New("unknown controller kind")

const (
	KindHuman   = "human"
	KindRandom  = "random"
	KindMinimax = "minimax"
	KindMCTS    = "mcts"
)

// Constructor builds a controller. initial is the board the game starts
// from; constructors may size internal tables from it but must not keep it.
type Constructor func(name string, color board.PlayerColor, initial *board.Board) Controller

// Factory is a registry of controller kinds, each identified by the order
// it was registered in.
type Factory struct {
	prompts []string
	ctors   []Constructor
}

// Register adds a kind and returns its id.
func (f *Factory) Register(prompt string, ctor Constructor) int {
	f.prompts = append(f.prompts, prompt)
	f.ctors = append(f.ctors, ctor)
	return len(f.ctors) - 1
}

// Construct builds a controller of kind id and tags it with that id.
func (f *Factory) Construct(id int, name string, color board.PlayerColor, initial *board.Board) (Controller, error) {
	if id < 0 || id >= len(f.ctors) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownController, id)
	}
	c := f.ctors[id](name, color, initial)
	if ks, ok := c.(interface{ SetKindID(int) }); ok {
		ks.SetKindID(id)
	}
	return c, nil
}

// ConstructByPrompt is Construct with the kind given by name.
func (f *Factory) ConstructByPrompt(prompt, name string, color board.PlayerColor, initial *board.Board) (Controller, error) {
	id, ok := f.ByPrompt(prompt)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownController, prompt)
	}
	return f.Construct(id, name, color, initial)
}

func (f *Factory) Prompts() []string {
	return append([]string(nil), f.prompts...)
}

func (f *Factory) ByPrompt(prompt string) (int, bool) {
	idx := lo.IndexOf(f.prompts, prompt)
	return idx, idx >= 0
}

// DefaultFactory registers human, random, minimax and mcts, in that order.
// Humans type their moves on stdin.
func DefaultFactory(cfg *config.Config) *Factory {
	return NewDefaultFactory(cfg, os.Stdin, os.Stdout)
}

// NewDefaultFactory is DefaultFactory with the human controllers reading
// from in and prompting on out. All humans share one reader.
func NewDefaultFactory(cfg *config.Config, in io.Reader, out io.Writer) *Factory {
	scanner := bufio.NewScanner(in)
	f := &Factory{}
	f.Register(KindHuman, func(name string, color board.PlayerColor, _ *board.Board) Controller {
		return newHumanController(name, color, scanner, out)
	})
	f.Register(KindRandom, func(name string, color board.PlayerColor, _ *board.Board) Controller {
		return NewRandomController(name, color)
	})
	f.Register(KindMinimax, func(name string, color board.PlayerColor, _ *board.Board) Controller {
		c := NewMinimaxController(name, color,
			cfg.GetInt(config.ConfigMinimaxDepth), cfg.GetDuration(config.ConfigMinimaxTime))
		if frac := cfg.GetFloat64(config.ConfigEvalCacheFraction); frac > 0 {
			c.EnableEvalCache(frac)
		}
		return c
	})
	f.Register(KindMCTS, func(name string, color board.PlayerColor, _ *board.Board) Controller {
		return NewMCTSController(name, color,
			cfg.GetInt(config.ConfigMctsTrials), cfg.GetInt(config.ConfigMctsThreads))
	})
	return f
}
