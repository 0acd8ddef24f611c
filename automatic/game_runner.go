// Package automatic plays computer-vs-computer Pentago games in batches
// and collects the results, so that engines and their settings can be
// compared against each other.
package automatic

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/game"
	"github.com/domino14/pentago/minimax"
	"github.com/domino14/pentago/turnplayer"
)

const (
	MinimaxPlayer = "minimax"
	MCTSPlayer    = "mcts"
)

// PlayerMaker builds the white and black controllers for one game.
type PlayerMaker func(gameIdx int) (white, black turnplayer.Controller)

// GameRecord is one finished arena game.
type GameRecord struct {
	GameID     string          `yaml:"game_id"`
	Index      int             `yaml:"index"`
	White      string          `yaml:"white"`
	Black      string          `yaml:"black"`
	FirstColor string          `yaml:"first"`
	Result     board.WinStatus `yaml:"-"`
	ResultText string          `yaml:"result"`
	Turns      int             `yaml:"turns"`
	Moves      []string        `yaml:"moves,omitempty"`
}

var csvHeader = []string{"gameID", "index", "white", "black", "first", "result", "turns"}

func (r GameRecord) csvRecord() []string {
	return []string{r.GameID, strconv.Itoa(r.Index), r.White, r.Black,
		r.FirstColor, r.ResultText, strconv.Itoa(r.Turns)}
}

// winner is the name of the winning player, or "" without one.
func (r GameRecord) winner() string {
	switch r.Result {
	case board.WhiteWin:
		return r.White
	case board.BlackWin:
		return r.Black
	}
	return ""
}

func (r GameRecord) firstMoverWon() bool {
	return (r.Result == board.WhiteWin && r.FirstColor == board.WhitePlayer.String()) ||
		(r.Result == board.BlackWin && r.FirstColor == board.BlackPlayer.String())
}

// GameRunner plays arena games one after another.
type GameRunner struct {
	makePlayers PlayerMaker
	logchan     chan []string
	gamechan    chan []byte
	// a game goes to gamechan when its id hashes to 0 modulo sampleRate.
	sampleRate uint64
}

func NewGameRunner(makePlayers PlayerMaker, logchan chan []string, gamechan chan []byte, sampleRate uint64) *GameRunner {
	return &GameRunner{
		makePlayers: makePlayers,
		logchan:     logchan,
		gamechan:    gamechan,
		sampleRate:  max(1, sampleRate),
	}
}

// DefaultPlayers pits minimax (white) against mcts (black), the matchup
// the arena runs unless told otherwise. The returned maker keeps one
// evaluation cache and resets it for every game, so it must not be
// shared between goroutines; call DefaultPlayers once per worker.
func DefaultPlayers(opts ArenaOptions) PlayerMaker {
	var cache *minimax.EvalCache
	return func(int) (turnplayer.Controller, turnplayer.Controller) {
		w := turnplayer.NewMinimaxController(MinimaxPlayer, board.WhitePlayer, opts.MinimaxDepth, opts.MinimaxTime)
		if opts.EvalCacheFraction > 0 {
			if cache == nil {
				cache = minimax.NewEvalCache(opts.EvalCacheFraction)
			} else {
				cache.Reset(opts.EvalCacheFraction)
			}
			w.UseEvalCache(cache)
		}
		b := turnplayer.NewMCTSController(MCTSPlayer, board.BlackPlayer, opts.Trials, opts.MctsThreads)
		return w, b
	}
}

// PlayGame plays game idx to the end. On odd games the black player
// moves first.
func (r *GameRunner) PlayGame(ctx context.Context, idx int) (GameRecord, error) {
	white, black := r.makePlayers(idx)
	g, err := game.NewGame(board.New(), white, black)
	if err != nil {
		return GameRecord{}, err
	}
	if idx%2 == 1 {
		g.SwapPlayers()
	}
	rec := GameRecord{
		GameID:     g.Uid(),
		Index:      idx,
		White:      white.Name(),
		Black:      black.Name(),
		FirstColor: g.Current().Color().String(),
	}
	for g.Playing() == game.Playing {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		if _, err := g.PlayTurn(ctx); err != nil {
			return rec, fmt.Errorf("game %d: %w", idx, err)
		}
	}
	rec.Result = g.Result()
	if g.Result() == board.NoWin {
		rec.ResultText = "draw"
	} else {
		rec.ResultText = g.Result().String()
	}
	rec.Turns = g.Turn()
	for _, t := range g.History() {
		rec.Moves = append(rec.Moves, t.Move.String())
	}
	log.Debug().Str("game-id", rec.GameID).Int("index", idx).Str("result", rec.ResultText).
		Int("turns", rec.Turns).Msg("arena-game-over")

	if r.logchan != nil {
		select {
		case r.logchan <- rec.csvRecord():
		case <-ctx.Done():
			return rec, ctx.Err()
		}
	}
	if r.gamechan != nil && xxhash.Sum64String(rec.GameID)%r.sampleRate == 0 {
		out, err := yaml.Marshal([]GameRecord{rec})
		if err != nil {
			return rec, err
		}
		select {
		case r.gamechan <- out:
		case <-ctx.Done():
			return rec, ctx.Err()
		}
	}
	return rec, nil
}
