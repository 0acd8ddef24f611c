// Package game runs a Pentago game between two controllers. It owns the
// board, knows whose turn it is, and keeps the move history.
// Note: a Game doesn't care how its players decide. Humans, engines and
// scripts are all just controllers.
package game

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/move"
	"github.com/domino14/pentago/turnplayer"
)

const MaxInvalidAttempts = 10

var (
	ErrTooManyInvalidMoves = errors.New("too many invalid moves in a row")
	ErrGameOver            = errors.New("the game is over")
	ErrSameColor           = errors.New("both players have the same color")
	ErrWrongColor          = errors.New("controller plays the other color")
)

type PlayState int

const (
	Playing PlayState = iota
	GameOver
)

// Turn is one entry of the history.
type Turn struct {
	Color  board.PlayerColor
	Player string
	Move   move.Move
	// Status is what ApplyMove returned for this move.
	Status board.WinStatus
}

type Game struct {
	uid     ID
	board   *board.Board
	players [2]turnplayer.Controller
	onturn  int
	history []Turn
	playing PlayState
	result  board.WinStatus

	maxInvalidAttempts int
}

// NewGame starts a game on b (which the game takes over) with p1 to move.
func NewGame(b *board.Board, p1, p2 turnplayer.Controller) (*Game, error) {
	if p1.Color() == p2.Color() {
		return nil, ErrSameColor
	}
	g := &Game{
		uid:                newID(),
		board:              b,
		players:            [2]turnplayer.Controller{p1, p2},
		maxInvalidAttempts: MaxInvalidAttempts,
	}
	g.updatePlayState()
	return g, nil
}

// NewGameAt rebuilds a game in progress: onturn is the index of the player
// to move and history lists the moves already on b, oldest first.
func NewGameAt(b *board.Board, p1, p2 turnplayer.Controller, onturn int, history []Turn) (*Game, error) {
	g, err := NewGame(b, p1, p2)
	if err != nil {
		return nil, err
	}
	g.onturn = onturn & 1
	g.history = append([]Turn(nil), history...)
	g.updatePlayState()
	return g, nil
}

func (g *Game) updatePlayState() {
	g.result = g.board.CheckForWins()
	if g.result != board.NoWin || g.board.IsFull() {
		g.playing = GameOver
	} else {
		g.playing = Playing
	}
}

// PlayTurn asks the player on turn for a move and applies it. Illegal
// moves are logged and the player is asked again.
func (g *Game) PlayTurn(ctx context.Context) (board.WinStatus, error) {
	if g.playing == GameOver {
		return g.result, ErrGameOver
	}
	cur := g.Current()
	m, err := cur.MakeMove(ctx, g.board.Clone())
	if err != nil {
		return board.NoWin, err
	}
	attempts := 0
	for {
		verr := g.board.ValidateMove(m)
		if verr == nil {
			break
		}
		attempts++
		log.Warn().Err(verr).Str("player", cur.Name()).Str("move", m.String()).
			Int("attempt", attempts).Msg("invalid-move")
		if attempts >= g.maxInvalidAttempts {
			return board.NoWin, fmt.Errorf("%w: %s", ErrTooManyInvalidMoves, cur.Name())
		}
		m, err = cur.MakeMove(ctx, g.board.Clone())
		if err != nil {
			return board.NoWin, err
		}
	}
	return g.apply(m), nil
}

// PlayMove plays m for the player on turn, bypassing its controller.
func (g *Game) PlayMove(m move.Move) (board.WinStatus, error) {
	if g.playing == GameOver {
		return g.result, ErrGameOver
	}
	if err := g.board.ValidateMove(m); err != nil {
		return board.NoWin, err
	}
	return g.apply(m), nil
}

func (g *Game) apply(m move.Move) board.WinStatus {
	cur := g.Current()
	status := g.board.ApplyMove(m, cur.Color())
	g.history = append(g.history, Turn{Color: cur.Color(), Player: cur.Name(), Move: m, Status: status})
	log.Debug().Str("player", cur.Name()).Str("move", m.String()).
		Str("status", status.String()).Int("turn", len(g.history)).Msg("played-move")
	if status != board.NoWin {
		g.playing = GameOver
		g.result = status
		return status
	}
	if g.board.IsFull() {
		g.playing = GameOver
		g.result = board.NoWin
		return status
	}
	g.onturn ^= 1
	return status
}

// Play runs the game to the end, printing the board after every move.
// A full board with no winner ends the game with NoWin.
func (g *Game) Play(ctx context.Context, w io.Writer) (board.WinStatus, error) {
	fmt.Fprintln(w, "Welcome to Pentago!")
	fmt.Fprint(w, g.board)
	for g.playing == Playing {
		fmt.Fprintf(w, "%s's turn.\n", g.Current().Name())
		if _, err := g.PlayTurn(ctx); err != nil {
			return board.NoWin, err
		}
		last := g.history[len(g.history)-1]
		fmt.Fprintln(w, last.Move)
		fmt.Fprintln(w, g.board)
	}
	fmt.Fprintln(w, ResultString(g.result))
	return g.result, nil
}

// ResultString is the line printed when a game ends.
func ResultString(s board.WinStatus) string {
	switch s {
	case board.WhiteWin:
		return "White wins!"
	case board.BlackWin:
		return "Black wins!"
	case board.Tie:
		return "Tie!"
	}
	return "Draw! The board is full."
}

// SwapPlayers hands the move to the other player.
func (g *Game) SwapPlayers() {
	g.onturn ^= 1
}

// SetController replaces the controller for its color.
func (g *Game) SetController(c turnplayer.Controller) {
	for i, p := range g.players {
		if p.Color() == c.Color() {
			g.players[i] = c
		}
	}
}

func (g *Game) SetMaxInvalidAttempts(n int) {
	g.maxInvalidAttempts = max(1, n)
}

func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) Current() turnplayer.Controller {
	return g.players[g.onturn]
}

func (g *Game) Next() turnplayer.Controller {
	return g.players[g.onturn^1]
}

// Player returns the controller in seat idx (0 or 1), regardless of turn.
func (g *Game) Player(idx int) turnplayer.Controller {
	return g.players[idx&1]
}

// PlayerOnTurn is the seat index of the player to move.
func (g *Game) PlayerOnTurn() int {
	return g.onturn
}

func (g *Game) Playing() PlayState {
	return g.playing
}

// Result is the final status once the game is over.
func (g *Game) Result() board.WinStatus {
	return g.result
}

// Turn is the number of moves played so far.
func (g *Game) Turn() int {
	return len(g.history)
}

func (g *Game) History() []Turn {
	return append([]Turn(nil), g.history...)
}

func (g *Game) Uid() string {
	return g.uid.String()
}
