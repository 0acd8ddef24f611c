package turnplayer

import (
	"context"
	"errors"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/move"
)

var ErrNoMoves = errors.New("there are no moves left on the board")

// Controller decides the moves for one side of a game. MakeMove must not
// modify b. The move it returns is not guaranteed to be legal; the game
// validates it and asks again if needed.
type Controller interface {
	Name() string
	Color() board.PlayerColor
	// KindID is the factory id the controller was built with, or -1.
	KindID() int
	MakeMove(ctx context.Context, b *board.Board) (move.Move, error)
}

// Base holds what every controller has in common.
type Base struct {
	name   string
	color  board.PlayerColor
	kindID int
}

func NewBase(name string, color board.PlayerColor) Base {
	return Base{name: name, color: color, kindID: -1}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Color() board.PlayerColor { return b.color }

func (b *Base) KindID() int { return b.kindID }

func (b *Base) SetKindID(id int) { b.kindID = id }
