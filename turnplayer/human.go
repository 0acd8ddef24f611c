package turnplayer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/move"
)

// HumanController reads moves a line at a time. Lines that do not parse
// are answered with a complaint and a fresh prompt; legality is left to
// the game.
type HumanController struct {
	Base
	scanner *bufio.Scanner
	out     io.Writer
}

func NewHumanController(name string, color board.PlayerColor, in io.Reader, out io.Writer) *HumanController {
	return newHumanController(name, color, bufio.NewScanner(in), out)
}

func newHumanController(name string, color board.PlayerColor, scanner *bufio.Scanner, out io.Writer) *HumanController {
	if out == nil {
		out = io.Discard
	}
	return &HumanController{Base: NewBase(name, color), scanner: scanner, out: out}
}

func (h *HumanController) MakeMove(ctx context.Context, b *board.Board) (move.Move, error) {
	for {
		if err := ctx.Err(); err != nil {
			return move.Invalid, err
		}
		fmt.Fprint(h.out, "Enter move: ")
		if !h.scanner.Scan() {
			if err := h.scanner.Err(); err != nil {
				return move.Invalid, err
			}
			return move.Invalid, io.EOF
		}
		line := strings.TrimSpace(h.scanner.Text())
		if line == "" {
			continue
		}
		m, err := move.FromString(line)
		if errors.Is(err, move.ErrBadFormat) {
			fmt.Fprintln(h.out, "Invalid move format")
			continue
		} else if err != nil {
			return move.Invalid, err
		}
		return m, nil
	}
}
