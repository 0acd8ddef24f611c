package game

import (
	"bytes"
	"fmt"
	"strings"
)

func splitSubN(s string, n int) []string {
	sub := ""
	subs := []string{}

	runes := bytes.Runes([]byte(s))
	l := len(runes)
	for i, r := range runes {
		sub = sub + string(r)
		if (i+1)%n == 0 {
			subs = append(subs, sub)
			sub = ""
		} else if (i + 1) == l {
			subs = append(subs, sub)
		}
	}

	return subs
}

func addText(lines []string, row int, hpad int, text string) {
	maxTextSize := 42
	sp := splitSubN(text, maxTextSize)

	for _, chunk := range sp {
		if row >= len(lines) {
			return
		}
		lines[row] = lines[row] + strings.Repeat(" ", hpad) + chunk
		row++
	}
}

// ToDisplayText draws the board with the players, the turn and the last
// move written down its right-hand side.
func (g *Game) ToDisplayText() string {
	bts := strings.Split(strings.TrimRight(g.board.String(), "\n"), "\n")
	hpadding := 3
	vpadding := 1

	for pi := 0; pi < 2; pi++ {
		p := g.players[pi]
		marker := " "
		if g.playing == Playing && g.onturn == pi {
			marker = "->"
		}
		addText(bts, vpadding+pi, hpadding, fmt.Sprintf("%-2s %s (%s, %d)", marker, p.Name(), p.Color(), p.KindID()))
	}

	addText(bts, vpadding+3, hpadding, fmt.Sprintf("Turn %d", len(g.history)))
	if len(g.history) > 0 {
		last := g.history[len(g.history)-1]
		addText(bts, vpadding+4, hpadding, fmt.Sprintf("Last: %s played %s", last.Player, last.Move))
	}
	if g.playing == GameOver {
		addText(bts, vpadding+6, hpadding, "Game is over. "+ResultString(g.result))
	}
	return strings.Join(bts, "\n") + "\n"
}
