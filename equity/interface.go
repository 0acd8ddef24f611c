package equity

import "github.com/domino14/pentago/board"

// Scorer rates a position from one player's point of view. Positive
// numbers are good for that player.
type Scorer interface {
	ScoreBoard(b *board.Board) float64
}
