// Package equity holds the static evaluation of a Pentago position.
package equity

import (
	"github.com/domino14/pentago/board"
)

const (
	PosInf = 1e10
	NegInf = -1e10

	// DecisiveThreshold separates ordinary scores from "someone has
	// already won" scores.
	DecisiveThreshold = 1000.0

	DefaultCenterWeight = 0.25
	DefaultRunWeight    = 1.0

	// BestRunCount is how many runs per color feed into the score.
	BestRunCount = 3
)

// IsDecisive returns true for scores that mean the game is settled.
func IsDecisive(v float64) bool {
	return v > DecisiveThreshold || v < -DecisiveThreshold
}

// scan directions: right, down, down-right, down-left.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// Evaluator scores boards for Color using center control and the longest
// runs of each side.
type Evaluator struct {
	Color        board.PlayerColor
	CenterWeight float64
	RunWeight    float64
}

func NewEvaluator(color board.PlayerColor) *Evaluator {
	return &Evaluator{
		Color:        color,
		CenterWeight: DefaultCenterWeight,
		RunWeight:    DefaultRunWeight,
	}
}

// ScoreBoard returns player score minus opponent score.
func (e *Evaluator) ScoreBoard(b *board.Board) float64 {
	pc, oc := e.CenterScores(b)
	own, opp := e.Runs(b)
	return (pc + e.RunScore(own)) - (oc + e.RunScore(opp))
}

// CenterScores weighs the middle slot of every quadrant.
func (e *Evaluator) CenterScores(b *board.Board) (float64, float64) {
	mine := e.Color.Entry()
	var p, o float64
	center := b.CenterSlot()
	for cell := 0; cell < b.CellCount(); cell++ {
		v := b.Get(cell, center)
		if v == mine {
			p++
		} else if v != board.Empty {
			o++
		}
	}
	return p * e.CenterWeight, o * e.CenterWeight
}

// Runs returns the best BestRunCount scan lengths for each side, longest
// first. A scan starts at a piece and looks up to WinSize-1 slots ahead,
// passing over empties and counting own pieces, and stops at the first
// enemy piece.
func (e *Evaluator) Runs(b *board.Board) (own, opp [BestRunCount]int) {
	mine := e.Color.Entry()
	n := b.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			v := b.GetAbsolute(x, y)
			if v == board.Empty {
				continue
			}
			for _, d := range directions {
				l := scan(b, x, y, d[0], d[1], v)
				if v == mine {
					addRun(&own, l)
				} else {
					addRun(&opp, l)
				}
			}
		}
	}
	return own, opp
}

func scan(b *board.Board, x, y, dx, dy int, v board.BoardEntry) int {
	runLen := 0
	n := b.Size()
	for step := 1; step < board.WinSize; step++ {
		nx, ny := x+dx*step, y+dy*step
		if nx < 0 || nx >= n || ny >= n {
			break
		}
		s := b.GetAbsolute(nx, ny)
		if s == v {
			runLen++
		} else if s != board.Empty {
			break
		}
	}
	return runLen
}

func addRun(runs *[BestRunCount]int, l int) {
	if l <= runs[BestRunCount-1] {
		return
	}
	switch {
	case l > runs[0]:
		runs[2], runs[1], runs[0] = runs[1], runs[0], l
	case l > runs[1]:
		runs[2], runs[1] = runs[1], l
	default:
		runs[2] = l
	}
}

// RunScore squares each run length so near-wins dominate; a run of
// WinSize-1 is a completed line and scores PosInf.
func (e *Evaluator) RunScore(runs [BestRunCount]int) float64 {
	if runs[0] >= board.WinSize-1 {
		return PosInf
	}
	score := 0.0
	for i, r := range runs {
		score += float64(r*r) * e.RunWeight / (1.0 + 2.0*float64(i))
	}
	return score
}
