package automatic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/pentago/board"
	"github.com/domino14/pentago/stats"
)

const histogramBins = 10

type ArenaResult struct {
	Records     []GameRecord
	Interrupted bool

	WhiteWins      int
	BlackWins      int
	Ties           int
	Draws          int
	FirstMoverWins int
	// Points per player name: 1 for a win, 0.5 for a tie or draw.
	Points map[string]float64

	Lengths stats.Statistic
}

// Tally summarizes a list of finished games.
func Tally(records []GameRecord) *ArenaResult {
	res := &ArenaResult{Records: records, Points: map[string]float64{}}
	counts := lo.CountValuesBy(records, func(r GameRecord) board.WinStatus { return r.Result })
	res.WhiteWins = counts[board.WhiteWin]
	res.BlackWins = counts[board.BlackWin]
	res.Ties = counts[board.Tie]
	res.Draws = counts[board.NoWin]
	res.FirstMoverWins = lo.CountBy(records, GameRecord.firstMoverWon)
	for _, r := range records {
		for _, name := range []string{r.White, r.Black} {
			if _, ok := res.Points[name]; !ok {
				res.Points[name] = 0
			}
		}
		if w := r.winner(); w != "" {
			res.Points[w]++
		} else {
			res.Points[r.White] += 0.5
			res.Points[r.Black] += 0.5
		}
		res.Lengths.Push(float64(r.Turns))
	}
	return res
}

func (a *ArenaResult) Games() int {
	return len(a.Records)
}

func (a *ArenaResult) rateLine(sb *strings.Builder, label string, wins int) {
	n := a.Games()
	low, high := stats.WilsonInterval(wins, n, stats.Z95)
	fmt.Fprintf(sb, "%-14s %5d  (%6.2f%%)  95%% CI [%6.2f%%, %6.2f%%]\n",
		label+":", wins, 100*float64(wins)/float64(n), 100*low, 100*high)
}

// Summary renders the win rates with confidence intervals and a histogram
// of game lengths.
func (a *ArenaResult) Summary() string {
	var sb strings.Builder
	n := a.Games()
	fmt.Fprintf(&sb, "Games played: %d", n)
	if a.Interrupted {
		sb.WriteString(" (interrupted)")
	}
	sb.WriteString("\n")
	if n == 0 {
		return sb.String()
	}
	a.rateLine(&sb, "White wins", a.WhiteWins)
	a.rateLine(&sb, "Black wins", a.BlackWins)
	a.rateLine(&sb, "Ties", a.Ties)
	a.rateLine(&sb, "Draws", a.Draws)
	a.rateLine(&sb, "First mover", a.FirstMoverWins)

	names := lo.Keys(a.Points)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "%s score: %.1f (%.2f%%)\n", name, a.Points[name], 100*a.Points[name]/float64(n))
	}
	fmt.Fprintf(&sb, "Game length: mean %.2f  stdev %.2f\n", a.Lengths.Mean(), a.Lengths.Stdev())

	lengths := lo.Map(a.Records, func(r GameRecord, _ int) float64 { return float64(r.Turns) })
	hist := histogram.Hist(histogramBins, lengths)
	if err := histogram.Fprint(&sb, hist, histogram.Linear(40)); err != nil {
		fmt.Fprintf(&sb, "(histogram unavailable: %v)\n", err)
	}
	return sb.String()
}
