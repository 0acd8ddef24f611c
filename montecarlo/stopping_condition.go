package montecarlo

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/domino14/pentago/stats"
)

type StoppingCondition int

const (
	StopNone StoppingCondition = iota
	Stop95
	Stop98
	Stop99
)

// StoppingConditionFromString maps "none", "95", "98" and "99".
func StoppingConditionFromString(s string) (StoppingCondition, bool) {
	switch s {
	case "", "none", "0":
		return StopNone, true
	case "95":
		return Stop95, true
	case "98":
		return Stop98, true
	case "99":
		return Stop99, true
	}
	return StopNone, false
}

// Minimum number of rollouts per play before any play may be cut.
const minIterationsBeforeStop = 30

func (sc StoppingCondition) z() float64 {
	switch sc {
	case Stop95:
		return stats.Z95
	case Stop98:
		return stats.Z98
	case Stop99:
		return stats.Z99
	}
	return 0
}

// shouldStop marks plays that cannot catch the leader as ignored, and
// returns true once at most one play is left standing.
func shouldStop(plays []*SimmedPlay, sc StoppingCondition, iterationCount int) bool {
	if len(plays) < 2 {
		return true
	}
	if iterationCount < minIterationsBeforeStop {
		return false
	}
	c := make([]*SimmedPlay, len(plays))
	ignoredPlays := 0
	for i := range c {
		c[i] = plays[i]
		c[i].RLock()
		if c[i].ignore {
			ignoredPlays++
		}
		c[i].RUnlock()
	}
	if ignoredPlays >= len(c)-1 {
		return true
	}

	sort.Slice(c, func(i, j int) bool {
		c[i].RLock()
		c[j].RLock()
		defer c[j].RUnlock()
		defer c[i].RUnlock()
		return c[i].winStats.Mean() > c[j].winStats.Mean()
	})

	z := sc.z()
	tentativeWinner := c[0]
	tentativeWinner.RLock()
	μ := tentativeWinner.winStats.Mean()
	e := tentativeWinner.winStats.StandardError(z)
	tentativeWinner.RUnlock()
	newIgnored := 0
	for _, p := range c[1:] {
		p.RLock()
		if p.ignore {
			p.RUnlock()
			continue
		}
		μi := p.winStats.Mean()
		ei := p.winStats.StandardError(z)
		p.RUnlock()
		if passTest(μ, e, μi, ei) {
			p.Ignore()
			newIgnored++
		}
	}
	if newIgnored > 0 {
		log.Debug().Int("newIgnored", newIgnored).Int("iterations", iterationCount).Msg("sim-cut-off")
	}
	return ignoredPlays+newIgnored >= len(c)-1
}

// passTest: X > Y when the intervals no longer overlap.
func passTest(μ, e, μi, ei float64) bool {
	return (μ - e) > (μi + ei)
}
