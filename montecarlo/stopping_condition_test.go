package montecarlo

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/pentago/move"
)

func TestPassTest(t *testing.T) {
	is := is.New(t)
	is.True(passTest(0.8, 0.05, 0.6, 0.05))
	is.True(!passTest(0.8, 0.1, 0.65, 0.1))
}

func simmedPlay(wins, n int) *SimmedPlay {
	sp := &SimmedPlay{play: move.New(0, 0, 0, move.RotateLeft)}
	for i := 0; i < n; i++ {
		if i < wins {
			sp.winStats.Push(1)
		} else {
			sp.winStats.Push(0)
		}
	}
	return sp
}

func TestShouldStop(t *testing.T) {
	is := is.New(t)
	leader := simmedPlay(90, 100)
	runnerUp := simmedPlay(85, 100)
	hopeless := simmedPlay(10, 100)
	plays := []*SimmedPlay{hopeless, runnerUp, leader}

	// too early to cut anything.
	is.True(!shouldStop(plays, Stop95, 10))
	is.True(!hopeless.ignore)

	is.True(!shouldStop(plays, Stop99, 100))
	is.True(hopeless.ignore)
	is.True(!runnerUp.ignore)
	is.True(!leader.ignore)

	is.True(shouldStop([]*SimmedPlay{leader, hopeless}, Stop99, 100))
	is.True(shouldStop([]*SimmedPlay{leader}, Stop99, 100))
}

func TestStoppingConditionFromString(t *testing.T) {
	is := is.New(t)
	sc, ok := StoppingConditionFromString("99")
	is.True(ok)
	is.Equal(sc, Stop99)
	sc, ok = StoppingConditionFromString("none")
	is.True(ok)
	is.Equal(sc, StopNone)
	_, ok = StoppingConditionFromString("50")
	is.True(!ok)
}
