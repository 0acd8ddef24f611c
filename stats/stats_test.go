package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.scores))
	}
}

func TestMerge(t *testing.T) {
	is := is.New(t)
	vals := []float64{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}
	all := &Statistic{}
	a := &Statistic{}
	b := &Statistic{}
	for i, v := range vals {
		all.Push(v)
		if i < 4 {
			a.Push(v)
		} else {
			b.Push(v)
		}
	}
	a.Merge(b)
	is.Equal(a.Iterations(), all.Iterations())
	is.True(FuzzyEqual(a.Mean(), all.Mean()))
	is.True(FuzzyEqual(a.Variance(), all.Variance()))

	empty := &Statistic{}
	empty.Merge(all)
	is.True(FuzzyEqual(empty.Mean(), all.Mean()))
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(float64(int(ZVal(95)*1000))/1000, 1.959))
	is.True(FuzzyEqual(float64(int(ZVal(99)*1000))/1000, 2.575))
	is.True(Z98 > Z95 && Z99 > Z98)
}

func TestStandardError(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{0, 1, 0, 1} {
		s.Push(v)
	}
	// variance of {0,1,0,1} is 1/3; n = 4
	is.True(FuzzyEqual(s.StandardError(1), 0.28867513459481287))
	is.True(FuzzyEqual((&Statistic{}).StandardError(Z95), 0))
}

func TestWilsonInterval(t *testing.T) {
	is := is.New(t)
	lo, hi := WilsonInterval(50, 100, Z95)
	is.True(lo < 0.5 && hi > 0.5)
	is.True(FuzzyEqual(0.5-lo, hi-0.5))
	lo, hi = WilsonInterval(0, 10, Z95)
	is.True(FuzzyEqual(lo, 0))
	is.True(hi > 0 && hi < 1)
	lo, hi = WilsonInterval(0, 0, Z95)
	is.Equal(lo, 0.0)
	is.Equal(hi, 1.0)
}
