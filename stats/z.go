package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	Z95 = ZVal(95)
	Z98 = ZVal(98)
	Z99 = ZVal(99)
)

// ZVal returns the two-tailed Z-value associated with a specific confidence interval.
// The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// WilsonInterval returns the Wilson score interval for a proportion of
// wins out of n trials at the given z-value.
func WilsonInterval(wins, n int, z float64) (float64, float64) {
	if n == 0 {
		return 0, 1
	}
	p := float64(wins) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return max(0, center-half), min(1, center+half)
}
