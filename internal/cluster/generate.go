package cluster

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/armadaproject/clustersim/internal/common/random"
)

const (
	longJobFraction      = 0.2
	minLongDuration      = 10
	maxLongDuration      = 15
	minShortDuration     = 1
	maxShortDuration     = 3
	DefaultPoissonLambda = 5.0
)

// SampleDurations draws the duration of n jobs. A fifth of the jobs, chosen without replacement, are long and
// last 10 to 15 ticks; the rest last 1 to 3 ticks.
func SampleDurations(rng *rand.Rand, n int) []int {
	long := make([]bool, n)
	for _, i := range rng.Perm(n)[:int(longJobFraction*float64(n))] {
		long[i] = true
	}
	durations := make([]int, n)
	for i := range durations {
		if long[i] {
			durations[i] = random.IntBetween(rng, minLongDuration, maxLongDuration)
		} else {
			durations[i] = random.IntBetween(rng, minShortDuration, maxShortDuration)
		}
	}
	return durations
}

// SampleArrivals draws the arrival tick of n jobs. Offline workloads arrive at tick 0; online ones follow a
// Poisson distribution with rate lambda, capped at the last tick of the window.
func SampleArrivals(rng *rand.Rand, n, ticks int, lambda float64, offline bool) []int {
	arrivals := make([]int, n)
	if offline {
		return arrivals
	}
	poisson := distuv.Poisson{Lambda: lambda, Src: rng}
	for i := range arrivals {
		arrivals[i] = min(int(poisson.Rand()), ticks-1)
	}
	return arrivals
}

// ActiveSpan returns the number of ticks between the first and last tick (inclusive) for which active returns
// true, or 0 if there are none.
func ActiveSpan(ticks int, active func(tick int) bool) int {
	first, last := -1, -1
	for t := 0; t < ticks; t++ {
		if active(t) {
			if first < 0 {
				first = t
			}
			last = t
		}
	}
	if first < 0 {
		return 0
	}
	return last - first + 1
}
