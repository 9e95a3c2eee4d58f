// Package random builds the explicit pseudo-random sources threaded through workload and machine factories.
// Nothing in clustersim touches a process-wide generator.
package random

import (
	"time"

	"golang.org/x/exp/rand"
)

// New returns a generator seeded with seed. A seed of 0 means ambient entropy, i.e. the current time.
func New(seed int64) *rand.Rand {
	return rand.New(NewSource(seed))
}

// NewSource returns a source seeded with seed, with the same convention for 0 as New.
func NewSource(seed int64) rand.Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.NewSource(uint64(seed))
}

// Uniform returns a value drawn uniformly from [lo, hi).
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntBetween returns a value drawn uniformly from [lo, hi].
func IntBetween(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}
