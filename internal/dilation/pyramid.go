package dilation

import (
	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/common/simerrors"
)

// Pyramid pads grid so that pooling by k is exact at every level and returns every level, finest first.
// The finest level is the padded grid itself and the coarsest is exactly kernel-sized.
func Pyramid(grid *Grid, k Kernel, op Operation, fill float64) ([]*Grid, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	if grid.X <= k.X && grid.Y <= k.Y {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "grid",
			Value:   Kernel{X: grid.X, Y: grid.Y},
			Message: "grid must be larger than the kernel " + k.String() + " on at least one axis",
		})
	}
	n := max(levelsFor(grid.X, k.X), levelsFor(grid.Y, k.Y))
	current := grid.Pad(pow(k.X, n), pow(k.Y, n), fill)
	levels := []*Grid{current}
	for current.X > k.X || current.Y > k.Y {
		current = current.Pool(k, op)
		levels = append(levels, current)
	}
	return levels, nil
}

// levelsFor returns the smallest l such that k^l >= dim.
func levelsFor(dim, k int) int {
	l, size := 0, 1
	for size < dim {
		size *= k
		l++
	}
	return l
}

func pow(base, exp int) int {
	rv := 1
	for i := 0; i < exp; i++ {
		rv *= base
	}
	return rv
}
