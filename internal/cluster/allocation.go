package cluster

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/common/simerrors"
)

// AllocationPolicy is the flavor-specific pair of functions deciding whether a job fits on a machine and
// subtracting its demand. Feasible must not mutate either argument. Allocate mutates only the machine's free
// space and must only be called after Feasible returned true for the same pair; it never checks feasibility.
type AllocationPolicy[P any] struct {
	Feasible func(machine *Machine[P], job *Job[P]) bool
	Allocate func(machine *Machine[P], job *Job[P])
}

// Comparison decides whether the capacity left over after an allocation is acceptable.
type Comparison int

const (
	// Strict requires every component of the remaining capacity to be greater than zero, which rejects exact fits.
	Strict Comparison = iota
	// Loose requires every component of the remaining capacity to be at least zero.
	Loose
)

func (c Comparison) String() string {
	switch c {
	case Strict:
		return "strict"
	case Loose:
		return "loose"
	default:
		return "unknown"
	}
}

// Holds returns true if remaining is acceptable under c.
func (c Comparison) Holds(remaining float64) bool {
	if c == Loose {
		return remaining >= 0
	}
	return remaining > 0
}

// ParseComparison parses "strict" or "loose", ignoring case.
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", ">":
		return Strict, nil
	case "loose", ">=":
		return Loose, nil
	default:
		return Strict, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "comparison",
			Value:   s,
			Message: `must be "strict" or "loose"`,
		})
	}
}
