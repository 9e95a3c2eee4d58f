package dilation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/armadaproject/clustersim/internal/common/simerrors"
)

// Kernel is the block size used at every pooling level. It is also the size of every navigable window.
type Kernel struct {
	X int
	Y int
}

func (k Kernel) String() string {
	return fmt.Sprintf("%dx%d", k.X, k.Y)
}

// Contains returns true if c is a valid cell within a kernel-sized window.
func (k Kernel) Contains(c Cell) bool {
	return c.X >= 0 && c.X < k.X && c.Y >= 0 && c.Y < k.Y
}

func (k Kernel) validate() error {
	if k.X <= 1 || k.Y <= 1 {
		return errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "kernel",
			Value:   k,
			Message: "both kernel dimensions must be greater than 1",
		})
	}
	return nil
}

// ParseKernel parses kernels written as "XxY", e.g. "2x3", or as a single number for a square kernel.
func ParseKernel(s string) (Kernel, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return Kernel{}, errors.WithStack(&simerrors.ErrInvalidArgument{Name: "kernel", Value: s, Message: `expected "XxY"`})
	}
	var dims [2]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Kernel{}, errors.WithStack(&simerrors.ErrInvalidArgument{Name: "kernel", Value: s, Message: err.Error()})
		}
		dims[i] = v
	}
	k := Kernel{X: dims[0], Y: dims[1]}
	return k, k.validate()
}

// Cell is a position within a grid or a kernel-sized window of it.
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Operation is the block reduction applied when pooling.
type Operation int

const (
	Max Operation = iota
	Min
	Mean
)

func (o Operation) String() string {
	switch o {
	case Max:
		return "max"
	case Min:
		return "min"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("Operation(%d)", int(o))
	}
}

// DefaultFill returns the padding value that o never prefers over a real cell. Mean has no such value; padding
// is filled with 0 and selections that land on it are rejected instead.
func (o Operation) DefaultFill() float64 {
	switch o {
	case Max:
		return math.Inf(-1)
	case Min:
		return math.Inf(1)
	default:
		return 0
	}
}

func (o Operation) reduce(values []float64) float64 {
	switch o {
	case Max:
		return floats.Max(values)
	case Min:
		return floats.Min(values)
	default:
		return stat.Mean(values, nil)
	}
}

func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	case "mean", "avg":
		return Mean, nil
	default:
		return Max, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "operation",
			Value:   s,
			Message: `must be one of "max", "min" or "mean"`,
		})
	}
}
