// Package metric implements the cluster flavor whose capacity and demand are real-valued matrices of
// resources by ticks. Machines start with a free space of 1.0 in every cell; allocation subtracts the job's
// demand and every tick shifts the window left by one, refilling the last tick.
package metric

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/config"
	"github.com/armadaproject/clustersim/internal/common/random"
	"github.com/armadaproject/clustersim/internal/common/slices"
)

// FullValue is the free space of an idle machine in every cell.
const FullValue = 1.0

// Capacity is the cluster.Capacity of a metric machine.
type Capacity struct {
	Resources int
	Ticks     int
}

func (c Capacity) Full() *mat.Dense {
	return filled(c.Resources, c.Ticks, FullValue)
}

// Advance drops the tick that just elapsed and appends a full tick. It modifies free in place.
func (c Capacity) Advance(free *mat.Dense) *mat.Dense {
	rows, cols := free.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols-1; j++ {
			free.Set(i, j, free.At(i, j+1))
		}
		free.Set(i, cols-1, FullValue)
	}
	return free
}

func (c Capacity) Clone(p *mat.Dense) *mat.Dense {
	return mat.DenseCopyOf(p)
}

// Policy returns the allocation policy of the metric flavor. A job fits if every cell of free space minus demand
// passes cmp.
func Policy(cmp cluster.Comparison) cluster.AllocationPolicy[*mat.Dense] {
	return cluster.AllocationPolicy[*mat.Dense]{
		Feasible: func(m *cluster.Machine[*mat.Dense], j *cluster.Job[*mat.Dense]) bool {
			var remaining mat.Dense
			remaining.Sub(m.FreeSpace, j.Usage)
			return cmp.Holds(mat.Min(&remaining))
		},
		Allocate: func(m *cluster.Machine[*mat.Dense], j *cluster.Job[*mat.Dense]) {
			m.FreeSpace.Sub(m.FreeSpace, j.Usage)
		},
	}
}

// LengthOf returns the number of ticks between the first and last tick with any non-zero demand.
func LengthOf(usage *mat.Dense) int {
	rows, cols := usage.Dims()
	return cluster.ActiveSpan(cols, func(tick int) bool {
		for i := 0; i < rows; i++ {
			if usage.At(i, tick) > 0 {
				return true
			}
		}
		return false
	})
}

// Flatten returns the cells of p in row-major order.
func Flatten(p *mat.Dense) []float64 {
	rows, cols := p.Dims()
	rv := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		rv = append(rv, mat.Row(nil, i, p)...)
	}
	return rv
}

// WorkloadParams configures GenerateWorkload.
type WorkloadParams struct {
	NumJobs       int     `validate:"gt=0"`
	NumResources  int     `validate:"gt=0"`
	NumTicks      int     `validate:"gt=1"`
	PoissonLambda float64 `validate:"gte=0"`
	Offline       bool
}

// GenerateWorkload returns a creator of random workloads. Every job starts at the first tick of its window,
// demands the same value, drawn from U(0.1, 1.0), of every resource while active, and arrives at tick 0 when
// offline or at a Poisson-distributed tick otherwise.
func GenerateWorkload(params WorkloadParams) (cluster.WorkloadCreator[*mat.Dense], error) {
	if err := config.Validate(params); err != nil {
		return nil, err
	}
	return func(seed int64) (cluster.JobCollection[*mat.Dense], error) {
		rng := random.New(seed)
		durations := cluster.SampleDurations(rng, params.NumJobs)
		arrivals := cluster.SampleArrivals(rng, params.NumJobs, params.NumTicks, params.PoissonLambda, params.Offline)
		usages := make([]*mat.Dense, params.NumJobs)
		for i := range usages {
			value := random.Uniform(rng, 0.1, 1.0)
			usage := mat.NewDense(params.NumResources, params.NumTicks, nil)
			end := min(durations[i], params.NumTicks)
			for r := 0; r < params.NumResources; r++ {
				for t := 0; t < end; t++ {
					usage.Set(r, t, value)
				}
			}
			usages[i] = usage
		}
		return cluster.NewJobs(usages, arrivals, nil, LengthOf)
	}, nil
}

// GenerateHomogeneousMachines returns a creator of numMachines idle machines.
func GenerateHomogeneousMachines(numMachines, numResources, numTicks int) (cluster.MachineCreator[*mat.Dense], error) {
	if numMachines <= 0 || numResources <= 0 || numTicks <= 1 {
		return nil, errors.Errorf(
			"invalid machine shape: %d machines, %d resources, %d ticks; need at least one machine and resource and more than one tick",
			numMachines, numResources, numTicks,
		)
	}
	capacity := Capacity{Resources: numResources, Ticks: numTicks}
	return func(int64) (cluster.MachineCollection[*mat.Dense], error) {
		return cluster.NewMachines[*mat.Dense](numMachines, capacity), nil
	}, nil
}

func filled(rows, cols int, v float64) *mat.Dense {
	return mat.NewDense(rows, cols, slices.Repeat(rows*cols, v))
}
