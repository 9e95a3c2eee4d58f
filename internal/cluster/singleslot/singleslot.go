// Package singleslot implements the simplest cluster flavor: each machine has a single scalar capacity that is
// restored every tick, and each job demands a scalar amount of it for a single tick.
package singleslot

import (
	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/random"
	"github.com/armadaproject/clustersim/internal/common/slices"
)

// MaxFreeSpace is the default capacity of a machine.
const MaxFreeSpace = 1.0

type Capacity struct {
	Value float64
}

func (c Capacity) Full() float64 {
	return c.Value
}

// Advance restores the machine to full capacity; there is no time window to shift.
func (c Capacity) Advance(float64) float64 {
	return c.Value
}

func (c Capacity) Clone(p float64) float64 {
	return p
}

// Policy returns the scalar subtraction policy. The default comparison for this flavor is cluster.Loose.
func Policy(cmp cluster.Comparison) cluster.AllocationPolicy[float64] {
	return cluster.AllocationPolicy[float64]{
		Feasible: func(m *cluster.Machine[float64], j *cluster.Job[float64]) bool {
			return cmp.Holds(m.FreeSpace - j.Usage)
		},
		Allocate: func(m *cluster.Machine[float64], j *cluster.Job[float64]) {
			m.FreeSpace -= j.Usage
		},
	}
}

// LengthOf is always one tick.
func LengthOf(float64) int {
	return 1
}

func Flatten(p float64) []float64 {
	return []float64{p}
}

// StaticWorkload returns a creator of numJobs pending jobs that each demand value.
func StaticWorkload(numJobs int, value float64) (cluster.WorkloadCreator[float64], error) {
	if numJobs <= 0 {
		return nil, errors.Errorf("invalid number of jobs %d", numJobs)
	}
	return func(int64) (cluster.JobCollection[float64], error) {
		return newJobs(slices.Repeat(numJobs, value))
	}, nil
}

// RandomWorkload returns a creator of numJobs pending jobs with demands drawn from U(0, 1).
func RandomWorkload(numJobs int) (cluster.WorkloadCreator[float64], error) {
	if numJobs <= 0 {
		return nil, errors.Errorf("invalid number of jobs %d", numJobs)
	}
	return func(seed int64) (cluster.JobCollection[float64], error) {
		rng := random.New(seed)
		usages := make([]float64, numJobs)
		for i := range usages {
			usages[i] = rng.Float64()
		}
		return newJobs(usages)
	}, nil
}

func newJobs(usages []float64) (*cluster.Jobs[float64], error) {
	return cluster.NewJobs(
		usages,
		make([]int, len(usages)),
		slices.Repeat(len(usages), cluster.Pending),
		LengthOf,
	)
}

// StaticMachines returns a creator of numMachines machines with capacity value.
func StaticMachines(numMachines int, value float64) (cluster.MachineCreator[float64], error) {
	if numMachines <= 0 {
		return nil, errors.Errorf("invalid number of machines %d", numMachines)
	}
	if value <= 0 {
		return nil, errors.Errorf("invalid machine capacity %f", value)
	}
	return func(int64) (cluster.MachineCollection[float64], error) {
		return cluster.NewMachines[float64](numMachines, Capacity{Value: value}), nil
	}, nil
}
