// Package deeprm implements the cluster flavor modelled on DeepRM: each resource is split into a fixed number of
// units and demand is a boolean mask of units by ticks.
package deeprm

import (
	"math"

	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/config"
	"github.com/armadaproject/clustersim/internal/common/random"
)

type Capacity struct {
	Resources int
	Units     int
	Ticks     int
}

func (c Capacity) Full() Slot {
	return FullSlot(c.Resources, c.Units, c.Ticks)
}

func (c Capacity) Advance(free Slot) Slot {
	free.shiftLeft()
	return free
}

func (c Capacity) Clone(p Slot) Slot {
	return p.Clone()
}

// Policy returns the bitmask allocation policy: a job fits if the machine has every unit it needs free, and
// allocating it marks those units as used.
func Policy() cluster.AllocationPolicy[Slot] {
	return cluster.AllocationPolicy[Slot]{
		Feasible: func(m *cluster.Machine[Slot], j *cluster.Job[Slot]) bool {
			return m.FreeSpace.Covers(j.Usage)
		},
		Allocate: func(m *cluster.Machine[Slot], j *cluster.Job[Slot]) {
			m.FreeSpace.Clear(j.Usage)
		},
	}
}

// LengthOf returns the number of ticks between the first and last tick in which any unit is used.
func LengthOf(usage Slot) int {
	return cluster.ActiveSpan(usage.Ticks, func(tick int) bool {
		for r := 0; r < usage.Resources; r++ {
			for u := 0; u < usage.Units; u++ {
				if usage.Get(r, u, tick) {
					return true
				}
			}
		}
		return false
	})
}

// Flatten returns one value per (resource, tick): the fraction of the resource's units that are set.
func Flatten(p Slot) []float64 {
	rv := make([]float64, 0, p.Resources*p.Ticks)
	for r := 0; r < p.Resources; r++ {
		for t := 0; t < p.Ticks; t++ {
			n := 0
			for u := 0; u < p.Units; u++ {
				if p.Get(r, u, t) {
					n++
				}
			}
			rv = append(rv, float64(n)/float64(p.Units))
		}
	}
	return rv
}

type WorkloadParams struct {
	NumJobs       int     `validate:"gt=0"`
	NumResources  int     `validate:"gt=0"`
	NumUnits      int     `validate:"gt=0"`
	NumTicks      int     `validate:"gt=1"`
	PoissonLambda float64 `validate:"gte=0"`
	Offline       bool
}

// GenerateWorkload returns a creator of random DeepRM workloads. Each job has a main resource, of which it needs
// between half and all units, and needs 10% to 20% of the units of every other resource.
func GenerateWorkload(params WorkloadParams) (cluster.WorkloadCreator[Slot], error) {
	if err := config.Validate(params); err != nil {
		return nil, err
	}
	return func(seed int64) (cluster.JobCollection[Slot], error) {
		rng := random.New(seed)
		mainResources := make([]int, params.NumJobs)
		for i := range mainResources {
			mainResources[i] = rng.Intn(params.NumResources)
		}
		durations := cluster.SampleDurations(rng, params.NumJobs)
		arrivals := cluster.SampleArrivals(rng, params.NumJobs, params.NumTicks, params.PoissonLambda, params.Offline)
		usages := make([]Slot, params.NumJobs)
		for i := range usages {
			units := make([]int, params.NumResources)
			for r := range units {
				units[r] = unitsOf(random.Uniform(rng, 0.1, 0.2), params.NumUnits)
			}
			units[mainResources[i]] = unitsOf(random.Uniform(rng, 0.5, 1.0), params.NumUnits)

			usage := NewSlot(params.NumResources, params.NumUnits, params.NumTicks)
			end := min(durations[i], params.NumTicks)
			for r, n := range units {
				for u := 0; u < n; u++ {
					for t := 0; t < end; t++ {
						usage.Set(r, u, t, true)
					}
				}
			}
			usages[i] = usage
		}
		return cluster.NewJobs(usages, arrivals, nil, LengthOf)
	}, nil
}

func unitsOf(fraction float64, units int) int {
	return min(int(math.Ceil(fraction*float64(units))), units)
}

// GenerateHomogeneousMachines returns a creator of numMachines idle machines.
func GenerateHomogeneousMachines(numMachines, numResources, numUnits, numTicks int) (cluster.MachineCreator[Slot], error) {
	if numMachines <= 0 || numResources <= 0 || numUnits <= 0 || numTicks <= 1 {
		return nil, errors.Errorf(
			"invalid machine shape: %d machines, %d resources, %d units, %d ticks",
			numMachines, numResources, numUnits, numTicks,
		)
	}
	capacity := Capacity{Resources: numResources, Units: numUnits, Ticks: numTicks}
	return func(int64) (cluster.MachineCollection[Slot], error) {
		return cluster.NewMachines[Slot](numMachines, capacity), nil
	}, nil
}
