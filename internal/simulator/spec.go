package simulator

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/renstrom/shortuuid"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/cluster/singleslot"
	"github.com/armadaproject/clustersim/internal/common/config"
	"github.com/armadaproject/clustersim/internal/dilation"
	"github.com/armadaproject/clustersim/internal/scheduling"
)

const (
	MetricFlavor     = "metric"
	DeepRMFlavor     = "deeprm"
	SingleSlotFlavor = "singleslot"
)

// ClusterSpec describes the machines of a simulated cluster.
type ClusterSpec struct {
	Name string
	// One of metric, deeprm or singleslot.
	Flavor      string `validate:"required,oneof=metric deeprm singleslot"`
	NumMachines int    `validate:"gt=0"`
	// Number of resource types. Ignored by singleslot clusters.
	NumResources int `validate:"gte=0"`
	// Units per resource. Only used by deeprm clusters.
	NumUnits int `validate:"gte=0"`
	// Length of the scheduling window. Ignored by singleslot clusters.
	NumTicks int `validate:"gte=0"`
	// Capacity of each machine. Only used by singleslot clusters, defaulting to 1.
	MachineCapacity float64 `validate:"gte=0"`
	// Defaults to strict for metric clusters and loose for singleslot clusters. Not used by deeprm.
	Comparison *cluster.Comparison
}

// WorkloadSpec describes the jobs submitted to a simulated cluster.
type WorkloadSpec struct {
	Name    string
	NumJobs int `validate:"gt=0"`
	// Mean arrival tick of online workloads.
	PoissonLambda float64 `validate:"gte=0"`
	// If true, every job arrives at tick 0.
	Offline bool
	// Demand of every job in singleslot clusters. Zero draws demands at random.
	JobDemand float64 `validate:"gte=0"`
}

// DilationSpec makes the simulator pick machines by navigating a pooled view of the cluster.
type DilationSpec struct {
	Kernel    dilation.Kernel
	Operation dilation.Operation
	FillValue *float64
	// Number of dilation hierarchies kept for reuse.
	CacheSize int `validate:"gte=0"`
}

// SimulationConfig describes how a simulated cluster is driven.
type SimulationConfig struct {
	Name   string
	Policy string `validate:"required"`
	// Stop after this many ticks even if jobs are left. Zero means no limit.
	MaxTicks int `validate:"gte=0"`
	// Cancel the simulation once this much wall-clock time has passed. Zero means no limit.
	Timeout time.Duration `validate:"gte=0"`
	// Zero seeds from the clock.
	Seed     int64
	Dilation *DilationSpec
}

func (spec *ClusterSpec) comparison() cluster.Comparison {
	if spec.Comparison != nil {
		return *spec.Comparison
	}
	if spec.Flavor == SingleSlotFlavor {
		return cluster.Loose
	}
	return cluster.Strict
}

func (spec *ClusterSpec) capacity() float64 {
	if spec.MachineCapacity == 0 {
		return singleslot.MaxFreeSpace
	}
	return spec.MachineCapacity
}

func (spec *ClusterSpec) validate() error {
	if err := config.Validate(spec); err != nil {
		return err
	}
	var result *multierror.Error
	if spec.Flavor != SingleSlotFlavor {
		if spec.NumResources <= 0 {
			result = multierror.Append(result, errors.Errorf("%s clusters need at least one resource", spec.Flavor))
		}
		if spec.NumTicks <= 1 {
			result = multierror.Append(result, errors.Errorf("%s clusters need a window of more than one tick", spec.Flavor))
		}
	}
	if spec.Flavor == DeepRMFlavor && spec.NumUnits <= 0 {
		result = multierror.Append(result, errors.New("deeprm clusters need at least one unit per resource"))
	}
	return result.ErrorOrNil()
}

func (c *SimulationConfig) validate() error {
	if err := config.Validate(c); err != nil {
		return err
	}
	var result *multierror.Error
	if !isKnownPolicy(c.Policy) {
		result = multierror.Append(result, errors.Errorf("unknown policy %q, expected one of %v", c.Policy, scheduling.Names))
	}
	if c.Dilation != nil {
		if err := config.Validate(c.Dilation); err != nil {
			result = multierror.Append(result, err)
		}
		if c.Dilation.Kernel.X <= 1 || c.Dilation.Kernel.Y <= 1 {
			result = multierror.Append(result, errors.Errorf("dilation kernel %s must be larger than 1 on both axes", c.Dilation.Kernel))
		}
	}
	return result.ErrorOrNil()
}

func isKnownPolicy(name string) bool {
	_, err := scheduling.New[float64](name, nil, nil)
	return err == nil
}

// validateSpecs returns every problem with the combination of specs at once.
func validateSpecs(clusterSpec *ClusterSpec, workloadSpec *WorkloadSpec, simulationConfig *SimulationConfig) error {
	var result *multierror.Error
	if err := clusterSpec.validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := config.Validate(workloadSpec); err != nil {
		result = multierror.Append(result, err)
	}
	if err := simulationConfig.validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := validateDemand(clusterSpec, workloadSpec); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// validateDemand rejects singleslot workloads whose jobs would not fit even on an idle machine.
func validateDemand(clusterSpec *ClusterSpec, workloadSpec *WorkloadSpec) error {
	if clusterSpec.Flavor != SingleSlotFlavor {
		return nil
	}
	capacity := clusterSpec.capacity()
	cmp := clusterSpec.comparison()
	if workloadSpec.JobDemand > 0 {
		if !cmp.Holds(capacity - workloadSpec.JobDemand) {
			return errors.Errorf(
				"job demand %g never fits machine capacity %g under %s comparison", workloadSpec.JobDemand, capacity, cmp,
			)
		}
		return nil
	}
	// Random demands are drawn from [0, 1).
	if capacity < singleslot.MaxFreeSpace {
		return errors.Errorf(
			"random job demands of up to %g need a machine capacity of at least %g, got %g",
			singleslot.MaxFreeSpace, singleslot.MaxFreeSpace, capacity,
		)
	}
	return nil
}

// initialiseSpecs names unnamed specs.
func initialiseSpecs(clusterSpec *ClusterSpec, workloadSpec *WorkloadSpec, simulationConfig *SimulationConfig) {
	if clusterSpec.Name == "" {
		clusterSpec.Name = shortuuid.New()
	}
	if workloadSpec.Name == "" {
		workloadSpec.Name = shortuuid.New()
	}
	if simulationConfig.Name == "" {
		simulationConfig.Name = shortuuid.New()
	}
}
