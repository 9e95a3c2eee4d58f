package simulator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/cluster/deeprm"
	"github.com/armadaproject/clustersim/internal/cluster/metric"
	"github.com/armadaproject/clustersim/internal/cluster/singleslot"
	"github.com/armadaproject/clustersim/internal/common/simcontext"
	"github.com/armadaproject/clustersim/internal/common/slices"
	"github.com/armadaproject/clustersim/internal/dilation"
)

// flavor is everything the simulation loop needs to know about a cluster's resource representation.
type flavor[P any] struct {
	workload   cluster.WorkloadCreator[P]
	machines   cluster.MachineCreator[P]
	allocation cluster.AllocationPolicy[P]
	flatten    func(P) []float64
}

// bind sets s.run to a simulation loop for the flavor of the cluster spec.
func (s *Simulator) bind() error {
	switch s.ClusterSpec.Flavor {
	case MetricFlavor:
		f, err := metricFlavor(s.ClusterSpec, s.WorkloadSpec)
		if err != nil {
			return err
		}
		s.run = func(ctx *simcontext.Context) error { return simulate(ctx, s, f) }
	case DeepRMFlavor:
		f, err := deepRMFlavor(s.ClusterSpec, s.WorkloadSpec)
		if err != nil {
			return err
		}
		s.run = func(ctx *simcontext.Context) error { return simulate(ctx, s, f) }
	default:
		f, err := singleSlotFlavor(s.ClusterSpec, s.WorkloadSpec)
		if err != nil {
			return err
		}
		s.run = func(ctx *simcontext.Context) error { return simulate(ctx, s, f) }
	}
	return nil
}

func metricFlavor(clusterSpec *ClusterSpec, workloadSpec *WorkloadSpec) (flavor[*mat.Dense], error) {
	workload, err := metric.GenerateWorkload(metric.WorkloadParams{
		NumJobs:       workloadSpec.NumJobs,
		NumResources:  clusterSpec.NumResources,
		NumTicks:      clusterSpec.NumTicks,
		PoissonLambda: workloadSpec.PoissonLambda,
		Offline:       workloadSpec.Offline,
	})
	if err != nil {
		return flavor[*mat.Dense]{}, err
	}
	machines, err := metric.GenerateHomogeneousMachines(clusterSpec.NumMachines, clusterSpec.NumResources, clusterSpec.NumTicks)
	if err != nil {
		return flavor[*mat.Dense]{}, err
	}
	return flavor[*mat.Dense]{
		workload:   workload,
		machines:   machines,
		allocation: metric.Policy(clusterSpec.comparison()),
		flatten:    metric.Flatten,
	}, nil
}

func deepRMFlavor(clusterSpec *ClusterSpec, workloadSpec *WorkloadSpec) (flavor[deeprm.Slot], error) {
	workload, err := deeprm.GenerateWorkload(deeprm.WorkloadParams{
		NumJobs:       workloadSpec.NumJobs,
		NumResources:  clusterSpec.NumResources,
		NumUnits:      clusterSpec.NumUnits,
		NumTicks:      clusterSpec.NumTicks,
		PoissonLambda: workloadSpec.PoissonLambda,
		Offline:       workloadSpec.Offline,
	})
	if err != nil {
		return flavor[deeprm.Slot]{}, err
	}
	machines, err := deeprm.GenerateHomogeneousMachines(
		clusterSpec.NumMachines, clusterSpec.NumResources, clusterSpec.NumUnits, clusterSpec.NumTicks,
	)
	if err != nil {
		return flavor[deeprm.Slot]{}, err
	}
	return flavor[deeprm.Slot]{
		workload:   workload,
		machines:   machines,
		allocation: deeprm.Policy(),
		flatten:    deeprm.Flatten,
	}, nil
}

func singleSlotFlavor(clusterSpec *ClusterSpec, workloadSpec *WorkloadSpec) (flavor[float64], error) {
	var workload cluster.WorkloadCreator[float64]
	var err error
	if workloadSpec.JobDemand > 0 {
		workload, err = singleslot.StaticWorkload(workloadSpec.NumJobs, workloadSpec.JobDemand)
	} else {
		workload, err = singleslot.RandomWorkload(workloadSpec.NumJobs)
	}
	if err != nil {
		return flavor[float64]{}, err
	}
	machines, err := singleslot.StaticMachines(clusterSpec.NumMachines, clusterSpec.capacity())
	if err != nil {
		return flavor[float64]{}, err
	}
	return flavor[float64]{
		workload:   workload,
		machines:   machines,
		allocation: singleslot.Policy(clusterSpec.comparison()),
		flatten:    singleslot.Flatten,
	}, nil
}

// DilationLevels returns the dilation hierarchy of an idle cluster built from clusterSpec, finest level first.
func DilationLevels(clusterSpec *ClusterSpec, spec *DilationSpec) ([]*dilation.Grid, error) {
	if err := clusterSpec.validate(); err != nil {
		return nil, err
	}
	// The workload doesn't affect idle machines.
	workloadSpec := &WorkloadSpec{NumJobs: 1}
	var profiles [][]float64
	switch clusterSpec.Flavor {
	case MetricFlavor:
		f, err := metricFlavor(clusterSpec, workloadSpec)
		if err != nil {
			return nil, err
		}
		if profiles, err = idleProfiles(f); err != nil {
			return nil, err
		}
	case DeepRMFlavor:
		f, err := deepRMFlavor(clusterSpec, workloadSpec)
		if err != nil {
			return nil, err
		}
		if profiles, err = idleProfiles(f); err != nil {
			return nil, err
		}
	default:
		f, err := singleSlotFlavor(clusterSpec, workloadSpec)
		if err != nil {
			return nil, err
		}
		if profiles, err = idleProfiles(f); err != nil {
			return nil, err
		}
	}
	d, err := dilation.NewFromMachines(profiles, spec.config())
	if err != nil {
		return nil, err
	}
	return d.Levels(), nil
}

func idleProfiles[P any](f flavor[P]) ([][]float64, error) {
	machines, err := f.machines(1)
	if err != nil {
		return nil, err
	}
	return slices.Map(machines.Representation(), f.flatten), nil
}

func (spec *DilationSpec) config() dilation.Config {
	return dilation.Config{
		Kernel:    spec.Kernel,
		Operation: spec.Operation,
		FillValue: spec.FillValue,
	}
}
