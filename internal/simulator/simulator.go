// Package simulator drives simulated clusters with scheduling policies and reports what happened.
package simulator

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/logging"
	"github.com/armadaproject/clustersim/internal/common/simcontext"
	"github.com/armadaproject/clustersim/internal/common/simerrors"
	"github.com/armadaproject/clustersim/internal/simulator/sink"
)

// Result summarises a finished simulation.
type Result struct {
	// Ticks simulated.
	Ticks int
	// True if every job completed.
	Finished bool
	// True if the simulation stopped at MaxTicks with jobs left.
	Truncated    bool
	NumScheduled int
	NumRejected  int
	NumCompleted int
	// Sum of the rewards of every environment step. Only set for dilation-navigated simulations.
	TotalReward float64
}

// Simulator runs one combination of cluster, workload and simulation config.
type Simulator struct {
	ClusterSpec      *ClusterSpec
	WorkloadSpec     *WorkloadSpec
	SimulationConfig *SimulationConfig
	// Unique per simulator, distinguishing runs of the same specs in the output.
	RunId string
	// Per-simulation tick statistics are emitted on these channels.
	// Create a channel by calling s.Output() before running the simulator.
	outputs []chan sink.TickStats
	sink    sink.Sink
	// Every simulator registers its metrics separately, so that simulations running in parallel don't collide.
	registry *prometheus.Registry
	metrics  *simulatorMetrics
	// Bound to the cluster flavor at construction.
	run    func(ctx *simcontext.Context) error
	result Result
}

func NewSimulator(
	clusterSpec *ClusterSpec,
	workloadSpec *WorkloadSpec,
	simulationConfig *SimulationConfig,
	statsSink sink.Sink,
) (*Simulator, error) {
	initialiseSpecs(clusterSpec, workloadSpec, simulationConfig)
	if err := validateSpecs(clusterSpec, workloadSpec, simulationConfig); err != nil {
		return nil, errors.WithMessagef(
			err, "invalid simulation %s/%s/%s", clusterSpec.Name, workloadSpec.Name, simulationConfig.Name,
		)
	}
	if statsSink == nil {
		statsSink = sink.NullSink{}
	}
	registry := prometheus.NewRegistry()
	s := &Simulator{
		ClusterSpec:      clusterSpec,
		WorkloadSpec:     workloadSpec,
		SimulationConfig: simulationConfig,
		RunId:            uuid.NewString(),
		sink:             statsSink,
		registry:         registry,
		metrics:          newSimulatorMetrics(registry),
	}
	if err := s.bind(); err != nil {
		return nil, err
	}
	return s, nil
}

// Output returns a channel on which the statistics of every tick are published. The channel is closed once the
// simulation ends. It must be drained while the simulator runs.
func (s *Simulator) Output() <-chan sink.TickStats {
	c := make(chan sink.TickStats, 128)
	s.outputs = append(s.outputs, c)
	return c
}

// Registry returns the Prometheus registry holding this simulation's metrics.
func (s *Simulator) Registry() *prometheus.Registry {
	return s.registry
}

// Result returns the outcome of the last call to Run.
func (s *Simulator) Result() Result {
	return s.result
}

// Run simulates until every job completed, MaxTicks is reached, the configured timeout elapses or ctx is cancelled.
func (s *Simulator) Run(ctx *simcontext.Context) error {
	ctx = simcontext.WithLogFields(ctx, log.Fields{
		"runId":    s.RunId,
		"cluster":  s.ClusterSpec.Name,
		"workload": s.WorkloadSpec.Name,
		"config":   s.SimulationConfig.Name,
	})
	if s.SimulationConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = simcontext.WithTimeout(ctx, s.SimulationConfig.Timeout)
		defer cancel()
	}
	defer func() {
		for _, c := range s.outputs {
			close(c)
		}
	}()
	s.result = Result{}
	if err := s.run(ctx); err != nil {
		logger := logging.WithStacktrace(ctx.Log, err)
		if simerrors.IsContractViolation(err) {
			logger.Error("simulation driver violated the cluster contract")
		} else {
			logger.Error("simulation failed")
		}
		return err
	}
	ctx.Log.WithFields(log.Fields{
		"ticks":     s.result.Ticks,
		"finished":  s.result.Finished,
		"scheduled": s.result.NumScheduled,
	}).Info("simulation done")
	return nil
}

func (s *Simulator) truncated(tick int) bool {
	return s.SimulationConfig.MaxTicks > 0 && tick >= s.SimulationConfig.MaxTicks
}

func (s *Simulator) recordAttempt(scheduled bool) {
	s.metrics.recordAttempt(scheduled)
	if scheduled {
		s.result.NumScheduled++
	} else {
		s.result.NumRejected++
	}
}

// endTick publishes the statistics of the tick that is about to end.
func (s *Simulator) endTick(ctx *simcontext.Context, stats sink.TickStats) error {
	stats.RunId = s.RunId
	stats.Cluster = s.ClusterSpec.Name
	stats.Workload = s.WorkloadSpec.Name
	stats.Config = s.SimulationConfig.Name
	if err := s.sink.OnTick(stats); err != nil {
		return err
	}
	for _, c := range s.outputs {
		select {
		case c <- stats:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Simulator) finish(finished bool, tick int, counts map[cluster.Status]int) {
	s.result.Finished = finished
	s.result.Truncated = !finished
	s.result.Ticks = tick
	s.result.NumCompleted = counts[cluster.Completed]
	s.metrics.jobsCompleted.Set(float64(counts[cluster.Completed]))
}

// Simulate runs one simulator per combination of cluster, workload and simulation config, in parallel.
func Simulate(
	ctx *simcontext.Context,
	clusterSpecs []*ClusterSpec,
	workloadSpecs []*WorkloadSpec,
	simulationConfigs []*SimulationConfig,
	statsSink sink.Sink,
) ([]*Simulator, error) {
	simulators := make([]*Simulator, 0, len(clusterSpecs)*len(workloadSpecs)*len(simulationConfigs))
	for _, clusterSpec := range clusterSpecs {
		for _, workloadSpec := range workloadSpecs {
			for _, simulationConfig := range simulationConfigs {
				s, err := NewSimulator(clusterSpec, workloadSpec, simulationConfig, statsSink)
				if err != nil {
					return nil, err
				}
				simulators = append(simulators, s)
			}
		}
	}
	g, ctx := simcontext.ErrGroup(ctx)
	for _, s := range simulators {
		s := s
		g.Go(func() error {
			return s.Run(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return simulators, nil
}
