package simulator

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/random"
	"github.com/armadaproject/clustersim/internal/common/simcontext"
	"github.com/armadaproject/clustersim/internal/common/simerrors"
	"github.com/armadaproject/clustersim/internal/common/slices"
	"github.com/armadaproject/clustersim/internal/environment"
	"github.com/armadaproject/clustersim/internal/scheduling"
	"github.com/armadaproject/clustersim/internal/simulator/sink"
)

func simulate[P any](ctx *simcontext.Context, s *Simulator, f flavor[P]) error {
	ctx = simcontext.WithLogField(ctx, "policy", s.SimulationConfig.Policy)
	seed := s.SimulationConfig.Seed
	engine, err := cluster.NewEngine(f.workload, f.machines, f.allocation, seed, cluster.WithLogger(ctx.Log))
	if err != nil {
		return err
	}
	if err := checkSchedulable(engine, f, seed); err != nil {
		return err
	}
	policy, err := scheduling.New[P](s.SimulationConfig.Policy, f.allocation.Feasible, random.New(seed))
	if err != nil {
		return err
	}
	if s.SimulationConfig.Dilation != nil {
		return simulateDilated(ctx, s, engine, policy, f.flatten)
	}
	return simulateDirect(ctx, s, engine, policy, f.flatten)
}

// simulateDirect applies the policy's decisions to the engine until the policy has nothing left to schedule in
// the current tick, then advances the clock.
func simulateDirect[P any](
	ctx *simcontext.Context,
	s *Simulator,
	engine *cluster.Engine[P],
	policy scheduling.Policy[P],
	flatten func(P) []float64,
) error {
	scheduledThisTick := 0
	for !engine.IsFinished() && !s.truncated(engine.CurrentTick()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a, ok := policy.Schedule(engine.Machines(), engine.Jobs()); ok {
			scheduled, err := engine.Schedule(a.Machine, a.Job)
			if err != nil {
				return err
			}
			s.recordAttempt(scheduled)
			if scheduled {
				scheduledThisTick++
				continue
			}
		}
		if err := s.endTick(ctx, tickStats(engine, flatten, scheduledThisTick)); err != nil {
			return err
		}
		engine.ExecuteClockTick()
		s.metrics.ticks.Inc()
		scheduledThisTick = 0
	}
	if err := s.endTick(ctx, tickStats(engine, flatten, scheduledThisTick)); err != nil {
		return err
	}
	s.finish(engine.IsFinished(), engine.CurrentTick(), engine.CountByStatus())
	return nil
}

// simulateDilated reaches every machine the policy picks by navigating the dilation hierarchy, the way a learning
// agent would, rather than addressing it directly.
func simulateDilated[P any](
	ctx *simcontext.Context,
	s *Simulator,
	engine *cluster.Engine[P],
	policy scheduling.Policy[P],
	flatten func(P) []float64,
) error {
	spec := s.SimulationConfig.Dilation
	env := environment.NewEnv(
		engine,
		environment.WithMaxTicks(s.SimulationConfig.MaxTicks),
		environment.WithLogger(ctx.Log),
	)
	denv, err := environment.NewDilationEnv(env, flatten, spec.config(), spec.CacheSize)
	if err != nil {
		return err
	}
	if _, _, err := denv.Reset(s.SimulationConfig.Seed); err != nil {
		return err
	}
	scheduledThisTick := 0
	skipTime := func() error {
		if err := s.endTick(ctx, tickStats(engine, flatten, scheduledThisTick)); err != nil {
			return err
		}
		result, err := denv.Step(environment.DilationAction{SkipTime: true})
		if err != nil {
			return err
		}
		s.result.TotalReward += result.Reward
		s.metrics.ticks.Inc()
		scheduledThisTick = 0
		return nil
	}
	for !engine.IsFinished() && !s.truncated(engine.CurrentTick()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, ok := policy.Schedule(engine.Machines(), engine.Jobs())
		if !ok {
			if err := skipTime(); err != nil {
				return err
			}
			continue
		}
		expansions, final, err := denv.Dilator().NavigationPath(a.Machine)
		if err != nil {
			return err
		}
		for _, cell := range expansions {
			if _, err := denv.Step(environment.DilationAction{Cell: cell}); err != nil {
				return err
			}
			s.metrics.navigationSteps.Inc()
		}
		result, err := denv.Step(environment.DilationAction{Cell: final, Job: a.Job})
		if err != nil {
			return err
		}
		s.result.TotalReward += result.Reward
		scheduled := result.Info.JobStatus[a.Job] == cluster.Running
		s.recordAttempt(scheduled)
		if !scheduled {
			if err := skipTime(); err != nil {
				return err
			}
			continue
		}
		scheduledThisTick++
	}
	if err := s.endTick(ctx, tickStats(engine, flatten, scheduledThisTick)); err != nil {
		return err
	}
	s.finish(engine.IsFinished(), engine.CurrentTick(), engine.CountByStatus())
	return nil
}

// checkSchedulable returns an error if some job doesn't fit on an idle machine. Machines are homogeneous and free
// space never exceeds an idle machine's, so such a job would stay pending forever.
func checkSchedulable[P any](engine *cluster.Engine[P], f flavor[P], seed int64) error {
	machines, err := f.machines(seed)
	if err != nil {
		return err
	}
	if machines.Len() == 0 {
		return nil
	}
	idle := machines.Get(0)
	for i, job := range engine.Jobs().Jobs() {
		if !f.allocation.Feasible(idle, job) {
			return errors.WithStack(&simerrors.ErrUnschedulable{Job: i})
		}
	}
	return nil
}

func tickStats[P any](engine *cluster.Engine[P], flatten func(P) []float64, scheduled int) sink.TickStats {
	counts := engine.CountByStatus()
	free := slices.Flatten(slices.Map(engine.Machines().Representation(), flatten))
	return sink.TickStats{
		Tick:             int64(engine.CurrentTick()),
		NumNotCreated:    int32(counts[cluster.NotCreated]),
		NumPending:       int32(counts[cluster.Pending]),
		NumRunning:       int32(counts[cluster.Running]),
		NumCompleted:     int32(counts[cluster.Completed]),
		NumScheduled:     int32(scheduled),
		MeanFreeCapacity: stat.Mean(free, nil),
	}
}
