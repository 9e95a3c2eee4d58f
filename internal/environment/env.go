// Package environment exposes a cluster as a reset/step environment for learning agents.
package environment

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/logging"
)

// Action either advances the clock by one tick or schedules Job on Machine.
type Action struct {
	SkipTime bool
	Machine  int
	Job      int
}

func (a Action) clusterAction() cluster.Action {
	if a.SkipTime {
		return cluster.SkipTime{}
	}
	return cluster.ScheduleJob{Machine: a.Machine, Job: a.Job}
}

// Info is auxiliary information returned alongside every observation.
type Info struct {
	NumMachines int
	NumJobs     int
	JobStatus   []cluster.Status
	CurrentTick int
}

// StepResult is the outcome of one Step.
type StepResult[O any] struct {
	Observation O
	Reward      float64
	// Terminated is true once every job has completed.
	Terminated bool
	// Truncated is true once the tick limit has been reached without every job completing.
	Truncated bool
	Info      Info
}

type Option func(*options)

type options struct {
	reward   RewardFunc
	maxTicks int
	logger   *log.Entry
}

// WithReward replaces the default PendingDifferenceReward.
func WithReward(reward RewardFunc) Option {
	return func(o *options) {
		o.reward = reward
	}
}

// WithMaxTicks truncates episodes once the clock reaches maxTicks. Zero means no limit.
func WithMaxTicks(maxTicks int) Option {
	return func(o *options) {
		o.maxTicks = maxTicks
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Env translates reset/step calls into engine operations.
type Env[P any] struct {
	engine *cluster.Engine[P]
	options
}

func NewEnv[P any](engine *cluster.Engine[P], opts ...Option) *Env[P] {
	o := options{reward: PendingDifferenceReward}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrNull(o.logger)
	return &Env[P]{engine: engine, options: o}
}

// Reset starts a new episode with a workload generated from seed.
func (e *Env[P]) Reset(seed int64) (cluster.Observation[P], Info, error) {
	if err := e.engine.Reset(seed); err != nil {
		return cluster.Observation[P]{}, Info{}, err
	}
	e.logger.WithField("seed", seed).Debug("environment reset")
	return e.engine.Representation(), e.info(), nil
}

// Step applies action. A schedule command that the cluster rejects leaves it unchanged and earns the reward of
// doing nothing; indices out of range are returned as errors.
func (e *Env[P]) Step(action Action) (StepResult[cluster.Observation[P]], error) {
	before := e.statuses()
	applied, err := e.engine.Execute(action.clusterAction())
	if err != nil {
		return StepResult[cluster.Observation[P]]{}, errors.WithMessagef(err, "failed to apply %s", action.clusterAction())
	}
	if !applied {
		e.logger.WithField("action", action.clusterAction()).Debug("action rejected")
	}
	return StepResult[cluster.Observation[P]]{
		Observation: e.engine.Representation(),
		Reward:      e.reward(before, e.statuses()),
		Terminated:  e.terminated(),
		Truncated:   e.truncated(),
		Info:        e.info(),
	}, nil
}

func (e *Env[P]) Engine() *cluster.Engine[P] {
	return e.engine
}

func (e *Env[P]) terminated() bool {
	return e.engine.IsFinished()
}

func (e *Env[P]) truncated() bool {
	return e.maxTicks > 0 && e.engine.CurrentTick() >= e.maxTicks && !e.engine.IsFinished()
}

func (e *Env[P]) statuses() []cluster.Status {
	return e.engine.Jobs().Representation().Status
}

func (e *Env[P]) info() Info {
	return Info{
		NumMachines: e.engine.NumMachines(),
		NumJobs:     e.engine.NumJobs(),
		JobStatus:   e.statuses(),
		CurrentTick: e.engine.CurrentTick(),
	}
}
