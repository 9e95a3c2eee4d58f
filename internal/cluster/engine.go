package cluster

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/armadaproject/clustersim/internal/common/logging"
	"github.com/armadaproject/clustersim/internal/common/simerrors"
	"github.com/armadaproject/clustersim/internal/common/slices"
)

// WorkloadCreator builds a fresh job collection. It must be deterministic for a non-zero seed.
type WorkloadCreator[P any] func(seed int64) (JobCollection[P], error)

// MachineCreator builds the machines of a cluster.
type MachineCreator[P any] func(seed int64) (MachineCollection[P], error)

// Observation is a read-only snapshot of the engine's state.
type Observation[P any] struct {
	Machines    []P
	Jobs        JobsRepresentation[P]
	CurrentTick int
}

type engineOptions struct {
	logger *log.Entry
}

type EngineOption func(*engineOptions)

// WithLogger makes the engine log rejected schedule calls and lifecycle events to logger.
func WithLogger(logger *log.Entry) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Engine composes a job collection, a machine collection and an allocation policy into a cluster that can be
// driven one schedule or tick at a time. An Engine must only be used by one goroutine at a time.
type Engine[P any] struct {
	workloadCreator WorkloadCreator[P]
	machineCreator  MachineCreator[P]
	policy          AllocationPolicy[P]

	jobs        JobCollection[P]
	machines    MachineCollection[P]
	currentTick int
	// Maps each machine index to the index of the last job placed on it, while that job is running.
	runningJobToMachine map[int]int

	logger *log.Entry
}

func NewEngine[P any](
	workloadCreator WorkloadCreator[P],
	machineCreator MachineCreator[P],
	policy AllocationPolicy[P],
	seed int64,
	opts ...EngineOption,
) (*Engine[P], error) {
	if workloadCreator == nil || machineCreator == nil {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "creator",
			Value:   nil,
			Message: "both a workload creator and a machine creator are required",
		})
	}
	if policy.Feasible == nil || policy.Allocate == nil {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "policy",
			Value:   nil,
			Message: "allocation policy must define both Feasible and Allocate",
		})
	}
	options := engineOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	e := &Engine[P]{
		workloadCreator:     workloadCreator,
		machineCreator:      machineCreator,
		policy:              policy,
		runningJobToMachine: make(map[int]int),
		logger:              logging.OrNull(options.logger),
	}
	machines, err := machineCreator(seed)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create machines")
	}
	e.machines = machines
	if err := e.Reset(seed); err != nil {
		return nil, err
	}
	return e, nil
}

// Schedule tries to run job jobIdx on machine machineIdx. Indices out of range are a contract violation and
// return an error. A job that isn't pending, or doesn't fit, is rejected by returning false without changing any
// state.
func (e *Engine[P]) Schedule(machineIdx, jobIdx int) (bool, error) {
	if machineIdx < 0 || machineIdx >= e.machines.Len() {
		return false, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "machine",
			Value:   machineIdx,
			Message: fmt.Sprintf("cluster has %d machines", e.machines.Len()),
		})
	}
	if jobIdx < 0 || jobIdx >= e.jobs.Len() {
		return false, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "job",
			Value:   jobIdx,
			Message: fmt.Sprintf("cluster has %d jobs", e.jobs.Len()),
		})
	}
	job := e.jobs.Get(jobIdx)
	machine := e.machines.Get(machineIdx)
	logger := e.logger.WithFields(log.Fields{"machine": machineIdx, "job": jobIdx, "tick": e.currentTick})
	if job.Status != Pending {
		logger.Warnf("job is %s, only pending jobs can be scheduled", job.Status)
		return false, nil
	}
	if !e.policy.Feasible(machine, job) {
		logger.Warn("job does not fit on machine")
		return false, nil
	}
	e.policy.Allocate(machine, job)
	job.Status = Running
	// The scheduling tick counts towards the job's run time.
	job.RunTime = 1
	e.runningJobToMachine[machineIdx] = jobIdx
	logger.Debug("scheduled job")
	return true, nil
}

// ExecuteClockTick advances the cluster by one tick.
func (e *Engine[P]) ExecuteClockTick() {
	e.currentTick++
	e.jobs.ExecuteClockTick(e.currentTick)
	e.machines.ExecuteClockTick()
	for machineIdx, jobIdx := range e.runningJobToMachine {
		if e.jobs.Get(jobIdx).Status != Running {
			delete(e.runningJobToMachine, machineIdx)
		}
	}
}

// Execute applies action, returning whether it took effect.
func (e *Engine[P]) Execute(action Action) (bool, error) {
	switch a := action.(type) {
	case SkipTime:
		e.ExecuteClockTick()
		return true, nil
	case ScheduleJob:
		return e.Schedule(a.Machine, a.Job)
	default:
		return false, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "action",
			Value:   action,
			Message: "unknown action type",
		})
	}
}

// Reset rewinds the clock to 0, replaces the workload with one generated from seed and restores every machine to
// full capacity.
func (e *Engine[P]) Reset(seed int64) error {
	jobs, err := e.workloadCreator(seed)
	if err != nil {
		return errors.WithMessage(err, "failed to create workload")
	}
	e.jobs = jobs
	e.machines.Reset()
	e.currentTick = 0
	e.runningJobToMachine = make(map[int]int)
	// Jobs arriving at tick 0 become pending immediately.
	e.jobs.ExecuteClockTick(0)
	e.logger.WithFields(log.Fields{"jobs": e.jobs.Len(), "machines": e.machines.Len()}).Debug("cluster reset")
	return nil
}

// IsFinished returns true once every job has completed.
func (e *Engine[P]) IsFinished() bool {
	return slices.AllFunc(e.jobs.Jobs(), func(j *Job[P]) bool { return j.Status == Completed })
}

func (e *Engine[P]) CurrentTick() int {
	return e.currentTick
}

func (e *Engine[P]) NumJobs() int {
	return e.jobs.Len()
}

func (e *Engine[P]) NumMachines() int {
	return e.machines.Len()
}

// Jobs returns the engine's jobs. Callers must treat them as read-only.
func (e *Engine[P]) Jobs() JobCollection[P] {
	return e.jobs
}

// Machines returns the engine's machines. Callers must treat them as read-only.
func (e *Engine[P]) Machines() MachineCollection[P] {
	return e.machines
}

func (e *Engine[P]) Policy() AllocationPolicy[P] {
	return e.policy
}

// RunningJobToMachine returns a copy of the machine to running job mapping.
func (e *Engine[P]) RunningJobToMachine() map[int]int {
	return maps.Clone(e.runningJobToMachine)
}

// CountByStatus returns the number of jobs in each status.
func (e *Engine[P]) CountByStatus() map[Status]int {
	rv := make(map[Status]int)
	for _, job := range e.jobs.Jobs() {
		rv[job.Status]++
	}
	return rv
}

func (e *Engine[P]) Representation() Observation[P] {
	return Observation[P]{
		Machines:    e.machines.Representation(),
		Jobs:        e.jobs.Representation(),
		CurrentTick: e.currentTick,
	}
}
