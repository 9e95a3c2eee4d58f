package cluster

import (
	"github.com/pkg/errors"

	"github.com/armadaproject/clustersim/internal/common/simerrors"
)

// JobCollection is an ordered, indexable set of jobs.
type JobCollection[P any] interface {
	Len() int
	Get(i int) *Job[P]
	// Jobs returns the jobs in index order. Callers must not modify the returned slice.
	Jobs() []*Job[P]
	// ExecuteClockTick advances every job to currentTime.
	ExecuteClockTick(currentTime int)
	Representation() JobsRepresentation[P]
}

// JobsRepresentation is the raw numeric view of a job collection handed to observation builders.
type JobsRepresentation[P any] struct {
	Usage       []P
	Status      []Status
	ArrivalTime []int
}

// Jobs is the JobCollection implementation shared by every cluster flavor.
type Jobs[P any] struct {
	jobs []*Job[P]
}

// NewJobs creates a collection from parallel slices. If statuses is nil, each job starts Pending if it arrives at
// tick 0 and NotCreated otherwise. lengthOf derives each job's length from its usage.
func NewJobs[P any](usages []P, arrivals []int, statuses []Status, lengthOf func(P) int) (*Jobs[P], error) {
	if len(arrivals) != len(usages) {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "arrivals",
			Value:   len(arrivals),
			Message: "number of arrival times must equal the number of jobs",
		})
	}
	if statuses != nil && len(statuses) != len(usages) {
		return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
			Name:    "statuses",
			Value:   len(statuses),
			Message: "number of statuses must equal the number of jobs",
		})
	}
	jobs := make([]*Job[P], len(usages))
	for i, usage := range usages {
		if arrivals[i] < 0 {
			return nil, errors.WithStack(&simerrors.ErrInvalidArgument{
				Name:    "arrivals",
				Value:   arrivals[i],
				Message: "arrival time must be non-negative",
			})
		}
		status := NotCreated
		if statuses != nil {
			status = statuses[i]
		} else if arrivals[i] == 0 {
			status = Pending
		}
		jobs[i] = &Job[P]{
			Status:      status,
			ArrivalTime: arrivals[i],
			Length:      lengthOf(usage),
			Usage:       usage,
		}
	}
	return &Jobs[P]{jobs: jobs}, nil
}

func (js *Jobs[P]) Len() int {
	return len(js.jobs)
}

func (js *Jobs[P]) Get(i int) *Job[P] {
	return js.jobs[i]
}

func (js *Jobs[P]) Jobs() []*Job[P] {
	return js.jobs
}

// ExecuteClockTick applies, per job and in this order of priority: arrival of NotCreated jobs whose arrival time
// is currentTime; completion of Running jobs with no ticks left; otherwise one more tick of run time for Running
// jobs. A job never completes and accrues run time in the same tick.
func (js *Jobs[P]) ExecuteClockTick(currentTime int) {
	for _, job := range js.jobs {
		switch job.Status {
		case NotCreated:
			if job.ArrivalTime == currentTime {
				job.Status = Pending
			}
		case Running:
			if left, _ := job.TicksLeft(); left <= 0 {
				job.Status = Completed
			} else {
				job.RunTime++
			}
		}
	}
}

func (js *Jobs[P]) Representation() JobsRepresentation[P] {
	rep := JobsRepresentation[P]{
		Usage:       make([]P, len(js.jobs)),
		Status:      make([]Status, len(js.jobs)),
		ArrivalTime: make([]int, len(js.jobs)),
	}
	for i, job := range js.jobs {
		rep.Usage[i] = job.Usage
		rep.Status[i] = job.Status
		rep.ArrivalTime[i] = job.ArrivalTime
	}
	return rep
}
