package cluster

import "fmt"

// Action is an instruction for the engine: either SkipTime or ScheduleJob.
type Action interface {
	fmt.Stringer
	isAction()
}

// SkipTime advances the clock by one tick.
type SkipTime struct{}

// ScheduleJob places job Job on machine Machine.
type ScheduleJob struct {
	Machine int
	Job     int
}

func (SkipTime) isAction()    {}
func (ScheduleJob) isAction() {}

func (SkipTime) String() string {
	return "skip-time"
}

func (a ScheduleJob) String() string {
	return fmt.Sprintf("schedule(machine=%d, job=%d)", a.Machine, a.Job)
}
