package cluster

// Job is a single unit of work. P is the shape of its resource demand, which the engine treats as opaque and only
// hands to the allocation policy.
type Job[P any] struct {
	Status      Status
	ArrivalTime int
	// Number of ticks the job needs once running.
	Length  int
	RunTime int
	Usage   P
}

// TicksLeft returns the number of ticks the job still needs. The second return value is false if the job isn't
// running, in which case the first is meaningless.
func (j *Job[P]) TicksLeft() (int, bool) {
	if j.Status != Running {
		return 0, false
	}
	return j.Length - j.RunTime, true
}

// Machine is a single resource provider. FreeSpace has the same shape as the usage of the jobs it runs.
type Machine[P any] struct {
	FreeSpace P
}
