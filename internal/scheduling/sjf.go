package scheduling

import "github.com/armadaproject/clustersim/internal/cluster"

// SJF schedules the shortest pending job that fits anywhere, on the lowest-indexed machine it fits on.
// Ties go to the lowest job index.
type SJF[P any] struct {
	feasible func(*cluster.Machine[P], *cluster.Job[P]) bool
}

func NewSJF[P any](feasible func(*cluster.Machine[P], *cluster.Job[P]) bool) *SJF[P] {
	return &SJF[P]{feasible: feasible}
}

func (p *SJF[P]) Name() string {
	return SJFName
}

func (p *SJF[P]) Schedule(machines cluster.MachineCollection[P], jobs cluster.JobCollection[P]) (Assignment, bool) {
	best := Assignment{}
	bestLength := -1
	for _, j := range PendingJobs(jobs) {
		job := jobs.Get(j)
		if bestLength >= 0 && job.Length >= bestLength {
			continue
		}
		if m, ok := firstFeasibleMachine(machines, job, p.feasible); ok {
			best = Assignment{Machine: m, Job: j}
			bestLength = job.Length
		}
	}
	return best, bestLength >= 0
}
