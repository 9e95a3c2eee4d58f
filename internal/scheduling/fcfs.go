package scheduling

import "github.com/armadaproject/clustersim/internal/cluster"

// FCFS schedules the lowest-indexed pending job that fits anywhere, on the lowest-indexed machine it fits on.
type FCFS[P any] struct {
	feasible func(*cluster.Machine[P], *cluster.Job[P]) bool
}

func NewFCFS[P any](feasible func(*cluster.Machine[P], *cluster.Job[P]) bool) *FCFS[P] {
	return &FCFS[P]{feasible: feasible}
}

func (p *FCFS[P]) Name() string {
	return FCFSName
}

func (p *FCFS[P]) Schedule(machines cluster.MachineCollection[P], jobs cluster.JobCollection[P]) (Assignment, bool) {
	for _, j := range PendingJobs(jobs) {
		if m, ok := firstFeasibleMachine(machines, jobs.Get(j), p.feasible); ok {
			return Assignment{Machine: m, Job: j}, true
		}
	}
	return Assignment{}, false
}
