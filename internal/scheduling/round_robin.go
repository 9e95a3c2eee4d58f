package scheduling

import "github.com/armadaproject/clustersim/internal/cluster"

// RoundRobin considers pending jobs in index order, starting just after the last job it scheduled and wrapping
// around, and schedules the first one that fits on the lowest-indexed machine it fits on.
type RoundRobin[P any] struct {
	feasible func(*cluster.Machine[P], *cluster.Job[P]) bool
	last     int
}

func NewRoundRobin[P any](feasible func(*cluster.Machine[P], *cluster.Job[P]) bool) *RoundRobin[P] {
	return &RoundRobin[P]{feasible: feasible, last: -1}
}

func (p *RoundRobin[P]) Name() string {
	return RoundRobinName
}

func (p *RoundRobin[P]) Schedule(machines cluster.MachineCollection[P], jobs cluster.JobCollection[P]) (Assignment, bool) {
	pending := PendingJobs(jobs)
	start := 0
	for start < len(pending) && pending[start] <= p.last {
		start++
	}
	for i := 0; i < len(pending); i++ {
		j := pending[(start+i)%len(pending)]
		if m, ok := firstFeasibleMachine(machines, jobs.Get(j), p.feasible); ok {
			p.last = j
			return Assignment{Machine: m, Job: j}, true
		}
	}
	return Assignment{}, false
}

// Reset forgets the last scheduled job.
func (p *RoundRobin[P]) Reset() {
	p.last = -1
}
