package scheduling

import (
	"golang.org/x/exp/rand"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/random"
)

// Random picks a pending job uniformly at random, then a machine it fits on uniformly at random.
// If the chosen job fits nowhere, nothing is scheduled this time.
type Random[P any] struct {
	feasible func(*cluster.Machine[P], *cluster.Job[P]) bool
	rng      *rand.Rand
}

// NewRandom returns a random policy drawing from rng. A nil rng is replaced by a time-seeded one.
func NewRandom[P any](feasible func(*cluster.Machine[P], *cluster.Job[P]) bool, rng *rand.Rand) *Random[P] {
	if rng == nil {
		rng = random.New(0)
	}
	return &Random[P]{feasible: feasible, rng: rng}
}

func (p *Random[P]) Name() string {
	return RandomName
}

func (p *Random[P]) Schedule(machines cluster.MachineCollection[P], jobs cluster.JobCollection[P]) (Assignment, bool) {
	pending := PendingJobs(jobs)
	if len(pending) == 0 {
		return Assignment{}, false
	}
	j := pending[p.rng.Intn(len(pending))]
	candidates := FeasibleMachines(machines, jobs.Get(j), p.feasible)
	if len(candidates) == 0 {
		return Assignment{}, false
	}
	return Assignment{Machine: candidates[p.rng.Intn(len(candidates))], Job: j}, true
}
