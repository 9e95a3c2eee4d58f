// Package scheduling contains the policies that decide which pending job to run next and where.
// Policies only read the collections they are given; applying their decision is up to the caller.
package scheduling

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/simerrors"
	"github.com/armadaproject/clustersim/internal/common/slices"
)

// Assignment is a decision to run job Job on machine Machine.
type Assignment struct {
	Machine int
	Job     int
}

// Policy picks the next job to run. The second return value is false if nothing can be scheduled.
type Policy[P any] interface {
	Schedule(machines cluster.MachineCollection[P], jobs cluster.JobCollection[P]) (Assignment, bool)
	Name() string
}

// PendingJobs returns the indices of the pending jobs in increasing order.
func PendingJobs[P any](jobs cluster.JobCollection[P]) []int {
	return slices.IndicesFunc(jobs.Jobs(), func(j *cluster.Job[P]) bool { return j.Status == cluster.Pending })
}

// FeasibleMachines returns the indices of the machines job fits on, in increasing order.
func FeasibleMachines[P any](machines cluster.MachineCollection[P], job *cluster.Job[P], feasible func(*cluster.Machine[P], *cluster.Job[P]) bool) []int {
	return slices.IndicesFunc(machines.Machines(), func(m *cluster.Machine[P]) bool { return feasible(m, job) })
}

func firstFeasibleMachine[P any](machines cluster.MachineCollection[P], job *cluster.Job[P], feasible func(*cluster.Machine[P], *cluster.Job[P]) bool) (int, bool) {
	for i, m := range machines.Machines() {
		if feasible(m, job) {
			return i, true
		}
	}
	return 0, false
}

const (
	FCFSName       = "fcfs"
	RandomName     = "random"
	RoundRobinName = "round-robin"
	SJFName        = "sjf"
)

// Names lists every policy New knows about.
var Names = []string{FCFSName, RandomName, RoundRobinName, SJFName}

// New returns the policy called name. rng is only used by the random policy.
func New[P any](name string, feasible func(*cluster.Machine[P], *cluster.Job[P]) bool, rng *rand.Rand) (Policy[P], error) {
	switch strings.ToLower(name) {
	case FCFSName, "first-come-first-served":
		return NewFCFS(feasible), nil
	case RandomName:
		return NewRandom(feasible, rng), nil
	case RoundRobinName, "roundrobin":
		return NewRoundRobin(feasible), nil
	case SJFName, "shortest-job-first":
		return NewSJF(feasible), nil
	default:
		return nil, errors.WithStack(&simerrors.ErrUnknownName{Type: "policy", Value: name})
	}
}
