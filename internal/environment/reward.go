package environment

import (
	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/slices"
)

// RewardFunc scores a step from the job statuses before and after it.
type RewardFunc func(before, after []cluster.Status) float64

// PendingDifferenceReward is the increase in the number of jobs that aren't pending.
func PendingDifferenceReward(before, after []cluster.Status) float64 {
	return float64(notPending(after) - notPending(before))
}

// CompletedDifferenceReward is the number of jobs that completed during the step.
func CompletedDifferenceReward(before, after []cluster.Status) float64 {
	return float64(countStatus(after, cluster.Completed) - countStatus(before, cluster.Completed))
}

func notPending(statuses []cluster.Status) int {
	return len(statuses) - countStatus(statuses, cluster.Pending)
}

func countStatus(statuses []cluster.Status, status cluster.Status) int {
	return slices.CountFunc(statuses, func(s cluster.Status) bool { return s == status })
}
