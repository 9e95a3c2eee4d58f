package singleslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/clustersim/internal/cluster"
)

func TestPolicy(t *testing.T) {
	tests := map[string]struct {
		free       float64
		usage      float64
		comparison cluster.Comparison
		expected   bool
	}{
		"fits":               {free: 1, usage: 0.4, comparison: cluster.Loose, expected: true},
		"exact fit, loose":   {free: 0.5, usage: 0.5, comparison: cluster.Loose, expected: true},
		"exact fit, strict":  {free: 0.5, usage: 0.5, comparison: cluster.Strict, expected: false},
		"too big":            {free: 0.3, usage: 0.5, comparison: cluster.Loose, expected: false},
		"nothing left, zero": {free: 0, usage: 0, comparison: cluster.Loose, expected: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			policy := Policy(tc.comparison)
			machine := &cluster.Machine[float64]{FreeSpace: tc.free}
			job := &cluster.Job[float64]{Usage: tc.usage}
			assert.Equal(t, tc.expected, policy.Feasible(machine, job))
			assert.Equal(t, tc.free, machine.FreeSpace)
			if tc.expected {
				policy.Allocate(machine, job)
				assert.InDelta(t, tc.free-tc.usage, machine.FreeSpace, 1e-12)
			}
		})
	}
}

func TestStaticWorkload(t *testing.T) {
	creator, err := StaticWorkload(3, 0.5)
	require.NoError(t, err)
	jobs, err := creator(0)
	require.NoError(t, err)
	rep := jobs.Representation()
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, rep.Usage)
	assert.Equal(t, []cluster.Status{cluster.Pending, cluster.Pending, cluster.Pending}, rep.Status)
	assert.Equal(t, []int{0, 0, 0}, rep.ArrivalTime)
	assert.Equal(t, 1, jobs.Get(0).Length)

	_, err = StaticWorkload(0, 0.5)
	assert.Error(t, err)
}

func TestRandomWorkload(t *testing.T) {
	creator, err := RandomWorkload(20)
	require.NoError(t, err)
	a, err := creator(3)
	require.NoError(t, err)
	b, err := creator(3)
	require.NoError(t, err)
	assert.Equal(t, a.Representation(), b.Representation())
	for _, u := range a.Representation().Usage {
		assert.GreaterOrEqual(t, u, 0.0)
		assert.Less(t, u, 1.0)
	}
}

func TestStaticMachines(t *testing.T) {
	creator, err := StaticMachines(2, MaxFreeSpace)
	require.NoError(t, err)
	machines, err := creator(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, machines.Representation())

	_, err = StaticMachines(0, 1)
	assert.Error(t, err)
	_, err = StaticMachines(1, 0)
	assert.Error(t, err)
}

func TestEngine(t *testing.T) {
	workload, err := StaticWorkload(3, 0.5)
	require.NoError(t, err)
	machines, err := StaticMachines(1, MaxFreeSpace)
	require.NoError(t, err)
	e, err := cluster.NewEngine(workload, machines, Policy(cluster.Loose), 1)
	require.NoError(t, err)

	for _, expected := range []bool{true, true, false} {
		ok, err := e.Schedule(0, indexOfFirstPending(e))
		require.NoError(t, err)
		assert.Equal(t, expected, ok)
	}
	e.ExecuteClockTick()
	assert.Equal(t, []float64{1}, e.Machines().Representation())
	assert.Equal(t, map[cluster.Status]int{cluster.Completed: 2, cluster.Pending: 1}, e.CountByStatus())

	ok, err := e.Schedule(0, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	e.ExecuteClockTick()
	assert.True(t, e.IsFinished())
}

func indexOfFirstPending(e *cluster.Engine[float64]) int {
	for i, job := range e.Jobs().Jobs() {
		if job.Status == cluster.Pending {
			return i
		}
	}
	return -1
}
