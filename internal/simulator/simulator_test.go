package simulator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/common/logging"
	"github.com/armadaproject/clustersim/internal/common/simcontext"
	"github.com/armadaproject/clustersim/internal/common/simerrors"
	"github.com/armadaproject/clustersim/internal/dilation"
	"github.com/armadaproject/clustersim/internal/scheduling"
	"github.com/armadaproject/clustersim/internal/simulator/sink"
)

type recordingSink struct {
	mu    sync.Mutex
	stats []sink.TickStats
}

func (s *recordingSink) OnTick(stats sink.TickStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = append(s.stats, stats)
	return nil
}

func (s *recordingSink) Close(*simcontext.Context) {}

// slowSink takes delay to record every tick.
type slowSink struct {
	delay time.Duration
}

func (s slowSink) OnTick(sink.TickStats) error {
	time.Sleep(s.delay)
	return nil
}

func (s slowSink) Close(*simcontext.Context) {}

func metricCluster() *ClusterSpec {
	return &ClusterSpec{Name: "metric", Flavor: MetricFlavor, NumMachines: 10, NumResources: 2, NumTicks: 20}
}

func deepRMCluster() *ClusterSpec {
	return &ClusterSpec{Name: "deeprm", Flavor: DeepRMFlavor, NumMachines: 6, NumResources: 2, NumUnits: 4, NumTicks: 20}
}

func singleSlotCluster() *ClusterSpec {
	return &ClusterSpec{Name: "singleslot", Flavor: SingleSlotFlavor, NumMachines: 5}
}

func navigated() *DilationSpec {
	return &DilationSpec{Kernel: dilation.Kernel{X: 2, Y: 2}, Operation: dilation.Max}
}

func TestSimulator_CompletesEveryJob(t *testing.T) {
	tests := map[string]struct {
		clusterSpec  *ClusterSpec
		workloadSpec *WorkloadSpec
		dilation     *DilationSpec
	}{
		"metric offline": {
			clusterSpec:  metricCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 30, Offline: true},
		},
		"metric online": {
			clusterSpec:  metricCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 30, PoissonLambda: 5},
		},
		"deeprm online": {
			clusterSpec:  deepRMCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 20, PoissonLambda: 5},
		},
		"singleslot random demands": {
			clusterSpec:  singleSlotCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 40},
		},
		"singleslot static demands": {
			clusterSpec:  singleSlotCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 40, JobDemand: 0.3},
		},
		"metric navigated": {
			clusterSpec:  metricCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 30, PoissonLambda: 5},
			dilation:     navigated(),
		},
		"deeprm navigated": {
			clusterSpec:  deepRMCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 20, Offline: true},
			dilation:     navigated(),
		},
		"singleslot navigated": {
			clusterSpec:  singleSlotCluster(),
			workloadSpec: &WorkloadSpec{NumJobs: 40},
			dilation:     navigated(),
		},
	}
	for name, tc := range tests {
		for _, policy := range scheduling.Names {
			t.Run(name+"/"+policy, func(t *testing.T) {
				config := &SimulationConfig{Name: policy, Policy: policy, Seed: 42, Dilation: tc.dilation}
				s, err := NewSimulator(tc.clusterSpec, tc.workloadSpec, config, nil)
				require.NoError(t, err)
				require.NoError(t, s.Run(simcontext.Background()))

				result := s.Result()
				numJobs := tc.workloadSpec.NumJobs
				assert.True(t, result.Finished)
				assert.False(t, result.Truncated)
				assert.Equal(t, numJobs, result.NumCompleted)
				assert.Equal(t, numJobs, result.NumScheduled)
				assert.Equal(t, 0, result.NumRejected)

				assert.Equal(t, float64(result.Ticks), testutil.ToFloat64(s.metrics.ticks))
				assert.Equal(t, float64(numJobs), testutil.ToFloat64(s.metrics.scheduleAttempts.WithLabelValues("scheduled")))
				assert.Equal(t, float64(numJobs), testutil.ToFloat64(s.metrics.jobsCompleted))
				if tc.dilation != nil {
					assert.Greater(t, testutil.ToFloat64(s.metrics.navigationSteps), 0.0)
				}
			})
		}
	}
}

func TestSimulator_NavigatedRewardCountsEveryJob(t *testing.T) {
	workloadSpec := &WorkloadSpec{NumJobs: 12, Offline: true}
	s, err := NewSimulator(metricCluster(), workloadSpec, &SimulationConfig{Policy: "fcfs", Seed: 3, Dilation: navigated()}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(simcontext.Background()))
	// Offline jobs all start pending and every one of them leaves that state exactly once.
	assert.Equal(t, 12.0, s.Result().TotalReward)
}

func TestSimulator_Truncation(t *testing.T) {
	clusterSpec := &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 1}
	// Only one job fits at a time.
	workloadSpec := &WorkloadSpec{NumJobs: 10, JobDemand: 0.6}
	s, err := NewSimulator(clusterSpec, workloadSpec, &SimulationConfig{Policy: "fcfs", MaxTicks: 3}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Run(simcontext.Background()))

	assert.Equal(t, Result{
		Ticks:        3,
		Finished:     false,
		Truncated:    true,
		NumScheduled: 3,
		NumCompleted: 3,
	}, s.Result())
}

func TestSimulator_IsDeterministicForFixedSeed(t *testing.T) {
	results := make([]Result, 2)
	for i := range results {
		config := &SimulationConfig{Policy: "random", Seed: 11}
		s, err := NewSimulator(metricCluster(), &WorkloadSpec{NumJobs: 30, PoissonLambda: 4}, config, nil)
		require.NoError(t, err)
		require.NoError(t, s.Run(simcontext.Background()))
		results[i] = s.Result()
	}
	assert.Equal(t, results[0], results[1])
}

func TestSimulator_Outputs(t *testing.T) {
	statsSink := &recordingSink{}
	s, err := NewSimulator(singleSlotCluster(), &WorkloadSpec{NumJobs: 20}, &SimulationConfig{Policy: "fcfs", Seed: 5}, statsSink)
	require.NoError(t, err)
	mc := NewMetricsCollector(s.Output())

	g, ctx := simcontext.ErrGroup(simcontext.Background())
	g.Go(func() error { return s.Run(ctx) })
	g.Go(func() error { return mc.Run(ctx) })
	require.NoError(t, g.Wait())

	result := s.Result()
	require.Len(t, statsSink.stats, result.Ticks+1)
	for i, stats := range statsSink.stats {
		assert.Equal(t, int64(i), stats.Tick)
		assert.Equal(t, s.RunId, stats.RunId)
		assert.Equal(t, "singleslot", stats.Cluster)
	}
	last := statsSink.stats[len(statsSink.stats)-1]
	assert.Equal(t, int32(20), last.NumCompleted)
	assert.Equal(t, 1.0, last.MeanFreeCapacity)

	assert.Equal(t, result.Ticks+1, mc.Total.NumTicks)
	assert.Equal(t, int64(result.Ticks), mc.Total.LastTick)
	assert.Equal(t, 20, mc.Total.NumScheduled)
	assert.Equal(t, 20, mc.Total.NumCompleted)
}

func TestSimulator_CancelledContext(t *testing.T) {
	s, err := NewSimulator(metricCluster(), &WorkloadSpec{NumJobs: 30}, &SimulationConfig{Policy: "fcfs", Seed: 1}, nil)
	require.NoError(t, err)
	ctx, cancel := simcontext.WithCancel(simcontext.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), ctx.Err())
}

func TestNewSimulator_Validation(t *testing.T) {
	tests := map[string]struct {
		clusterSpec      *ClusterSpec
		workloadSpec     *WorkloadSpec
		simulationConfig *SimulationConfig
		expected         []string
	}{
		"every problem is reported": {
			clusterSpec:      &ClusterSpec{Flavor: DeepRMFlavor, NumMachines: 2},
			workloadSpec:     &WorkloadSpec{NumJobs: 1},
			simulationConfig: &SimulationConfig{Policy: "lottery"},
			expected: []string{
				"need at least one resource",
				"more than one tick",
				"at least one unit per resource",
				`unknown policy "lottery"`,
			},
		},
		"struct tags": {
			clusterSpec:      &ClusterSpec{Flavor: "quantum", NumMachines: 2},
			workloadSpec:     &WorkloadSpec{NumJobs: 0},
			simulationConfig: &SimulationConfig{Policy: "fcfs"},
			expected:         []string{"Flavor", "NumJobs"},
		},
		"demand larger than capacity": {
			clusterSpec:      &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 2, MachineCapacity: 0.5},
			workloadSpec:     &WorkloadSpec{NumJobs: 3, JobDemand: 0.8},
			simulationConfig: &SimulationConfig{Policy: "fcfs", Seed: 1},
			expected:         []string{"job demand 0.8 never fits machine capacity 0.5"},
		},
		"exact fit under strict comparison": {
			clusterSpec:      &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 2, Comparison: pointer(cluster.Strict)},
			workloadSpec:     &WorkloadSpec{NumJobs: 3, JobDemand: 1},
			simulationConfig: &SimulationConfig{Policy: "fcfs"},
			expected:         []string{"never fits machine capacity 1 under strict comparison"},
		},
		"random demands on small machines": {
			clusterSpec:      &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 2, MachineCapacity: 0.9},
			workloadSpec:     &WorkloadSpec{NumJobs: 3},
			simulationConfig: &SimulationConfig{Policy: "random"},
			expected:         []string{"need a machine capacity of at least 1"},
		},
		"kernel too small": {
			clusterSpec:      singleSlotCluster(),
			workloadSpec:     &WorkloadSpec{NumJobs: 1},
			simulationConfig: &SimulationConfig{Policy: "fcfs", Dilation: &DilationSpec{Kernel: dilation.Kernel{X: 1, Y: 2}}},
			expected:         []string{"dilation kernel"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewSimulator(tc.clusterSpec, tc.workloadSpec, tc.simulationConfig, nil)
			require.Error(t, err)
			for _, expected := range tc.expected {
				assert.Contains(t, err.Error(), expected)
			}
		})
	}
}

func TestNewSimulator_AcceptsFittingDemand(t *testing.T) {
	tests := map[string]struct {
		clusterSpec  *ClusterSpec
		workloadSpec *WorkloadSpec
	}{
		"exact fit under loose comparison": {
			clusterSpec:  &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 2, MachineCapacity: 0.5},
			workloadSpec: &WorkloadSpec{NumJobs: 3, JobDemand: 0.5},
		},
		"random demands under strict comparison": {
			clusterSpec:  &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 2, Comparison: pointer(cluster.Strict)},
			workloadSpec: &WorkloadSpec{NumJobs: 3},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := NewSimulator(tc.clusterSpec, tc.workloadSpec, &SimulationConfig{Policy: "fcfs", Seed: 1}, nil)
			require.NoError(t, err)
			require.NoError(t, s.Run(simcontext.Background()))
			assert.True(t, s.Result().Finished)
		})
	}
}

func TestCheckSchedulable(t *testing.T) {
	clusterSpec := &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 2, MachineCapacity: 0.5}

	f, err := singleSlotFlavor(clusterSpec, &WorkloadSpec{NumJobs: 3, JobDemand: 0.5})
	require.NoError(t, err)
	engine, err := cluster.NewEngine(f.workload, f.machines, f.allocation, 1)
	require.NoError(t, err)
	assert.NoError(t, checkSchedulable(engine, f, 1))

	f, err = singleSlotFlavor(clusterSpec, &WorkloadSpec{NumJobs: 3, JobDemand: 0.8})
	require.NoError(t, err)
	engine, err = cluster.NewEngine(f.workload, f.machines, f.allocation, 1)
	require.NoError(t, err)
	err = checkSchedulable(engine, f, 1)
	var unschedulable *simerrors.ErrUnschedulable
	require.ErrorAs(t, err, &unschedulable)
	assert.Equal(t, 0, unschedulable.Job)
	assert.False(t, simerrors.IsContractViolation(err))
}

func TestSimulator_UnschedulableWorkloadFailsAndLogs(t *testing.T) {
	s, err := NewSimulator(singleSlotCluster(), &WorkloadSpec{NumJobs: 3, JobDemand: 0.5}, &SimulationConfig{Policy: "fcfs", Seed: 1}, nil)
	require.NoError(t, err)
	// Bypass validation to reach the run loop with jobs that never fit.
	s.ClusterSpec.MachineCapacity = 0.5
	s.WorkloadSpec.JobDemand = 0.8
	require.NoError(t, s.bind())

	logger, hook := logtest.NewNullLogger()
	err = s.Run(simcontext.New(context.Background(), log.NewEntry(logger)))
	var unschedulable *simerrors.ErrUnschedulable
	require.ErrorAs(t, err, &unschedulable)
	assert.False(t, s.Result().Finished)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, "simulation failed", entry.Message)
	assert.Equal(t, s.RunId, entry.Data["runId"])
	assert.Contains(t, entry.Data, logging.Stacktrace)
}

func TestSimulator_Timeout(t *testing.T) {
	// Only one job fits at a time, so the simulation needs ten ticks.
	clusterSpec := &ClusterSpec{Flavor: SingleSlotFlavor, NumMachines: 1}
	workloadSpec := &WorkloadSpec{NumJobs: 10, JobDemand: 0.6}
	config := &SimulationConfig{Policy: "fcfs", Timeout: time.Millisecond}
	s, err := NewSimulator(clusterSpec, workloadSpec, config, slowSink{delay: 50 * time.Millisecond})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(simcontext.Background()), context.DeadlineExceeded)
	assert.False(t, s.Result().Finished)
}

func TestNewSimulator_NamesUnnamedSpecs(t *testing.T) {
	clusterSpec := singleSlotCluster()
	clusterSpec.Name = ""
	config := &SimulationConfig{Policy: "fcfs"}
	s, err := NewSimulator(clusterSpec, &WorkloadSpec{NumJobs: 1}, config, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ClusterSpec.Name)
	assert.NotEmpty(t, s.WorkloadSpec.Name)
	assert.NotEmpty(t, config.Name)
	assert.NotEmpty(t, s.RunId)
}

func TestSimulate(t *testing.T) {
	statsSink := &recordingSink{}
	simulators, err := Simulate(
		simcontext.Background(),
		[]*ClusterSpec{metricCluster(), singleSlotCluster()},
		[]*WorkloadSpec{{Name: "small", NumJobs: 5, Offline: true}},
		[]*SimulationConfig{{Name: "fcfs", Policy: "fcfs", Seed: 1}, {Name: "sjf", Policy: "sjf", Seed: 1}},
		statsSink,
	)
	require.NoError(t, err)
	require.Len(t, simulators, 4)
	runIds := map[string]bool{}
	for _, s := range simulators {
		assert.True(t, s.Result().Finished)
		runIds[s.RunId] = true
	}
	assert.Len(t, runIds, 4)
	ticks := 0
	for _, s := range simulators {
		ticks += s.Result().Ticks + 1
	}
	assert.Len(t, statsSink.stats, ticks)
}

func TestDilationLevels(t *testing.T) {
	levels, err := DilationLevels(singleSlotCluster(), navigated())
	require.NoError(t, err)
	// Five machines pack onto 3x2, padded to 4x4.
	require.Len(t, levels, 2)
	assert.Equal(t, 4, levels[0].X)
	assert.Equal(t, 2, levels[1].X)
	assert.Equal(t, []float64{1}, levels[1].At(0, 0))

	levels, err = DilationLevels(metricCluster(), navigated())
	require.NoError(t, err)
	assert.Equal(t, 2*20, levels[0].C)
}

func pointer[T any](v T) *T {
	return &v
}
