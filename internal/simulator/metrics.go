package simulator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/armadaproject/clustersim/internal/common/simcontext"
	"github.com/armadaproject/clustersim/internal/simulator/sink"
)

const metricsPrefix = "clustersim_"

type simulatorMetrics struct {
	scheduleAttempts *prometheus.CounterVec
	ticks            prometheus.Counter
	jobsCompleted    prometheus.Gauge
	navigationSteps  prometheus.Counter
}

func newSimulatorMetrics(registerer prometheus.Registerer) *simulatorMetrics {
	m := &simulatorMetrics{
		scheduleAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricsPrefix + "schedule_attempts_total",
				Help: "Number of schedule commands sent to the cluster, by whether the cluster accepted them.",
			},
			[]string{"result"},
		),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "ticks_total",
			Help: "Number of simulated clock ticks.",
		}),
		jobsCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricsPrefix + "jobs_completed",
			Help: "Number of completed jobs.",
		}),
		navigationSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricsPrefix + "dilation_navigation_steps_total",
			Help: "Number of dilation expansions performed to select machines.",
		}),
	}
	registerer.MustRegister(m.scheduleAttempts, m.ticks, m.jobsCompleted, m.navigationSteps)
	return m
}

func (m *simulatorMetrics) recordAttempt(scheduled bool) {
	result := "rejected"
	if scheduled {
		result = "scheduled"
	}
	m.scheduleAttempts.WithLabelValues(result).Inc()
}

// MetricsCollector aggregates the per-tick statistics of one simulation.
type MetricsCollector struct {
	c     <-chan sink.TickStats
	Total Metrics
	// Log a summary every this many ticks. Disabled if 0.
	LogSummaryInterval int
}

func NewMetricsCollector(c <-chan sink.TickStats) *MetricsCollector {
	return &MetricsCollector{c: c}
}

func (mc *MetricsCollector) String() string {
	return fmt.Sprintf("{Total: %s}", mc.Total)
}

type Metrics struct {
	NumTicks        int
	LastTick        int64
	NumScheduled    int
	NumCompleted    int
	MaxRunning      int
	MaxPending      int
	MinFreeCapacity float64
}

func (m Metrics) String() string {
	return fmt.Sprintf(
		"{NumTicks: %d, LastTick: %d, NumScheduled: %d, NumCompleted: %d, MaxRunning: %d, MaxPending: %d, MinFreeCapacity: %.3f}",
		m.NumTicks, m.LastTick, m.NumScheduled, m.NumCompleted, m.MaxRunning, m.MaxPending, m.MinFreeCapacity,
	)
}

// Run consumes statistics until the channel is closed or ctx is cancelled.
func (mc *MetricsCollector) Run(ctx *simcontext.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case stats, ok := <-mc.c:
			if !ok {
				return nil
			}
			mc.addTickStats(stats)
			if mc.LogSummaryInterval != 0 && mc.Total.NumTicks%mc.LogSummaryInterval == 0 {
				ctx.Log.Info(mc.String())
			}
		}
	}
}

func (mc *MetricsCollector) addTickStats(stats sink.TickStats) {
	if mc.Total.NumTicks == 0 || stats.MeanFreeCapacity < mc.Total.MinFreeCapacity {
		mc.Total.MinFreeCapacity = stats.MeanFreeCapacity
	}
	mc.Total.NumTicks++
	mc.Total.LastTick = stats.Tick
	mc.Total.NumScheduled += int(stats.NumScheduled)
	mc.Total.NumCompleted = int(stats.NumCompleted)
	mc.Total.MaxRunning = max(mc.Total.MaxRunning, int(stats.NumRunning))
	mc.Total.MaxPending = max(mc.Total.MaxPending, int(stats.NumPending))
}
