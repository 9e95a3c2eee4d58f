package sink

import (
	"github.com/armadaproject/clustersim/internal/common/simcontext"
)

// TickStats summarises a simulated cluster at the end of one tick, before the clock advances.
type TickStats struct {
	RunId            string  `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Cluster          string  `parquet:"name=cluster, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Workload         string  `parquet:"name=workload, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Config           string  `parquet:"name=config, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Tick             int64   `parquet:"name=tick, type=INT64"`
	NumNotCreated    int32   `parquet:"name=num_not_created, type=INT32"`
	NumPending       int32   `parquet:"name=num_pending, type=INT32"`
	NumRunning       int32   `parquet:"name=num_running, type=INT32"`
	NumCompleted     int32   `parquet:"name=num_completed, type=INT32"`
	NumScheduled     int32   `parquet:"name=num_scheduled, type=INT32"`
	MeanFreeCapacity float64 `parquet:"name=mean_free_capacity, type=DOUBLE"`
}

// Sink consumes the statistics of running simulations. Implementations must be safe for concurrent use, since
// simulations run in parallel share one sink.
type Sink interface {
	OnTick(stats TickStats) error
	Close(ctx *simcontext.Context)
}

// NullSink discards everything.
type NullSink struct{}

func (s NullSink) OnTick(TickStats) error {
	return nil
}

func (s NullSink) Close(*simcontext.Context) {}
