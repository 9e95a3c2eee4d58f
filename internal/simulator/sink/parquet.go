package sink

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	parquetWriter "github.com/xitongsys/parquet-go/writer"

	"github.com/armadaproject/clustersim/internal/common/simcontext"
)

const TickStatsFileName = "tick_stats.parquet"

// ParquetSink writes one row per TickStats to tick_stats.parquet in its output directory.
type ParquetSink struct {
	file   *os.File
	writer *parquetWriter.ParquetWriter
	mu     sync.Mutex
}

func NewParquetSink(outputDir string) (*ParquetSink, error) {
	fileWriter, err := os.Create(filepath.Join(outputDir, TickStatsFileName))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	pw, err := parquetWriter.NewParquetWriterFromWriter(fileWriter, new(TickStats), 1)
	if err != nil {
		_ = fileWriter.Close()
		return nil, errors.WithStack(err)
	}
	return &ParquetSink{
		file:   fileWriter,
		writer: pw,
	}, nil
}

func (s *ParquetSink) OnTick(stats TickStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.WithStack(s.writer.Write(stats))
}

// Close flushes buffered rows and closes the file.
func (s *ParquetSink) Close(ctx *simcontext.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.WriteStop(); err != nil {
		ctx.Log.Warnf("Could not cleanly close %s: %s", TickStatsFileName, err)
	}
	if err := s.file.Close(); err != nil {
		ctx.Log.Warnf("Could not close %s: %s", TickStatsFileName, err)
	}
}
