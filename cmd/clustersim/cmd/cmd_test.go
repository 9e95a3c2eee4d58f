package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDilateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flavor: singleslot\nnumMachines: 5\n"), 0o644))

	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"dilate", "--cluster", path, "--kernel", "2x2", "--operation", "max", "--logLevel", "error"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "level 1: 2x2 cells, 1 channels")
	assert.Contains(t, out.String(), "level 0: 4x4 cells, 1 channels")
}

func TestDilateCmd_InvalidKernel(t *testing.T) {
	cmd := RootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"dilate", "--cluster", "unused.yaml", "--kernel", "1x2"})
	assert.Error(t, cmd.Execute())
}

func TestRootCmd_RunsSimulations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, contents string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
	}
	write("cluster.yaml", "flavor: singleslot\nnumMachines: 3\n")
	write("workload.yaml", "numJobs: 10\njobDemand: 0.5\n")
	write("config.yaml", "policy: fcfs\nseed: 1\n")

	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--summary",
		"--clusters", filepath.Join(dir, "cluster.yaml"),
		"--workloads", filepath.Join(dir, "workload.yaml"),
		"--configs", filepath.Join(dir, "config.yaml"),
		"--outputDir", dir,
		"--logLevel", "error",
	})
	require.NoError(t, cmd.Execute())
	info, err := os.Stat(filepath.Join(dir, "tick_stats.parquet"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Contains(t, out.String(), "clusterSpec: cluster")
	assert.Contains(t, out.String(), "simulationConfig: config")
	assert.Contains(t, out.String(), "NumCompleted: 10")
	assert.Contains(t, out.String(), "Finished: true")
}
