package cmd

import (
	"io"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/clustersim/internal/simulator"
)

type simulationSummary struct {
	RunId            string            `json:"runId"`
	ClusterSpec      string            `json:"clusterSpec"`
	WorkloadSpec     string            `json:"workloadSpec"`
	SimulationConfig string            `json:"simulationConfig"`
	Result           simulator.Result  `json:"result"`
	Metrics          simulator.Metrics `json:"metrics"`
}

func printSummary(w io.Writer, simulators []*simulator.Simulator, metricsCollectors []*simulator.MetricsCollector) error {
	summaries := make([]simulationSummary, len(simulators))
	for i, s := range simulators {
		summaries[i] = simulationSummary{
			RunId:            s.RunId,
			ClusterSpec:      s.ClusterSpec.Name,
			WorkloadSpec:     s.WorkloadSpec.Name,
			SimulationConfig: s.SimulationConfig.Name,
			Result:           s.Result(),
			Metrics:          metricsCollectors[i].Total,
		}
	}
	out, err := yaml.Marshal(summaries)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = w.Write(out)
	return errors.WithStack(err)
}
