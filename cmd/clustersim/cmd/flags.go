package cmd

import (
	"github.com/spf13/pflag"
)

type simulationFlags struct {
	clusterPattern  string
	workloadPattern string
	configPattern   string
	outputDir       string
	logInterval     int
	summary         bool
}

func processSimulationFlags(flags *pflag.FlagSet) (*simulationFlags, error) {
	clusterPattern, err := flags.GetString("clusters")
	if err != nil {
		return nil, err
	}
	workloadPattern, err := flags.GetString("workloads")
	if err != nil {
		return nil, err
	}
	configPattern, err := flags.GetString("configs")
	if err != nil {
		return nil, err
	}
	outputDir, err := flags.GetString("outputDir")
	if err != nil {
		return nil, err
	}
	logInterval, err := flags.GetInt("logInterval")
	if err != nil {
		return nil, err
	}
	summary, err := flags.GetBool("summary")
	if err != nil {
		return nil, err
	}

	return &simulationFlags{
		clusterPattern:  clusterPattern,
		workloadPattern: workloadPattern,
		configPattern:   configPattern,
		outputDir:       outputDir,
		logInterval:     logInterval,
		summary:         summary,
	}, nil
}

type dilateFlags struct {
	clusterPath string
	kernel      string
	operation   string
	// Nil unless set on the command line.
	fillValue *float64
}

func processDilateFlags(flags *pflag.FlagSet) (*dilateFlags, error) {
	clusterPath, err := flags.GetString("cluster")
	if err != nil {
		return nil, err
	}
	kernel, err := flags.GetString("kernel")
	if err != nil {
		return nil, err
	}
	operation, err := flags.GetString("operation")
	if err != nil {
		return nil, err
	}
	rv := &dilateFlags{
		clusterPath: clusterPath,
		kernel:      kernel,
		operation:   operation,
	}
	if flags.Changed("fillValue") {
		fillValue, err := flags.GetFloat64("fillValue")
		if err != nil {
			return nil, err
		}
		rv.fillValue = &fillValue
	}
	return rv, nil
}
