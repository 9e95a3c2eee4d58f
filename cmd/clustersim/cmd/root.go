package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/clustersim/internal/common/config"
	"github.com/armadaproject/clustersim/internal/common/logging"
	"github.com/armadaproject/clustersim/internal/common/simcontext"
	"github.com/armadaproject/clustersim/internal/common/slices"
	"github.com/armadaproject/clustersim/internal/simulator"
	"github.com/armadaproject/clustersim/internal/simulator/sink"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clustersim",
		Short: "Simulate scheduling jobs onto a cluster of machines, one tick at a time.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := cmd.Flags().GetString("logLevel")
			if err != nil {
				return err
			}
			plain, err := cmd.Flags().GetBool("plain")
			if err != nil {
				return err
			}
			return logging.ConfigureCommandLineLogging(level, plain)
		},
		RunE:         runSimulations,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("logLevel", "info", "Log level: debug, info, warn or error.")
	cmd.PersistentFlags().Bool("plain", false, "Print log messages without timestamps or fields.")
	cmd.Flags().String("clusters", "", "Glob pattern specifying cluster specs to simulate.")
	cmd.Flags().String("workloads", "", "Glob pattern specifying workload specs to simulate.")
	cmd.Flags().String("configs", "", "Glob pattern specifying simulation configs to simulate.")
	cmd.Flags().String("outputDir", "", "Directory to write tick_stats.parquet to. Nothing is written if empty.")
	cmd.Flags().Int("logInterval", 0, "Log summary statistics every this many ticks. Disabled if 0.")
	cmd.Flags().Bool("summary", false, "Print a YAML summary of every simulation once all have finished.")
	cmd.AddCommand(dilateCmd())
	return cmd
}

func runSimulations(cmd *cobra.Command, args []string) error {
	flags, err := processSimulationFlags(cmd.Flags())
	if err != nil {
		return err
	}

	// Load specs.
	clusterSpecs, err := simulator.ClusterSpecsFromPattern(flags.clusterPattern)
	if err != nil {
		return err
	}
	workloadSpecs, err := simulator.WorkloadSpecsFromPattern(flags.workloadPattern)
	if err != nil {
		return err
	}
	simulationConfigs, err := simulator.SimulationConfigsFromPattern(flags.configPattern)
	if err != nil {
		return err
	}

	ctx := simcontext.Background()
	ctx.Log.Info("clustersim")
	ctx.Log.Infof("ClusterSpecs: %v", slices.Map(clusterSpecs, func(spec *simulator.ClusterSpec) string { return spec.Name }))
	ctx.Log.Infof("WorkloadSpecs: %v", slices.Map(workloadSpecs, func(spec *simulator.WorkloadSpec) string { return spec.Name }))
	ctx.Log.Infof("SimulationConfigs: %v", slices.Map(simulationConfigs, func(c *simulator.SimulationConfig) string { return c.Name }))

	var statsSink sink.Sink = sink.NullSink{}
	if flags.outputDir != "" {
		parquetSink, err := sink.NewParquetSink(flags.outputDir)
		if err != nil {
			return err
		}
		defer parquetSink.Close(ctx)
		statsSink = parquetSink
	}

	// Set up a simulator for each combination of (clusterSpec, workloadSpec, simulationConfig).
	simulators := make([]*simulator.Simulator, 0)
	metricsCollectors := make([]*simulator.MetricsCollector, 0)
	for _, clusterSpec := range clusterSpecs {
		for _, workloadSpec := range workloadSpecs {
			for _, simulationConfig := range simulationConfigs {
				s, err := simulator.NewSimulator(clusterSpec, workloadSpec, simulationConfig, statsSink)
				if err != nil {
					config.LogValidationErrors(ctx.Log, err)
					return err
				}
				simulators = append(simulators, s)
				mc := simulator.NewMetricsCollector(s.Output())
				mc.LogSummaryInterval = flags.logInterval
				metricsCollectors = append(metricsCollectors, mc)
			}
		}
	}

	// Run simulators.
	g, ctx := simcontext.ErrGroup(ctx)
	for _, s := range simulators {
		s := s
		g.Go(func() error {
			return s.Run(ctx)
		})
	}

	// Run metric collectors.
	for _, mc := range metricsCollectors {
		mc := mc
		g.Go(func() error {
			return mc.Run(ctx)
		})
	}

	// Wait for simulations to complete.
	if err := g.Wait(); err != nil {
		return err
	}

	// Log overall statistics.
	for i, mc := range metricsCollectors {
		s := simulators[i]
		result := s.Result()
		ctx.Log.Infof("Simulation result")
		ctx.Log.Infof("RunId: %s", s.RunId)
		ctx.Log.Infof("ClusterSpec: %s", s.ClusterSpec.Name)
		ctx.Log.Infof("WorkloadSpec: %s", s.WorkloadSpec.Name)
		ctx.Log.Infof("SimulationConfig: %s", s.SimulationConfig.Name)
		ctx.Log.Infof("Finished: %t after %d ticks, %d jobs completed", result.Finished, result.Ticks, result.NumCompleted)
		ctx.Log.Info(mc.String())
	}

	if flags.summary {
		return printSummary(cmd.OutOrStdout(), simulators, metricsCollectors)
	}
	return nil
}
