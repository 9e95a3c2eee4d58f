package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/armadaproject/clustersim/internal/dilation"
	"github.com/armadaproject/clustersim/internal/simulator"
)

func dilateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dilate",
		Short: "Print the dilation hierarchy of an idle cluster.",
		RunE:  dilate,
	}
	cmd.Flags().String("cluster", "", "Path of the cluster spec.")
	cmd.Flags().String("kernel", "2x2", "Dilation kernel, e.g. 2x2 or 3.")
	cmd.Flags().String("operation", "max", "Pooling operation: max, min or mean.")
	cmd.Flags().Float64("fillValue", 0, "Value of padding cells. Defaults to the operation's neutral value.")
	return cmd
}

func dilate(cmd *cobra.Command, args []string) error {
	flags, err := processDilateFlags(cmd.Flags())
	if err != nil {
		return err
	}
	kernel, err := dilation.ParseKernel(flags.kernel)
	if err != nil {
		return err
	}
	operation, err := dilation.ParseOperation(flags.operation)
	if err != nil {
		return err
	}
	spec := &simulator.DilationSpec{Kernel: kernel, Operation: operation, FillValue: flags.fillValue}

	clusterSpec, err := simulator.ClusterSpecFromFilePath(flags.clusterPath)
	if err != nil {
		return err
	}
	levels, err := simulator.DilationLevels(clusterSpec, spec)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i := len(levels) - 1; i >= 0; i-- {
		level := levels[i]
		fmt.Fprintf(out, "level %d: %dx%d cells, %d channels, mean over channels:\n", i, level.X, level.Y, level.C)
		fmt.Fprintf(out, "%v\n\n", mat.Formatted(channelMeans(level), mat.Squeeze()))
	}
	return nil
}

func channelMeans(g *dilation.Grid) *mat.Dense {
	m := mat.NewDense(g.X, g.Y, nil)
	for x := 0; x < g.X; x++ {
		for y := 0; y < g.Y; y++ {
			m.Set(x, y, stat.Mean(g.At(x, y), nil))
		}
	}
	return m
}
