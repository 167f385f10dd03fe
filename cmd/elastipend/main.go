package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "elastipend",
		Short: "elastic double pendulum movie generator",
		Long: `elastipend integrates a double pendulum whose rods are springs,
renders every frame of the motion with a fading trail and encodes the
frames into an H.264 movie with ffmpeg.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
		newPresetsCmd(),
		newListCmd(),
		newBatchCmd(),
		newSweepCmd(),
		newMonteCarloCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
