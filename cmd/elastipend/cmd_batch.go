package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/automation"
	"github.com/san-kum/elastipend/internal/config"
	"github.com/san-kum/elastipend/internal/logging"
)

func newBatchCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "batch <scenario.yaml>",
		Short: "run every step of a scenario file through the full pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			base, err := f.load(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(base.LogLevel, cmd.ErrOrStderr())
			logger.Info("scenario", "name", scenario.Name, "steps", len(scenario.Steps))

			return automation.RunScenario(cmd.Context(), scenario, base, logger,
				func(ctx context.Context, _ int, cfg *config.Config) error {
					return runPendulum(ctx, cmd, f, cfg)
				})
		},
	}
	f.register(cmd)
	return cmd
}

func newSweepCmd() *cobra.Command {
	f := &modelFlags{}
	var (
		param  string
		lo, hi float64
		steps  int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "integrate across a range of one parameter and tabulate energy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, nil)
			if err != nil {
				return err
			}
			base, err := cfg.Resolve(cfg.NewRand())
			if err != nil {
				return err
			}
			results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
				Base:      base,
				ParamName: param,
				Min:       lo,
				Max:       hi,
				NumSteps:  steps,
				TEnd:      cfg.Sim.TEnd,
				FPS:       cfg.Sim.FPS,
				Solver:    cfg.SolverOptions(),
			}, logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tMIN ENERGY\tMAX ENERGY\tDRIFT\tSTATUS\n", param)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(w, "%.4f\t-\t-\t-\t%v\n", r.ParamValue, r.Err)
					continue
				}
				fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.2e\tok\n", r.ParamValue, r.MinEnergy, r.MaxEnergy, r.Drift)
			}
			return w.Flush()
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().StringVar(&param, "param", "alpha0", "parameter to sweep: alpha0, beta0, k1, k2, a0, b0, m1, m2")
	cmd.Flags().Float64Var(&lo, "min", -3, "first value")
	cmd.Flags().Float64Var(&hi, "max", 3, "last value")
	cmd.Flags().IntVar(&steps, "steps", 7, "number of values")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	f := &modelFlags{}
	var (
		trials       int
		perturbation float64
	)
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "integrate randomly perturbed starts and count failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd, nil)
			if err != nil {
				return err
			}
			base, err := cfg.Resolve(cfg.NewRand())
			if err != nil {
				return err
			}
			results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
				Base:         base,
				Perturbation: perturbation,
				NumTrials:    trials,
				TEnd:         cfg.Sim.TEnd,
				FPS:          cfg.Sim.FPS,
				Seed:         cfg.Seed,
				Solver:       cfg.SolverOptions(),
			}, logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			stable, unstable := automation.MonteCarloStats(results)
			fmt.Fprintf(cmd.OutOrStdout(), "trials: %d  integrated: %d  failed: %d\n", len(results), stable, unstable)
			return nil
		},
	}
	f.register(cmd.Flags())
	cmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 0.1, "maximum change of each initial angle, rad")
	return cmd
}
