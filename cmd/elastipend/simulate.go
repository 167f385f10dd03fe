package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/config"
	"github.com/san-kum/elastipend/internal/logging"
	"github.com/san-kum/elastipend/internal/pipeline"
)

// simulate integrates the configured pendulum without rendering.
func simulate(cmd *cobra.Command, f *modelFlags) (*config.Config, *pipeline.Trajectory, error) {
	cfg, err := f.load(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())

	params, err := cfg.Resolve(cfg.NewRand())
	if err != nil {
		return nil, nil, &pipeline.StageError{Stage: pipeline.StagePhysics, Err: err}
	}
	logger.Info("integrating", "seed", cfg.Seed, "method", cfg.Sim.Method, "t_end", cfg.Sim.TEnd, "fps", cfg.Sim.FPS)

	traj, err := pipeline.Simulate(cmd.Context(), params, cfg.Sim.TEnd, cfg.Sim.FPS, cfg.SolverOptions())
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("integrated", "steps", traj.Solution.Steps, "rejects", traj.Solution.Rejects, "samples", traj.Solution.Len())
	return cfg, traj, nil
}
