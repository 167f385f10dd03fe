// Package automation runs many pendulums from one description: scripted
// scenarios, parameter sweeps and Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/elastipend/internal/config"
	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/integrators"
	"github.com/san-kum/elastipend/internal/logging"
	"github.com/san-kum/elastipend/internal/metrics"
	"github.com/san-kum/elastipend/internal/physics"
	"github.com/san-kum/elastipend/internal/pipeline"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one run. Zero values
// leave the base untouched.
type ScenarioStep struct {
	Name   string   `yaml:"name"`
	Preset string   `yaml:"preset"`
	Seed   int64    `yaml:"seed"`
	Alpha0 *float64 `yaml:"alpha0"`
	Beta0  *float64 `yaml:"beta0"`
	K1     *float64 `yaml:"k1"`
	K2     *float64 `yaml:"k2"`
	TEnd   float64  `yaml:"t_end"`
	FPS    float64  `yaml:"fps"`
	Method string   `yaml:"method"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Config layers the step over a copy of base.
func (s ScenarioStep) Config(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Preset != "" && !config.ApplyPreset(&cfg, s.Preset) {
		return nil, fmt.Errorf("unknown preset %q", s.Preset)
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	for _, o := range []struct {
		v   *float64
		dst **float64
	}{
		{s.Alpha0, &cfg.Physics.Alpha0},
		{s.Beta0, &cfg.Physics.Beta0},
		{s.K1, &cfg.Physics.K1},
		{s.K2, &cfg.Physics.K2},
	} {
		if o.v != nil {
			*o.dst = config.Float(*o.v)
		}
	}
	if s.TEnd > 0 {
		cfg.Sim.TEnd = s.TEnd
	}
	if s.FPS > 0 {
		cfg.Sim.FPS = s.FPS
	}
	if s.Method != "" {
		cfg.Sim.Method = s.Method
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StepFunc executes one configured run.
type StepFunc func(ctx context.Context, i int, cfg *config.Config) error

// RunScenario executes all steps in order and stops at the first failure.
// A step without its own seed gets one drawn from base.Seed, so unseeded
// steps produce different pendulums while the whole scenario stays
// reproducible from the base seed.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, logger *slog.Logger, run StepFunc) error {
	if logger == nil {
		logger = logging.Discard()
	}
	seeds := rand.New(rand.NewSource(base.Seed))
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		// drawn for every step so an explicit seed does not shift later ones
		seed := stepSeed(seeds)
		cfg, err := step.Config(base)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Seed == 0 {
			cfg.Seed = seed
		}
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", step.Name, "seed", cfg.Seed)
		if err := run(ctx, i, cfg); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
	}
	return nil
}

// stepSeed never returns 0, which callers treat as "seed from the clock".
func stepSeed(r *rand.Rand) int64 {
	for {
		if s := r.Int63(); s != 0 {
			return s
		}
	}
}

// ParameterSweep varies one parameter across [Min, Max] with everything
// else taken from Base.
type ParameterSweep struct {
	Base      physics.Params
	ParamName string
	Min       float64
	Max       float64
	NumSteps  int
	TEnd      float64
	FPS       float64
	Solver    integrators.Options
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalState dynamo.State
	MaxEnergy  float64
	MinEnergy  float64
	Drift      float64
	Err        error
}

func setParam(p *physics.Params, name string, v float64) error {
	switch name {
	case "alpha0":
		p.Alpha0 = v
	case "beta0":
		p.Beta0 = v
	case "k1":
		p.K1 = v
	case "k2":
		p.K2 = v
	case "a0":
		p.A0 = v
	case "b0":
		p.B0 = v
	case "m1":
		p.M1 = v
	case "m2":
		p.M2 = v
	default:
		return fmt.Errorf("parameter %q cannot be swept", name)
	}
	return nil
}

// RunSweep integrates once per parameter value. A failed integration is
// recorded on its SweepResult and the sweep continues; cancellation
// stops it.
func RunSweep(ctx context.Context, sweep *ParameterSweep, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	probe := sweep.Base
	if err := setParam(&probe, sweep.ParamName, sweep.Min); err != nil {
		return nil, err
	}
	opts := sweep.Solver

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.Min + float64(i)*paramStep
		p := sweep.Base
		setParam(&p, sweep.ParamName, paramVal)

		r := SweepResult{ParamValue: paramVal}
		traj, err := pipeline.Simulate(ctx, p, sweep.TEnd, sweep.FPS, opts)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			r.Err = err
		} else {
			sum := metrics.Summarize(traj.Model, traj.Solution)
			r.FinalState = traj.Solution.States[len(traj.Solution.States)-1]
			r.MinEnergy, r.MaxEnergy, r.Drift = sum.Min, sum.Max, sum.Drift
		}
		results = append(results, r)

		logger.Debug("sweep point", "i", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal, "err", r.Err)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base         physics.Params
	Perturbation float64
	NumTrials    int
	TEnd         float64
	FPS          float64
	Seed         int64
	Solver       integrators.Options
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID int
	Alpha0  float64
	Beta0   float64
	// Stable is false when the integration failed, typically because a
	// spring collapsed.
	Stable bool
	Drift  float64
}

// RunMonteCarlo perturbs both initial angles uniformly by up to
// ±Perturbation and integrates each trial.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	rng := rand.New(rand.NewSource(cfg.Seed))
	opts := cfg.Solver

	for trial := 0; trial < cfg.NumTrials; trial++ {
		p := cfg.Base
		p.Alpha0 += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		p.Beta0 += (rng.Float64() - 0.5) * 2 * cfg.Perturbation

		r := MonteCarloResult{TrialID: trial, Alpha0: p.Alpha0, Beta0: p.Beta0}
		traj, err := pipeline.Simulate(ctx, p, cfg.TEnd, cfg.FPS, opts)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
		} else {
			r.Stable = true
			r.Drift = metrics.Drift(traj.Model, traj.Solution)
		}
		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
