// Package pipeline runs an elastic pendulum from parameters to movie:
// physics, integration, render and encode. Each stage consumes the value
// the previous one returned; nothing is shared between runs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/encoder"
	"github.com/san-kum/elastipend/internal/framecache"
	"github.com/san-kum/elastipend/internal/integrators"
	"github.com/san-kum/elastipend/internal/kinematics"
	"github.com/san-kum/elastipend/internal/logging"
	"github.com/san-kum/elastipend/internal/metrics"
	"github.com/san-kum/elastipend/internal/physics"
	"github.com/san-kum/elastipend/internal/render"
)

type Stage string

const (
	StagePhysics     Stage = "physics"
	StageIntegration Stage = "integration"
	StageRender      Stage = "render"
	StageEncode      Stage = "encode"
)

// StageError names the stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the failing stage recorded in err.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func stageErr(s Stage, err error) error {
	return &StageError{Stage: s, Err: err}
}

// Trajectory is the output of the integration stage and the Cartesian
// transform.
type Trajectory struct {
	Model    *physics.ElasticPendulum
	Solution *dynamo.Solution
	Trace    *kinematics.Trace
	FPS      float64
}

// Frames is the number of grid instants, one per output frame.
func (t *Trajectory) Frames() int { return t.Trace.Len() }

// Simulate builds the model and integrates it over the frame grid of
// tEnd seconds at fps. A failed integration is returned as an error and
// no trajectory.
func Simulate(ctx context.Context, p physics.Params, tEnd, fps float64, opts integrators.Options) (*Trajectory, error) {
	model, err := physics.New(p)
	if err != nil {
		return nil, stageErr(StagePhysics, err)
	}

	times := dynamo.Grid(tEnd, fps)
	if len(times) == 0 {
		return nil, stageErr(StageIntegration,
			fmt.Errorf("%w: t_end=%g fps=%g yields no frames", dynamo.ErrParameterBounds, tEnd, fps))
	}

	sol, err := integrators.Solve(ctx, model, model.InitialState(), times, opts)
	if err != nil {
		return nil, stageErr(StageIntegration, err)
	}
	if !sol.OK() {
		return nil, stageErr(StageIntegration, fmt.Errorf("solver status %s: %s", sol.Status, sol.Message))
	}

	tr, err := kinematics.FromSolution(sol)
	if err != nil {
		return nil, stageErr(StageIntegration, err)
	}
	return &Trajectory{Model: model, Solution: sol, Trace: tr, FPS: fps}, nil
}

type Request struct {
	Params physics.Params
	TEnd   float64
	FPS    float64
	Solver integrators.Options
	Render render.Options
	// MovieName is the output file name; empty skips the encode stage.
	MovieName string
}

type Result struct {
	Trajectory *Trajectory
	Frames     int
	Movie      string
	Drift      float64
	Energy     metrics.Summary
	Elapsed    time.Duration
}

// Pipeline holds the collaborators shared by runs. Encoder may be nil,
// in which case runs stop after rendering.
type Pipeline struct {
	Cache   *framecache.Cache
	Encoder *encoder.Encoder
	Logger  *slog.Logger
	// Progress is forwarded to the render dispatcher.
	Progress func(done, total int)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.Discard()
	}
	return p.Logger
}

// Run executes every stage in order. Each stage starts only after the
// previous one has completed successfully; any failure is returned as a
// *StageError and later stages do not run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	logger := p.logger()
	start := time.Now()

	if p.Cache == nil {
		return nil, stageErr(StageRender, errors.New("no frame cache configured"))
	}
	if err := req.Render.Validate(); err != nil {
		return nil, stageErr(StageRender, err)
	}
	encode := p.Encoder != nil && req.MovieName != ""
	if encode {
		if _, err := p.Encoder.Check(); err != nil {
			logger.Error("run failed", "stage", StageEncode, "err", err)
			return nil, stageErr(StageEncode, err)
		}
	}

	logger.Info("integrating",
		"method", req.Solver.Method,
		"alpha0", req.Params.Alpha0, "beta0", req.Params.Beta0,
		"k1", req.Params.K1, "k2", req.Params.K2,
		"t_end", req.TEnd, "fps", req.FPS,
	)
	stageStart := time.Now()
	traj, err := Simulate(ctx, req.Params, req.TEnd, req.FPS, req.Solver)
	if err != nil {
		stage, _ := StageOf(err)
		logger.Error("run failed", "stage", stage, "err", err)
		return nil, err
	}
	sol := traj.Solution
	res := &Result{
		Trajectory: traj,
		Frames:     traj.Frames(),
		Energy:     metrics.Summarize(traj.Model, sol),
	}
	res.Drift = res.Energy.Drift
	logger.Info("integrated",
		"method", sol.Method,
		"samples", sol.Len(),
		"steps", sol.Steps,
		"rejects", sol.Rejects,
		"evals", sol.Evals,
		"drift", res.Drift,
		"elapsed", time.Since(stageStart).Round(time.Millisecond),
	)

	stageStart = time.Now()
	if err := p.render(ctx, traj, req.Render); err != nil {
		logger.Error("run failed", "stage", StageRender, "err", err)
		return nil, stageErr(StageRender, err)
	}
	logger.Info("rendered",
		"frames", res.Frames,
		"dir", p.Cache.Dir(),
		"elapsed", time.Since(stageStart).Round(time.Millisecond),
	)

	if encode {
		movie, err := p.Encoder.Encode(ctx, p.Cache, res.Frames, req.MovieName)
		if err != nil {
			logger.Error("run failed", "stage", StageEncode, "err", err)
			return nil, stageErr(StageEncode, err)
		}
		res.Movie = movie
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

func (p *Pipeline) render(ctx context.Context, traj *Trajectory, opts render.Options) error {
	removed, err := p.Cache.Clear()
	if err != nil {
		return err
	}
	p.logger().Debug("frame cache cleared", "dir", p.Cache.Dir(), "removed", removed)

	scene, err := render.NewScene(traj.Trace, opts)
	if err != nil {
		return err
	}
	renderer := render.NewRenderer(scene, p.Cache, p.logger())
	d := &render.Dispatcher{
		Workers:  opts.Workers,
		Logger:   p.logger(),
		Progress: p.Progress,
	}
	if err := d.RenderAll(ctx, renderer); err != nil {
		return err
	}
	return p.Cache.Verify(traj.Frames())
}
