package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/elastipend/internal/config"
	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/encoder"
	"github.com/san-kum/elastipend/internal/framecache"
	"github.com/san-kum/elastipend/internal/logging"
	"github.com/san-kum/elastipend/internal/physics"
	"github.com/san-kum/elastipend/internal/pipeline"
	"github.com/san-kum/elastipend/internal/storage"
	"github.com/san-kum/elastipend/internal/viz"
)

const defaultCatalog = ".elastipend/runs.db"

type runFlags struct {
	model modelFlags

	size        int
	dpi         int
	trace       bool
	axes        bool
	segments    int
	stride      int
	supersample int
	workers     int

	cacheDir string
	videoDir string
	ffmpeg   string
	naming   string
	noMovie  bool

	tui     bool
	catalog string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "integrate, render and encode one pendulum movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runPendulum(cmd.Context(), cmd, f, cfg)
		},
	}
	f.register(cmd)
	return cmd
}

func (f *runFlags) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	fs := cmd.Flags()
	f.model.register(fs)
	fs.IntVar(&f.size, "size", d.Render.Size, "frame edge in pixels")
	fs.IntVar(&f.dpi, "dpi", d.Render.DPI, "frame resolution")
	fs.BoolVar(&f.trace, "trace", d.Render.Trace, "draw the fading trail")
	fs.BoolVar(&f.axes, "axes", d.Render.Axes, "draw axes")
	fs.IntVar(&f.segments, "segments", d.Render.Segments, "trail depth in segments")
	fs.IntVar(&f.stride, "stride", d.Render.Stride, "frames per trail segment")
	fs.IntVar(&f.supersample, "supersample", d.Render.Supersample, "trail interpolation density")
	fs.IntVar(&f.workers, "workers", 0, "render workers (0 = one per CPU)")
	fs.StringVar(&f.cacheDir, "cache", d.Output.CacheDir, "frame cache directory")
	fs.StringVar(&f.videoDir, "videos", d.Output.VideoDir, "movie output directory")
	fs.StringVar(&f.ffmpeg, "ffmpeg", d.Output.FFmpeg, "ffmpeg binary")
	fs.StringVar(&f.naming, "naming", d.Output.Naming, "movie naming: params or timestamp")
	fs.BoolVar(&f.noMovie, "no-movie", false, "render frames only")
	fs.BoolVar(&f.tui, "tui", false, "show a progress view while rendering")
	fs.StringVar(&f.catalog, "catalog", defaultCatalog, "run catalog database (empty to disable)")
}

func (f *runFlags) load(cmd *cobra.Command) (*config.Config, error) {
	return f.model.load(cmd, func(c *config.Config) { f.apply(cmd, c) })
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	ints := []struct {
		name string
		v    int
		dst  *int
	}{
		{"size", f.size, &cfg.Render.Size},
		{"dpi", f.dpi, &cfg.Render.DPI},
		{"segments", f.segments, &cfg.Render.Segments},
		{"stride", f.stride, &cfg.Render.Stride},
		{"supersample", f.supersample, &cfg.Render.Supersample},
		{"workers", f.workers, &cfg.Render.Workers},
	}
	for _, o := range ints {
		if changed(o.name) {
			*o.dst = o.v
		}
	}
	strs := []struct {
		name string
		v    string
		dst  *string
	}{
		{"cache", f.cacheDir, &cfg.Output.CacheDir},
		{"videos", f.videoDir, &cfg.Output.VideoDir},
		{"ffmpeg", f.ffmpeg, &cfg.Output.FFmpeg},
		{"naming", f.naming, &cfg.Output.Naming},
	}
	for _, o := range strs {
		if changed(o.name) {
			*o.dst = o.v
		}
	}
	if changed("trace") {
		cfg.Render.Trace = f.trace
	}
	if changed("axes") {
		cfg.Render.Axes = f.axes
	}
	if f.noMovie {
		cfg.Output.Movie = false
	}
}

// runPendulum executes one configured run and prints its summary.
func runPendulum(ctx context.Context, cmd *cobra.Command, f *runFlags, cfg *config.Config) error {
	var logOut io.Writer = os.Stderr
	if f.tui {
		logOut = io.Discard
	}
	logger := logging.NewLogger(cfg.LogLevel, logOut)

	params, err := cfg.Resolve(cfg.NewRand())
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StagePhysics, Err: err}
	}
	logger.Debug("resolved parameters",
		"seed", cfg.Seed,
		"alpha0", params.Alpha0, "beta0", params.Beta0,
		"k1", params.K1, "k2", params.K2,
	)

	pl := &pipeline.Pipeline{
		Cache:  framecache.New(cfg.Output.CacheDir, framecache.DefaultExt),
		Logger: logger,
	}
	req := pipeline.Request{
		Params: params,
		TEnd:   cfg.Sim.TEnd,
		FPS:    cfg.Sim.FPS,
		Solver: cfg.SolverOptions(),
		Render: cfg.RenderOptions(),
	}
	if cfg.Output.Movie {
		pl.Encoder = encoder.New(cfg.EncoderConfig(), encoder.ExecRunner{}, logger)
		req.MovieName, err = encoder.MovieName(encoder.Naming(cfg.Output.Naming), params.Alpha0, params.Beta0, time.Now)
		if err != nil {
			return err
		}
	}

	var res *pipeline.Result
	if f.tui {
		res, err = runWithProgress(ctx, pl, req)
	} else {
		res, err = pl.Run(ctx, req)
	}

	if f.catalog != "" {
		recordRun(ctx, logger, f.catalog, cfg, params, res, err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), viz.RunSummary(res, 60))
	return nil
}

// runWithProgress runs the pipeline behind the progress view. Quitting
// the view cancels ctx; the pipeline is always waited for.
func runWithProgress(ctx context.Context, pl *pipeline.Pipeline, req pipeline.Request) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := dynamo.FrameCount(req.TEnd, req.FPS)
	prog := tea.NewProgram(viz.NewProgress("elastipend", frames, cancel), tea.WithOutput(os.Stderr))
	pl.Progress = func(done, total int) {
		prog.Send(viz.FrameDoneMsg{Done: done, Total: total})
	}

	var (
		res    *pipeline.Result
		runErr error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		res, runErr = pl.Run(ctx, req)
		prog.Send(viz.DoneMsg{Err: runErr})
	}()

	if _, err := prog.Run(); err != nil {
		cancel()
		<-finished
		return nil, errors.Join(runErr, fmt.Errorf("progress view: %w", err))
	}
	<-finished
	return res, runErr
}

func recordRun(ctx context.Context, logger *slog.Logger, path string, cfg *config.Config, p physics.Params, res *pipeline.Result, runErr error) {
	cat, err := storage.Open(path)
	if err != nil {
		logger.Warn("run catalog unavailable", "path", path, "err", err)
		return
	}
	defer cat.Close()

	run := storage.Run{
		Seed:   cfg.Seed,
		Method: cfg.Sim.Method,
		Alpha0: p.Alpha0,
		Beta0:  p.Beta0,
		K1:     p.K1,
		K2:     p.K2,
		TEnd:   cfg.Sim.TEnd,
		FPS:    cfg.Sim.FPS,
		Status: "success",
	}
	if res != nil {
		run.Frames = res.Frames
		run.Movie = res.Movie
		run.Drift = res.Drift
		run.Elapsed = res.Elapsed
	}
	if runErr != nil {
		run.Status = "failed"
		run.Error = runErr.Error()
		if stage, ok := pipeline.StageOf(runErr); ok {
			run.Stage = string(stage)
		}
	}

	// an interrupted run is still recorded
	id, err := cat.Record(context.WithoutCancel(ctx), run)
	if err != nil {
		logger.Warn("record run", "err", err)
		return
	}
	logger.Debug("run recorded", "id", id, "catalog", path)
}
