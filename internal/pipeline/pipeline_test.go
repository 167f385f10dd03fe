package pipeline_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/encoder"
	"github.com/san-kum/elastipend/internal/framecache"
	"github.com/san-kum/elastipend/internal/integrators"
	"github.com/san-kum/elastipend/internal/logging"
	"github.com/san-kum/elastipend/internal/physics"
	"github.com/san-kum/elastipend/internal/pipeline"
	"github.com/san-kum/elastipend/internal/render"
)

type fakeRunner struct {
	mu      sync.Mutex
	missing bool
	fail    bool
	calls   [][]string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	out := args[len(args)-1]
	if f.fail {
		os.WriteFile(out, []byte("partial"), 0o644)
		return &encoder.RunError{Name: name, Err: errors.New("exit status 1"), Stderr: "Invalid data found"}
	}
	return os.WriteFile(out, []byte("mp4"), 0o644)
}

func verticalParams() physics.Params {
	p := physics.DefaultParams()
	p.Alpha0, p.Beta0 = 0, 0
	p.K1, p.K2 = 45, 45
	return p
}

func tinyRender() render.Options {
	o := render.DefaultOptions()
	o.Size = 32
	o.DPI = 16
	o.Segments = 4
	o.Stride = 2
	o.Supersample = 2
	o.Workers = 3
	return o
}

var _ = Describe("Simulate", func() {
	It("integrates the vertical configuration over the frame grid", func() {
		traj, err := pipeline.Simulate(context.Background(), verticalParams(), 2, 24, integrators.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Frames()).To(Equal(48))
		Expect(traj.Solution.OK()).To(BeTrue())

		p := traj.Model.Params()
		limit := p.L1 + p.L2 + 6
		for i := 0; i < traj.Frames(); i++ {
			Expect(math.Abs(traj.Trace.X1[i])).To(BeNumerically("<=", limit))
			Expect(math.Abs(traj.Trace.X2[i])).To(BeNumerically("<=", limit))
		}
	})

	It("is deterministic", func() {
		p := verticalParams()
		p.Alpha0, p.Beta0 = 0.7, -1.2
		a, err := pipeline.Simulate(context.Background(), p, 1, 24, integrators.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		b, err := pipeline.Simulate(context.Background(), p, 1, 24, integrators.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Solution.States).To(Equal(b.Solution.States))
	})

	It("rejects bad parameters in the physics stage", func() {
		p := verticalParams()
		p.M1 = 0
		_, err := pipeline.Simulate(context.Background(), p, 1, 24, integrators.DefaultOptions())
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		stage, ok := pipeline.StageOf(err)
		Expect(ok).To(BeTrue())
		Expect(stage).To(Equal(pipeline.StagePhysics))
	})

	It("reports a collapsed spring as an integration failure", func() {
		p := verticalParams()
		p.A0 = 1e-9
		traj, err := pipeline.Simulate(context.Background(), p, 1, 24, integrators.DefaultOptions())
		Expect(traj).To(BeNil())
		Expect(err).To(MatchError(dynamo.ErrSingular))
		Expect(err.Error()).To(HavePrefix("integration: "))
	})

	It("rejects an empty frame grid", func() {
		_, err := pipeline.Simulate(context.Background(), verticalParams(), 0.01, 24, integrators.DefaultOptions())
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageIntegration))
	})
})

var _ = Describe("Pipeline", func() {
	var (
		dir    string
		cache  *framecache.Cache
		runner *fakeRunner
		pl     *pipeline.Pipeline
		req    pipeline.Request
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cache = framecache.New(filepath.Join(dir, "_figs"), "png")
		runner = &fakeRunner{}
		ec := encoder.DefaultConfig()
		ec.FPS = 10
		ec.OutDir = filepath.Join(dir, "_videos")
		pl = &pipeline.Pipeline{
			Cache:   cache,
			Encoder: encoder.New(ec, runner, logging.Discard()),
			Logger:  logging.Discard(),
		}
		req = pipeline.Request{
			Params:    verticalParams(),
			TEnd:      0.5,
			FPS:       10,
			Solver:    integrators.DefaultOptions(),
			Render:    tinyRender(),
			MovieName: "dsp_0.00_0.00.mp4",
		}
	})

	It("renders every frame and encodes the movie", func() {
		var mu sync.Mutex
		var last, seenTotal int
		pl.Progress = func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if done > last {
				last = done
			}
			seenTotal = total
		}

		res, err := pl.Run(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(Equal(5))
		Expect(last).To(Equal(5))
		Expect(seenTotal).To(Equal(5))
		Expect(res.Movie).To(Equal(filepath.Join(dir, "_videos", "dsp_0.00_0.00.mp4")))
		Expect(res.Movie).To(BeARegularFile())
		Expect(cache.Verify(5)).To(Succeed())
		Expect(runner.calls).To(HaveLen(1))
		Expect(runner.calls[0]).To(ContainElements("libx264", "yuv420p", cache.Pattern()))
		Expect(runner.calls[0]).To(ContainElement(ContainSubstring("pad=1920:1080")))
	})

	It("replaces stale frames from an earlier run", func() {
		Expect(cache.Init()).To(Succeed())
		for i := 0; i < 10; i++ {
			Expect(os.WriteFile(cache.Path(i), []byte("stale"), 0o644)).To(Succeed())
		}
		req.MovieName = ""

		res, err := pl.Run(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Movie).To(BeEmpty())

		frames, err := cache.Frames()
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(5))
		for i, f := range frames {
			Expect(f.Index).To(Equal(i))
		}
		Expect(runner.calls).To(BeEmpty())
	})

	It("stops before rendering when integration fails", func() {
		req.Params.B0 = 1e-9
		_, err := pl.Run(context.Background(), req)
		Expect(err).To(MatchError(dynamo.ErrSingular))
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageIntegration))

		_, statErr := os.Stat(cache.Dir())
		Expect(os.IsNotExist(statErr)).To(BeTrue())
		Expect(runner.calls).To(BeEmpty())
	})

	It("fails in the render stage for invalid render options", func() {
		req.Render.Size = 0
		_, err := pl.Run(context.Background(), req)
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageRender))
	})

	It("fails in the render stage when frames cannot be written", func() {
		blocker := filepath.Join(dir, "blocked")
		Expect(os.WriteFile(blocker, nil, 0o644)).To(Succeed())
		pl.Cache = framecache.New(filepath.Join(blocker, "_figs"), "png")

		_, err := pl.Run(context.Background(), req)
		Expect(err).To(HaveOccurred())
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageRender))
		Expect(runner.calls).To(BeEmpty())
	})

	It("leaves no movie when the encoder fails", func() {
		runner.fail = true
		_, err := pl.Run(context.Background(), req)
		Expect(err).To(MatchError(encoder.ErrEncodeFailed))
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageEncode))

		entries, _ := os.ReadDir(filepath.Join(dir, "_videos"))
		Expect(entries).To(BeEmpty())
	})

	It("fails the encode stage before integrating when the encoder is missing", func() {
		runner.missing = true
		_, err := pl.Run(context.Background(), req)
		Expect(err).To(MatchError(encoder.ErrEncoderMissing))
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageEncode))

		_, statErr := os.Stat(cache.Dir())
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("renders without checking for an encoder when no movie is requested", func() {
		runner.missing = true
		req.MovieName = ""
		res, err := pl.Run(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(Equal(5))
	})

	It("aborts on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pl.Run(ctx, req)
		Expect(err).To(MatchError(context.Canceled))
		Expect(runner.calls).To(BeEmpty())
	})

	It("aborts the render stage when canceled mid-dispatch", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		req.Render.Workers = 1
		pl.Progress = func(done, total int) {
			if done == 2 {
				cancel()
			}
		}
		_, err := pl.Run(ctx, req)
		Expect(err).To(MatchError(context.Canceled))
		stage, _ := pipeline.StageOf(err)
		Expect(stage).To(Equal(pipeline.StageRender))
	})
})
