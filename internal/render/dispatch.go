package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// FrameFunc renders one frame.
type FrameFunc func(ctx context.Context, i int) error

// Dispatcher fans frame indices out to a fixed pool of workers. Frames
// complete in any order; file names carry the order.
type Dispatcher struct {
	Workers int
	Logger  *slog.Logger
	// Progress, if set, is called after each finished frame with the
	// number done so far. It may be called from several goroutines.
	Progress func(done, total int)
}

// Dispatch calls fn once for every index in [0, n) and waits for all of
// them. The first failure cancels frames not yet started and is returned;
// a canceled ctx stops dispatch at frame granularity.
func (d *Dispatcher) Dispatch(ctx context.Context, n int, fn FrameFunc) error {
	if n <= 0 {
		return nil
	}
	workers := d.Workers
	if workers <= 0 {
		workers = DefaultOptions().workers()
	}
	if workers > n {
		workers = n
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int, workers)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	var done atomic.Int64
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("frame %d not rendered: %w", i, context.Cause(gctx))
				}
				if err := fn(gctx, i); err != nil {
					logger.Error("frame failed", "frame", i, "worker", w, "error", err)
					return err
				}
				k := int(done.Add(1))
				if d.Progress != nil {
					d.Progress(k, n)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// All workers can drain cleanly after the producer saw cancellation.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dispatch interrupted after %d of %d frames: %w", done.Load(), n, err)
	}
	return nil
}

// RenderAll renders every frame of r's scene. Clearing the cache is the
// caller's job.
func (d *Dispatcher) RenderAll(ctx context.Context, r *Renderer) error {
	dd := *d
	if dd.Workers <= 0 {
		dd.Workers = r.scene.opts.workers()
	}
	return dd.Dispatch(ctx, r.scene.Frames(), r.RenderFrame)
}
