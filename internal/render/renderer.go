package render

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/elastipend/internal/framecache"
	"github.com/san-kum/elastipend/internal/retry"
)

// FrameError reports the frame a render failure belongs to.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// Renderer draws frames of a Scene into a frame cache. Each call works on
// local state only, so distinct frames may be rendered concurrently.
type Renderer struct {
	scene  *Scene
	cache  *framecache.Cache
	logger *slog.Logger
}

func NewRenderer(scene *Scene, cache *framecache.Cache, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{scene: scene, cache: cache, logger: logger}
}

func (r *Renderer) Scene() *Scene { return r.scene }

// RenderFrame draws frame i and writes it to the cache under its index
// name. The file appears atomically: a reader never sees a partial image.
// Drawing errors fail immediately; write errors are retried.
func (r *Renderer) RenderFrame(ctx context.Context, i int) error {
	c, err := r.scene.Canvas(i)
	if err != nil {
		return &FrameError{Index: i, Err: err}
	}

	path := r.cache.Path(i)
	err = backoff.Retry(func() error {
		return writeAtomic(path, func(w *bufio.Writer) error {
			_, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w)
			return err
		})
	}, retry.Policy(ctx, r.scene.opts.Attempts))
	if err != nil {
		return &FrameError{Index: i, Err: err}
	}
	r.logger.Debug("frame written", "frame", i, "path", path)
	return nil
}

// writeAtomic writes through a hidden temp file in the same directory
// and renames it over path.
func writeAtomic(path string, write func(*bufio.Writer) error) (err error) {
	dir, name := filepath.Split(path)
	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return nil
}
