// Package encoder turns a frame cache into an H.264 MP4 by running ffmpeg.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/san-kum/elastipend/internal/framecache"
	"github.com/san-kum/elastipend/internal/retry"
)

var (
	ErrEncoderMissing = errors.New("encoder binary not found")
	ErrEncodeFailed   = errors.New("encode failed")
)

// Config is the encoder contract. The codec settings are fixed by
// DefaultConfig; only the binary, rate and locations normally change.
type Config struct {
	Binary string
	FPS    float64
	Width  int
	Height int
	Codec  string
	CRF    int
	PixFmt string
	OutDir string
	// Attempts bounds encoder runs; 1 means no retry.
	Attempts int
}

func DefaultConfig() Config {
	return Config{
		Binary:   "ffmpeg",
		FPS:      24,
		Width:    1920,
		Height:   1080,
		Codec:    "libx264",
		CRF:      25,
		PixFmt:   "yuv420p",
		OutDir:   "_videos",
		Attempts: 1,
	}
}

type Encoder struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, runner Runner, logger *slog.Logger) *Encoder {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Encoder{cfg: cfg, runner: runner, logger: logger}
}

func (e *Encoder) Config() Config { return e.cfg }

// Args is the ffmpeg argument list reading the image sequence matched by
// pattern and writing out.
func (e *Encoder) Args(pattern, out string) []string {
	return []string{
		"-y",
		"-r", strconv.FormatFloat(e.cfg.FPS, 'f', -1, 64),
		"-f", "image2",
		"-i", pattern,
		"-vf", e.filter(),
		"-vcodec", e.cfg.Codec,
		"-crf", strconv.Itoa(e.cfg.CRF),
		"-pix_fmt", e.cfg.PixFmt,
		out,
	}
}

// filter fits frames inside Width x Height without changing their aspect
// and pads the rest with black.
func (e *Encoder) filter() string {
	w, h := e.cfg.Width, e.cfg.Height
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2", w, h, w, h)
}

// Check resolves the encoder binary. Call it before expensive work so a
// missing encoder fails the run early.
func (e *Encoder) Check() (string, error) {
	bin, err := e.runner.LookPath(e.cfg.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrEncoderMissing, e.cfg.Binary, err)
	}
	return bin, nil
}

// Encode checks that cache holds exactly frames 0..n-1 and encodes them
// into OutDir/name. The movie is written under a temporary name and
// renamed on success; on any failure nothing is left at the final path.
// An existing movie is never replaced: name gains a _1, _2, ... suffix
// instead, and the returned path is the one actually written.
func (e *Encoder) Encode(ctx context.Context, cache *framecache.Cache, n int, name string) (string, error) {
	bin, err := e.Check()
	if err != nil {
		return "", err
	}
	if n <= 0 {
		return "", fmt.Errorf("%w: no frames to encode", ErrEncodeFailed)
	}
	if err := cache.Verify(n); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	if err := os.MkdirAll(e.cfg.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrEncodeFailed, e.cfg.OutDir, err)
	}

	final := filepath.Join(e.cfg.OutDir, name)
	tmp := strings.TrimSuffix(final, filepath.Ext(final)) + ".tmp" + filepath.Ext(final)
	args := e.Args(cache.Pattern(), tmp)

	start := time.Now()
	e.logger.Info("encoding movie", "binary", bin, "frames", n, "fps", e.cfg.FPS, "out", final)
	e.logger.Debug("encoder args", "args", args)

	err = backoff.Retry(func() error {
		err := e.runner.Run(ctx, bin, args)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, retry.Policy(ctx, e.cfg.Attempts))
	if err == nil {
		if _, statErr := os.Stat(tmp); statErr != nil {
			err = fmt.Errorf("encoder produced no output: %w", statErr)
		}
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	if final, err = freePath(final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}

	e.logger.Info("movie written", "path", final, "elapsed", time.Since(start).Round(time.Millisecond))
	return final, nil
}

// freePath returns path, or the first path_N.ext that does not exist yet.
func freePath(path string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	candidate := path
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}
