// Package framecache owns the directory rendered frames are written to.
//
// Frames are named by their zero-padded index, so lexical and numeric
// order agree and the encoder can read them as an image2 sequence. The
// cache is cleared at the start of a run, never at the end, so a
// finished run's frames stay inspectable until the next one.
package framecache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// IndexWidth is the number of digits in a frame file name.
const IndexWidth = 5

const DefaultExt = "png"

var ErrIncomplete = errors.New("incomplete frame sequence")

type Cache struct {
	dir string
	ext string
}

func New(dir, ext string) *Cache {
	if ext == "" {
		ext = DefaultExt
	}
	return &Cache{dir: dir, ext: strings.TrimPrefix(strings.ToLower(ext), ".")}
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) Ext() string { return c.ext }

// Init creates the cache directory if it does not exist.
func (c *Cache) Init() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("framecache: create %s: %w", c.dir, err)
	}
	return nil
}

// Clear creates the directory if needed and removes every file carrying
// the cache's image extension. Other files are left alone. It returns the
// number of frames removed.
func (c *Cache) Clear() (int, error) {
	if err := c.Init(); err != nil {
		return 0, err
	}
	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("framecache: read %s: %w", c.dir, err)
	}
	removed := 0
	for _, e := range ents {
		if e.IsDir() || !c.hasExt(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("framecache: remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) hasExt(name string) bool {
	return strings.EqualFold(filepath.Ext(name), "."+c.ext)
}

// Name is the file name of frame i, e.g. 00042.png.
func (c *Cache) Name(i int) string {
	return fmt.Sprintf("%0*d.%s", IndexWidth, i, c.ext)
}

func (c *Cache) Path(i int) string {
	return filepath.Join(c.dir, c.Name(i))
}

// Pattern is the printf-style input pattern for an image2 demuxer.
func (c *Cache) Pattern() string {
	return filepath.Join(c.dir, fmt.Sprintf("%%0%dd.%s", IndexWidth, c.ext))
}

// Frame is one cached image.
type Frame struct {
	Index int
	Path  string
}

// Frames lists cached frames in index order. Files with the cache
// extension whose stem is not an index are ignored.
func (c *Cache) Frames() ([]Frame, error) {
	ents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("framecache: read %s: %w", c.dir, err)
	}
	frames := make([]Frame, 0, len(ents))
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !c.hasExt(name) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(name, filepath.Ext(name)))
		if err != nil || idx < 0 {
			continue
		}
		frames = append(frames, Frame{Index: idx, Path: filepath.Join(c.dir, name)})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}

// Verify checks that the cache holds exactly frames 0..n-1.
func (c *Cache) Verify(n int) error {
	frames, err := c.Frames()
	if err != nil {
		return err
	}
	if len(frames) != n {
		return fmt.Errorf("%w: have %d frames, want %d", ErrIncomplete, len(frames), n)
	}
	for i, f := range frames {
		if f.Index != i {
			return fmt.Errorf("%w: missing frame %d", ErrIncomplete, i)
		}
	}
	return nil
}
