package render

import (
	"fmt"
	"runtime"
)

// Options is the per-run render configuration. It is copied into every
// frame task and never mutated.
type Options struct {
	// Size is the square frame edge in pixels.
	Size int
	DPI  int

	Trace bool
	Axes  bool

	// Segments is the trail depth ns, Stride the frames per segment s and
	// Supersample the interpolation density multiplier.
	Segments    int
	Stride      int
	Supersample int

	Workers int
	// Attempts bounds writes of a single frame file.
	Attempts int
}

func DefaultOptions() Options {
	return Options{
		Size:        700,
		DPI:         100,
		Trace:       true,
		Axes:        false,
		Segments:    50,
		Stride:      4,
		Supersample: 3,
		Workers:     runtime.NumCPU(),
		Attempts:    3,
	}
}

func (o Options) Validate() error {
	switch {
	case o.Size <= 0:
		return fmt.Errorf("render: size must be positive, got %d", o.Size)
	case o.DPI <= 0:
		return fmt.Errorf("render: dpi must be positive, got %d", o.DPI)
	case o.Segments < 0:
		return fmt.Errorf("render: trail segments must be non-negative, got %d", o.Segments)
	case o.Trace && o.Stride <= 0:
		return fmt.Errorf("render: trail stride must be positive, got %d", o.Stride)
	case o.Trace && o.Supersample <= 0:
		return fmt.Errorf("render: supersample must be positive, got %d", o.Supersample)
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}
