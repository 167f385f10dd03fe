// Package interp provides piecewise-linear interpolants over frame index,
// used to draw sub-frame trail positions.
package interp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/elastipend/internal/kinematics"
)

var ErrOutOfRange = errors.New("interpolation query out of range")

// Linear interpolates samples ys on the domain [0, len(ys)-1] with
// sample i at index i.
type Linear struct {
	n     int
	first float64
	pl    *interp.PiecewiseLinear
}

// NewLinear fits the samples. At least one sample is required; a single
// sample gives a constant on the domain [0, 0].
func NewLinear(ys []float64) (*Linear, error) {
	if len(ys) == 0 {
		return nil, fmt.Errorf("interp: no samples")
	}
	l := &Linear{n: len(ys), first: ys[0]}
	if len(ys) == 1 {
		return l, nil
	}
	l.pl = &interp.PiecewiseLinear{}
	if err := l.pl.Fit(Linspace(0, float64(len(ys)-1), len(ys)), ys); err != nil {
		return nil, fmt.Errorf("interp: %w", err)
	}
	return l, nil
}

// Domain is [0, N-1].
func (l *Linear) Domain() (lo, hi float64) {
	return 0, float64(l.n - 1)
}

func (l *Linear) check(u float64) error {
	_, hi := l.Domain()
	if math.IsNaN(u) || u < 0 || u > hi {
		return fmt.Errorf("%w: %g not in [0, %g]", ErrOutOfRange, u, hi)
	}
	return nil
}

// predict assumes u passed check.
func (l *Linear) predict(u float64) float64 {
	if l.pl == nil {
		return l.first
	}
	return l.pl.Predict(u)
}

// At evaluates the interpolant at index u. Integer u returns the stored
// sample exactly.
func (l *Linear) At(u float64) (float64, error) {
	if err := l.check(u); err != nil {
		return 0, err
	}
	return l.predict(u), nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Trajectory holds one interpolant per Cartesian coordinate, all over the
// same domain.
type Trajectory struct {
	X1, Y1, X2, Y2 *Linear
}

func FromTrace(tr *kinematics.Trace) (*Trajectory, error) {
	n := len(tr.X1)
	if len(tr.Y1) != n || len(tr.X2) != n || len(tr.Y2) != n {
		return nil, fmt.Errorf("interp: trace columns differ in length (%d, %d, %d, %d)",
			len(tr.X1), len(tr.Y1), len(tr.X2), len(tr.Y2))
	}
	var (
		t   Trajectory
		err error
	)
	if t.X1, err = NewLinear(tr.X1); err != nil {
		return nil, err
	}
	if t.Y1, err = NewLinear(tr.Y1); err != nil {
		return nil, err
	}
	if t.X2, err = NewLinear(tr.X2); err != nil {
		return nil, err
	}
	if t.Y2, err = NewLinear(tr.Y2); err != nil {
		return nil, err
	}
	return &t, nil
}

// Len is the number of samples N.
func (t *Trajectory) Len() int { return t.X1.n }

// Segment samples both bobs at n evenly spaced indices in [lo, hi].
func (t *Trajectory) Segment(lo, hi float64, n int) (bob1, bob2 []kinematics.Point, err error) {
	us := Linspace(lo, hi, n)
	bob1 = make([]kinematics.Point, len(us))
	bob2 = make([]kinematics.Point, len(us))
	for k, u := range us {
		// FromTrace guarantees one domain, so one check covers all four.
		if err := t.X1.check(u); err != nil {
			return nil, nil, err
		}
		bob1[k] = kinematics.Point{X: t.X1.predict(u), Y: t.Y1.predict(u)}
		bob2[k] = kinematics.Point{X: t.X2.predict(u), Y: t.Y2.predict(u)}
	}
	return bob1, bob2, nil
}
