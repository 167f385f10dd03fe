// Package kinematics maps generalized pendulum coordinates to Cartesian
// bob positions.
package kinematics

import (
	"fmt"
	"math"

	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/physics"
)

type Point struct {
	X, Y float64
}

// Positions returns the two bob positions for one configuration. The
// pivot is the origin and y points up.
func Positions(alpha, beta, a, b float64) (bob1, bob2 Point) {
	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)
	bob1 = Point{X: a * sa, Y: -a * ca}
	bob2 = Point{X: bob1.X + b*sb, Y: bob1.Y - b*cb}
	return bob1, bob2
}

// Trace is the Cartesian trajectory. Index i matches solution sample i
// and output frame i. A Trace is never modified after construction.
type Trace struct {
	X1, Y1, X2, Y2 []float64
}

// FromSolution transforms every sample of a successful solution.
func FromSolution(sol *dynamo.Solution) (*Trace, error) {
	if !sol.OK() {
		return nil, fmt.Errorf("kinematics: solution did not succeed")
	}
	n := len(sol.States)
	tr := &Trace{
		X1: make([]float64, n),
		Y1: make([]float64, n),
		X2: make([]float64, n),
		Y2: make([]float64, n),
	}
	for i, y := range sol.States {
		if len(y) != physics.StateDim {
			return nil, fmt.Errorf("%w: sample %d has %d components", dynamo.ErrDimensionMismatch, i, len(y))
		}
		p1, p2 := Positions(y[physics.IdxAlpha], y[physics.IdxBeta], y[physics.IdxA], y[physics.IdxB])
		tr.X1[i], tr.Y1[i] = p1.X, p1.Y
		tr.X2[i], tr.Y2[i] = p2.X, p2.Y
	}
	return tr, nil
}

func (t *Trace) Len() int { return len(t.X1) }

func (t *Trace) Bob1(i int) Point { return Point{t.X1[i], t.Y1[i]} }

func (t *Trace) Bob2(i int) Point { return Point{t.X2[i], t.Y2[i]} }

// Bounds is an axis-aligned viewport.
type Bounds struct {
	XMin, XMax, YMin, YMax float64
}

// Viewport computes the axis bounds from the global extent of both bobs
// over the whole trace, so every frame shares the same view. A maximum
// that comes out negative is replaced by 2.
func (t *Trace) Viewport() Bounds {
	b := Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
	}
	for _, xs := range [][]float64{t.X1, t.X2} {
		for _, v := range xs {
			b.XMin = math.Min(b.XMin, v)
			b.XMax = math.Max(b.XMax, v)
		}
	}
	for _, ys := range [][]float64{t.Y1, t.Y2} {
		for _, v := range ys {
			b.YMin = math.Min(b.YMin, v)
			b.YMax = math.Max(b.YMax, v)
		}
	}
	if t.Len() == 0 {
		return Bounds{XMin: -2, XMax: 2, YMin: -2, YMax: 2}
	}
	if b.XMax < 0 {
		b.XMax = 2
	}
	if b.YMax < 0 {
		b.YMax = 2
	}
	return b
}

// Inverse recovers (alpha, beta, a, b) from the two bob positions.
func Inverse(bob1, bob2 Point) (alpha, beta, a, b float64) {
	a = math.Hypot(bob1.X, bob1.Y)
	alpha = math.Atan2(bob1.X, -bob1.Y)
	dx, dy := bob2.X-bob1.X, bob2.Y-bob1.Y
	b = math.Hypot(dx, dy)
	beta = math.Atan2(dx, -dy)
	return alpha, beta, a, b
}
