package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/elastipend/internal/dynamo"
)

// SingularLength is the spring length below which a state is treated as
// singular.
const SingularLength = 1e-6

// State vector layout.
const (
	IdxAlpha = iota
	IdxAlphaDot
	IdxBeta
	IdxBetaDot
	IdxA
	IdxADot
	IdxB
	IdxBDot

	StateDim
)

// ElasticPendulum is a double pendulum whose links are ideal springs.
// It is immutable after construction and safe for concurrent use.
type ElasticPendulum struct {
	p Params
}

// New validates p and returns the model.
func New(p Params) (*ElasticPendulum, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &ElasticPendulum{p: p}, nil
}

func (e *ElasticPendulum) Params() Params { return e.p }

func (e *ElasticPendulum) StateDim() int { return StateDim }

// InitialState is (alpha0, 0, beta0, 0, a0, 0, b0, 0).
func (e *ElasticPendulum) InitialState() dynamo.State {
	return dynamo.State{e.p.Alpha0, 0, e.p.Beta0, 0, e.p.A0, 0, e.p.B0, 0}
}

// Derive returns dY/dt. The system is autonomous; t is ignored.
func (e *ElasticPendulum) Derive(y dynamo.State, _ float64) dynamo.State {
	alpha, alphaDot := y[IdxAlpha], y[IdxAlphaDot]
	beta, betaDot := y[IdxBeta], y[IdxBetaDot]
	a, aDot := y[IdxA], y[IdxADot]
	b, bDot := y[IdxB], y[IdxBDot]

	g := e.p.G
	l1, l2 := e.p.L1, e.p.L2
	m1, m2 := e.p.M1, e.p.M2
	k1, k2 := e.p.K1, e.p.K2

	sinD, cosD := math.Sincos(alpha - beta)

	alphaDDot := -(g*m1*math.Sin(alpha) - k2*l2*sinD + k2*b*sinD + 2*m1*aDot*alphaDot) / (m1 * a)

	betaDDot := (-k1*l1*sinD + k1*a*sinD - 2*m1*bDot*betaDot) / (m1 * b)

	aDDot := (k1*l1 + g*m1*math.Cos(alpha) - k2*l2*cosD + k2*b*cosD + a*(-k1+m1*alphaDot*alphaDot)) / m1

	bDDot := (k2*l2*m1 + k2*l2*m2*cosD + k1*m2*a*cosD - b*(k2*(m1+m2)-m1*m2*betaDot*betaDot)) / (m1 * m2)

	return dynamo.State{alphaDot, alphaDDot, betaDot, betaDDot, aDot, aDDot, bDot, bDDot}
}

// Singular reports states where Derive divides by a spring length that is
// (nearly) zero.
func (e *ElasticPendulum) Singular(y dynamo.State) error {
	if len(y) != StateDim {
		return fmt.Errorf("%w: got %d components, want %d", dynamo.ErrDimensionMismatch, len(y), StateDim)
	}
	if a := y[IdxA]; math.Abs(a) < SingularLength {
		return fmt.Errorf("%w: spring 1 length a=%g", dynamo.ErrSingular, a)
	}
	if b := y[IdxB]; math.Abs(b) < SingularLength {
		return fmt.Errorf("%w: spring 2 length b=%g", dynamo.ErrSingular, b)
	}
	return nil
}

// Energy is the mechanical energy: kinetic energy of both bobs, gravity
// (zero at the pivot height) and the elastic energy of both springs.
func (e *ElasticPendulum) Energy(y dynamo.State) float64 {
	alpha, alphaDot := y[IdxAlpha], y[IdxAlphaDot]
	beta, betaDot := y[IdxBeta], y[IdxBetaDot]
	a, aDot := y[IdxA], y[IdxADot]
	b, bDot := y[IdxB], y[IdxBDot]

	sa, ca := math.Sincos(alpha)
	sb, cb := math.Sincos(beta)

	vx1 := aDot*sa + a*alphaDot*ca
	vy1 := -aDot*ca + a*alphaDot*sa
	vx2 := vx1 + bDot*sb + b*betaDot*cb
	vy2 := vy1 - bDot*cb + b*betaDot*sb

	y1 := -a * ca
	y2 := y1 - b*cb

	ke := 0.5*e.p.M1*(vx1*vx1+vy1*vy1) + 0.5*e.p.M2*(vx2*vx2+vy2*vy2)
	pe := e.p.G * (e.p.M1*y1 + e.p.M2*y2)
	se := 0.5*e.p.K1*(a-e.p.L1)*(a-e.p.L1) + 0.5*e.p.K2*(b-e.p.L2)*(b-e.p.L2)
	return ke + pe + se
}

// GetParams exposes the constants by name for summaries and the run catalog.
func (e *ElasticPendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"g":      e.p.G,
		"l1":     e.p.L1,
		"l2":     e.p.L2,
		"m1":     e.p.M1,
		"m2":     e.p.M2,
		"k1":     e.p.K1,
		"k2":     e.p.K2,
		"alpha0": e.p.Alpha0,
		"beta0":  e.p.Beta0,
	}
}
