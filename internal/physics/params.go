package physics

import (
	"math"
	"math/rand"

	"github.com/san-kum/elastipend/internal/dynamo"
)

const (
	DefaultGravity = 9.81
	DefaultLength  = 1.0
	DefaultMass    = 1.0
	DefaultSpring  = 45.0

	// Spring constants drawn when none is given.
	MinRandomSpring = 35.0
	MaxRandomSpring = 55.0
)

// Params holds the physical constants and initial conditions of one run.
type Params struct {
	G      float64
	L1, L2 float64
	M1, M2 float64
	K1, K2 float64

	Alpha0, Beta0 float64
	A0, B0        float64
}

// DefaultParams is the pendulum hanging at rest with both springs at
// their natural length.
func DefaultParams() Params {
	return Params{
		G:  DefaultGravity,
		L1: DefaultLength, L2: DefaultLength,
		M1: DefaultMass, M2: DefaultMass,
		K1: DefaultSpring, K2: DefaultSpring,
		A0: DefaultLength, B0: DefaultLength,
	}
}

// Validate rejects non-positive masses, lengths and spring constants and
// any non-finite value.
func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"m1", p.M1}, {"m2", p.M2},
		{"l1", p.L1}, {"l2", p.L2},
		{"k1", p.K1}, {"k2", p.K2},
	}
	for _, f := range positive {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return &dynamo.ParamError{Name: f.name, Value: f.v, Rule: "must be finite and > 0"}
		}
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"g", p.G}, {"alpha0", p.Alpha0}, {"beta0", p.Beta0}, {"a0", p.A0}, {"b0", p.B0},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &dynamo.ParamError{Name: f.name, Value: f.v, Rule: "must be finite"}
		}
	}
	return nil
}

// RandomAngle draws an initial displacement uniformly from [-π, π].
func RandomAngle(rng *rand.Rand) float64 {
	return -math.Pi + 2*math.Pi*rng.Float64()
}

// RandomSpring draws a spring constant uniformly from
// [MinRandomSpring, MaxRandomSpring].
func RandomSpring(rng *rand.Rand) float64 {
	return MinRandomSpring + (MaxRandomSpring-MinRandomSpring)*rng.Float64()
}
