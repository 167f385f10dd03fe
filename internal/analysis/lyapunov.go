package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/elastipend/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Two trajectories start perturbation apart in component 0 and are
// stepped at a fixed dt. After every step the perturbed one is pulled
// back to distance d0 along the separation vector, and the stretch is
// accumulated:
//
//	lambda ≈ (1/T) * sum ln(|δx_k| / d0)
func LyapunovExponent(
	dyn dynamo.System,
	stepper dynamo.Stepper,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) (float64, error) {
	if len(x0) == 0 {
		return 0, fmt.Errorf("empty initial state")
	}
	if !(dt > 0) || !(duration > 0) || !(perturbation > 0) {
		return 0, fmt.Errorf("dt, duration and perturbation must be positive")
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation
	d0 := perturbation

	t := 0.0
	sumLog := 0.0

	for t < duration {
		x = stepper.Step(dyn, x, t, dt)
		xp = stepper.Step(dyn, xp, t, dt)
		t += dt

		if !x.IsValid() || !xp.IsValid() {
			return 0, fmt.Errorf("%w at t=%.4f", dynamo.ErrInvalidState, t)
		}

		delta := xp.Sub(x)
		sep := delta.Norm()
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		// pull the companion back to distance d0 along the same direction
		xp = x.Add(delta.Scale(d0 / sep))
	}

	return sumLog / t, nil
}
