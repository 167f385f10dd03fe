package integrators

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/elastipend/internal/dynamo"
)

const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 10.0
)

// Options controls Solve. Zero fields take the defaults of DefaultOptions.
type Options struct {
	Method string
	RTol   float64
	ATol   float64

	// FirstStep overrides the automatic initial step of adaptive methods.
	FirstStep float64
	// MinStep is the step size below which an adaptive run is abandoned.
	MinStep float64
	// MaxStep caps adaptive steps; zero means uncapped.
	MaxStep float64
	// MaxSteps bounds accepted plus rejected steps.
	MaxSteps int
	// FixedStep is the step of non-adaptive methods. Zero means one eighth
	// of the evaluation grid spacing.
	FixedStep float64
}

func DefaultOptions() Options {
	return Options{
		Method:   DefaultMethod,
		RTol:     1e-3,
		ATol:     1e-6,
		MinStep:  1e-12,
		MaxSteps: 1_000_000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Method == "" {
		o.Method = d.Method
	}
	if o.RTol <= 0 {
		o.RTol = d.RTol
	}
	if o.ATol <= 0 {
		o.ATol = d.ATol
	}
	if o.MinStep <= 0 {
		o.MinStep = d.MinStep
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = d.MaxSteps
	}
	return o
}

// Solve integrates dyn from x0 at times[0] and samples the state at every
// instant in times, which must be strictly increasing. Adaptive methods
// choose their own internal steps but always land exactly on each
// instant, so the result is deterministic for fixed inputs.
//
// On failure the returned Solution has StatusFailed, holds the samples
// reached so far, and the error is a *dynamo.SimulationError. Callers
// must not feed a failed Solution to later stages.
func Solve(ctx context.Context, dyn dynamo.System, x0 dynamo.State, times []float64, opts Options) (*dynamo.Solution, error) {
	opts = opts.withDefaults()

	tb, err := Get(opts.Method)
	if err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("integrators: empty evaluation grid")
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return nil, fmt.Errorf("integrators: evaluation grid not strictly increasing at %d", i)
		}
	}
	if len(x0) != dyn.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, system wants %d",
			dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}

	sol := &dynamo.Solution{
		Times:  append([]float64(nil), times...),
		States: make([]dynamo.State, 0, len(times)),
		Method: tb.Name,
	}

	fail := func(step int, t float64, x dynamo.State, cause error) (*dynamo.Solution, error) {
		sol.Status = dynamo.StatusFailed
		sol.Message = cause.Error()
		return sol, &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: cause}
	}

	checker, _ := dyn.(dynamo.SingularityChecker)
	check := func(x dynamo.State) error {
		if !x.IsValid() {
			return dynamo.ErrInvalidState
		}
		if checker != nil {
			return checker.Singular(x)
		}
		return nil
	}

	t := times[0]
	x := x0.Clone()
	if err := check(x); err != nil {
		return fail(0, t, x, err)
	}
	sol.States = append(sol.States, x.Clone())

	f := dyn.Derive(x, t)
	sol.Evals++
	if !f.IsValid() {
		return fail(0, t, x, fmt.Errorf("%w: derivative at initial state", dynamo.ErrInvalidState))
	}

	var h float64
	switch {
	case len(times) == 1:
		// nothing to integrate
	case tb.Adaptive() && opts.FirstStep > 0:
		h = opts.FirstStep
	case tb.Adaptive():
		h = initialStep(dyn, t, x, f, tb.ErrorOrder, opts)
		sol.Evals++
	case opts.FixedStep > 0:
		h = opts.FixedStep
	default:
		h = (times[1] - times[0]) / 8
	}
	if opts.MaxStep > 0 && h > opts.MaxStep {
		h = opts.MaxStep
	}

	exponent := -1.0 / float64(tb.ErrorOrder+1)
	attempts := 0

	for idx := 1; idx < len(times); idx++ {
		target := times[idx]

		for t < target {
			if err := ctx.Err(); err != nil {
				return fail(sol.Steps, t, x, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err))
			}
			if attempts >= opts.MaxSteps {
				return fail(sol.Steps, t, x, dynamo.ErrMaxSteps)
			}
			attempts++

			hStep := h
			landing := false
			if t+hStep*(1+1e-9) >= target {
				hStep = target - t
				landing = true
			}

			xNew, fNew, errEst := tb.step(dyn, x, f, t, hStep)
			sol.Evals += tb.Stages()
			finite := xNew.IsValid() && fNew.IsValid()

			errNorm := 0.0
			if tb.Adaptive() {
				if finite {
					errNorm = rmsNorm(errEst, x, xNew, opts.RTol, opts.ATol)
				} else {
					errNorm = math.Inf(1)
				}

				if errNorm > 1 {
					sol.Rejects++
					factor := minFactor
					if !math.IsInf(errNorm, 1) {
						factor = math.Max(minFactor, safety*math.Pow(errNorm, exponent))
					}
					h = hStep * factor
					if h < opts.MinStep {
						cause := dynamo.ErrStepTooSmall
						if !finite {
							return fail(sol.Steps, t, x, fmt.Errorf("%w (derivative diverged): h=%g", cause, h))
						}
						return fail(sol.Steps, t, x, fmt.Errorf("%w: h=%g", cause, h))
					}
					continue
				}
			} else if !finite {
				return fail(sol.Steps, t+hStep, xNew, dynamo.ErrInvalidState)
			}

			sol.Steps++
			if landing {
				t = target
			} else {
				t += hStep
			}
			x, f = xNew, fNew

			if err := check(x); err != nil {
				return fail(sol.Steps, t, x, err)
			}

			if tb.Adaptive() {
				factor := maxFactor
				if errNorm > 0 {
					factor = math.Min(maxFactor, safety*math.Pow(errNorm, exponent))
				}
				next := hStep * factor
				if landing && factor >= 1 && next < h {
					// a clipped landing step says nothing about the natural step
					next = h
				}
				h = next
				if opts.MaxStep > 0 && h > opts.MaxStep {
					h = opts.MaxStep
				}
			}
		}

		sol.States = append(sol.States, x.Clone())
	}

	sol.Status = dynamo.StatusSuccess
	sol.Message = "integration reached end of grid"
	return sol, nil
}

// rmsNorm is the root mean square of err scaled by atol + rtol*max(|x|,|xNew|).
func rmsNorm(errEst, x, xNew dynamo.State, rtol, atol float64) float64 {
	sum := 0.0
	for i := range errEst {
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		r := errEst[i] / scale
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

// initialStep picks a first step from the size of the state and its first
// two derivatives (Hairer, Norsett & Wanner, II.4).
func initialStep(dyn dynamo.System, t float64, x, f dynamo.State, errOrder int, opts Options) float64 {
	n := float64(len(x))
	var d0, d1 float64
	for i := range x {
		scale := opts.ATol + opts.RTol*math.Abs(x[i])
		d0 += (x[i] / scale) * (x[i] / scale)
		d1 += (f[i] / scale) * (f[i] / scale)
	}
	d0 = math.Sqrt(d0 / n)
	d1 = math.Sqrt(d1 / n)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}

	x1 := make(dynamo.State, len(x))
	for i := range x {
		x1[i] = x[i] + h0*f[i]
	}
	f1 := dyn.Derive(x1, t+h0)
	if !f1.IsValid() {
		return h0
	}

	var d2 float64
	for i := range x {
		scale := opts.ATol + opts.RTol*math.Abs(x[i])
		r := (f1[i] - f[i]) / scale
		d2 += r * r
	}
	d2 = math.Sqrt(d2/n) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/float64(errOrder+1))
	}
	return math.Min(100*h0, h1)
}
