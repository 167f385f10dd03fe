package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/elastipend/internal/dynamo"
)

// Tableau is an explicit Runge-Kutta method in Butcher form. Methods with
// error weights E are adaptive; the rest are stepped at a fixed size.
//
// When len(E) == len(B)+1 the last weight applies to f(t+h, y_new), the
// first-same-as-last stage of Dormand-Prince and Bogacki-Shampine.
type Tableau struct {
	Name string
	C    []float64
	A    [][]float64
	B    []float64
	E    []float64

	// ErrorOrder is the order of the embedded estimate; step size control
	// scales by errNorm^(-1/(ErrorOrder+1)).
	ErrorOrder int
}

func (tb *Tableau) Adaptive() bool { return len(tb.E) > 0 }

func (tb *Tableau) Stages() int { return len(tb.B) }

// Step advances x by dt and discards the error estimate.
func (tb *Tableau) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	xNew, _, _ := tb.step(dyn, x, dyn.Derive(x, t), t, dt)
	return xNew
}

// step takes one step from (t, x) with k1 = f0 supplied by the caller. It
// returns the new state, f(t+dt, xNew) for reuse as the next k1, and the
// local error estimate (nil for fixed methods).
func (tb *Tableau) step(dyn dynamo.System, x, f0 dynamo.State, t, dt float64) (xNew, fNew, errEst dynamo.State) {
	n := len(x)
	s := len(tb.B)

	k := make([]dynamo.State, s)
	k[0] = f0

	xi := make(dynamo.State, n)
	for i := 1; i < s; i++ {
		for d := 0; d < n; d++ {
			acc := 0.0
			for j := 0; j < i; j++ {
				acc += tb.A[i][j] * k[j][d]
			}
			xi[d] = x[d] + dt*acc
		}
		k[i] = dyn.Derive(xi, t+tb.C[i]*dt)
	}

	xNew = make(dynamo.State, n)
	for d := 0; d < n; d++ {
		acc := 0.0
		for j := 0; j < s; j++ {
			acc += tb.B[j] * k[j][d]
		}
		xNew[d] = x[d] + dt*acc
	}

	fNew = dyn.Derive(xNew, t+dt)

	if !tb.Adaptive() {
		return xNew, fNew, nil
	}

	errEst = make(dynamo.State, n)
	for d := 0; d < n; d++ {
		acc := 0.0
		for j := 0; j < s; j++ {
			acc += tb.E[j] * k[j][d]
		}
		if len(tb.E) > s {
			acc += tb.E[s] * fNew[d]
		}
		errEst[d] = dt * acc
	}
	return xNew, fNew, errEst
}

var registry = map[string]func() *Tableau{
	"rk45":  NewRK45,
	"rk23":  NewRK23,
	"rk4":   NewRK4,
	"euler": NewEuler,
}

// DefaultMethod is the 4th/5th order Dormand-Prince pair.
const DefaultMethod = "rk45"

// Get returns the named method. Names are case-insensitive.
func Get(name string) (*Tableau, error) {
	if name == "" {
		name = DefaultMethod
	}
	fn, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %s)", name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// Names lists the registered methods in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
