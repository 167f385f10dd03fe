package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/elastipend/internal/dynamo"
	"github.com/san-kum/elastipend/internal/physics"
)

func linspace(n int, dt float64) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

func TestSolve_HarmonicAccuracy(t *testing.T) {
	times := linspace(64, 2*math.Pi/63)
	for _, method := range []string{"rk45", "rk23"} {
		t.Run(method, func(t *testing.T) {
			sol, err := Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, times,
				Options{Method: method, RTol: 1e-9, ATol: 1e-12})
			if err != nil {
				t.Fatal(err)
			}
			if !sol.OK() || len(sol.States) != len(times) {
				t.Fatalf("status %v with %d states", sol.Status, len(sol.States))
			}
			for i, x := range sol.States {
				if d := math.Abs(x[0] - math.Cos(times[i])); d > 1e-6 {
					t.Fatalf("t=%.3f: off by %e", times[i], d)
				}
			}
		})
	}
}

func TestSolve_FixedStepMethods(t *testing.T) {
	times := linspace(25, 1.0/24)
	sol, err := Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, times, Options{Method: "rk4"})
	if err != nil {
		t.Fatal(err)
	}
	if sol.Rejects != 0 {
		t.Errorf("fixed method rejected %d steps", sol.Rejects)
	}
	if sol.Steps != 24*8 {
		t.Errorf("steps = %d, want %d", sol.Steps, 24*8)
	}
	if d := math.Abs(sol.States[24][0] - math.Cos(1)); d > 1e-8 {
		t.Errorf("x(1) off by %e", d)
	}
}

func newPendulum(t *testing.T, mutate func(*physics.Params)) *physics.ElasticPendulum {
	t.Helper()
	p := physics.DefaultParams()
	p.K1, p.K2 = 45, 45
	if mutate != nil {
		mutate(&p)
	}
	m, err := physics.New(p)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSolve_Deterministic(t *testing.T) {
	m := newPendulum(t, func(p *physics.Params) { p.Alpha0, p.Beta0 = 1.2, -0.7 })
	times := dynamo.Grid(2, 24)

	a, err := Solve(context.Background(), m, m.InitialState(), times, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Solve(context.Background(), m, m.InitialState(), times, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.States {
		for k := range a.States[i] {
			if a.States[i][k] != b.States[i][k] {
				t.Fatalf("sample %d component %d differs: %v vs %v", i, k, a.States[i][k], b.States[i][k])
			}
		}
	}
}

func TestSolve_VerticalBounded(t *testing.T) {
	m := newPendulum(t, nil)
	times := dynamo.Grid(2, 24)

	sol, err := Solve(context.Background(), m, m.InitialState(), times, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.States) != 48 {
		t.Fatalf("got %d samples, want 48", len(sol.States))
	}
	for i, x := range sol.States {
		if x[physics.IdxAlpha] != 0 || x[physics.IdxBeta] != 0 {
			t.Fatalf("sample %d left the vertical: %v", i, x)
		}
		if x[physics.IdxA] <= 0 || x[physics.IdxA] > 6 || x[physics.IdxB] <= 0 || x[physics.IdxB] > 6 {
			t.Fatalf("sample %d spring lengths out of range: a=%v b=%v", i, x[physics.IdxA], x[physics.IdxB])
		}
	}
}

// In the vertical configuration the stage 2 radial equation carries a
// constant extra acceleration k1*l1/m1, so the invariant is the mechanical
// energy plus m2*(k1*l1/m1)*y2.
func TestSolve_VerticalEnergyBound(t *testing.T) {
	m := newPendulum(t, nil)
	p := m.Params()
	extra := p.K1 * p.L1 / p.M1

	invariant := func(x dynamo.State) float64 {
		y2 := -x[physics.IdxA] - x[physics.IdxB]
		return m.Energy(x) + p.M2*extra*y2
	}

	times := dynamo.Grid(2, 24)
	sol, err := Solve(context.Background(), m, m.InitialState(), times, Options{RTol: 1e-10, ATol: 1e-10})
	if err != nil {
		t.Fatal(err)
	}
	e0 := invariant(sol.States[0])
	for i, x := range sol.States {
		if d := math.Abs(invariant(x) - e0); d > 1e-6*math.Abs(e0) {
			t.Fatalf("sample %d: invariant drifted by %e", i, d)
		}
	}
}

func TestSolve_SingularInitialState(t *testing.T) {
	m := newPendulum(t, func(p *physics.Params) { p.A0 = 1e-9 })

	sol, err := Solve(context.Background(), m, m.InitialState(), dynamo.Grid(2, 24), DefaultOptions())
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, dynamo.ErrSingular) {
		t.Errorf("error %v does not wrap ErrSingular", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("error %T is not a SimulationError", err)
	}
	if sol.OK() {
		t.Error("failed solution reports success")
	}
	for _, x := range sol.States {
		if !x.IsValid() {
			t.Error("failed solution carries NaN samples")
		}
	}
}

func TestSolve_InvalidInput(t *testing.T) {
	m := newPendulum(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		x0    dynamo.State
		times []float64
		opts  Options
		is    error
	}{
		{"unknown method", m.InitialState(), []float64{0, 1}, Options{Method: "verlet"}, nil},
		{"empty grid", m.InitialState(), nil, DefaultOptions(), nil},
		{"non-increasing grid", m.InitialState(), []float64{0, 1, 1}, DefaultOptions(), nil},
		{"short state", dynamo.State{0, 0}, []float64{0, 1}, DefaultOptions(), dynamo.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Solve(ctx, m, tt.x0, tt.times, tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error %v does not wrap %v", err, tt.is)
			}
		})
	}
}

func TestSolve_MaxSteps(t *testing.T) {
	m := newPendulum(t, func(p *physics.Params) { p.Alpha0 = 2 })
	_, err := Solve(context.Background(), m, m.InitialState(), dynamo.Grid(2, 24), Options{MaxSteps: 5})
	if !errors.Is(err, dynamo.ErrMaxSteps) {
		t.Errorf("got %v, want ErrMaxSteps", err)
	}
}

func TestSolve_Canceled(t *testing.T) {
	m := newPendulum(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := Solve(ctx, m, m.InitialState(), dynamo.Grid(2, 24), DefaultOptions())
	if !errors.Is(err, dynamo.ErrContextCanceled) || !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
	if sol.Status != dynamo.StatusFailed {
		t.Errorf("status = %v", sol.Status)
	}
}

func TestSolve_SinglePoint(t *testing.T) {
	sol, err := Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, []float64{0}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.States) != 1 || sol.Steps != 0 {
		t.Errorf("states=%d steps=%d", len(sol.States), sol.Steps)
	}
}
