package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	sum := a.Add(b)
	if sum[0] != 5 || sum[1] != 7 || sum[2] != 9 {
		t.Errorf("Add = %v", sum)
	}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub = %v", diff)
	}

	scaled := a.Scale(2)
	if scaled[0] != 2 || scaled[1] != 4 || scaled[2] != 6 {
		t.Errorf("Scale = %v", scaled)
	}

	clone := a.Clone()
	clone[0] = 100
	if a[0] != 1 {
		t.Error("Clone shares backing array")
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		tEnd, fps float64
		want      int
	}{
		{2, 24, 48},
		{15, 24, 360},
		{0.1, 30, 3},
		{1.05, 10, 10},
		{0, 24, 0},
		{2, 0, 0},
	}

	for _, tt := range tests {
		if got := FrameCount(tt.tEnd, tt.fps); got != tt.want {
			t.Errorf("FrameCount(%v, %v) = %d, want %d", tt.tEnd, tt.fps, got, tt.want)
		}
	}
}

func TestGrid(t *testing.T) {
	g := Grid(2, 24)
	if len(g) != 48 {
		t.Fatalf("expected 48 instants, got %d", len(g))
	}
	if g[0] != 0 {
		t.Errorf("grid must start at 0, got %v", g[0])
	}
	if math.Abs(g[47]-47.0/24.0) > 1e-12 {
		t.Errorf("last instant = %v", g[47])
	}
}

func TestErrorsUnwrap(t *testing.T) {
	simErr := &SimulationError{Step: 3, Time: 0.5, Wrapped: ErrStepTooSmall}
	if !errors.Is(simErr, ErrStepTooSmall) {
		t.Error("SimulationError should unwrap to its cause")
	}

	pErr := &ParamError{Name: "m1", Value: -1, Rule: "must be > 0"}
	if !errors.Is(pErr, ErrParameterBounds) {
		t.Error("ParamError should unwrap to ErrParameterBounds")
	}
}

func TestSolutionColumn(t *testing.T) {
	sol := &Solution{
		Times:  []float64{0, 1},
		States: []State{{1, 2}, {3, 4}},
		Status: StatusSuccess,
	}
	col := sol.Column(1)
	if col[0] != 2 || col[1] != 4 {
		t.Errorf("Column(1) = %v", col)
	}
	if !sol.OK() {
		t.Error("expected OK solution")
	}
	var nilSol *Solution
	if nilSol.OK() {
		t.Error("nil solution must not be OK")
	}
}
