package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/elastipend/internal/dynamo"
)

type oscillator struct{}

func (oscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(oscillator{})

	m.Observe(dynamo.State{1, 0})
	m.Observe(dynamo.State{0, 1})
	if m.Value() != 0 {
		t.Errorf("conserved energy reported drift %v", m.Value())
	}

	m.Observe(dynamo.State{0, math.Sqrt(1.2)})
	if math.Abs(m.Value()-0.2) > 1e-12 {
		t.Errorf("drift = %v, want 0.2", m.Value())
	}
}

func TestSummarize(t *testing.T) {
	sol := &dynamo.Solution{
		States: []dynamo.State{{2, 0}, {0, 2}, {0, 0}},
		Status: dynamo.StatusSuccess,
	}
	s := Summarize(oscillator{}, sol)
	if s.Initial != 2 || s.Min != 0 || s.Max != 2 {
		t.Errorf("summary %+v", s)
	}
	if math.Abs(s.Mean-4.0/3) > 1e-12 {
		t.Errorf("mean = %v", s.Mean)
	}
	if s.Drift != 1 {
		t.Errorf("drift = %v, want 1", s.Drift)
	}
	if got := EnergySeries(oscillator{}, sol); len(got) != 3 || got[1] != 2 {
		t.Errorf("series = %v", got)
	}
	if (Summarize(oscillator{}, &dynamo.Solution{})) != (Summary{}) {
		t.Error("empty solution should give zero summary")
	}
}
