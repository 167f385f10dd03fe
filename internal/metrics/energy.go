// Package metrics summarizes a finished integration.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/elastipend/internal/dynamo"
)

// EnergyDrift tracks the largest relative deviation of a system's energy
// from its value at the first observed state.
type EnergyDrift struct {
	initialEnergy float64
	maxDrift      float64
	samples       int
	sys           dynamo.Hamiltonian
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{sys: sys}
}

func (e *EnergyDrift) Observe(x dynamo.State) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// EnergySeries evaluates the energy at every sample of sol.
func EnergySeries(sys dynamo.Hamiltonian, sol *dynamo.Solution) []float64 {
	out := make([]float64, len(sol.States))
	for i, x := range sol.States {
		out[i] = sys.Energy(x)
	}
	return out
}

// Drift is the maximum relative deviation of sol's energy from its
// initial value.
func Drift(sys dynamo.Hamiltonian, sol *dynamo.Solution) float64 {
	d := NewEnergyDrift(sys)
	for _, x := range sol.States {
		d.Observe(x)
	}
	return d.Value()
}

// Summary describes an energy series.
type Summary struct {
	Initial float64
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
	Drift   float64
}

func Summarize(sys dynamo.Hamiltonian, sol *dynamo.Solution) Summary {
	series := EnergySeries(sys, sol)
	if len(series) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(series, nil)
	return Summary{
		Initial: series[0],
		Min:     floats.Min(series),
		Max:     floats.Max(series),
		Mean:    mean,
		StdDev:  std,
		Drift:   Drift(sys, sol),
	}
}
