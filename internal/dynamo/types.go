package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or time-dependent first-order ODE.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Stepper advances a system by one fixed step.
type Stepper interface {
	Step(dyn System, x State, t, dt float64) State
}

type Hamiltonian interface {
	Energy(x State) float64
}

// SingularityChecker is implemented by systems whose equations of motion
// are undefined on part of the state space. Singular returns a non-nil
// error wrapping ErrSingular when x lies there.
type SingularityChecker interface {
	Singular(x State) error
}

// Status of a finished integration.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failed"
}

// Solution is the grid-sampled output of an integration. States[i] is the
// state at Times[i]. Downstream stages must only consume a Solution whose
// Status is StatusSuccess.
type Solution struct {
	Times   []float64
	States  []State
	Method  string
	Status  Status
	Message string
	Steps   int
	Rejects int
	Evals   int
}

func (s *Solution) Len() int {
	return len(s.Times)
}

func (s *Solution) OK() bool {
	return s != nil && s.Status == StatusSuccess
}

// Column extracts component k of every sampled state.
func (s *Solution) Column(k int) []float64 {
	out := make([]float64, len(s.States))
	for i, x := range s.States {
		out[i] = x[k]
	}
	return out
}

// Grid returns the n evaluation instants i/fps for i in [0, n), where
// n = floor(tEnd*fps).
func Grid(tEnd, fps float64) []float64 {
	n := FrameCount(tEnd, fps)
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / fps
	}
	return times
}

// FrameCount is floor(tEnd*fps), tolerant of representation error in the
// product (2.0*24 must give 48, not 47).
func FrameCount(tEnd, fps float64) int {
	if tEnd <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Floor(tEnd*fps + 1e-9))
}
