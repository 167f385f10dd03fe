package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrSingular indicates the state reached a point where the equations of
	// motion divide by (nearly) zero.
	ErrSingular = errors.New("dynamo: singular state (equations of motion diverge)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the solver exhausted its step budget.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted before reaching end time")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ParamError reports a single rejected parameter. It unwraps to
// ErrParameterBounds.
type ParamError struct {
	Name  string
	Value float64
	Rule  string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%v: %s=%g (%s)", ErrParameterBounds, e.Name, e.Value, e.Rule)
}

func (e *ParamError) Unwrap() error {
	return ErrParameterBounds
}
