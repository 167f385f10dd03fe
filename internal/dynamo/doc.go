// Package dynamo provides the core primitives shared by the spring
// pendulum pipeline.
//
// The package defines the vocabulary every other stage speaks:
//
//   - [State]: vector representing the generalized coordinates and rates
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X, t))
//   - [SingularityChecker]: systems that can report a state they cannot evaluate
//   - [Solution]: the immutable, grid-sampled output of an integration
//
// # Example
//
//	model, _ := physics.New(physics.DefaultParams())
//	sol, err := integrators.Solve(ctx, model, model.InitialState(), grid, opts)
//	if err != nil {
//	    // sol must not be rendered
//	}
//
// # Thread Safety
//
// A [Solution] is never mutated after Solve returns, so it may be shared
// freely between render workers.
package dynamo
