// Package analysis characterizes a computed pendulum trajectory.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of one
//     state component sampled at the frame rate
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PhasePortrait]: 2D phase space projection of a solution
//   - [PoincareSectionOf]: section of phase space at an upward crossing
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(model, integrators.NewRK4(), x0, 1e-3, 10, 1e-8)
//	if err == nil && lambda > 0 {
//	    // trajectory is chaotic
//	}
package analysis
