// Package physics provides the elastic double pendulum model.
//
// The two rigid links of a classic double pendulum are replaced by ideal
// springs, so each stage has a radial degree of freedom alongside its
// angle. [ElasticPendulum] implements [dynamo.System] over the state
//
//	(alpha, alpha_dot, beta, beta_dot, a, a_dot, b, b_dot)
//
// where alpha and beta are measured from the downward vertical and a, b
// are the instantaneous spring lengths.
//
// # Singularity
//
// The angular accelerations divide by a and b. As either spring length
// approaches zero the derivative diverges; this is a property of the
// polar formulation, not a numerical bug. Derive does not clamp. Instead
// the model implements [dynamo.SingularityChecker] so the integrator can
// stop with [dynamo.ErrSingular] before the blow-up reaches a trace.
package physics
