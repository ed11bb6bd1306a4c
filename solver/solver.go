// Package solver defines the narrow ODE-integration contract the ME→CS
// adapter (internal/adapter) consumes, plus a default fixed-step explicit
// Euler implementation sufficient to exercise and test the adapter end to
// end. Production-grade solvers are out of scope per spec.md's Non-goals;
// callers that need one can implement Integrator themselves.
package solver

// System is the ODE right-hand side the adapter exposes to a solver: given
// the current state x and time t, fill dx with the derivatives. It must be
// safe to call arbitrarily many times within one Integrate call (spec.md §4.6).
type System interface {
	Eval(x []float64, dx []float64, t float64) error
}

// Integrator advances System's state from t to tNext, returning the time it
// actually reached (t ≤ tReached ≤ tNext). x is both input and output: it
// holds the state at t on entry and must hold the state at tReached on
// return.
type Integrator interface {
	Integrate(sys System, x []float64, t, tNext float64) (tReached float64, err error)
}
