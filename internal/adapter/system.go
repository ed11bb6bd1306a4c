package adapter

import "github.com/fmi4go/fmi2/internal/instance"

// odeSystem is the ODE right-hand side the adapter exposes to a
// solver.Integrator: evaluating it pushes x and t into the ME instance and
// reads back the derivatives (spec.md §4.6). It is reentrant across an
// Integrate call's sub-steps since it holds no state of its own beyond the
// instance pointer.
type odeSystem struct {
	me *instance.MEInstance
}

// Eval implements solver.System.
func (s *odeSystem) Eval(x, dx []float64, t float64) error {
	if err := s.me.SetTime(t); err != nil {
		return err
	}
	if err := s.me.SetContinuousStates(x); err != nil {
		return err
	}
	return s.me.GetDerivatives(dx)
}
