package solver

// Euler is a fixed-step explicit-Euler Integrator, grounded on the
// driver's EulerSolver: x[n+1] = x[n] + h*f(x[n], t[n]), stepping by exactly
// StepSize each iteration except for a final partial step that lands
// exactly on tNext.
type Euler struct {
	StepSize float64
}

// NewEuler returns a fixed-step explicit-Euler Integrator.
func NewEuler(stepSize float64) *Euler {
	return &Euler{StepSize: stepSize}
}

// Integrate advances x from t to tNext by repeated fixed-size Euler steps.
func (e *Euler) Integrate(sys System, x []float64, t, tNext float64) (float64, error) {
	dx := make([]float64, len(x))
	time := t

	for time < tNext {
		h := e.StepSize
		if time+h > tNext {
			h = tNext - time
		}

		if err := sys.Eval(x, dx, time); err != nil {
			return time, err
		}
		for i := range x {
			x[i] += h * dx[i]
		}
		time += h
	}

	return time, nil
}
