package instance

import (
	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
)

// MEInstance specializes Instance for the Model-Exchange variant (C5): state
// vector access, event indicators, and the discrete-event iteration
// primitives the ME→CS adapter drives.
type MEInstance struct {
	*Instance

	// eventInfo is the owned, ABI-out-parameter-mutated struct described in
	// spec.md §9: mutated only by NewDiscreteStates.
	eventInfo cabi.EventInfo
}

// NewMEInstance instantiates a Model-Exchange component.
func NewMEInstance(lib cabi.Backend, args *MEArgs) (*MEInstance, error) {
	i, err := New(lib, args.Resource, args.ModelDescription, cabi.KindModelExchange, args.InstanceName, args.LogCategories...)
	if err != nil {
		return nil, err
	}
	return &MEInstance{Instance: i}, nil
}

// ExitInitializationMode lands an ME instance in EventMode, per the FMI 2.0
// standard's implicit "ME components enter Event Mode after initialization"
// rule; the ME→CS adapter runs the discrete-event fix-point immediately
// after calling this.
func (m *MEInstance) ExitInitializationMode() error {
	return m.exitInitializationMode("ExitInitializationModeME")
}

// EventInfo returns the current cached event info, last updated by
// NewDiscreteStates.
func (m *MEInstance) EventInfo() cabi.EventInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventInfo
}

// SetTime calls fmi2SetTime. Must be called before any GetDerivatives or
// GetEventIndicators call that expects the new time to take effect.
func (m *MEInstance) SetTime(t float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("SetTime"); err != nil {
		return err
	}
	status := m.lib.SetTime(m.component, t)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetTime", status)
	}
	return nil
}

// SetContinuousStates calls fmi2SetContinuousStates.
func (m *MEInstance) SetContinuousStates(x []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("SetContinuousStates"); err != nil {
		return err
	}
	status := m.lib.SetContinuousStates(m.component, x)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetContinuousStates", status)
	}
	return nil
}

// GetContinuousStates calls fmi2GetContinuousStates.
func (m *MEInstance) GetContinuousStates(x []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("GetContinuousStates"); err != nil {
		return err
	}
	status := m.lib.GetContinuousStates(m.component, x)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetContinuousStates", status)
	}
	return nil
}

// GetEventIndicators calls fmi2GetEventIndicators.
func (m *MEInstance) GetEventIndicators(z []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("GetEventIndicators"); err != nil {
		return err
	}
	status := m.lib.GetEventIndicators(m.component, z)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetEventIndicators", status)
	}
	return nil
}

// GetDerivatives calls fmi2GetDerivatives.
func (m *MEInstance) GetDerivatives(dx []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("GetDerivatives"); err != nil {
		return err
	}
	status := m.lib.GetDerivatives(m.component, dx)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetDerivatives", status)
	}
	return nil
}

// GetNominalsOfContinuousStates calls fmi2GetNominalsOfContinuousStates.
func (m *MEInstance) GetNominalsOfContinuousStates(xNominal []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("GetNominalsOfContinuousStates"); err != nil {
		return err
	}
	status := m.lib.GetNominalsOfContinuousStates(m.component, xNominal)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetNominalsOfContinuousStates", status)
	}
	return nil
}

// EnterEventMode calls fmi2EnterEventMode.
func (m *MEInstance) EnterEventMode() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("EnterEventMode"); err != nil {
		return err
	}
	next, err := checkTransition(m.state, "EnterEventMode")
	if err != nil {
		return err
	}
	status := m.lib.EnterEventMode(m.component)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("EnterEventMode", status)
	}
	m.state = next
	return nil
}

// EnterContinuousTimeMode calls fmi2EnterContinuousTimeMode.
func (m *MEInstance) EnterContinuousTimeMode() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("EnterContinuousTimeMode"); err != nil {
		return err
	}
	next, err := checkTransition(m.state, "EnterContinuousTimeMode")
	if err != nil {
		return err
	}
	status := m.lib.EnterContinuousTimeMode(m.component)
	m.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("EnterContinuousTimeMode", status)
	}
	m.state = next
	return nil
}

// NewDiscreteStates calls fmi2NewDiscreteStates, mutating the owned
// EventInfo, and returns it for the adapter's fix-point loop condition.
func (m *MEInstance) NewDiscreteStates() (cabi.EventInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("NewDiscreteStates"); err != nil {
		return cabi.EventInfo{}, err
	}
	if _, err := checkTransition(m.state, "NewDiscreteStates"); err != nil {
		return cabi.EventInfo{}, err
	}
	ei, status := m.lib.NewDiscreteStates(m.component)
	m.record(status)
	m.eventInfo = ei
	if status.Failed() {
		return ei, fmierr.NewAbiError("NewDiscreteStates", status)
	}
	return ei, nil
}

// CompletedIntegratorStep calls fmi2CompletedIntegratorStep. If the
// description sets completedIntegratorStepNotNeeded, the adapter must skip
// calling this entirely (spec.md §4.6 step 6), not call it and ignore the
// result.
func (m *MEInstance) CompletedIntegratorStep(noSetFMUStatePrior bool) (enterEventMode, terminate bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.guard("CompletedIntegratorStep"); err != nil {
		return false, false, err
	}
	if _, terr := checkTransition(m.state, "CompletedIntegratorStep"); terr != nil {
		return false, false, terr
	}
	enter, term, status := m.lib.CompletedIntegratorStep(m.component, noSetFMUStatePrior)
	m.record(status)
	if status.Failed() {
		return enter, term, fmierr.NewAbiError("CompletedIntegratorStep", status)
	}
	return enter, term, nil
}

// NumberOfContinuousStates is a convenience accessor onto the description.
func (m *MEInstance) NumberOfContinuousStates() int {
	return m.desc.ModelExchange.NumberOfContinuousStates
}

// NumberOfEventIndicators is a convenience accessor onto the description.
func (m *MEInstance) NumberOfEventIndicators() int {
	return m.desc.ModelExchange.NumberOfEventIndicators
}

// CompletedIntegratorStepNotNeeded reports whether the adapter must skip
// calling CompletedIntegratorStep.
func (m *MEInstance) CompletedIntegratorStepNotNeeded() bool {
	return m.desc.ModelExchange.CompletedIntegratorStepNotNeeded
}
