package instance

import (
	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
)

// CoSimInstance specializes Instance for the Co-Simulation variant (C4):
// doStep, step cancellation, and the cached simulationTime += stepSize
// bookkeeping on success.
type CoSimInstance struct {
	*Instance
}

// NewCoSimInstance instantiates a Co-Simulation component.
func NewCoSimInstance(lib cabi.Backend, desc *CoSimArgs) (*CoSimInstance, error) {
	i, err := New(lib, desc.Resource, desc.ModelDescription, cabi.KindCoSimulation, desc.InstanceName, desc.LogCategories...)
	if err != nil {
		return nil, err
	}
	return &CoSimInstance{Instance: i}, nil
}

// ExitInitializationMode lands in StepComplete for a Co-Sim instance.
func (c *CoSimInstance) ExitInitializationMode() error {
	return c.exitInitializationMode("ExitInitializationModeCoSim")
}

// DoStep delegates to fmi2DoStep(currentTime, stepSize,
// noSetFMUStatePriorToCurrentPoint=true) per spec.md §4.4. Returns false
// with no error if the ABI reports Discard, Error or Fatal — the boolean
// contract doStep shares with the ME→CS adapter; an error is returned only
// when the call is rejected before reaching the ABI (Fatal-sticky rule or an
// illegal state).
func (c *CoSimInstance) DoStep(stepSize float64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("DoStep"); err != nil {
		return false, err
	}
	if _, err := checkTransition(c.state, "DoStep"); err != nil {
		return false, err
	}

	status := c.lib.DoStep(c.component, c.simulationTime, stepSize, true)
	c.record(status)
	if status.Failed() {
		return false, nil
	}
	c.simulationTime += stepSize
	return true, nil
}

// CancelStep calls fmi2CancelStep. Only meaningful, per spec.md §5, if the
// description advertises canRunAsynchronously; callers should check that
// capability themselves since cancellation is inherently racing an
// in-flight DoStep on another goroutine.
func (c *CoSimInstance) CancelStep() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.guard("CancelStep"); err != nil {
		return err
	}
	status := c.lib.CancelStep(c.component)
	c.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("CancelStep", status)
	}
	return nil
}

// CanRunAsynchronously reports whether cancelStep is meaningful for this FMU.
func (c *CoSimInstance) CanRunAsynchronously() bool {
	return c.desc.CoSimulation != nil && c.desc.CoSimulation.CanRunAsynchronously
}
