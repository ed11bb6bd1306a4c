package adapter

import (
	"runtime/cgo"

	"github.com/fmi4go/fmi2/internal/cabi"
)

// fakeMEBackend is a Go struct satisfying cabi.Backend, standing in for a
// dlopen'd Model-Exchange shared object so the adapter's outer-loop logic
// can be exercised without a compiled FMU binary (SPEC_FULL.md §8).
//
// It models a trivial ODE dx/dt = rate (constant), so the exact trajectory
// reached by any fixed-step integrator is predictable, and an event
// indicator z(x) = x - threshold, so sign flips can be engineered by
// choosing rate/threshold/step sizes.
type fakeMEBackend struct {
	x    []float64
	time float64
	rate float64

	threshold  float64
	nz         int
	hasIndicator bool

	eventInfoSequence []cabi.EventInfo
	newDiscreteStatesCalls int

	enterEventModeCalls int
	getDerivativesCalls int
	getRealCalls        int

	completedIntegratorStepStatus    cabi.Status
	completedIntegratorStepEnter     bool
	completedIntegratorStepTerminate bool
}

func newFakeMEBackend(nx, nz int, rate float64) *fakeMEBackend {
	return &fakeMEBackend{
		x:                              make([]float64, nx),
		rate:                           rate,
		nz:                             nz,
		hasIndicator:                   nz > 0,
		completedIntegratorStepStatus: cabi.StatusOK,
	}
}

// nextEventInfo returns the EventInfo for the call-th (0-based)
// newDiscreteStates invocation, clamped to the last configured entry.
func (f *fakeMEBackend) nextEventInfo() cabi.EventInfo {
	if len(f.eventInfoSequence) == 0 {
		return cabi.EventInfo{}
	}
	idx := f.newDiscreteStatesCalls
	if idx >= len(f.eventInfoSequence) {
		idx = len(f.eventInfoSequence) - 1
	}
	return f.eventInfoSequence[idx]
}

func (f *fakeMEBackend) Instantiate(instanceName string, kind cabi.Kind, guid, resourceLocation string, logger cabi.LoggerFunc, visible, loggingOn bool) (cabi.Component, cgo.Handle, error) {
	return 1, 0, nil
}

func (f *fakeMEBackend) SetupExperiment(c cabi.Component, toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) cabi.Status {
	f.time = startTime
	return cabi.StatusOK
}
func (f *fakeMEBackend) EnterInitializationMode(c cabi.Component) cabi.Status { return cabi.StatusOK }
func (f *fakeMEBackend) ExitInitializationMode(c cabi.Component) cabi.Status  { return cabi.StatusOK }
func (f *fakeMEBackend) Terminate(c cabi.Component) cabi.Status              { return cabi.StatusOK }
func (f *fakeMEBackend) Reset(c cabi.Component) cabi.Status                  { return cabi.StatusOK }
func (f *fakeMEBackend) FreeInstance(c cabi.Component, logger cgo.Handle)    {}

func (f *fakeMEBackend) DoStep(c cabi.Component, currentTime, stepSize float64, noSetPrior bool) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) CancelStep(c cabi.Component) cabi.Status { return cabi.StatusOK }

func (f *fakeMEBackend) GetReal(c cabi.Component, vr []uint32, out []float64) cabi.Status {
	f.getRealCalls++
	for i := range vr {
		out[i] = f.x[0]
	}
	return cabi.StatusOK
}
func (f *fakeMEBackend) SetReal(c cabi.Component, vr []uint32, values []float64) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) GetInteger(c cabi.Component, vr []uint32, out []int32) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) SetInteger(c cabi.Component, vr []uint32, values []int32) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) GetBoolean(c cabi.Component, vr []uint32, out []bool) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) SetBoolean(c cabi.Component, vr []uint32, values []bool) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) GetString(c cabi.Component, vr []uint32, out []string) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) SetString(c cabi.Component, vr []uint32, values []string) cabi.Status {
	return cabi.StatusOK
}

func (f *fakeMEBackend) GetFMUstate(c cabi.Component) (cabi.FMUstate, cabi.Status) {
	return nil, cabi.StatusOK
}
func (f *fakeMEBackend) SetFMUstate(c cabi.Component, s cabi.FMUstate) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) FreeFMUstate(c cabi.Component, s cabi.FMUstate) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeMEBackend) SerializeFMUstate(c cabi.Component, s cabi.FMUstate) ([]byte, cabi.Status) {
	return nil, cabi.StatusOK
}
func (f *fakeMEBackend) DeSerializeFMUstate(c cabi.Component, data []byte) (cabi.FMUstate, cabi.Status) {
	return nil, cabi.StatusOK
}
func (f *fakeMEBackend) GetDirectionalDerivative(c cabi.Component, unknownVR, knownVR []uint32, knownDelta []float64) ([]float64, cabi.Status) {
	return make([]float64, len(unknownVR)), cabi.StatusOK
}

func (f *fakeMEBackend) SetTime(c cabi.Component, t float64) cabi.Status {
	f.time = t
	return cabi.StatusOK
}
func (f *fakeMEBackend) SetContinuousStates(c cabi.Component, x []float64) cabi.Status {
	copy(f.x, x)
	return cabi.StatusOK
}
func (f *fakeMEBackend) GetContinuousStates(c cabi.Component, x []float64) cabi.Status {
	copy(x, f.x)
	return cabi.StatusOK
}
func (f *fakeMEBackend) GetEventIndicators(c cabi.Component, z []float64) cabi.Status {
	if f.hasIndicator {
		z[0] = f.x[0] - f.threshold
	}
	return cabi.StatusOK
}
func (f *fakeMEBackend) GetDerivatives(c cabi.Component, dx []float64) cabi.Status {
	f.getDerivativesCalls++
	for i := range dx {
		dx[i] = f.rate
	}
	return cabi.StatusOK
}
func (f *fakeMEBackend) EnterEventMode(c cabi.Component) cabi.Status {
	f.enterEventModeCalls++
	return cabi.StatusOK
}
func (f *fakeMEBackend) EnterContinuousTimeMode(c cabi.Component) cabi.Status { return cabi.StatusOK }
func (f *fakeMEBackend) NewDiscreteStates(c cabi.Component) (cabi.EventInfo, cabi.Status) {
	ei := f.nextEventInfo()
	f.newDiscreteStatesCalls++
	return ei, cabi.StatusOK
}
func (f *fakeMEBackend) CompletedIntegratorStep(c cabi.Component, noSetPrior bool) (bool, bool, cabi.Status) {
	return f.completedIntegratorStepEnter, f.completedIntegratorStepTerminate, f.completedIntegratorStepStatus
}
func (f *fakeMEBackend) GetNominalsOfContinuousStates(c cabi.Component, xNominal []float64) cabi.Status {
	return cabi.StatusOK
}

// recordingListener captures every StepOutcome for assertions without
// reaching into adapter internals.
type recordingListener struct {
	before []struct{ segmentStart, tNext float64 }
	after  []StepOutcome
}

func (r *recordingListener) Before(segmentStart, tNext float64) {
	r.before = append(r.before, struct{ segmentStart, tNext float64 }{segmentStart, tNext})
}
func (r *recordingListener) After(outcome StepOutcome) {
	r.after = append(r.after, outcome)
}
