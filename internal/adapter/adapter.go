// Package adapter implements the ME→CS adapter (C6): it presents the
// Co-Simulation contract (SetupExperiment/ExitInitializationMode/DoStep/...)
// while internally driving a Model-Exchange instance plus an external ODE
// solver, per spec.md §4.6. This is the core algorithm of the module.
package adapter

import (
	"math"
	"sync"

	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/instance"
	"github.com/fmi4go/fmi2/modeldescription"
	"github.com/fmi4go/fmi2/solver"
)

// epsilon is the degenerate-segment guard from spec.md §4.6 step 3: a
// segment this short or shorter is snapped to without invoking the solver,
// so no numerical solver is ever asked to integrate a zero-width interval.
const epsilon = 1e-13

// Adapter wraps an MEInstance (by unique ownership, held via embedding) and
// a solver.Integrator (by unique ownership) to satisfy the Co-Simulation
// contract. It owns the continuous state vector x and the event-indicator
// vectors z/pz, sized from the underlying ME description.
type Adapter struct {
	*instance.MEInstance

	integrator solver.Integrator
	sys        *odeSystem

	x, z, pz []float64

	desc *modeldescription.ModelDescription

	mu             sync.Mutex
	simulationTime float64

	listener AdapterListener
}

// New wraps me with a Co-Simulation face, integrating with integrator. The
// derived ModelDescription advertises Co-Sim attributes
// (canHandleVariableCommunicationStepSize = true, maxOutputDerivativeOrder =
// 0) built from the ME description's shared attributes.
func New(me *instance.MEInstance, integrator solver.Integrator) *Adapter {
	meDesc := me.ModelDescription()
	derived := *meDesc
	derived.CoSimulation = modeldescription.WithCoSimulationView(meDesc.ModelExchange)

	nx := me.NumberOfContinuousStates()
	nz := me.NumberOfEventIndicators()

	return &Adapter{
		MEInstance: me,
		integrator: integrator,
		sys:        &odeSystem{me: me},
		x:          make([]float64, nx),
		z:          make([]float64, nz),
		pz:         make([]float64, nz),
		desc:       &derived,
	}
}

// SetListener attaches an AdapterListener observing each outer-loop
// iteration of DoStep. Pass nil to detach.
func (a *Adapter) SetListener(l AdapterListener) { a.listener = l }

// ModelDescription returns the derived Co-Simulation-shaped description,
// shadowing the embedded MEInstance's own ModelDescription so that callers
// who only asked for a Slave see a Co-Sim FMU, never the ME machinery
// underneath.
func (a *Adapter) ModelDescription() *modeldescription.ModelDescription { return a.desc }

// SetupExperiment shadows the embedded MEInstance's SetupExperiment to also
// cache startTime as the adapter's own notion of simulation time: the
// embedded Instance's cached time is never advanced by ME-style operations
// (SetTime doesn't touch it), so the adapter must track it independently to
// satisfy testable invariant 2 (doStep(h) advances time by exactly h).
func (a *Adapter) SetupExperiment(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) error {
	if err := a.MEInstance.SetupExperiment(toleranceDefined, tolerance, startTime, stopTimeDefined, stopTime); err != nil {
		return err
	}
	a.mu.Lock()
	a.simulationTime = startTime
	a.mu.Unlock()
	return nil
}

// SimulationTime returns the adapter's own tracked simulation time.
func (a *Adapter) SimulationTime() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.simulationTime
}

// ExitInitializationMode delegates to the ME instance, then runs the
// discrete-event fix-point, then enters continuous-time mode.
func (a *Adapter) ExitInitializationMode() error {
	if err := a.MEInstance.ExitInitializationMode(); err != nil {
		return err
	}
	return a.fixPointAndResume()
}

// runDiscreteEventFixPoint calls newDiscreteStates until the FMU reports it
// needs no further discrete-state updates, or asks to terminate.
func (a *Adapter) runDiscreteEventFixPoint() error {
	ei := cabi.EventInfo{NewDiscreteStatesNeeded: true}
	for ei.NewDiscreteStatesNeeded && !ei.TerminateSimulation {
		var err error
		ei, err = a.MEInstance.NewDiscreteStates()
		if err != nil {
			return err
		}
	}
	return nil
}

// fixPointAndResume runs the fix-point then re-enters continuous-time mode;
// shared by ExitInitializationMode and DoStep's event handling (step 7).
func (a *Adapter) fixPointAndResume() error {
	if err := a.runDiscreteEventFixPoint(); err != nil {
		return err
	}
	return a.MEInstance.EnterContinuousTimeMode()
}

// DoStep is the heart of the adapter: advances simulation time by stepSize,
// internally running as many solver segments as needed to honor time, state
// and step events, per spec.md §4.6's seven numbered steps.
func (a *Adapter) DoStep(stepSize float64) (bool, error) {
	if stepSize <= 0 {
		return false, nil
	}

	time := a.SimulationTime()
	stopTime := time + stepSize

	for time < stopTime {
		segmentStart := time

		// Step 1: propose a target.
		tNext := math.Min(time+stepSize, stopTime)

		// Step 2: detect a pending time event. Per the spec-aligned
		// predicate (DESIGN.md Open Question resolution), compared against
		// tNext rather than the source's time.
		ei := a.MEInstance.EventInfo()
		timeEvent := ei.NextEventTimeDefined && ei.NextEventTime <= tNext
		if timeEvent {
			tNext = ei.NextEventTime
		}

		a.notifyBefore(segmentStart, tNext)

		// Step 3/4: integrate or snap.
		var stateEvent bool
		if tNext-time > epsilon {
			reached, se, err := a.solve(time, tNext)
			if err != nil {
				a.notifyAfter(segmentStart, tNext, timeEvent, se, false, err)
				return a.fail(err)
			}
			time = reached
			stateEvent = se
		} else {
			time = tNext
		}

		// Step 5: push time to the ME instance.
		if err := a.MEInstance.SetTime(time); err != nil {
			a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, false, err)
			return a.fail(err)
		}

		// Step 6: step-event detection.
		var stepEvent bool
		if !a.MEInstance.CompletedIntegratorStepNotNeeded() {
			enterEventMode, terminate, err := a.MEInstance.CompletedIntegratorStep(true)
			if err != nil {
				a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, false, err)
				return a.fail(err)
			}
			if terminate {
				_ = a.MEInstance.Terminate()
				a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, false, nil)
				return false, nil
			}
			stepEvent = enterEventMode
		}

		// Step 7: event handling.
		if timeEvent || stateEvent || stepEvent {
			if err := a.MEInstance.EnterEventMode(); err != nil {
				a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, stepEvent, err)
				return a.fail(err)
			}
			if err := a.fixPointAndResume(); err != nil {
				a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, stepEvent, err)
				return a.fail(err)
			}
			// Refresh z after the fix-point so the next segment's sign test
			// compares against post-event indicator values.
			if err := a.MEInstance.GetEventIndicators(a.z); err != nil {
				a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, stepEvent, err)
				return a.fail(err)
			}
		}

		a.notifyAfter(segmentStart, tNext, timeEvent, stateEvent, stepEvent, nil)
	}

	a.mu.Lock()
	a.simulationTime = time
	a.mu.Unlock()
	return true, nil
}

// fail classifies an error from an ABI-invoking call: an AbiError (Discard,
// Error or Fatal) is reported as doStep returning false with no error, the
// same boolean-failure contract CoSimInstance.DoStep uses; any other error
// (a StateError, or a failure from the caller-supplied solver) propagates.
func (a *Adapter) fail(err error) (bool, error) {
	if fmierr.IsAbiError(err) {
		return false, nil
	}
	return false, err
}

// solve implements spec.md §4.6 step 4: integrate the continuous states
// from t to tNext and detect a state event via strict sign-product
// zero-crossing on the event indicators.
func (a *Adapter) solve(t, tNext float64) (float64, bool, error) {
	if err := a.MEInstance.GetContinuousStates(a.x); err != nil {
		return t, false, err
	}

	reached, err := a.integrator.Integrate(a.sys, a.x, t, tNext)
	if err != nil {
		return reached, false, err
	}

	copy(a.pz, a.z)
	if err := a.MEInstance.GetEventIndicators(a.z); err != nil {
		return reached, false, err
	}

	stateEvent := false
	for i := range a.z {
		if a.pz[i]*a.z[i] < 0 {
			stateEvent = true
			break
		}
	}
	return reached, stateEvent, nil
}
