package adapter

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/instance"
	"github.com/fmi4go/fmi2/internal/resource"
	"github.com/fmi4go/fmi2/modeldescription"
	"github.com/fmi4go/fmi2/solver"
)

func testResource(t *testing.T) *resource.Resource {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.fmu")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("modelDescription.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<fmiModelDescription/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := resource.Open(path)
	require.NoError(t, err)
	return r
}

func testMEDescription(nx, nz int) *modeldescription.ModelDescription {
	return &modeldescription.ModelDescription{
		GUID:      "{1}",
		ModelName: "TestME",
		Variables: []modeldescription.ScalarVariable{
			{Name: "x", ValueReference: 1, Type: modeldescription.TypeReal},
		},
		ModelExchange: &modeldescription.ModelExchangeAttributes{
			CommonAttributes: modeldescription.CommonAttributes{
				ModelIdentifier: "TestME",
			},
			NumberOfContinuousStates: nx,
			NumberOfEventIndicators:  nz,
		},
	}
}

// newTestAdapter wraps backend in a fresh MEInstance plus a 1e-3 fixed-step
// Euler solver.
func newTestAdapter(t *testing.T, backend *fakeMEBackend, nx, nz int) *Adapter {
	t.Helper()
	res := testResource(t)
	t.Cleanup(func() { res.Release() })

	me, err := instance.NewMEInstance(backend, &instance.MEArgs{
		Resource:         res,
		ModelDescription: testMEDescription(nx, nz),
		InstanceName:     "inst1",
	})
	require.NoError(t, err)

	return New(me, solver.NewEuler(1e-3))
}

func initialize(t *testing.T, a *Adapter, startTime float64) {
	t.Helper()
	require.NoError(t, a.SetupExperiment(false, 0, startTime, false, 0))
	require.NoError(t, a.EnterInitializationMode())
	require.NoError(t, a.ExitInitializationMode())
}

// TestModelDescriptionAdvertisesCoSimulation covers the derived-description
// requirement from spec.md §4.6.
func TestModelDescriptionAdvertisesCoSimulation(t *testing.T) {
	backend := newFakeMEBackend(1, 0, 1)
	a := newTestAdapter(t, backend, 1, 0)

	desc := a.ModelDescription()
	require.NotNil(t, desc.CoSimulation)
	require.True(t, desc.CoSimulation.CanHandleVariableCommunicationStepSize)
	require.Equal(t, 0, desc.CoSimulation.MaxOutputDerivativeOrder)
}

// TestDoStepRejectsNonPositiveStepSize covers testable property 7.
func TestDoStepRejectsNonPositiveStepSize(t *testing.T) {
	backend := newFakeMEBackend(1, 0, 1)
	a := newTestAdapter(t, backend, 1, 0)
	initialize(t, a, 0)

	ok, err := a.DoStep(0)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, float64(0), a.SimulationTime())

	ok, err = a.DoStep(-1)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestWrapsMEWithEulerSolver covers S3: ≥10 solver steps across a 0.01s
// segment integrated with a fixed 1e-3 step, and time advances by exactly
// the requested stepSize (testable invariant 2).
func TestWrapsMEWithEulerSolver(t *testing.T) {
	backend := newFakeMEBackend(1, 0, 1.0)
	a := newTestAdapter(t, backend, 1, 0)
	initialize(t, a, 0)

	ok, err := a.DoStep(0.01)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.01, a.SimulationTime(), 1e-9)
	require.GreaterOrEqual(t, backend.getDerivativesCalls, 10)
}

// TestZeroWidthSegmentSnapsWithoutSolving covers testable property 8: a
// pending time event exactly at the segment start collapses the first
// iteration to a snap, not a solve.
func TestZeroWidthSegmentSnapsWithoutSolving(t *testing.T) {
	backend := newFakeMEBackend(1, 0, 1.0)
	backend.eventInfoSequence = []cabi.EventInfo{
		{NextEventTimeDefined: true, NextEventTime: 0},
		{},
	}
	a := newTestAdapter(t, backend, 1, 0)
	initialize(t, a, 0)

	listener := &recordingListener{}
	a.SetListener(listener)

	before := backend.getDerivativesCalls
	ok, err := a.DoStep(0.01)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.01, a.SimulationTime(), 1e-9)

	// The pending event sits exactly at the segment start, so the first
	// outer-loop iteration is zero-width (segmentStart == tNext == 0) and
	// must be a snap, not a solve: the whole doStep still only costs the 10
	// solver evaluations the remaining 0.01s segment needs, none extra.
	require.Len(t, listener.before, 2)
	require.InDelta(t, listener.before[0].segmentStart, listener.before[0].tNext, 1e-12)
	require.Equal(t, 10, backend.getDerivativesCalls-before)
}

// TestTimeEventSplitsSegment covers S4: a pending event time inside the
// requested step causes the adapter to integrate only up to the event time
// in the first inner iteration, then complete the remainder in a second.
func TestTimeEventSplitsSegment(t *testing.T) {
	backend := newFakeMEBackend(1, 0, 1.0)
	backend.eventInfoSequence = []cabi.EventInfo{
		{NextEventTimeDefined: true, NextEventTime: 0.004},
		{},
	}
	a := newTestAdapter(t, backend, 1, 0)
	initialize(t, a, 0)

	listener := &recordingListener{}
	a.SetListener(listener)

	ok, err := a.DoStep(0.01)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.01, a.SimulationTime(), 1e-9)

	require.Len(t, listener.before, 2)
	require.InDelta(t, 0, listener.before[0].segmentStart, 1e-12)
	require.InDelta(t, 0.004, listener.before[0].tNext, 1e-9)
	require.InDelta(t, 0.004, listener.before[1].segmentStart, 1e-9)
	require.InDelta(t, 0.01, listener.before[1].tNext, 1e-9)

	require.True(t, listener.after[0].TimeEvent)
	require.False(t, listener.after[1].TimeEvent)
	require.Equal(t, 1, backend.enterEventModeCalls)
}

// TestStateEventAcrossSteps covers S5: an event indicator sign flip between
// two doStep calls triggers exactly one event-mode entry, reported to the
// listener as a state event.
func TestStateEventAcrossSteps(t *testing.T) {
	backend := newFakeMEBackend(1, 1, 1.0)
	backend.threshold = 0.007
	a := newTestAdapter(t, backend, 1, 1)
	initialize(t, a, 0)

	listener := &recordingListener{}
	a.SetListener(listener)

	ok, err := a.DoStep(0.005)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, backend.enterEventModeCalls, "no crossing yet")

	ok, err = a.DoStep(0.005)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, backend.enterEventModeCalls, "exactly one event-mode entry")

	last := listener.after[len(listener.after)-1]
	require.True(t, last.StateEvent)
	require.InDelta(t, 0.01, a.SimulationTime(), 1e-9)
}

// TestFatalPropagation covers S6: a Fatal status from an ABI call inside
// DoStep terminates the instance and rejects further ABI-invoking calls.
func TestFatalPropagation(t *testing.T) {
	backend := newFakeMEBackend(1, 0, 1.0)
	backend.completedIntegratorStepStatus = cabi.StatusFatal
	a := newTestAdapter(t, backend, 1, 0)
	initialize(t, a, 0)

	ok, err := a.DoStep(0.01)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, instance.Terminated, a.State())

	before := backend.getRealCalls
	_, err = a.ReadReal1(1)
	require.True(t, fmierr.IsAbiError(err))
	require.True(t, fmierr.IsFatal(err))
	require.Equal(t, before, backend.getRealCalls, "fatal instances must not invoke the ABI again")
}
