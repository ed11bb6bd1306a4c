package instance

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/resource"
	"github.com/fmi4go/fmi2/modeldescription"
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

func testDescription(stateCapable bool) *modeldescription.ModelDescription {
	return &modeldescription.ModelDescription{
		GUID:      "{1}",
		ModelName: "Test",
		Variables: []modeldescription.ScalarVariable{
			{Name: "x", ValueReference: 1, Type: modeldescription.TypeReal},
		},
		CoSimulation: &modeldescription.CoSimulationAttributes{
			CommonAttributes: modeldescription.CommonAttributes{
				ModelIdentifier:       "Test",
				CanGetAndSetFMUstate:  stateCapable,
				CanSerializeFMUstate:  stateCapable,
			},
		},
	}
}

func newTestCoSimInstance(t *testing.T, backend *fakeBackend, stateCapable bool) *CoSimInstance {
	t.Helper()
	res := testResource(t)
	t.Cleanup(func() { res.Release() })

	inst, err := NewCoSimInstance(backend, &CoSimArgs{
		Resource:         res,
		ModelDescription: testDescription(stateCapable),
		InstanceName:     "inst1",
	})
	require.NoError(t, err)
	return inst
}

// TestLifecycleStateMachine covers testable invariant 1 from spec.md §8.
func TestLifecycleStateMachine(t *testing.T) {
	inst := newTestCoSimInstance(t, newFakeBackend(), false)

	require.Equal(t, Instantiated, inst.State())

	// doStep before exitInitializationMode must fail with StateError.
	_, err := inst.DoStep(1e-3)
	require.True(t, fmierr.IsStateError(err))

	require.NoError(t, inst.SetupExperiment(false, 0, 0, false, 0))
	require.NoError(t, inst.EnterInitializationMode())
	require.Equal(t, InitializationMode, inst.State())

	require.NoError(t, inst.ExitInitializationMode())
	require.Equal(t, StepComplete, inst.State())

	ok, err := inst.DoStep(1e-3)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StepComplete, inst.State())

	require.NoError(t, inst.Terminate())
	require.Equal(t, Terminated, inst.State())

	_, err = inst.DoStep(1e-3)
	require.Error(t, err)
}

// TestSimulationTimeAdvancesByStepSize covers testable invariant 2.
func TestSimulationTimeAdvancesByStepSize(t *testing.T) {
	inst := newTestCoSimInstance(t, newFakeBackend(), false)
	require.NoError(t, inst.SetupExperiment(false, 0, 0, false, 0))
	require.NoError(t, inst.EnterInitializationMode())
	require.NoError(t, inst.ExitInitializationMode())

	ok, err := inst.DoStep(0.01)
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 0.01, inst.SimulationTime(), 1e-12)
}

// TestFatalStatusRejectsFurtherCalls covers testable invariant 3.
func TestFatalStatusRejectsFurtherCalls(t *testing.T) {
	backend := newFakeBackend()
	inst := newTestCoSimInstance(t, backend, false)
	require.NoError(t, inst.SetupExperiment(false, 0, 0, false, 0))
	require.NoError(t, inst.EnterInitializationMode())
	require.NoError(t, inst.ExitInitializationMode())

	backend.doStepStatus = cabi.StatusFatal
	ok, err := inst.DoStep(1e-3)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Terminated, inst.State())

	_, err = inst.ReadReal1(1)
	require.True(t, fmierr.IsAbiError(err))
	require.True(t, fmierr.IsFatal(err))
}

// TestWriteThenReadRoundTrips covers testable round-trip law 6.
func TestWriteThenReadRoundTrips(t *testing.T) {
	inst := newTestCoSimInstance(t, newFakeBackend(), false)
	require.NoError(t, inst.WriteReal1(1, 3.5))
	v, err := inst.ReadReal1(1)
	require.NoError(t, err)
	require.Equal(t, 3.5, v)
}

// TestFMUstateRoundTrip covers testable round-trip law 5.
func TestFMUstateRoundTrip(t *testing.T) {
	inst := newTestCoSimInstance(t, newFakeBackend(), true)
	require.NoError(t, inst.WriteReal1(1, 42))

	snap, err := inst.Snapshot()
	require.NoError(t, err)

	require.NoError(t, inst.WriteReal1(1, 0))
	v, _ := inst.ReadReal1(1)
	require.Equal(t, float64(0), v)

	data, err := snap.Serialize()
	require.NoError(t, err)

	restored, err := inst.DeSerializeSnapshot(data)
	require.NoError(t, err)
	require.NoError(t, restored.Restore())

	v, err = inst.ReadReal1(1)
	require.NoError(t, err)
	require.Equal(t, float64(42), v)
}

func TestFMUstateUnsupportedWithoutCapability(t *testing.T) {
	inst := newTestCoSimInstance(t, newFakeBackend(), false)
	_, err := inst.Snapshot()
	require.True(t, fmierr.IsUnsupportedOperation(err))
}
