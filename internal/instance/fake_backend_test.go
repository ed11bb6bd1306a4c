package instance

import (
	"math"
	"runtime/cgo"
	"unsafe"

	"github.com/fmi4go/fmi2/internal/cabi"
)

// fakeBackend is a Go struct satisfying cabi.Backend, installed in place of
// a real dlopen'd library so instance/adapter tests run without a compiled
// FMU binary (SPEC_FULL.md §8).
type fakeBackend struct {
	reals map[uint32]float64

	doStepStatus   cabi.Status
	setupStatus    cabi.Status
	nextComponent  cabi.Component
	instantiateErr error

	eventInfo cabi.EventInfo

	derivatives map[uint32]float64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		reals:       make(map[uint32]float64),
		derivatives: make(map[uint32]float64),
	}
}

func (f *fakeBackend) Instantiate(instanceName string, kind cabi.Kind, guid, resourceLocation string, logger cabi.LoggerFunc, visible, loggingOn bool) (cabi.Component, cgo.Handle, error) {
	if f.instantiateErr != nil {
		return 0, 0, f.instantiateErr
	}
	return 1, 0, nil
}

func (f *fakeBackend) SetupExperiment(c cabi.Component, toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) cabi.Status {
	if f.setupStatus != cabi.StatusOK {
		return f.setupStatus
	}
	return cabi.StatusOK
}

func (f *fakeBackend) EnterInitializationMode(c cabi.Component) cabi.Status  { return cabi.StatusOK }
func (f *fakeBackend) ExitInitializationMode(c cabi.Component) cabi.Status  { return cabi.StatusOK }
func (f *fakeBackend) Terminate(c cabi.Component) cabi.Status               { return cabi.StatusOK }
func (f *fakeBackend) Reset(c cabi.Component) cabi.Status                   { return cabi.StatusOK }
func (f *fakeBackend) FreeInstance(c cabi.Component, logger cgo.Handle)     {}

func (f *fakeBackend) DoStep(c cabi.Component, currentTime, stepSize float64, noSetPrior bool) cabi.Status {
	return f.doStepStatus
}
func (f *fakeBackend) CancelStep(c cabi.Component) cabi.Status { return cabi.StatusOK }

func (f *fakeBackend) GetReal(c cabi.Component, vr []uint32, out []float64) cabi.Status {
	for i, v := range vr {
		out[i] = f.reals[v]
	}
	return cabi.StatusOK
}
func (f *fakeBackend) SetReal(c cabi.Component, vr []uint32, values []float64) cabi.Status {
	for i, v := range vr {
		f.reals[v] = values[i]
	}
	return cabi.StatusOK
}
func (f *fakeBackend) GetInteger(c cabi.Component, vr []uint32, out []int32) cabi.Status { return cabi.StatusOK }
func (f *fakeBackend) SetInteger(c cabi.Component, vr []uint32, values []int32) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeBackend) GetBoolean(c cabi.Component, vr []uint32, out []bool) cabi.Status { return cabi.StatusOK }
func (f *fakeBackend) SetBoolean(c cabi.Component, vr []uint32, values []bool) cabi.Status {
	return cabi.StatusOK
}
func (f *fakeBackend) GetString(c cabi.Component, vr []uint32, out []string) cabi.Status { return cabi.StatusOK }
func (f *fakeBackend) SetString(c cabi.Component, vr []uint32, values []string) cabi.Status {
	return cabi.StatusOK
}

func (f *fakeBackend) GetFMUstate(c cabi.Component) (cabi.FMUstate, cabi.Status) {
	snapshot := make(map[uint32]float64, len(f.reals))
	for k, v := range f.reals {
		snapshot[k] = v
	}
	return cabi.FMUstate(unsafe.Pointer(&snapshot)), cabi.StatusOK
}
func (f *fakeBackend) SetFMUstate(c cabi.Component, s cabi.FMUstate) cabi.Status {
	snapshot := *(*map[uint32]float64)(s)
	f.reals = make(map[uint32]float64, len(snapshot))
	for k, v := range snapshot {
		f.reals[k] = v
	}
	return cabi.StatusOK
}
func (f *fakeBackend) FreeFMUstate(c cabi.Component, s cabi.FMUstate) cabi.Status { return cabi.StatusOK }
func (f *fakeBackend) SerializeFMUstate(c cabi.Component, s cabi.FMUstate) ([]byte, cabi.Status) {
	snapshot := *(*map[uint32]float64)(s)
	var buf []byte
	for k, v := range snapshot {
		buf = append(buf, encodeEntry(k, v)...)
	}
	return buf, cabi.StatusOK
}
func (f *fakeBackend) DeSerializeFMUstate(c cabi.Component, data []byte) (cabi.FMUstate, cabi.Status) {
	snapshot := decodeEntries(data)
	return cabi.FMUstate(unsafe.Pointer(&snapshot)), cabi.StatusOK
}
func (f *fakeBackend) GetDirectionalDerivative(c cabi.Component, unknownVR, knownVR []uint32, knownDelta []float64) ([]float64, cabi.Status) {
	return make([]float64, len(unknownVR)), cabi.StatusOK
}

func (f *fakeBackend) SetTime(c cabi.Component, t float64) cabi.Status                   { return cabi.StatusOK }
func (f *fakeBackend) SetContinuousStates(c cabi.Component, x []float64) cabi.Status     { return cabi.StatusOK }
func (f *fakeBackend) GetContinuousStates(c cabi.Component, x []float64) cabi.Status     { return cabi.StatusOK }
func (f *fakeBackend) GetEventIndicators(c cabi.Component, z []float64) cabi.Status      { return cabi.StatusOK }
func (f *fakeBackend) GetDerivatives(c cabi.Component, dx []float64) cabi.Status         { return cabi.StatusOK }
func (f *fakeBackend) EnterEventMode(c cabi.Component) cabi.Status                       { return cabi.StatusOK }
func (f *fakeBackend) EnterContinuousTimeMode(c cabi.Component) cabi.Status              { return cabi.StatusOK }
func (f *fakeBackend) NewDiscreteStates(c cabi.Component) (cabi.EventInfo, cabi.Status) {
	return f.eventInfo, cabi.StatusOK
}
func (f *fakeBackend) CompletedIntegratorStep(c cabi.Component, noSetPrior bool) (bool, bool, cabi.Status) {
	return false, false, cabi.StatusOK
}
func (f *fakeBackend) GetNominalsOfContinuousStates(c cabi.Component, xNominal []float64) cabi.Status {
	return cabi.StatusOK
}

// encodeEntry/decodeEntries are a minimal fixed-width encoding used only to
// exercise the serialize/deserialize round trip in tests; it is not a real
// FMU binary state blob format.
func encodeEntry(k uint32, v float64) []byte {
	b := make([]byte, 12)
	b[0] = byte(k)
	b[1] = byte(k >> 8)
	b[2] = byte(k >> 16)
	b[3] = byte(k >> 24)
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b[4+i] = byte(bits >> (8 * i))
	}
	return b
}

func decodeEntries(data []byte) map[uint32]float64 {
	out := make(map[uint32]float64)
	for off := 0; off+12 <= len(data); off += 12 {
		k := uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24
		var bits uint64
		for i := 0; i < 8; i++ {
			bits |= uint64(data[off+4+i]) << (8 * i)
		}
		out[k] = math.Float64frombits(bits)
	}
	return out
}
