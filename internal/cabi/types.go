package cabi

import (
	"unsafe"

	"github.com/fmi4go/fmi2/internal/fmierr"
)

// FMUstate is the opaque checkpoint handle returned by fmi2GetFMUstate.
// Declared without a build tag (unlike Library, which is cgo/unix-only) so
// internal/instance and its tests can reference the type on every platform.
type FMUstate unsafe.Pointer

// Status is the translated fmi2Status enum. It is an alias of
// internal/fmierr's Status so that AbiError (also defined there) can wrap it
// without either package importing the other in a cycle.
type Status = fmierr.Status

const (
	StatusOK      = fmierr.StatusOK
	StatusWarning = fmierr.StatusWarning
	StatusDiscard = fmierr.StatusDiscard
	StatusError   = fmierr.StatusError
	StatusFatal   = fmierr.StatusFatal
	StatusPending = fmierr.StatusPending
)

func statusFromC(raw int32) Status {
	switch raw {
	case 0:
		return StatusOK
	case 1:
		return StatusWarning
	case 2:
		return StatusDiscard
	case 3:
		return StatusError
	case 4:
		return StatusFatal
	case 5:
		return StatusPending
	default:
		return StatusError
	}
}

// Kind discriminates which FMI variant a component was instantiated as;
// the numeric values match the fmi2Type C enum (fmi2ModelExchange=0,
// fmi2CoSimulation=1).
type Kind int32

const (
	KindModelExchange Kind = 0
	KindCoSimulation  Kind = 1
)

// EventInfo mirrors the fmi2EventInfo struct, mutated by newDiscreteStates
// and exitInitializationMode (C5, spec.md §3).
type EventInfo struct {
	NewDiscreteStatesNeeded           bool
	TerminateSimulation               bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged   bool
	NextEventTimeDefined              bool
	NextEventTime                     float64
}

// LoggerFunc is the Go-side signature the importer installs for the
// fmi2CallbackFunctions.logger callback. It may be invoked by the FMU from
// any thread it creates.
type LoggerFunc func(instanceName, status, category, message string)

// Component is the opaque handle returned by fmi2Instantiate.
type Component uintptr
