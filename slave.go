package fmi

import "github.com/fmi4go/fmi2/modeldescription"

// Slave is the Co-Simulation contract shared by a directly-bound
// Co-Simulation FMU and a Model-Exchange FMU wrapped by the ME→CS adapter.
// Per spec.md §9, dynamic dispatch between the two is modeled as one
// interface with two implementors (internal/instance.CoSimInstance and
// internal/adapter.Adapter) rather than a tagged union, since a caller that
// only wants to drive a simulation should never need to know which one it
// holds.
type Slave interface {
	// Name returns the instance name it was instantiated with.
	Name() string

	// ModelDescription returns the (possibly derived) Co-Simulation-shaped
	// description.
	ModelDescription() *modeldescription.ModelDescription

	// SimulationTime returns the cached current simulation time.
	SimulationTime() float64

	// LastStatus returns the most recently observed ABI status.
	LastStatus() Status

	SetupExperiment(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) error
	EnterInitializationMode() error
	ExitInitializationMode() error
	DoStep(stepSize float64) (bool, error)
	Terminate() error
	Reset() error
	Free() error

	ReadReal(vr []uint32, out []float64) error
	WriteReal(vr []uint32, values []float64) error
	ReadReal1(vr uint32) (float64, error)
	WriteReal1(vr uint32, value float64) error

	ReadInteger(vr []uint32, out []int32) error
	WriteInteger(vr []uint32, values []int32) error

	ReadBoolean(vr []uint32, out []bool) error
	WriteBoolean(vr []uint32, values []bool) error

	ReadString(vr []uint32, out []string) error
	WriteString(vr []uint32, values []string) error
}
