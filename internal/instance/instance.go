// Package instance wraps one allocated FMI 2.0 component: state-machine
// discipline (C3), typed variable I/O, and the capability-gated FMUstate
// checkpoint calls. internal/instance/costep.go and mestep.go add the
// Co-Simulation and Model-Exchange specializations (C4, C5).
package instance

import (
	"runtime/cgo"
	"sync"

	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/fmilog"
	"github.com/fmi4go/fmi2/internal/resource"
	"github.com/fmi4go/fmi2/modeldescription"
)

// Instance wraps one allocated component returned by fmi2Instantiate. It is
// NOT thread-safe: callers must serialize all operations on one Instance
// themselves (spec.md §5); separate Instances are fully independent.
type Instance struct {
	lib      cabi.Backend
	resource *resource.Resource
	logger   *fmilog.Logger
	loggerH  cgo.Handle

	component  cabi.Component
	desc       *modeldescription.ModelDescription
	name       string
	kind       cabi.Kind

	mu             sync.Mutex
	state          State
	lastStatus     cabi.Status
	fatal          bool
	simulationTime float64
}

// New instantiates a component from lib, holding a reference on resource for
// the lifetime of the Instance (released on Free). The caller retains
// ownership of its own reference to resource/lib and must release those
// separately once every Instance born from them has been freed.
func New(lib cabi.Backend, res *resource.Resource, desc *modeldescription.ModelDescription, kind cabi.Kind, instanceName string, categories ...fmilog.Category) (*Instance, error) {
	logger := fmilog.New(instanceName, categories...)

	loggerFn := func(name, status, category, message string) {
		logger.Log(category, status, message)
	}

	comp, loggerH, err := lib.Instantiate(instanceName, kind, desc.GUID, "file://"+res.Directory(), loggerFn, false, true)
	if err != nil {
		return nil, err
	}

	return &Instance{
		lib:       lib,
		resource:  res.Acquire(),
		logger:    logger,
		loggerH:   loggerH,
		component: comp,
		desc:      desc,
		name:      instanceName,
		kind:      kind,
		state:     Instantiated,
	}, nil
}

// Name returns the instance name it was constructed with.
func (i *Instance) Name() string { return i.name }

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// LastStatus returns the most recently observed ABI status.
func (i *Instance) LastStatus() cabi.Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastStatus
}

// SimulationTime returns the cached current simulation time.
func (i *Instance) SimulationTime() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.simulationTime
}

// ModelDescription returns the parsed description this instance was created
// from.
func (i *Instance) ModelDescription() *modeldescription.ModelDescription { return i.desc }

// record updates lastStatus and, on Fatal only, marks the instance fatally
// failed — testable property 3: after Fatal, every further ABI-invoking
// call returns failure without touching the ABI.
func (i *Instance) record(status cabi.Status) {
	i.lastStatus = status
	if status == cabi.StatusFatal {
		i.fatal = true
		i.state = Terminated
	}
}

// guard checks the Fatal-sticky rule before invoking op; callers check the
// state machine separately via checkTransition. It must be called with i.mu
// held.
func (i *Instance) guard(op string) error {
	if i.fatal {
		return fmierr.NewAbiError(op, cabi.StatusFatal)
	}
	return nil
}

// SetupExperiment calls fmi2SetupExperiment; legal only in Instantiated.
func (i *Instance) SetupExperiment(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.guard("SetupExperiment"); err != nil {
		return err
	}
	if _, err := checkTransition(i.state, "SetupExperiment"); err != nil {
		return err
	}
	status := i.lib.SetupExperiment(i.component, toleranceDefined, tolerance, startTime, stopTimeDefined, stopTime)
	i.record(status)
	i.simulationTime = startTime
	if status.Failed() {
		return fmierr.NewAbiError("SetupExperiment", status)
	}
	return nil
}

// EnterInitializationMode calls fmi2EnterInitializationMode.
func (i *Instance) EnterInitializationMode() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.guard("EnterInitializationMode"); err != nil {
		return err
	}
	next, err := checkTransition(i.state, "EnterInitializationMode")
	if err != nil {
		return err
	}
	status := i.lib.EnterInitializationMode(i.component)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("EnterInitializationMode", status)
	}
	i.state = next
	return nil
}

// exitInitializationMode is shared by CoSimInstance and MEInstance, which
// pass the op name so the transition table sends them to StepComplete vs.
// EventMode respectively.
func (i *Instance) exitInitializationMode(op string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.guard(op); err != nil {
		return err
	}
	next, err := checkTransition(i.state, op)
	if err != nil {
		return err
	}
	status := i.lib.ExitInitializationMode(i.component)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError(op, status)
	}
	i.state = next
	return nil
}

// Terminate calls fmi2Terminate; legal from any live state.
func (i *Instance) Terminate() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.guard("Terminate"); err != nil {
		return err
	}
	if err := checkLive(i.state, "Terminate"); err != nil {
		return err
	}
	status := i.lib.Terminate(i.component)
	i.record(status)
	i.state = Terminated
	if status.Failed() {
		return fmierr.NewAbiError("Terminate", status)
	}
	return nil
}

// Reset calls fmi2Reset, returning the instance to Instantiated per
// DESIGN.md's Open Question decision.
func (i *Instance) Reset() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == Freed {
		return fmierr.NewStateError("Reset", i.state.String(), "(none)")
	}
	status := i.lib.Reset(i.component)
	i.fatal = false
	i.record(status)
	i.state = Instantiated
	i.simulationTime = 0
	if status.Failed() {
		return fmierr.NewAbiError("Reset", status)
	}
	return nil
}

// Free calls fmi2FreeInstance exactly once and releases the held Resource
// reference. Calling Free more than once is a programmer error and returns
// a StateError rather than double-freeing the component handle.
func (i *Instance) Free() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == Freed {
		return fmierr.NewStateError("Free", i.state.String(), "(none)")
	}
	i.lib.FreeInstance(i.component, i.loggerH)
	i.state = Freed
	return i.resource.Release()
}

func (i *Instance) checkReadWrite(op string) error {
	if err := i.guard(op); err != nil {
		return err
	}
	return checkLive(i.state, op)
}

// ReadReal reads len(vr) Real variables into out.
func (i *Instance) ReadReal(vr []uint32, out []float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("GetReal"); err != nil {
		return err
	}
	status := i.lib.GetReal(i.component, vr, out)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetReal", status)
	}
	return nil
}

// WriteReal writes len(vr) Real variables. The write is atomic from the
// caller's view: either every value is accepted (status ≤ Warning) or the
// whole call is reported failed (spec.md §4.3).
func (i *Instance) WriteReal(vr []uint32, values []float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("SetReal"); err != nil {
		return err
	}
	status := i.lib.SetReal(i.component, vr, values)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetReal", status)
	}
	return nil
}

// ReadReal1 is the single-value convenience form of ReadReal.
func (i *Instance) ReadReal1(vr uint32) (float64, error) {
	out := make([]float64, 1)
	err := i.ReadReal([]uint32{vr}, out)
	return out[0], err
}

// WriteReal1 is the single-value convenience form of WriteReal.
func (i *Instance) WriteReal1(vr uint32, value float64) error {
	return i.WriteReal([]uint32{vr}, []float64{value})
}

func (i *Instance) ReadInteger(vr []uint32, out []int32) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("GetInteger"); err != nil {
		return err
	}
	status := i.lib.GetInteger(i.component, vr, out)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetInteger", status)
	}
	return nil
}

func (i *Instance) WriteInteger(vr []uint32, values []int32) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("SetInteger"); err != nil {
		return err
	}
	status := i.lib.SetInteger(i.component, vr, values)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetInteger", status)
	}
	return nil
}

func (i *Instance) ReadBoolean(vr []uint32, out []bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("GetBoolean"); err != nil {
		return err
	}
	status := i.lib.GetBoolean(i.component, vr, out)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetBoolean", status)
	}
	return nil
}

func (i *Instance) WriteBoolean(vr []uint32, values []bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("SetBoolean"); err != nil {
		return err
	}
	status := i.lib.SetBoolean(i.component, vr, values)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetBoolean", status)
	}
	return nil
}

func (i *Instance) ReadString(vr []uint32, out []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("GetString"); err != nil {
		return err
	}
	status := i.lib.GetString(i.component, vr, out)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("GetString", status)
	}
	return nil
}

func (i *Instance) WriteString(vr []uint32, values []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.checkReadWrite("SetString"); err != nil {
		return err
	}
	status := i.lib.SetString(i.component, vr, values)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetString", status)
	}
	return nil
}

func (i *Instance) canGetSetFMUstate() bool {
	switch i.kind {
	case cabi.KindCoSimulation:
		return i.desc.CoSimulation != nil && i.desc.CoSimulation.CanGetAndSetFMUstate
	default:
		return i.desc.ModelExchange != nil && i.desc.ModelExchange.CanGetAndSetFMUstate
	}
}

func (i *Instance) canSerializeFMUstate() bool {
	switch i.kind {
	case cabi.KindCoSimulation:
		return i.desc.CoSimulation != nil && i.desc.CoSimulation.CanSerializeFMUstate
	default:
		return i.desc.ModelExchange != nil && i.desc.ModelExchange.CanSerializeFMUstate
	}
}

// GetFMUstate captures the component's internal state. UnsupportedOperation
// if the description does not declare canGetAndSetFMUstate.
func (i *Instance) GetFMUstate() (cabi.FMUstate, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.canGetSetFMUstate() {
		return nil, fmierr.NewUnsupportedOperation("GetFMUstate")
	}
	if err := i.guard("GetFMUstate"); err != nil {
		return nil, err
	}
	s, status := i.lib.GetFMUstate(i.component)
	i.record(status)
	if status.Failed() {
		return nil, fmierr.NewAbiError("GetFMUstate", status)
	}
	return s, nil
}

// SetFMUstate restores a previously captured state.
func (i *Instance) SetFMUstate(s cabi.FMUstate) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.canGetSetFMUstate() {
		return fmierr.NewUnsupportedOperation("SetFMUstate")
	}
	if err := i.guard("SetFMUstate"); err != nil {
		return err
	}
	status := i.lib.SetFMUstate(i.component, s)
	i.record(status)
	if status.Failed() {
		return fmierr.NewAbiError("SetFMUstate", status)
	}
	return nil
}

// FreeFMUstate releases a captured state.
func (i *Instance) FreeFMUstate(s cabi.FMUstate) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.canGetSetFMUstate() {
		return fmierr.NewUnsupportedOperation("FreeFMUstate")
	}
	status := i.lib.FreeFMUstate(i.component, s)
	if status.Failed() {
		return fmierr.NewAbiError("FreeFMUstate", status)
	}
	return nil
}

// SerializeFMUstate serializes a captured state to a byte slice.
func (i *Instance) SerializeFMUstate(s cabi.FMUstate) ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.canSerializeFMUstate() {
		return nil, fmierr.NewUnsupportedOperation("SerializeFMUstate")
	}
	if err := i.guard("SerializeFMUstate"); err != nil {
		return nil, err
	}
	data, status := i.lib.SerializeFMUstate(i.component, s)
	i.record(status)
	if status.Failed() {
		return nil, fmierr.NewAbiError("SerializeFMUstate", status)
	}
	return data, nil
}

// DeSerializeFMUstate reconstructs a state from bytes produced by
// SerializeFMUstate.
func (i *Instance) DeSerializeFMUstate(data []byte) (cabi.FMUstate, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.canSerializeFMUstate() {
		return nil, fmierr.NewUnsupportedOperation("DeSerializeFMUstate")
	}
	if err := i.guard("DeSerializeFMUstate"); err != nil {
		return nil, err
	}
	s, status := i.lib.DeSerializeFMUstate(i.component, data)
	i.record(status)
	if status.Failed() {
		return nil, fmierr.NewAbiError("DeSerializeFMUstate", status)
	}
	return s, nil
}
