//go:build linux || darwin

package cabi

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include <stdarg.h>
#include <stdio.h>
#include <string.h>

typedef void*        fmi2Component;
typedef unsigned int  fmi2ValueReference;
typedef double        fmi2Real;
typedef int           fmi2Integer;
typedef int           fmi2Boolean;
typedef const char*   fmi2String;
typedef int           fmi2Status;
typedef void*         fmi2FMUstate;
typedef char          fmi2Char;

typedef struct {
	fmi2Boolean newDiscreteStatesNeeded;
	fmi2Boolean terminateSimulation;
	fmi2Boolean nominalsOfContinuousStatesChanged;
	fmi2Boolean valuesOfContinuousStatesChanged;
	fmi2Boolean nextEventTimeDefined;
	fmi2Real    nextEventTime;
} fmi2EventInfo;

extern void goFmiLogger(void *componentEnvironment, char *instanceName, int status, char *category, char *message);
extern void *goFmiAllocateMemory(size_t nobj, size_t size);
extern void goFmiFreeMemory(void *obj);
extern void goFmiStepFinished(void *componentEnvironment, int status);

static void fmi2LoggerTrampoline(void *componentEnvironment, fmi2String instanceName, fmi2Status status, fmi2String category, fmi2String message, ...) {
	char buf[4096];
	va_list args;
	va_start(args, message);
	vsnprintf(buf, sizeof(buf), message, args);
	va_end(args);
	goFmiLogger(componentEnvironment, (char *)instanceName, (int)status, (char *)category, buf);
}

static void *fmi2AllocateMemoryTrampoline(size_t nobj, size_t size) {
	return goFmiAllocateMemory(nobj, size);
}

static void fmi2FreeMemoryTrampoline(void *obj) {
	goFmiFreeMemory(obj);
}

static void fmi2StepFinishedTrampoline(void *componentEnvironment, fmi2Status status) {
	goFmiStepFinished(componentEnvironment, (int)status);
}

typedef struct {
	void (*logger)(void *, fmi2String, fmi2Status, fmi2String, fmi2String, ...);
	void *(*allocateMemory)(size_t, size_t);
	void (*freeMemory)(void *);
	void (*stepFinished)(void *, fmi2Status);
	void *componentEnvironment;
} fmi2CallbackFunctions;

// cgo cannot refer to a variadic C function from Go, so the logger
// trampoline's address is handed over through this accessor.
static void *fmi2LoggerTrampolineAddr(void) { return (void *)fmi2LoggerTrampoline; }

typedef fmi2Component (*fmi2InstantiateTYPE)(fmi2String, int, fmi2String, fmi2String, const fmi2CallbackFunctions *, fmi2Boolean, fmi2Boolean);
typedef fmi2Status (*fmi2SetupExperimentTYPE)(fmi2Component, fmi2Boolean, fmi2Real, fmi2Real, fmi2Boolean, fmi2Real);
typedef fmi2Status (*fmi2SimpleTYPE)(fmi2Component);
typedef void (*fmi2FreeInstanceTYPE)(fmi2Component);
typedef fmi2Status (*fmi2DoStepTYPE)(fmi2Component, fmi2Real, fmi2Real, fmi2Boolean);
typedef fmi2Status (*fmi2GetRealTYPE)(fmi2Component, const fmi2ValueReference *, size_t, fmi2Real *);
typedef fmi2Status (*fmi2SetRealTYPE)(fmi2Component, const fmi2ValueReference *, size_t, const fmi2Real *);
typedef fmi2Status (*fmi2GetIntegerTYPE)(fmi2Component, const fmi2ValueReference *, size_t, fmi2Integer *);
typedef fmi2Status (*fmi2SetIntegerTYPE)(fmi2Component, const fmi2ValueReference *, size_t, const fmi2Integer *);
typedef fmi2Status (*fmi2GetBooleanTYPE)(fmi2Component, const fmi2ValueReference *, size_t, fmi2Boolean *);
typedef fmi2Status (*fmi2SetBooleanTYPE)(fmi2Component, const fmi2ValueReference *, size_t, const fmi2Boolean *);
typedef fmi2Status (*fmi2GetStringTYPE)(fmi2Component, const fmi2ValueReference *, size_t, fmi2String *);
typedef fmi2Status (*fmi2SetStringTYPE)(fmi2Component, const fmi2ValueReference *, size_t, const fmi2String *);
typedef fmi2Status (*fmi2GetFMUstateTYPE)(fmi2Component, fmi2FMUstate *);
typedef fmi2Status (*fmi2SetFMUstateTYPE)(fmi2Component, fmi2FMUstate);
typedef fmi2Status (*fmi2FreeFMUstateTYPE)(fmi2Component, fmi2FMUstate *);
typedef fmi2Status (*fmi2SerializedFMUstateSizeTYPE)(fmi2Component, fmi2FMUstate, size_t *);
typedef fmi2Status (*fmi2SerializeFMUstateTYPE)(fmi2Component, fmi2FMUstate, fmi2Char *, size_t);
typedef fmi2Status (*fmi2DeSerializeFMUstateTYPE)(fmi2Component, const fmi2Char *, size_t, fmi2FMUstate *);
typedef fmi2Status (*fmi2GetDirectionalDerivativeTYPE)(fmi2Component, const fmi2ValueReference *, size_t, const fmi2ValueReference *, size_t, const fmi2Real *, fmi2Real *);
typedef fmi2Status (*fmi2SetTimeTYPE)(fmi2Component, fmi2Real);
typedef fmi2Status (*fmi2SetContinuousStatesTYPE)(fmi2Component, const fmi2Real *, size_t);
typedef fmi2Status (*fmi2GetContinuousStatesTYPE)(fmi2Component, fmi2Real *, size_t);
typedef fmi2Status (*fmi2GetEventIndicatorsTYPE)(fmi2Component, fmi2Real *, size_t);
typedef fmi2Status (*fmi2GetDerivativesTYPE)(fmi2Component, fmi2Real *, size_t);
typedef fmi2Status (*fmi2NewDiscreteStatesTYPE)(fmi2Component, fmi2EventInfo *);
typedef fmi2Status (*fmi2CompletedIntegratorStepTYPE)(fmi2Component, fmi2Boolean, fmi2Boolean *, fmi2Boolean *);
typedef fmi2Status (*fmi2GetNominalsOfContinuousStatesTYPE)(fmi2Component, fmi2Real *, size_t);

// call_* shims invoke a dlsym-resolved function pointer: cgo cannot call a C
// function pointer value directly, only a named C function, so every
// distinct signature gets one small forwarding shim.

static fmi2Component call_instantiate(void *fn, fmi2String instanceName, int fmuType, fmi2String guid, fmi2String resourceLocation, const fmi2CallbackFunctions *functions, fmi2Boolean visible, fmi2Boolean loggingOn) {
	return ((fmi2InstantiateTYPE)fn)(instanceName, fmuType, guid, resourceLocation, functions, visible, loggingOn);
}
static fmi2Status call_setupExperiment(void *fn, fmi2Component c, fmi2Boolean toleranceDefined, fmi2Real tolerance, fmi2Real startTime, fmi2Boolean stopTimeDefined, fmi2Real stopTime) {
	return ((fmi2SetupExperimentTYPE)fn)(c, toleranceDefined, tolerance, startTime, stopTimeDefined, stopTime);
}
static fmi2Status call_simple(void *fn, fmi2Component c) {
	return ((fmi2SimpleTYPE)fn)(c);
}
static void call_freeInstance(void *fn, fmi2Component c) {
	((fmi2FreeInstanceTYPE)fn)(c);
}
static fmi2Status call_doStep(void *fn, fmi2Component c, fmi2Real t, fmi2Real step, fmi2Boolean noSetPrior) {
	return ((fmi2DoStepTYPE)fn)(c, t, step, noSetPrior);
}
static fmi2Status call_getReal(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, fmi2Real *v) {
	return ((fmi2GetRealTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_setReal(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, const fmi2Real *v) {
	return ((fmi2SetRealTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_getInteger(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, fmi2Integer *v) {
	return ((fmi2GetIntegerTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_setInteger(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, const fmi2Integer *v) {
	return ((fmi2SetIntegerTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_getBoolean(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, fmi2Boolean *v) {
	return ((fmi2GetBooleanTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_setBoolean(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, const fmi2Boolean *v) {
	return ((fmi2SetBooleanTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_getString(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, fmi2String *v) {
	return ((fmi2GetStringTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_setString(void *fn, fmi2Component c, const fmi2ValueReference *vr, size_t n, const fmi2String *v) {
	return ((fmi2SetStringTYPE)fn)(c, vr, n, v);
}
static fmi2Status call_getFMUstate(void *fn, fmi2Component c, fmi2FMUstate *s) {
	return ((fmi2GetFMUstateTYPE)fn)(c, s);
}
static fmi2Status call_setFMUstate(void *fn, fmi2Component c, fmi2FMUstate s) {
	return ((fmi2SetFMUstateTYPE)fn)(c, s);
}
static fmi2Status call_freeFMUstate(void *fn, fmi2Component c, fmi2FMUstate *s) {
	return ((fmi2FreeFMUstateTYPE)fn)(c, s);
}
static fmi2Status call_serializedFMUstateSize(void *fn, fmi2Component c, fmi2FMUstate s, size_t *size) {
	return ((fmi2SerializedFMUstateSizeTYPE)fn)(c, s, size);
}
static fmi2Status call_serializeFMUstate(void *fn, fmi2Component c, fmi2FMUstate s, fmi2Char *buf, size_t size) {
	return ((fmi2SerializeFMUstateTYPE)fn)(c, s, buf, size);
}
static fmi2Status call_deSerializeFMUstate(void *fn, fmi2Component c, const fmi2Char *buf, size_t size, fmi2FMUstate *s) {
	return ((fmi2DeSerializeFMUstateTYPE)fn)(c, buf, size, s);
}
static fmi2Status call_getDirectionalDerivative(void *fn, fmi2Component c, const fmi2ValueReference *vUnknown, size_t nUnknown, const fmi2ValueReference *vKnown, size_t nKnown, const fmi2Real *dvKnown, fmi2Real *dvUnknown) {
	return ((fmi2GetDirectionalDerivativeTYPE)fn)(c, vUnknown, nUnknown, vKnown, nKnown, dvKnown, dvUnknown);
}
static fmi2Status call_setTime(void *fn, fmi2Component c, fmi2Real t) {
	return ((fmi2SetTimeTYPE)fn)(c, t);
}
static fmi2Status call_setContinuousStates(void *fn, fmi2Component c, const fmi2Real *x, size_t nx) {
	return ((fmi2SetContinuousStatesTYPE)fn)(c, x, nx);
}
static fmi2Status call_getContinuousStates(void *fn, fmi2Component c, fmi2Real *x, size_t nx) {
	return ((fmi2GetContinuousStatesTYPE)fn)(c, x, nx);
}
static fmi2Status call_getEventIndicators(void *fn, fmi2Component c, fmi2Real *z, size_t nz) {
	return ((fmi2GetEventIndicatorsTYPE)fn)(c, z, nz);
}
static fmi2Status call_getDerivatives(void *fn, fmi2Component c, fmi2Real *dx, size_t nx) {
	return ((fmi2GetDerivativesTYPE)fn)(c, dx, nx);
}
static fmi2Status call_newDiscreteStates(void *fn, fmi2Component c, fmi2EventInfo *ei) {
	return ((fmi2NewDiscreteStatesTYPE)fn)(c, ei);
}
static fmi2Status call_completedIntegratorStep(void *fn, fmi2Component c, fmi2Boolean noSetPrior, fmi2Boolean *enterEventMode, fmi2Boolean *terminate) {
	return ((fmi2CompletedIntegratorStepTYPE)fn)(c, noSetPrior, enterEventMode, terminate);
}
static fmi2Status call_getNominalsOfContinuousStates(void *fn, fmi2Component c, fmi2Real *xNominal, size_t nx) {
	return ((fmi2GetNominalsOfContinuousStatesTYPE)fn)(c, xNominal, nx);
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"github.com/fmi4go/fmi2/internal/fmierr"
)

// requiredSymbols are the FMI 2.0 entry points common to both variants;
// missing any of these is a PackageError per spec.md §4.2.
var requiredSymbols = []string{
	"fmi2Instantiate", "fmi2SetupExperiment", "fmi2EnterInitializationMode",
	"fmi2ExitInitializationMode", "fmi2Terminate", "fmi2Reset", "fmi2FreeInstance",
	"fmi2GetReal", "fmi2SetReal", "fmi2GetInteger", "fmi2SetInteger",
	"fmi2GetBoolean", "fmi2SetBoolean", "fmi2GetString", "fmi2SetString",
}

var coSimulationSymbols = []string{"fmi2DoStep", "fmi2CancelStep"}

var modelExchangeSymbols = []string{
	"fmi2SetTime", "fmi2SetContinuousStates", "fmi2GetContinuousStates",
	"fmi2GetEventIndicators", "fmi2GetDerivatives", "fmi2EnterEventMode",
	"fmi2NewDiscreteStates", "fmi2EnterContinuousTimeMode",
	"fmi2CompletedIntegratorStep", "fmi2GetNominalsOfContinuousStates",
}

// optionalSymbols are resolved when present but never required.
var optionalSymbols = []string{
	"fmi2GetFMUstate", "fmi2SetFMUstate", "fmi2FreeFMUstate",
	"fmi2SerializedFMUstateSize", "fmi2SerializeFMUstate", "fmi2DeSerializeFMUstate",
	"fmi2GetDirectionalDerivative",
}

// Library is a dlopen'd FMI 2.0 shared object with every entry point it
// exposes resolved by canonical name.
type Library struct {
	handle  unsafe.Pointer
	symbols map[string]unsafe.Pointer
}

var _ Backend = (*Library)(nil)

// Open dlopens the shared object at path and resolves every FMI 2.0 entry
// point required for kind. Missing required symbols fail with PackageError.
func Open(path string, kind Kind) (*Library, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, fmierr.NewPackageError("cabi.Open", fmt.Errorf("dlopen %s: %s", path, C.GoString(C.dlerror())))
	}

	lib := &Library{handle: handle, symbols: make(map[string]unsafe.Pointer)}

	required := append([]string{}, requiredSymbols...)
	if kind == KindCoSimulation {
		required = append(required, coSimulationSymbols...)
	} else {
		required = append(required, modelExchangeSymbols...)
	}

	for _, name := range required {
		sym, err := lib.resolve(name)
		if err != nil {
			C.dlclose(handle)
			return nil, fmierr.NewPackageError("cabi.Open", err)
		}
		lib.symbols[name] = sym
	}
	for _, name := range optionalSymbols {
		if sym, err := lib.resolve(name); err == nil {
			lib.symbols[name] = sym
		}
	}

	return lib, nil
}

func (l *Library) resolve(name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	sym := C.dlsym(l.handle, cname)
	if sym == nil {
		return nil, fmt.Errorf("missing required entry point %s", name)
	}
	return sym, nil
}

// Has reports whether the optional symbol name was resolved at Open time.
func (l *Library) Has(name string) bool {
	_, ok := l.symbols[name]
	return ok
}

// Close unloads the shared object. Callers must ensure every Component
// instantiated from it has already been freed.
func (l *Library) Close() error {
	if C.dlclose(l.handle) != 0 {
		return fmt.Errorf("cabi: dlclose: %s", C.GoString(C.dlerror()))
	}
	return nil
}

func (l *Library) sym(name string) unsafe.Pointer { return l.symbols[name] }

//export goFmiLogger
func goFmiLogger(componentEnvironment unsafe.Pointer, instanceName *C.char, status C.int, category *C.char, message *C.char) {
	h := cgo.Handle(uintptr(componentEnvironment))
	logger, ok := h.Value().(LoggerFunc)
	if !ok || logger == nil {
		return
	}
	logger(C.GoString(instanceName), statusFromC(int32(status)).String(), C.GoString(category), C.GoString(message))
}

//export goFmiAllocateMemory
func goFmiAllocateMemory(nobj, size C.size_t) unsafe.Pointer {
	return C.calloc(nobj, size)
}

//export goFmiFreeMemory
func goFmiFreeMemory(obj unsafe.Pointer) {
	C.free(obj)
}

//export goFmiStepFinished
func goFmiStepFinished(componentEnvironment unsafe.Pointer, status C.int) {
	// Only meaningful for canRunAsynchronously FMUs; not used by the
	// adapter or CoSimInstance, which both drive doStep synchronously.
}

// Instantiate calls fmi2Instantiate. logger is registered via a cgo.Handle
// so the FMU's componentEnvironment token never carries a raw Go pointer
// across the cgo boundary.
func (l *Library) Instantiate(instanceName string, kind Kind, guid, resourceLocation string, logger LoggerFunc, visible, loggingOn bool) (Component, cgo.Handle, error) {
	cInstanceName := C.CString(instanceName)
	defer C.free(unsafe.Pointer(cInstanceName))
	cGUID := C.CString(guid)
	defer C.free(unsafe.Pointer(cGUID))
	cResourceLocation := C.CString(resourceLocation)
	defer C.free(unsafe.Pointer(cResourceLocation))

	handle := cgo.NewHandle(logger)

	functions := C.fmi2CallbackFunctions{
		logger:              (*[0]byte)(C.fmi2LoggerTrampolineAddr()),
		allocateMemory:      (*[0]byte)(unsafe.Pointer(C.fmi2AllocateMemoryTrampoline)),
		freeMemory:          (*[0]byte)(unsafe.Pointer(C.fmi2FreeMemoryTrampoline)),
		stepFinished:        (*[0]byte)(unsafe.Pointer(C.fmi2StepFinishedTrampoline)),
		componentEnvironment: unsafe.Pointer(uintptr(handle)),
	}

	comp := C.call_instantiate(l.sym("fmi2Instantiate"), cInstanceName, C.int(kind), cGUID, cResourceLocation, &functions, cBool(visible), cBool(loggingOn))
	if comp == nil {
		handle.Delete()
		return 0, 0, fmierr.NewPackageError("cabi.Instantiate", fmt.Errorf("fmi2Instantiate returned null component"))
	}
	return Component(uintptr(comp)), handle, nil
}

func cBool(b bool) C.fmi2Boolean {
	if b {
		return 1
	}
	return 0
}

func (l *Library) SetupExperiment(c Component, toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) Status {
	return statusFromC(int32(C.call_setupExperiment(l.sym("fmi2SetupExperiment"), cComp(c), cBool(toleranceDefined), C.fmi2Real(tolerance), C.fmi2Real(startTime), cBool(stopTimeDefined), C.fmi2Real(stopTime))))
}

func (l *Library) EnterInitializationMode(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2EnterInitializationMode"), cComp(c))))
}

func (l *Library) ExitInitializationMode(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2ExitInitializationMode"), cComp(c))))
}

func (l *Library) Terminate(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2Terminate"), cComp(c))))
}

func (l *Library) Reset(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2Reset"), cComp(c))))
}

func (l *Library) FreeInstance(c Component, logger cgo.Handle) {
	C.call_freeInstance(l.sym("fmi2FreeInstance"), cComp(c))
	logger.Delete()
}

func (l *Library) DoStep(c Component, currentTime, stepSize float64, noSetPrior bool) Status {
	return statusFromC(int32(C.call_doStep(l.sym("fmi2DoStep"), cComp(c), C.fmi2Real(currentTime), C.fmi2Real(stepSize), cBool(noSetPrior))))
}

func (l *Library) CancelStep(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2CancelStep"), cComp(c))))
}

func cComp(c Component) C.fmi2Component { return C.fmi2Component(unsafe.Pointer(uintptr(c))) }

func (l *Library) GetReal(c Component, vr []uint32, out []float64) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_getReal(l.sym("fmi2GetReal"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), (*C.fmi2Real)(unsafe.Pointer(&out[0])))))
}

func (l *Library) SetReal(c Component, vr []uint32, values []float64) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_setReal(l.sym("fmi2SetReal"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), (*C.fmi2Real)(unsafe.Pointer(&values[0])))))
}

func (l *Library) GetInteger(c Component, vr []uint32, out []int32) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_getInteger(l.sym("fmi2GetInteger"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), (*C.fmi2Integer)(unsafe.Pointer(&out[0])))))
}

func (l *Library) SetInteger(c Component, vr []uint32, values []int32) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_setInteger(l.sym("fmi2SetInteger"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), (*C.fmi2Integer)(unsafe.Pointer(&values[0])))))
}

func (l *Library) GetBoolean(c Component, vr []uint32, out []bool) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	raw := make([]C.fmi2Boolean, len(vr))
	status := statusFromC(int32(C.call_getBoolean(l.sym("fmi2GetBoolean"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), &raw[0])))
	for i, v := range raw {
		out[i] = v != 0
	}
	return status
}

func (l *Library) SetBoolean(c Component, vr []uint32, values []bool) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	raw := make([]C.fmi2Boolean, len(values))
	for i, v := range values {
		raw[i] = cBool(v)
	}
	return statusFromC(int32(C.call_setBoolean(l.sym("fmi2SetBoolean"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), &raw[0])))
}

func (l *Library) GetString(c Component, vr []uint32, out []string) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	raw := make([]*C.char, len(vr))
	status := statusFromC(int32(C.call_getString(l.sym("fmi2GetString"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), (*C.fmi2String)(unsafe.Pointer(&raw[0])))))
	for i, v := range raw {
		out[i] = C.GoString(v)
	}
	return status
}

func (l *Library) SetString(c Component, vr []uint32, values []string) Status {
	if len(vr) == 0 {
		return StatusOK
	}
	raw := make([]*C.char, len(values))
	for i, v := range values {
		raw[i] = C.CString(v)
	}
	defer func() {
		for _, p := range raw {
			C.free(unsafe.Pointer(p))
		}
	}()
	return statusFromC(int32(C.call_setString(l.sym("fmi2SetString"), cComp(c), (*C.fmi2ValueReference)(unsafe.Pointer(&vr[0])), C.size_t(len(vr)), (*C.fmi2String)(unsafe.Pointer(&raw[0])))))
}

func (l *Library) GetFMUstate(c Component) (FMUstate, Status) {
	var s C.fmi2FMUstate
	status := statusFromC(int32(C.call_getFMUstate(l.sym("fmi2GetFMUstate"), cComp(c), &s)))
	return FMUstate(s), status
}

func (l *Library) SetFMUstate(c Component, s FMUstate) Status {
	return statusFromC(int32(C.call_setFMUstate(l.sym("fmi2SetFMUstate"), cComp(c), C.fmi2FMUstate(s))))
}

func (l *Library) FreeFMUstate(c Component, s FMUstate) Status {
	cs := C.fmi2FMUstate(s)
	return statusFromC(int32(C.call_freeFMUstate(l.sym("fmi2FreeFMUstate"), cComp(c), &cs)))
}

func (l *Library) SerializeFMUstate(c Component, s FMUstate) ([]byte, Status) {
	var size C.size_t
	status := statusFromC(int32(C.call_serializedFMUstateSize(l.sym("fmi2SerializedFMUstateSize"), cComp(c), C.fmi2FMUstate(s), &size)))
	if !status.OK() {
		return nil, status
	}
	buf := make([]byte, int(size))
	if size == 0 {
		return buf, status
	}
	status = statusFromC(int32(C.call_serializeFMUstate(l.sym("fmi2SerializeFMUstate"), cComp(c), C.fmi2FMUstate(s), (*C.fmi2Char)(unsafe.Pointer(&buf[0])), size)))
	return buf, status
}

func (l *Library) DeSerializeFMUstate(c Component, data []byte) (FMUstate, Status) {
	var s C.fmi2FMUstate
	if len(data) == 0 {
		return nil, StatusError
	}
	status := statusFromC(int32(C.call_deSerializeFMUstate(l.sym("fmi2DeSerializeFMUstate"), cComp(c), (*C.fmi2Char)(unsafe.Pointer(&data[0])), C.size_t(len(data)), &s)))
	return FMUstate(s), status
}

func (l *Library) SetTime(c Component, t float64) Status {
	return statusFromC(int32(C.call_setTime(l.sym("fmi2SetTime"), cComp(c), C.fmi2Real(t))))
}

func (l *Library) SetContinuousStates(c Component, x []float64) Status {
	if len(x) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_setContinuousStates(l.sym("fmi2SetContinuousStates"), cComp(c), (*C.fmi2Real)(unsafe.Pointer(&x[0])), C.size_t(len(x)))))
}

func (l *Library) GetContinuousStates(c Component, x []float64) Status {
	if len(x) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_getContinuousStates(l.sym("fmi2GetContinuousStates"), cComp(c), (*C.fmi2Real)(unsafe.Pointer(&x[0])), C.size_t(len(x)))))
}

func (l *Library) GetEventIndicators(c Component, z []float64) Status {
	if len(z) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_getEventIndicators(l.sym("fmi2GetEventIndicators"), cComp(c), (*C.fmi2Real)(unsafe.Pointer(&z[0])), C.size_t(len(z)))))
}

func (l *Library) GetDerivatives(c Component, dx []float64) Status {
	if len(dx) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_getDerivatives(l.sym("fmi2GetDerivatives"), cComp(c), (*C.fmi2Real)(unsafe.Pointer(&dx[0])), C.size_t(len(dx)))))
}

func (l *Library) EnterEventMode(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2EnterEventMode"), cComp(c))))
}

func (l *Library) EnterContinuousTimeMode(c Component) Status {
	return statusFromC(int32(C.call_simple(l.sym("fmi2EnterContinuousTimeMode"), cComp(c))))
}

func (l *Library) NewDiscreteStates(c Component) (EventInfo, Status) {
	var ei C.fmi2EventInfo
	status := statusFromC(int32(C.call_newDiscreteStates(l.sym("fmi2NewDiscreteStates"), cComp(c), &ei)))
	return EventInfo{
		NewDiscreteStatesNeeded:           ei.newDiscreteStatesNeeded != 0,
		TerminateSimulation:               ei.terminateSimulation != 0,
		NominalsOfContinuousStatesChanged: ei.nominalsOfContinuousStatesChanged != 0,
		ValuesOfContinuousStatesChanged:   ei.valuesOfContinuousStatesChanged != 0,
		NextEventTimeDefined:              ei.nextEventTimeDefined != 0,
		NextEventTime:                     float64(ei.nextEventTime),
	}, status
}

func (l *Library) CompletedIntegratorStep(c Component, noSetPrior bool) (enterEventMode, terminate bool, status Status) {
	var cEnter, cTerm C.fmi2Boolean
	status = statusFromC(int32(C.call_completedIntegratorStep(l.sym("fmi2CompletedIntegratorStep"), cComp(c), cBool(noSetPrior), &cEnter, &cTerm)))
	return cEnter != 0, cTerm != 0, status
}

func (l *Library) GetNominalsOfContinuousStates(c Component, xNominal []float64) Status {
	if len(xNominal) == 0 {
		return StatusOK
	}
	return statusFromC(int32(C.call_getNominalsOfContinuousStates(l.sym("fmi2GetNominalsOfContinuousStates"), cComp(c), (*C.fmi2Real)(unsafe.Pointer(&xNominal[0])), C.size_t(len(xNominal)))))
}

func (l *Library) GetDirectionalDerivative(c Component, unknownVR, knownVR []uint32, knownDelta []float64) ([]float64, Status) {
	out := make([]float64, len(unknownVR))
	if len(unknownVR) == 0 {
		return out, StatusOK
	}
	status := statusFromC(int32(C.call_getDirectionalDerivative(
		l.sym("fmi2GetDirectionalDerivative"), cComp(c),
		(*C.fmi2ValueReference)(unsafe.Pointer(&unknownVR[0])), C.size_t(len(unknownVR)),
		(*C.fmi2ValueReference)(unsafe.Pointer(&knownVR[0])), C.size_t(len(knownVR)),
		(*C.fmi2Real)(unsafe.Pointer(&knownDelta[0])), (*C.fmi2Real)(unsafe.Pointer(&out[0])),
	)))
	return out, status
}
