package cabi

import "runtime/cgo"

// Backend is the full FMI 2.0 function table surface internal/instance
// drives. *Library implements it against a real dlopen'd shared object;
// tests substitute a fake Backend double in its place so the state-machine
// and adapter logic can be exercised without a compiled FMU binary (see
// SPEC_FULL.md §8).
type Backend interface {
	Instantiate(instanceName string, kind Kind, guid, resourceLocation string, logger LoggerFunc, visible, loggingOn bool) (Component, cgo.Handle, error)
	SetupExperiment(c Component, toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) Status
	EnterInitializationMode(c Component) Status
	ExitInitializationMode(c Component) Status
	Terminate(c Component) Status
	Reset(c Component) Status
	FreeInstance(c Component, logger cgo.Handle)

	DoStep(c Component, currentTime, stepSize float64, noSetPrior bool) Status
	CancelStep(c Component) Status

	GetReal(c Component, vr []uint32, out []float64) Status
	SetReal(c Component, vr []uint32, values []float64) Status
	GetInteger(c Component, vr []uint32, out []int32) Status
	SetInteger(c Component, vr []uint32, values []int32) Status
	GetBoolean(c Component, vr []uint32, out []bool) Status
	SetBoolean(c Component, vr []uint32, values []bool) Status
	GetString(c Component, vr []uint32, out []string) Status
	SetString(c Component, vr []uint32, values []string) Status

	GetFMUstate(c Component) (FMUstate, Status)
	SetFMUstate(c Component, s FMUstate) Status
	FreeFMUstate(c Component, s FMUstate) Status
	SerializeFMUstate(c Component, s FMUstate) ([]byte, Status)
	DeSerializeFMUstate(c Component, data []byte) (FMUstate, Status)
	GetDirectionalDerivative(c Component, unknownVR, knownVR []uint32, knownDelta []float64) ([]float64, Status)

	SetTime(c Component, t float64) Status
	SetContinuousStates(c Component, x []float64) Status
	GetContinuousStates(c Component, x []float64) Status
	GetEventIndicators(c Component, z []float64) Status
	GetDerivatives(c Component, dx []float64) Status
	EnterEventMode(c Component) Status
	EnterContinuousTimeMode(c Component) Status
	NewDiscreteStates(c Component) (EventInfo, Status)
	CompletedIntegratorStep(c Component, noSetPrior bool) (enterEventMode, terminate bool, status Status)
	GetNominalsOfContinuousStates(c Component, xNominal []float64) Status
}
