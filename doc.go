// Package fmi imports FMI 2.0 Functional Mock-up Units (FMUs): it unpacks
// the package, parses the model description, dynamically binds the FMI 2.0
// C ABI, and drives the resulting instance through its lifecycle.
//
// FMUs come in two variants. A Co-Simulation FMU embeds its own solver and
// is driven directly. A Model-Exchange FMU exposes only state derivatives
// and event indicators; opening one as a Slave transparently wraps it with
// an ODE integrator and an event-detection loop so it can be driven the
// same way. Both variants satisfy the Slave interface.
//
//	f, err := fmi.Open("model.fmu")
//	slave, err := f.AsCoSimulationFmu()
//	s, err := slave.Instantiate("instance1", fmi.NewConfig())
//	s.SetupExperiment(false, 0, 0, false, 0)
//	s.EnterInitializationMode()
//	s.ExitInitializationMode()
//	ok, err := s.DoStep(1e-3)
package fmi
