package fmi

import (
	"github.com/fmi4go/fmi2/internal/fmilog"
	"github.com/fmi4go/fmi2/solver"
)

// Config configures how an Fmu is opened and instantiated. The zero value is
// not usable; construct with NewConfig. Each With* method returns a new
// Config, leaving the receiver unmodified, so a base Config can be reused to
// derive several variants.
type Config struct {
	integrator solver.Integrator
	categories []fmilog.Category
}

func (c *Config) clone() *Config {
	ret := *c
	ret.categories = append([]fmilog.Category(nil), c.categories...)
	return &ret
}

// NewConfig returns a Config with the package defaults: a fixed-step
// explicit-Euler integrator at 1e-3 (used only when wrapping a
// Model-Exchange FMU) and no log categories enabled.
func NewConfig() *Config {
	return &Config{integrator: solver.NewEuler(1e-3)}
}

// WithIntegrator overrides the solver.Integrator used when wrapping a
// Model-Exchange FMU as a Slave. Has no effect on Co-Simulation FMUs, which
// always use their own embedded solver.
func (c *Config) WithIntegrator(integrator solver.Integrator) *Config {
	ret := c.clone()
	ret.integrator = integrator
	return ret
}

// WithLogCategories selects which FMI log categories are forwarded from the
// FMU's logger callback. fmilog.CategoryAll enables all of them.
func (c *Config) WithLogCategories(categories ...fmilog.Category) *Config {
	ret := c.clone()
	ret.categories = categories
	return ret
}
