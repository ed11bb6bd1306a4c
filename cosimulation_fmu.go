package fmi

import (
	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/instance"
	"github.com/fmi4go/fmi2/internal/libcache"
)

var _ Slave = (*instance.CoSimInstance)(nil)

// CoSimulationFmu is an Fmu that has loaded its Co-Simulation shared
// library and can instantiate Slaves directly bound to it.
type CoSimulationFmu struct {
	fmu   *Fmu
	entry *libcache.Entry
}

// AsCoSimulationFmu loads the Co-Simulation binary declared by the
// description. Fails with UnsupportedOperation if the description doesn't
// declare the variant.
func (f *Fmu) AsCoSimulationFmu() (*CoSimulationFmu, error) {
	if !f.SupportsCoSimulation() {
		return nil, fmierr.NewUnsupportedOperation("AsCoSimulationFmu")
	}

	path, err := cabi.BinaryPath(f.resource.Directory(), f.desc.CoSimulation.ModelIdentifier)
	if err != nil {
		return nil, fmierr.NewPackageError("AsCoSimulationFmu", err)
	}

	entry, err := libcache.Default.Open(path, cabi.KindCoSimulation)
	if err != nil {
		return nil, err
	}
	return &CoSimulationFmu{fmu: f, entry: entry}, nil
}

// Instantiate creates a new Co-Simulation Slave. cfg may be nil to use
// package defaults; only cfg's log categories are meaningful here (the
// integrator option only applies to Model-Exchange FMUs).
func (c *CoSimulationFmu) Instantiate(name string, cfg *Config) (Slave, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	return instance.NewCoSimInstance(c.entry.Library, &instance.CoSimArgs{
		Resource:         c.fmu.resource,
		ModelDescription: c.fmu.desc,
		InstanceName:     name,
		LogCategories:    cfg.categories,
	})
}

// Close releases this CoSimulationFmu's reference to the loaded library.
// Safe to call once every Slave instantiated from it has been freed.
func (c *CoSimulationFmu) Close() error { return c.entry.Release() }
