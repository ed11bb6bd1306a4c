package fmi

import (
	"github.com/fmi4go/fmi2/internal/adapter"
	"github.com/fmi4go/fmi2/internal/cabi"
	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/instance"
	"github.com/fmi4go/fmi2/internal/libcache"
)

var _ Slave = (*adapter.Adapter)(nil)

// ModelExchangeFmu is an Fmu that has loaded its Model-Exchange shared
// library and can instantiate Slaves that present the Co-Simulation
// contract over it via the ME→CS adapter.
type ModelExchangeFmu struct {
	fmu   *Fmu
	entry *libcache.Entry
}

// AsModelExchangeFmu loads the Model-Exchange binary declared by the
// description. Fails with UnsupportedOperation if the description doesn't
// declare the variant.
func (f *Fmu) AsModelExchangeFmu() (*ModelExchangeFmu, error) {
	if !f.SupportsModelExchange() {
		return nil, fmierr.NewUnsupportedOperation("AsModelExchangeFmu")
	}

	path, err := cabi.BinaryPath(f.resource.Directory(), f.desc.ModelExchange.ModelIdentifier)
	if err != nil {
		return nil, fmierr.NewPackageError("AsModelExchangeFmu", err)
	}

	entry, err := libcache.Default.Open(path, cabi.KindModelExchange)
	if err != nil {
		return nil, err
	}
	return &ModelExchangeFmu{fmu: f, entry: entry}, nil
}

// Instantiate creates a new Slave wrapping a fresh Model-Exchange component
// with the ME→CS adapter, integrating with cfg's solver.Integrator (the
// package default if cfg is nil: a fixed-step explicit-Euler solver at
// 1e-3).
func (m *ModelExchangeFmu) Instantiate(name string, cfg *Config) (Slave, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	me, err := instance.NewMEInstance(m.entry.Library, &instance.MEArgs{
		Resource:         m.fmu.resource,
		ModelDescription: m.fmu.desc,
		InstanceName:     name,
		LogCategories:    cfg.categories,
	})
	if err != nil {
		return nil, err
	}
	return adapter.New(me, cfg.integrator), nil
}

// Close releases this ModelExchangeFmu's reference to the loaded library.
// Safe to call once every Slave instantiated from it has been freed.
func (m *ModelExchangeFmu) Close() error { return m.entry.Release() }
