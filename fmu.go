package fmi

import (
	"os"
	"path/filepath"

	"github.com/fmi4go/fmi2/internal/fmierr"
	"github.com/fmi4go/fmi2/internal/resource"
	"github.com/fmi4go/fmi2/modeldescription"
)

// Fmu is an opened, parsed FMU package: the unpacked resource directory plus
// its model description. No shared library is loaded yet — that happens
// lazily in AsCoSimulationFmu/AsModelExchangeFmu, since Co-Simulation and
// Model-Exchange variants of the same FMU may name different binaries.
type Fmu struct {
	resource *resource.Resource
	desc     *modeldescription.ModelDescription
}

// Open unpacks the zip archive at path and parses its modelDescription.xml.
func Open(path string) (*Fmu, error) {
	res, err := resource.Open(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(res.Directory(), "modelDescription.xml"))
	if err != nil {
		res.Release()
		return nil, fmierr.NewPackageError("fmi.Open", err)
	}
	defer f.Close()

	desc, err := modeldescription.Parse(f)
	if err != nil {
		res.Release()
		return nil, fmierr.NewPackageError("fmi.Open", err)
	}

	return &Fmu{resource: res, desc: desc}, nil
}

// ModelDescription returns the parsed model description.
func (f *Fmu) ModelDescription() *modeldescription.ModelDescription { return f.desc }

// SupportsCoSimulation reports whether the description declares the
// Co-Simulation variant.
func (f *Fmu) SupportsCoSimulation() bool { return f.desc.SupportsCoSimulation() }

// SupportsModelExchange reports whether the description declares the Model
// Exchange variant.
func (f *Fmu) SupportsModelExchange() bool { return f.desc.SupportsModelExchange() }

// Close releases the Fmu's reference to the unpacked resource directory.
// Safe to call once every Slave derived from this Fmu has been freed; the
// directory itself is removed only when the last reference (held by this
// Fmu and by every live Instance) is released.
func (f *Fmu) Close() error { return f.resource.Release() }
