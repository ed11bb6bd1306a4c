package instance

import (
	"github.com/fmi4go/fmi2/internal/fmilog"
	"github.com/fmi4go/fmi2/internal/resource"
	"github.com/fmi4go/fmi2/modeldescription"
)

// CoSimArgs groups the construction parameters for a Co-Simulation instance.
type CoSimArgs struct {
	Resource          *resource.Resource
	ModelDescription  *modeldescription.ModelDescription
	InstanceName      string
	LogCategories     []fmilog.Category
}

// MEArgs groups the construction parameters for a Model-Exchange instance.
type MEArgs struct {
	Resource          *resource.Resource
	ModelDescription  *modeldescription.ModelDescription
	InstanceName      string
	LogCategories     []fmilog.Category
}
