// Package modeldescription models the typed contents of an FMI 2.0
// modelDescription.xml file: variables, causality/variability/initial
// metadata, the model structure's dependency graph, and the two
// discriminated subtypes (Co-Simulation and Model Exchange) that share a
// common core.
//
// This package only decodes structure; it does not validate the
// modelDescription.xml schema beyond what the adapter and facade require.
package modeldescription

import "fmt"

// ValueReference is the ABI identifier of a variable.
type ValueReference = uint32

// Causality classifies how a variable participates in the model's interface.
type Causality string

const (
	CausalityParameter            Causality = "parameter"
	CausalityCalculatedParameter  Causality = "calculatedParameter"
	CausalityInput                Causality = "input"
	CausalityOutput                Causality = "output"
	CausalityLocal                 Causality = "local"
	CausalityIndependent           Causality = "independent"
)

// Variability classifies how often a variable may change.
type Variability string

const (
	VariabilityConstant   Variability = "constant"
	VariabilityFixed      Variability = "fixed"
	VariabilityTunable    Variability = "tunable"
	VariabilityDiscrete   Variability = "discrete"
	VariabilityContinuous Variability = "continuous"
)

// Initial classifies how a variable's value is determined in initialization mode.
type Initial string

const (
	InitialExact        Initial = "exact"
	InitialApprox        Initial = "approx"
	InitialCalculated    Initial = "calculated"
)

// TypeTag is the ABI scalar kind of a variable.
type TypeTag int

const (
	TypeReal TypeTag = iota
	TypeInteger
	TypeBoolean
	TypeString
	TypeEnumeration
)

func (t TypeTag) String() string {
	switch t {
	case TypeReal:
		return "Real"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	case TypeString:
		return "String"
	case TypeEnumeration:
		return "Enumeration"
	default:
		return fmt.Sprintf("TypeTag(%d)", int(t))
	}
}

// RealAttributes holds the per-type attributes carried by a Real variable.
type RealAttributes struct {
	Start            *float64
	Min, Max         *float64
	Unit             string
	Derivative       int // 1-based index of the variable this is the derivative of, 0 if none
	Reinit           bool
}

// IntegerAttributes holds the per-type attributes carried by an Integer variable.
type IntegerAttributes struct {
	Start    *int32
	Min, Max *int32
}

// BooleanAttributes holds the per-type attributes carried by a Boolean variable.
type BooleanAttributes struct {
	Start *bool
}

// StringAttributes holds the per-type attributes carried by a String variable.
type StringAttributes struct {
	Start string
}

// EnumerationAttributes holds the per-type attributes carried by an Enumeration variable.
type EnumerationAttributes struct {
	Start *int32
}

// ScalarVariable describes one variable exposed by the FMU. It is immutable
// after the description is parsed.
type ScalarVariable struct {
	Name           string
	ValueReference ValueReference
	Description    string
	Causality      Causality
	Variability    Variability
	Initial        Initial
	Type           TypeTag

	Real        RealAttributes
	Integer     IntegerAttributes
	Boolean     BooleanAttributes
	String      StringAttributes
	Enumeration EnumerationAttributes
}

func (v ScalarVariable) IsReal() bool        { return v.Type == TypeReal }
func (v ScalarVariable) IsInteger() bool     { return v.Type == TypeInteger }
func (v ScalarVariable) IsBoolean() bool     { return v.Type == TypeBoolean }
func (v ScalarVariable) IsString() bool      { return v.Type == TypeString }
func (v ScalarVariable) IsEnumeration() bool { return v.Type == TypeEnumeration }

// Unknown is one entry of a <ModelStructure> dependency list: the 1-based
// index of the variable in the model's variable list, optionally the
// 1-based indices of the variables it depends on and the nature of each
// dependency.
type Unknown struct {
	Index            int
	DependenciesKind []string
	Dependencies     []int
}

// ModelStructure records the FMU's declared outputs, derivatives and
// initial-unknowns dependency graphs.
type ModelStructure struct {
	Outputs          []Unknown
	Derivatives      []Unknown
	InitialUnknowns  []Unknown
}

// CommonAttributes are attributes shared verbatim between the Co-Simulation
// and Model Exchange subtypes.
type CommonAttributes struct {
	ModelIdentifier          string
	NeedsExecutionTool       bool
	CanBeInstantiatedOnlyOncePerProcess bool
	CanNotUseMemoryManagementFunctions  bool
	CanGetAndSetFMUstate      bool
	CanSerializeFMUstate      bool
	ProvidesDirectionalDerivative bool
}

// CoSimulationAttributes are the attributes unique to the Co-Simulation
// variant, per spec.md §3.
type CoSimulationAttributes struct {
	CommonAttributes
	CanHandleVariableCommunicationStepSize bool
	MaxOutputDerivativeOrder                int
	CanInterpolateInputs                    bool
	CanRunAsynchronously                    bool
}

// ModelExchangeAttributes are the attributes unique to the Model Exchange
// variant, per spec.md §3.
type ModelExchangeAttributes struct {
	CommonAttributes
	CompletedIntegratorStepNotNeeded bool
	NumberOfContinuousStates          int
	NumberOfEventIndicators            int
}

// Kind discriminates which FMI variant(s) a description declares.
type Kind int

const (
	KindCoSimulation Kind = iota
	KindModelExchange
)

// ModelDescription is the parsed contents of modelDescription.xml.
//
// CoSimulation and ModelExchange are each non-nil exactly when the FMU
// declares that kind; an FMU may declare both.
type ModelDescription struct {
	GUID            string
	ModelName       string
	FMIVersion      string
	GenerationTool  string
	Variables       []ScalarVariable
	Structure       ModelStructure

	CoSimulation   *CoSimulationAttributes
	ModelExchange  *ModelExchangeAttributes
}

// SupportsCoSimulation reports whether the description declares the
// Co-Simulation variant.
func (m *ModelDescription) SupportsCoSimulation() bool { return m.CoSimulation != nil }

// SupportsModelExchange reports whether the description declares the Model
// Exchange variant.
func (m *ModelDescription) SupportsModelExchange() bool { return m.ModelExchange != nil }

// VariableByName looks up a variable by its declared name.
func (m *ModelDescription) VariableByName(name string) (ScalarVariable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return ScalarVariable{}, false
}

// ValueReferenceOf is a convenience wrapper returning just the value
// reference of a named variable.
func (m *ModelDescription) ValueReferenceOf(name string) (ValueReference, bool) {
	v, ok := m.VariableByName(name)
	if !ok {
		return 0, false
	}
	return v.ValueReference, true
}

// WithCoSimulationView returns a new CoSimulationAttributes derived from
// the Model Exchange attributes me, per
// spec.md §4.6: canHandleVariableCommunicationStepSize = true,
// maxOutputDerivativeOrder = 0, other shared attributes copied verbatim.
//
// This is used by the ME→CS adapter (internal/adapter) to present a
// Co-Simulation-shaped ModelDescription to callers that only asked for a
// Slave, never for how it's implemented underneath.
func WithCoSimulationView(me *ModelExchangeAttributes) *CoSimulationAttributes {
	return &CoSimulationAttributes{
		CommonAttributes:                        me.CommonAttributes,
		CanHandleVariableCommunicationStepSize: true,
		MaxOutputDerivativeOrder:                0,
		CanInterpolateInputs:                    false,
		CanRunAsynchronously:                    false,
	}
}
