package modeldescription

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// xmlModelDescription mirrors the subset of the FMI 2.0 modelDescription.xml
// schema this importer cares about. Field names intentionally match the XML
// attribute/element names so struct tags stay legible.
type xmlModelDescription struct {
	XMLName        xml.Name          `xml:"fmiModelDescription"`
	GUID           string            `xml:"guid,attr"`
	ModelName      string            `xml:"modelName,attr"`
	FMIVersion     string            `xml:"fmiVersion,attr"`
	GenerationTool string            `xml:"generationTool,attr"`

	CoSimulation  *xmlCoSimulation  `xml:"CoSimulation"`
	ModelExchange *xmlModelExchange `xml:"ModelExchange"`

	ModelVariables struct {
		Variables []xmlScalarVariable `xml:"ScalarVariable"`
	} `xml:"ModelVariables"`

	ModelStructure struct {
		Outputs         []xmlUnknown `xml:"Outputs>Unknown"`
		Derivatives     []xmlUnknown `xml:"Derivatives>Unknown"`
		InitialUnknowns []xmlUnknown `xml:"InitialUnknowns>Unknown"`
	} `xml:"ModelStructure"`
}

type xmlCommonAttrs struct {
	ModelIdentifier                     string `xml:"modelIdentifier,attr"`
	NeedsExecutionTool                  bool   `xml:"needsExecutionTool,attr"`
	CanBeInstantiatedOnlyOncePerProcess bool   `xml:"canBeInstantiatedOnlyOncePerProcess,attr"`
	CanNotUseMemoryManagementFunctions  bool   `xml:"canNotUseMemoryManagementFunctions,attr"`
	CanGetAndSetFMUstate                bool   `xml:"canGetAndSetFMUstate,attr"`
	CanSerializeFMUstate                bool   `xml:"canSerializeFMUstate,attr"`
	ProvidesDirectionalDerivative       bool   `xml:"providesDirectionalDerivative,attr"`
}

type xmlCoSimulation struct {
	xmlCommonAttrs
	CanHandleVariableCommunicationStepSize bool `xml:"canHandleVariableCommunicationStepSize,attr"`
	MaxOutputDerivativeOrder               int  `xml:"maxOutputDerivativeOrder,attr"`
	CanInterpolateInputs                    bool `xml:"canInterpolateInputs,attr"`
	CanRunAsynchronously                     bool `xml:"canRunAsynchronously,attr"`
}

type xmlModelExchange struct {
	xmlCommonAttrs
	CompletedIntegratorStepNotNeeded bool `xml:"completedIntegratorStepNotNeeded,attr"`
	NumberOfContinuousStates          int  `xml:"numberOfContinuousStates,attr"`
	NumberOfEventIndicators            int  `xml:"numberOfEventIndicators,attr"`
}

type xmlScalarVariable struct {
	Name           string `xml:"name,attr"`
	ValueReference uint32 `xml:"valueReference,attr"`
	Description    string `xml:"description,attr"`
	Causality      string `xml:"causality,attr"`
	Variability    string `xml:"variability,attr"`
	Initial        string `xml:"initial,attr"`

	Real        *xmlReal        `xml:"Real"`
	Integer     *xmlInteger     `xml:"Integer"`
	Boolean     *xmlBoolean     `xml:"Boolean"`
	String      *xmlString      `xml:"String"`
	Enumeration *xmlEnumeration `xml:"Enumeration"`
}

type xmlReal struct {
	Start      *float64 `xml:"start,attr"`
	Min        *float64 `xml:"min,attr"`
	Max        *float64 `xml:"max,attr"`
	Unit       string   `xml:"unit,attr"`
	Derivative int      `xml:"derivative,attr"`
	Reinit     bool     `xml:"reinit,attr"`
}

type xmlInteger struct {
	Start *int32 `xml:"start,attr"`
	Min   *int32 `xml:"min,attr"`
	Max   *int32 `xml:"max,attr"`
}

type xmlBoolean struct {
	Start *bool `xml:"start,attr"`
}

type xmlString struct {
	Start string `xml:"start,attr"`
}

type xmlEnumeration struct {
	Start *int32 `xml:"start,attr"`
}

type xmlUnknown struct {
	Index            int    `xml:"index,attr"`
	DependenciesKind string `xml:"dependenciesKind,attr"`
	Dependencies     string `xml:"dependencies,attr"`
}

func (u xmlUnknown) toUnknown() (Unknown, error) {
	out := Unknown{Index: u.Index}
	if u.DependenciesKind != "" {
		out.DependenciesKind = splitFields(u.DependenciesKind)
	}
	if u.Dependencies != "" {
		for _, f := range splitFields(u.Dependencies) {
			n, err := strconv.Atoi(f)
			if err != nil {
				return Unknown{}, fmt.Errorf("modeldescription: bad dependency index %q: %w", f, err)
			}
			out.Dependencies = append(out.Dependencies, n)
		}
	}
	return out, nil
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

// Parse decodes a modelDescription.xml document into a ModelDescription.
// It returns an error if the XML is malformed or a required attribute is
// missing; it does not perform full schema validation.
func Parse(r io.Reader) (*ModelDescription, error) {
	var doc xmlModelDescription
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("modeldescription: decode: %w", err)
	}
	if doc.GUID == "" || doc.ModelName == "" {
		return nil, fmt.Errorf("modeldescription: missing required guid or modelName attribute")
	}

	md := &ModelDescription{
		GUID:           doc.GUID,
		ModelName:      doc.ModelName,
		FMIVersion:     doc.FMIVersion,
		GenerationTool: doc.GenerationTool,
	}

	for _, v := range doc.ModelVariables.Variables {
		sv, err := v.toScalarVariable()
		if err != nil {
			return nil, err
		}
		md.Variables = append(md.Variables, sv)
	}

	for _, u := range doc.ModelStructure.Outputs {
		out, err := u.toUnknown()
		if err != nil {
			return nil, err
		}
		md.Structure.Outputs = append(md.Structure.Outputs, out)
	}
	for _, u := range doc.ModelStructure.Derivatives {
		out, err := u.toUnknown()
		if err != nil {
			return nil, err
		}
		md.Structure.Derivatives = append(md.Structure.Derivatives, out)
	}
	for _, u := range doc.ModelStructure.InitialUnknowns {
		out, err := u.toUnknown()
		if err != nil {
			return nil, err
		}
		md.Structure.InitialUnknowns = append(md.Structure.InitialUnknowns, out)
	}

	if doc.CoSimulation != nil {
		md.CoSimulation = &CoSimulationAttributes{
			CommonAttributes:                        doc.CoSimulation.xmlCommonAttrs.toCommon(),
			CanHandleVariableCommunicationStepSize: doc.CoSimulation.CanHandleVariableCommunicationStepSize,
			MaxOutputDerivativeOrder:                doc.CoSimulation.MaxOutputDerivativeOrder,
			CanInterpolateInputs:                    doc.CoSimulation.CanInterpolateInputs,
			CanRunAsynchronously:                    doc.CoSimulation.CanRunAsynchronously,
		}
	}
	if doc.ModelExchange != nil {
		md.ModelExchange = &ModelExchangeAttributes{
			CommonAttributes:                  doc.ModelExchange.xmlCommonAttrs.toCommon(),
			CompletedIntegratorStepNotNeeded: doc.ModelExchange.CompletedIntegratorStepNotNeeded,
			NumberOfContinuousStates:          doc.ModelExchange.NumberOfContinuousStates,
			NumberOfEventIndicators:            doc.ModelExchange.NumberOfEventIndicators,
		}
	}
	if md.CoSimulation == nil && md.ModelExchange == nil {
		return nil, fmt.Errorf("modeldescription: neither CoSimulation nor ModelExchange declared")
	}

	return md, nil
}

func (c xmlCommonAttrs) toCommon() CommonAttributes {
	return CommonAttributes{
		ModelIdentifier:                      c.ModelIdentifier,
		NeedsExecutionTool:                   c.NeedsExecutionTool,
		CanBeInstantiatedOnlyOncePerProcess: c.CanBeInstantiatedOnlyOncePerProcess,
		CanNotUseMemoryManagementFunctions:  c.CanNotUseMemoryManagementFunctions,
		CanGetAndSetFMUstate:                 c.CanGetAndSetFMUstate,
		CanSerializeFMUstate:                 c.CanSerializeFMUstate,
		ProvidesDirectionalDerivative:        c.ProvidesDirectionalDerivative,
	}
}

func (v xmlScalarVariable) toScalarVariable() (ScalarVariable, error) {
	sv := ScalarVariable{
		Name:           v.Name,
		ValueReference: v.ValueReference,
		Description:    v.Description,
		Causality:      Causality(v.Causality),
		Variability:    Variability(v.Variability),
		Initial:        Initial(v.Initial),
	}
	if sv.Causality == "" {
		sv.Causality = CausalityLocal
	}
	if sv.Variability == "" {
		sv.Variability = VariabilityContinuous
	}

	switch {
	case v.Real != nil:
		sv.Type = TypeReal
		sv.Real = RealAttributes{
			Start: v.Real.Start, Min: v.Real.Min, Max: v.Real.Max,
			Unit: v.Real.Unit, Derivative: v.Real.Derivative, Reinit: v.Real.Reinit,
		}
	case v.Integer != nil:
		sv.Type = TypeInteger
		sv.Integer = IntegerAttributes{Start: v.Integer.Start, Min: v.Integer.Min, Max: v.Integer.Max}
	case v.Boolean != nil:
		sv.Type = TypeBoolean
		sv.Boolean = BooleanAttributes{Start: v.Boolean.Start}
	case v.String != nil:
		sv.Type = TypeString
		sv.String = StringAttributes{Start: v.String.Start}
	case v.Enumeration != nil:
		sv.Type = TypeEnumeration
		sv.Enumeration = EnumerationAttributes{Start: v.Enumeration.Start}
	default:
		return ScalarVariable{}, fmt.Errorf("modeldescription: variable %q declares no type", v.Name)
	}

	return sv, nil
}
