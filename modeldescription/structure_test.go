package modeldescription

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/assert"
)

// TestParse_StructureDeepEqual covers the same derived-dependency scenario as
// TestParse_DerivedUnknownDependencies but via gotest.tools/go-cmp's
// DeepEqual, matching the assertion style used elsewhere in the pack for
// whole-struct comparisons.
func TestParse_StructureDeepEqual(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<fmiModelDescription fmiVersion="2.0" modelName="X" guid="{1}">
  <ModelExchange modelIdentifier="X" numberOfContinuousStates="2" numberOfEventIndicators="1"/>
  <ModelVariables>
    <ScalarVariable name="x1" valueReference="1"><Real/></ScalarVariable>
    <ScalarVariable name="x2" valueReference="2"><Real/></ScalarVariable>
  </ModelVariables>
  <ModelStructure>
    <Derivatives>
      <Unknown index="1" dependencies="1 2" dependenciesKind="dependent dependent"/>
    </Derivatives>
  </ModelStructure>
</fmiModelDescription>`

	md, err := Parse(strings.NewReader(doc))
	assert.NilError(t, err)

	want := ModelStructure{
		Derivatives: []Unknown{
			{Index: 1, Dependencies: []int{1, 2}, DependenciesKind: []string{"dependent", "dependent"}},
		},
	}
	assert.DeepEqual(t, want, md.Structure)

	if diff := cmp.Diff(want, md.Structure); diff != "" {
		t.Fatalf("unexpected structure (-want +got):\n%s", diff)
	}
}
