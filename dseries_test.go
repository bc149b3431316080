package dseries_test

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/require"

	dseries "github.com/mwestland/go-dseries"
)

// The fixture schema below is a trimmed bearing-pile input file: enough of
// the real document shapes to exercise every structural kind.

type projectVersion struct {
	dseries.Inline
	Soil        int `dseries:"Soil"`
	Foundations int `dseries:"D-Foundations"`
}

type externalVersions struct {
	dseries.InlineMapped
	CalcDLL string `dseries:"DGSFoundationCalc.dll"`
}

type soil struct {
	dseries.Tree
	Name   string
	GamDry float64
	GamWet float64
}

type soilCollection struct {
	dseries.Collection
	Soils []soil
}

type cpt struct {
	dseries.Inline
	CPTName     string         `dseries:"CPTName"`
	XWorld      float64        `dseries:"XWorld,sentinel"`
	GroundLevel float64        `dseries:"GroundLevel"`
	Extra       dseries.Opaque `dseries:",tail"`
}

type layer struct {
	dseries.Tree
	Material              int
	TopLevel              float64
	ExcessPorePressureTop float64
	OCRValue              float64
}

type profile struct {
	dseries.Tree
	Name          string
	PhreaticLevel float64
	Layers        []layer
}

type profiles struct {
	dseries.TreeCollection
	Count    int `dseries:",count"`
	Profiles []profile
}

type calcOptions struct {
	dseries.Inline
	IsRigid        dseries.Bool
	FactorXi3      *float64
	IsXi3Overruled dseries.Bool
}

type inputFile struct {
	dseries.Block
	Version            projectVersion
	VersionExternals   externalVersions
	RunIdentification  string
	SoilCollection     soilCollection
	CPT                cpt
	Profiles           profiles
	Slopes             dseries.Opaque
	CalculationOptions dseries.Variant[calcOptions]
	PreliminaryDesign  *preliminaryDesign
}

type preliminaryDesign struct {
	dseries.Inline
	TrajectoryBegin float64
	TrajectoryEnd   float64
}

func (f *inputFile) DocumentVersion() dseries.Version {
	return dseries.Version{Schema: f.Version.Soil, Tool: f.Version.Foundations}
}

func (f *inputFile) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.RunIdentification, dseries.NewlineCount(6)),
	)
}

func floatPtr(v float64) *float64 { return &v }

func newInputFile() inputFile {
	return inputFile{
		Version:           projectVersion{Soil: 1010, Foundations: 1024},
		VersionExternals:  externalVersions{CalcDLL: "23.1.0.40358"},
		RunIdentification: "Series test\nBearing piles\n\n\n\n\n",
		SoilCollection: soilCollection{Soils: []soil{
			{Name: "Sand", GamDry: 17, GamWet: 19},
			{Name: "Clay", GamDry: 14, GamWet: 14.5},
		}},
		CPT: cpt{CPTName: "S-01", XWorld: dseries.SentinelValue, GroundLevel: -0.5},
		Profiles: profiles{Count: 1, Profiles: []profile{
			{Name: "DKM-1", PhreaticLevel: -1.2, Layers: []layer{
				{Material: 1, TopLevel: 0, ExcessPorePressureTop: 0, OCRValue: 1},
				{Material: 2, TopLevel: -5.25, ExcessPorePressureTop: 0, OCRValue: 1},
			}},
		}},
		Slopes: "0 = number of items\n",
		CalculationOptions: dseries.Typed(calcOptions{
			IsRigid:        dseries.True,
			FactorXi3:      floatPtr(1.39),
			IsXi3Overruled: dseries.True,
		}),
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	doc := newInputFile()

	data, err := dseries.Marshal(&doc)
	require.NoError(t, err)

	var got inputFile
	require.NoError(t, dseries.Unmarshal(data, &got))
	require.Equal(t, doc, got)
}

func TestRoundTripIsStable(t *testing.T) {
	doc := newInputFile()

	first, err := dseries.Marshal(&doc)
	require.NoError(t, err)

	var got inputFile
	require.NoError(t, dseries.Unmarshal(first, &got))

	second, err := dseries.Marshal(&got)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestUnmarshalRequiresPointer(t *testing.T) {
	var doc inputFile
	require.Error(t, dseries.Unmarshal([]byte("x"), doc))
	require.Error(t, dseries.Unmarshal([]byte("x"), nil))
}

func TestPlanStructure(t *testing.T) {
	doc := newInputFile()

	node, err := dseries.Plan(&doc)
	require.NoError(t, err)

	names := make([]string, len(node.Children))
	for i, c := range node.Children {
		names[i] = c.Name
	}
	// PreliminaryDesign is nil and must be absent from the plan entirely.
	require.Equal(t, []string{
		"VERSION",
		"VERSION EXTERNALS",
		"RUN IDENTIFICATION",
		"SOIL COLLECTION",
		"CPT",
		"PROFILES",
		"SLOPES",
		"CALCULATION OPTIONS",
	}, names)
}
