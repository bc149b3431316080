package dseries_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	dseries "github.com/mwestland/go-dseries"
	dserrors "github.com/mwestland/go-dseries/errors"
)

func TestVersionRangeContains(t *testing.T) {
	r := dseries.VersionRange{
		Min: dseries.Version{Schema: 1000, Tool: 1000},
		Max: dseries.Version{Schema: 1100, Tool: 1100},
	}

	require.True(t, r.Contains(dseries.Version{Schema: 1010, Tool: 1024}))
	require.True(t, r.Contains(dseries.Version{Schema: 1000, Tool: 1000}))
	require.True(t, r.Contains(dseries.Version{Schema: 1100, Tool: 1100}))
	require.False(t, r.Contains(dseries.Version{Schema: 999, Tool: 1024}))
	require.False(t, r.Contains(dseries.Version{Schema: 1010, Tool: 1101}))

	// A zero Max leaves the range open-ended.
	open := dseries.VersionRange{Min: dseries.Version{Schema: 1000, Tool: 1000}}
	require.True(t, open.Contains(dseries.Version{Schema: 9999, Tool: 9999}))
}

func TestUnmarshalVersionGate(t *testing.T) {
	supported := dseries.VersionRange{
		Min: dseries.Version{Schema: 1000, Tool: 1000},
		Max: dseries.Version{Schema: 1100, Tool: 1100},
	}

	var got inputFile
	require.NoError(t, dseries.Unmarshal([]byte(canonicalText), &got,
		dseries.WithVersionRange(supported)))

	tooOld := dseries.VersionRange{
		Min: dseries.Version{Schema: 1011, Tool: 1025},
	}
	got = inputFile{}
	err := dseries.Unmarshal([]byte(canonicalText), &got,
		dseries.WithVersionRange(tooOld))
	var verr *dserrors.UnsupportedVersionError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, 1010, verr.Schema)
	require.Equal(t, 1024, verr.Tool)

	// The document is fully populated alongside the version error, so the
	// caller can decide to proceed best-effort.
	require.Equal(t, "S-01", got.CPT.CPTName)
}

func TestUnmarshalVersionGateOverride(t *testing.T) {
	tooOld := dseries.VersionRange{
		Min: dseries.Version{Schema: 1011, Tool: 1025},
	}

	var got inputFile
	require.NoError(t, dseries.Unmarshal([]byte(canonicalText), &got,
		dseries.WithVersionRange(tooOld),
		dseries.AllowUnsupportedVersion()))
	require.Equal(t, 1010, got.Version.Soil)
}

func TestVersionString(t *testing.T) {
	require.Equal(t, "1010/1024", dseries.Version{Schema: 1010, Tool: 1024}.String())
}
