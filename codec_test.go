package dseries

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	dserrors "github.com/mwestland/go-dseries/errors"
)

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		sentinel bool
		want     string
	}{
		{"string", "Sand", false, "Sand"},
		{"bool true", true, false, "1"},
		{"bool false", false, false, "0"},
		{"format bool", True, false, "1"},
		{"int", -42, false, "-42"},
		{"float", 17.25, false, "17.25"},
		{"float integral", 19.0, false, "19"},
		{"sentinel kept", SentinelValue, true, SentinelLiteral},
		{"sentinel not declared", SentinelValue, false, "987654321"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatScalar(reflect.ValueOf(tt.value), tt.sentinel)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFormatScalarNilPointer(t *testing.T) {
	var p *float64
	_, err := formatScalar(reflect.ValueOf(p), false)
	require.Error(t, err)
}

func TestParseScalar(t *testing.T) {
	var f float64
	require.NoError(t, parseScalar(" -5.25 ", reflect.ValueOf(&f).Elem(), false))
	require.Equal(t, -5.25, f)

	require.NoError(t, parseScalar(SentinelLiteral, reflect.ValueOf(&f).Elem(), true))
	require.Equal(t, SentinelValue, f)

	var n int
	require.NoError(t, parseScalar(" 17 ", reflect.ValueOf(&n).Elem(), false))
	require.Equal(t, 17, n)
	require.Error(t, parseScalar("abc", reflect.ValueOf(&n).Elem(), false))

	var b bool
	require.NoError(t, parseScalar("1", reflect.ValueOf(&b).Elem(), false))
	require.True(t, b)
	require.Error(t, parseScalar("2", reflect.ValueOf(&b).Elem(), false))

	var u uint8
	require.Error(t, parseScalar("300", reflect.ValueOf(&u).Elem(), false))

	var s string
	require.NoError(t, parseScalar("  kept verbatim  ", reflect.ValueOf(&s).Elem(), false))
	require.Equal(t, "  kept verbatim  ", s)
}

func TestParseScalarAllocatesPointer(t *testing.T) {
	var p *float64
	require.NoError(t, parseScalar("1.39", reflect.ValueOf(&p).Elem(), false))
	require.NotNil(t, p)
	require.Equal(t, 1.39, *p)
}

// pileShape is an enumerated code with a legacy textual token.
type pileShape int

const (
	shapeRound pileShape = iota
	shapeRect
)

func (s pileShape) MarshalDSeries() ([]byte, error) {
	switch s {
	case shapeRound:
		return []byte("Rond"), nil
	case shapeRect:
		return []byte("Rect"), nil
	}
	return nil, fmt.Errorf("unknown pile shape %d", int(s))
}

func (s *pileShape) UnmarshalDSeries(data []byte) error {
	switch string(data) {
	case "Rond":
		*s = shapeRound
	case "Rect":
		*s = shapeRect
	default:
		return fmt.Errorf("unknown pile shape token %q", data)
	}
	return nil
}

type pileSpec struct {
	Inline
	Shape pileShape
}

type pileFile struct {
	Block
	PileSpec pileSpec
}

func TestCustomMarshaler(t *testing.T) {
	doc := pileFile{PileSpec: pileSpec{Shape: shapeRect}}

	data, err := Marshal(&doc)
	require.NoError(t, err)
	require.Equal(t, "[PILE SPEC]\nShape=Rect\n[END OF PILE SPEC]\n", string(data))

	var got pileFile
	require.NoError(t, Unmarshal(data, &got))
	require.Equal(t, doc, got)
}

func TestCustomMarshalerError(t *testing.T) {
	doc := pileFile{PileSpec: pileSpec{Shape: pileShape(9)}}

	_, err := Marshal(&doc)
	var merr *MarshalerError
	require.True(t, errors.As(err, &merr))
}

func TestCustomUnmarshalerError(t *testing.T) {
	var got pileFile
	err := Unmarshal([]byte("[PILE SPEC]\nShape=Ovaal\n[END OF PILE SPEC]\n"), &got)
	var ferr *dserrors.FormatError
	require.ErrorAs(t, err, &ferr)
	require.Contains(t, ferr.Msg, "unknown pile shape token")
}
