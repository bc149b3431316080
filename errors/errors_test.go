package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{
			&SchemaError{Type: "main.Soil", Msg: "not a struct type"},
			"dseries: schema error in main.Soil: not a struct type",
		},
		{
			&IntegrityError{Section: "PROFILES", Msg: "count disagrees"},
			"dseries: integrity error in PROFILES: count disagrees",
		},
		{
			&FormatError{Section: "CPT", Line: 12, Msg: "expected key=value"},
			"dseries: format error in CPT at line 12: expected key=value",
		},
		{
			&FormatError{Line: 1, Msg: "expected [VERSION]"},
			"dseries: format error in document root at line 1: expected [VERSION]",
		},
		{
			&TruncatedInputError{Section: "SOIL COLLECTION", Line: 9, Msg: "expected [END OF SOIL]"},
			"dseries: truncated input in SOIL COLLECTION at line 9: expected [END OF SOIL]",
		},
		{
			&UnknownFieldError{Section: "VERSION", Line: 3, Key: "Mystery"},
			`dseries: unknown field "Mystery" in VERSION at line 3`,
		},
		{
			&UnsupportedVersionError{Schema: 1005, Tool: 1016, Msg: "supported range is 1010/1024 to 0/0"},
			"dseries: unsupported version (schema 1005, tool 1016): supported range is 1010/1024 to 0/0",
		},
	}
	for _, tt := range tests {
		require.EqualError(t, tt.err, tt.want)
	}
}

func TestIOFaultUnwrap(t *testing.T) {
	err := &IOFault{Op: "write", Path: "soils/soil.json", Err: fs.ErrPermission}
	require.ErrorIs(t, err, fs.ErrPermission)
	require.Contains(t, err.Error(), "soils/soil.json")

	var target *IOFault
	require.True(t, errors.As(error(err), &target))
}
