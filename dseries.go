package dseries

import "bytes"

// Marshaler is the interface implemented by types that can render
// themselves as a single D-Series token.
type Marshaler interface {
	MarshalDSeries() ([]byte, error)
}

// Unmarshaler is the interface implemented by types that can parse
// themselves from a single D-Series token.
type Unmarshaler interface {
	UnmarshalDSeries([]byte) error
}

// Marshal returns the flat-text D-Series encoding of the document v.
//
// v must be a struct (or pointer to struct) embedding dseries.Block; its
// fields render in declaration order as bracketed sections.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses flat-text D-Series data into the value pointed to by v.
//
// A failed parse returns no partial result: v is only populated when the
// whole document matches the declared schema. The one exception is an
// unsupported version, which is reported alongside the fully parsed
// document so the caller may proceed best-effort.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return NewDecoder(bytes.NewReader(data), opts...).Decode(v)
}
