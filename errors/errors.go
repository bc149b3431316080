// Package errors defines the error taxonomy of the D-Series codec.
//
// Parse-side failures (FormatError, TruncatedInputError, UnknownFieldError)
// carry the section path and the 1-based line number of the offending input,
// sufficient to point at the exact fragment of a large legacy document.
// SchemaError and IntegrityError indicate a defect in the calling schema and
// are never recovered from at runtime.
package errors

import "fmt"

// SchemaError reports that a domain schema declares a shape the codec does
// not support. It is a programmer error in the schema declaration.
type SchemaError struct {
	Type string // Go type that declared the unsupported shape
	Msg  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dseries: schema error in %s: %s", e.Type, e.Msg)
}

// IntegrityError reports an in-memory invariant violated before writing,
// such as a declared collection count disagreeing with the list length.
type IntegrityError struct {
	Section string
	Msg     string
}

func (e *IntegrityError) Error() string {
	if e.Section == "" {
		return "dseries: integrity error: " + e.Msg
	}
	return fmt.Sprintf("dseries: integrity error in %s: %s", e.Section, e.Msg)
}

// FormatError reports input text that does not match the expected grammar
// at a given position.
type FormatError struct {
	Section string // slash-joined section path, empty at document root
	Line    int
	Msg     string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dseries: format error in %s at line %d: %s", section(e.Section), e.Line, e.Msg)
}

// TruncatedInputError reports input that ends before an expected section or
// collection element is complete.
type TruncatedInputError struct {
	Section string
	Line    int
	Msg     string
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("dseries: truncated input in %s at line %d: %s", section(e.Section), e.Line, e.Msg)
}

// UnknownFieldError reports a key encountered in an inline section for
// which the schema declares no field and no opaque tail fallback.
type UnknownFieldError struct {
	Section string
	Line    int
	Key     string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("dseries: unknown field %q in %s at line %d", e.Key, section(e.Section), e.Line)
}

// UnsupportedVersionError reports a document declaring a schema/tool
// version combination outside the supported range. The parsed document is
// still returned alongside this error so the caller may decide to proceed
// best-effort.
type UnsupportedVersionError struct {
	Schema int
	Tool   int
	Msg    string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("dseries: unsupported version (schema %d, tool %d): %s", e.Schema, e.Tool, e.Msg)
}

// IOFault wraps a failed storage operation. The codec never retries; retry
// policy belongs to the caller.
type IOFault struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFault) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dseries: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("dseries: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOFault) Unwrap() error { return e.Err }

func section(s string) string {
	if s == "" {
		return "document root"
	}
	return s
}
