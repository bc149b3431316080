package dseries

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// formatScalar renders a leaf value as its textual token. Booleans become
// the 0/1 tokens of the format, integers and integer-backed enumerated
// codes print in decimal, and floats print with full shortest-round-trip
// precision except for the declared unset sentinel, which keeps its exact
// legacy literal.
func formatScalar(rv reflect.Value, sentinel bool) (string, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", fmt.Errorf("cannot format nil value")
		}
		rv = rv.Elem()
	}

	if m, ok := marshalerOf(rv); ok {
		b, err := m.MarshalDSeries()
		if err != nil {
			return "", &MarshalerError{Type: rv.Type(), Err: err}
		}
		return string(b), nil
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		if rv.Bool() {
			return "1", nil
		}
		return "0", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		v := rv.Float()
		if sentinel && v == SentinelValue {
			return SentinelLiteral, nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported scalar type %s", rv.Type())
	}
}

// parseScalar assigns a textual token to a leaf value. String fields take
// the token verbatim; numeric fields tolerate surrounding whitespace.
func parseScalar(lit string, rv reflect.Value, sentinel bool) error {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}

	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(Unmarshaler); ok {
			if err := u.UnmarshalDSeries([]byte(lit)); err != nil {
				return &UnmarshalerError{Type: rv.Addr().Type(), Err: err}
			}
			return nil
		}
	}

	switch rv.Kind() {
	case reflect.String:
		rv.SetString(lit)
		return nil
	case reflect.Bool:
		switch strings.TrimSpace(lit) {
		case "0":
			rv.SetBool(false)
		case "1":
			rv.SetBool(true)
		default:
			return fmt.Errorf("invalid boolean token %q", lit)
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(lit), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer token %q", lit)
		}
		if rv.OverflowInt(n) {
			return fmt.Errorf("integer %d overflows %s", n, rv.Type())
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(lit), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer token %q", lit)
		}
		if rv.OverflowUint(n) {
			return fmt.Errorf("integer %d overflows %s", n, rv.Type())
		}
		rv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		s := strings.TrimSpace(lit)
		if sentinel && s == SentinelLiteral {
			rv.SetFloat(SentinelValue)
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric token %q", lit)
		}
		rv.SetFloat(v)
		return nil
	default:
		return fmt.Errorf("unsupported scalar type %s", rv.Type())
	}
}

// marshalerOf checks the value itself and a pointer to it for a custom
// Marshaler implementation, handling both value and pointer receivers.
func marshalerOf(rv reflect.Value) (Marshaler, bool) {
	if rv.Type().NumMethod() > 0 && rv.CanInterface() {
		if m, ok := rv.Interface().(Marshaler); ok {
			return m, true
		}
	}
	var pv reflect.Value
	if rv.CanAddr() {
		pv = rv.Addr()
	} else {
		pv = reflect.New(rv.Type())
		pv.Elem().Set(rv)
	}
	if pv.Type().NumMethod() > 0 && pv.CanInterface() {
		if m, ok := pv.Interface().(Marshaler); ok {
			return m, true
		}
	}
	return nil, false
}
