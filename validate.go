package dseries

import (
	"fmt"
	"reflect"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	dserrors "github.com/mwestland/go-dseries/errors"
)

// NewlineCount returns a rule requiring a string to contain exactly n
// newline characters. Legacy free-form sections such as the run
// identification block are fixed-height; the engine rejects documents
// where the line count drifts.
func NewlineCount(n int) validation.Rule {
	return validation.By(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("must be a string")
		}
		if got := strings.Count(s, "\n"); got != n {
			return fmt.Errorf("must contain exactly %d newlines, has %d", n, got)
		}
		return nil
	})
}

// ApplyToggles runs the post-construction pass that couples value fields
// to their declared toggle fields. For every entry in table, when the
// named value field is set (a non-nil pointer), the named toggle field is
// flipped to True. The mapping is explicit and the pass runs once, after
// all fields are assigned; nothing is intercepted during construction.
//
// v must be a pointer to a struct; the named toggle fields must be of
// type Bool.
func ApplyToggles(v any, table map[string]string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("dseries: ApplyToggles(non-pointer %T or nil)", v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("dseries: ApplyToggles of non-struct %s", rv.Type())
	}

	for valueName, toggleName := range table {
		value := rv.FieldByName(valueName)
		if !value.IsValid() {
			return &dserrors.SchemaError{Type: rv.Type().String(), Msg: "no value field " + valueName}
		}
		toggle := rv.FieldByName(toggleName)
		if !toggle.IsValid() {
			return &dserrors.SchemaError{Type: rv.Type().String(), Msg: "no toggle field " + toggleName}
		}
		if toggle.Type() != reflect.TypeOf(Bool(0)) {
			return &dserrors.SchemaError{Type: rv.Type().String(), Msg: "toggle field " + toggleName + " is not dseries.Bool"}
		}
		if value.Kind() != reflect.Pointer {
			return &dserrors.SchemaError{Type: rv.Type().String(), Msg: "value field " + valueName + " is not optional"}
		}
		if !value.IsNil() {
			toggle.Set(reflect.ValueOf(True))
		}
	}
	return nil
}

// ToggleTable derives a value-to-toggle mapping from field names by
// convention: a value field FactorGammaS couples to the toggle
// IsGammaSOverruled. Schemas with regular naming can build their table
// mechanically and feed it to ApplyToggles.
func ToggleTable(fields ...string) map[string]string {
	table := make(map[string]string, len(fields))
	for _, f := range fields {
		table[f] = "Is" + strings.TrimPrefix(f, "Factor") + "Overruled"
	}
	return table
}
