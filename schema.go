package dseries

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	dserrors "github.com/mwestland/go-dseries/errors"
	"github.com/mwestland/go-dseries/plan"
)

// SectionNamer overrides the bracketed section name derived from a type's
// Go identifier. The name is matched verbatim on read, including spacing
// conventions already baked into the legacy format.
type SectionNamer interface {
	SectionName() string
}

// StructureNamer overrides the file name a structure serializes to in the
// foldered and archive targets.
type StructureNamer interface {
	StructureName() string
}

// StructureGrouper overrides the folder name a collection element type maps
// to in the foldered and archive targets.
type StructureGrouper interface {
	StructureGroup() string
}

// HeaderSkipper is implemented by structure types whose legacy sections
// begin with a fixed number of free-form header lines. The reader skips
// exactly that many lines after the opening bracket; the count is a
// declared constant per schema, never inferred from the input.
type HeaderSkipper interface {
	HeaderLines() int
}

// structSchema is the cached structural declaration of a schema type: its
// kind, its names for each render target, and its ordered field list.
// Declaration order is part of the format contract.
type structSchema struct {
	kind        plan.Kind
	section     string
	file        string
	group       string
	headerLines int
	fields      []fieldSchema

	byKey     map[string]int // inline key (exact and lower-cased) to field
	bySection map[string]int // framed section name to field

	slice int // collection kinds: field index of the element slice, else -1
	count int // collection kinds: field index of the count cross-check, else -1
	tail  int // inline kinds: field index of the opaque tail fallback, else -1
}

// fieldSchema is one ordered field declaration.
type fieldSchema struct {
	index    int
	section  string // bracketed name when the field is framed
	key      string // external key when the field is an inline property
	tagged   bool
	optional bool
	sentinel bool
	always   bool
	isCount  bool
	isTail   bool
}

var schemaCache sync.Map // map[reflect.Type]*structSchema

// schemaOf builds (or returns the cached) structural schema for t. The
// result is immutable and safe for concurrent use.
func schemaOf(t reflect.Type) (*structSchema, error) {
	if sc, ok := schemaCache.Load(t); ok {
		return sc.(*structSchema), nil
	}

	if t.Kind() != reflect.Struct {
		return nil, &dserrors.SchemaError{Type: t.String(), Msg: "not a struct type"}
	}
	if !t.Implements(kindedType) {
		return nil, &dserrors.SchemaError{Type: t.String(), Msg: "no structural kind marker embedded"}
	}

	sc := &structSchema{
		kind:      reflect.Zero(t).Interface().(kinded).structureKind(),
		byKey:     make(map[string]int),
		bySection: make(map[string]int),
		slice:     -1,
		count:     -1,
		tail:      -1,
	}
	sc.section = sectionNameOf(t)
	sc.file = fileNameOf(t)
	sc.group = groupNameOf(t, sc.file)
	if hs, ok := implOf[HeaderSkipper](t); ok {
		sc.headerLines = hs.HeaderLines()
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			if sf.Type.Implements(kindedType) && sf.Type.NumField() == 0 {
				continue // kind marker
			}
			return nil, &dserrors.SchemaError{Type: t.String(), Msg: "embedded field " + sf.Name + " is not a kind marker"}
		}
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("dseries")
		if tag == "-" {
			continue
		}

		f := fieldSchema{index: i, section: camelToUpper(sf.Name), key: sf.Name}
		name, opts, _ := strings.Cut(tag, ",")
		if name != "" {
			f.section = name
			f.key = name
			f.tagged = true
		}
		for opts != "" {
			var opt string
			opt, opts, _ = strings.Cut(opts, ",")
			switch opt {
			case "sentinel":
				f.sentinel = true
			case "always":
				f.always = true
			case "count":
				f.isCount = true
			case "tail":
				f.isTail = true
			case "":
			default:
				return nil, &dserrors.SchemaError{Type: t.String(), Msg: "unknown tag option " + opt + " on field " + sf.Name}
			}
		}
		f.optional = sf.Type.Kind() == reflect.Pointer

		if err := checkField(t, sc, sf, &f); err != nil {
			return nil, err
		}

		n := len(sc.fields)
		sc.fields = append(sc.fields, f)

		switch {
		case f.isCount:
			sc.count = n
		case f.isTail:
			sc.tail = n
		case sf.Type.Kind() == reflect.Slice && (sc.kind == plan.KindCollection || sc.kind == plan.KindTreeCollection):
			sc.slice = n
		}

		sc.bySection[f.section] = n
		sc.byKey[f.key] = n
		if lower := strings.ToLower(f.key); lower != f.key {
			if _, ok := sc.byKey[lower]; !ok {
				sc.byKey[lower] = n
			}
		}
	}

	if err := checkStruct(t, sc); err != nil {
		return nil, err
	}

	schemaCache.Store(t, sc)
	return sc, nil
}

// checkField rejects field shapes the structural kinds cannot express.
// These are programmer errors in the schema declaration, caught once per
// type and cached.
func checkField(t reflect.Type, sc *structSchema, sf reflect.StructField, f *fieldSchema) error {
	ft := sf.Type
	if f.optional {
		ft = ft.Elem()
	}

	if f.isCount {
		switch {
		case sc.kind != plan.KindCollection && sc.kind != plan.KindTreeCollection:
			return &dserrors.SchemaError{Type: t.String(), Msg: "count field " + sf.Name + " outside a collection"}
		case ft.Kind() != reflect.Int:
			return &dserrors.SchemaError{Type: t.String(), Msg: "count field " + sf.Name + " must be int"}
		case sc.count >= 0:
			return &dserrors.SchemaError{Type: t.String(), Msg: "multiple count fields"}
		}
		return nil
	}
	if f.isTail {
		switch {
		case sc.kind != plan.KindInline && sc.kind != plan.KindInlineMapped:
			return &dserrors.SchemaError{Type: t.String(), Msg: "tail field " + sf.Name + " outside an inline block"}
		case ft != reflect.TypeOf(Opaque("")):
			return &dserrors.SchemaError{Type: t.String(), Msg: "tail field " + sf.Name + " must be dseries.Opaque"}
		case sc.tail >= 0:
			return &dserrors.SchemaError{Type: t.String(), Msg: "multiple tail fields"}
		}
		return nil
	}

	if f.sentinel {
		switch ft.Kind() {
		case reflect.Float32, reflect.Float64:
		default:
			return &dserrors.SchemaError{Type: t.String(), Msg: "sentinel option on non-float field " + sf.Name}
		}
	}
	if f.always && !f.optional {
		return &dserrors.SchemaError{Type: t.String(), Msg: "always option on non-optional field " + sf.Name}
	}

	switch sc.kind {
	case plan.KindInlineMapped:
		if !f.tagged {
			return &dserrors.SchemaError{Type: t.String(), Msg: "inline-mapped field " + sf.Name + " requires an explicit key tag"}
		}
		fallthrough
	case plan.KindInline:
		switch ft.Kind() {
		case reflect.Struct:
			if isVariantType(ft) || ft.Implements(kindedType) {
				return &dserrors.SchemaError{Type: t.String(), Msg: "inline block field " + sf.Name + " cannot hold a nested structure"}
			}
		case reflect.Slice:
			return &dserrors.SchemaError{Type: t.String(), Msg: "inline block field " + sf.Name + " cannot hold a list"}
		}
	case plan.KindTree:
		if f.optional && !f.always {
			return &dserrors.SchemaError{Type: t.String(), Msg: "tree field " + sf.Name + " is positional and cannot be optional without the always option"}
		}
	case plan.KindCollection, plan.KindTreeCollection:
		if ft.Kind() == reflect.Slice && sc.slice >= 0 {
			return &dserrors.SchemaError{Type: t.String(), Msg: "collection declares more than one element list"}
		}
		if ft.Kind() != reflect.Slice {
			return &dserrors.SchemaError{Type: t.String(), Msg: "collection field " + sf.Name + " must be the element list or a count field"}
		}
	}
	return nil
}

func checkStruct(t reflect.Type, sc *structSchema) error {
	switch sc.kind {
	case plan.KindCollection, plan.KindTreeCollection:
		if sc.slice < 0 {
			return &dserrors.SchemaError{Type: t.String(), Msg: "collection declares no element list"}
		}
	}
	return nil
}

// isVariantType reports whether t is a Variant[T] instantiation.
func isVariantType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.Implements(variantType)
}

// implOf returns the I implementation of t, checking the value receiver
// first and the pointer receiver second.
func implOf[I any](t reflect.Type) (I, bool) {
	it := reflect.TypeOf((*I)(nil)).Elem()
	if t.Implements(it) {
		return reflect.Zero(t).Interface().(I), true
	}
	if pt := reflect.PointerTo(t); pt.Implements(it) {
		return reflect.New(t).Interface().(I), true
	}
	var zero I
	return zero, false
}

func sectionNameOf(t reflect.Type) string {
	if n, ok := implOf[SectionNamer](t); ok {
		return n.SectionName()
	}
	return camelToUpper(t.Name())
}

func fileNameOf(t reflect.Type) string {
	if n, ok := implOf[StructureNamer](t); ok {
		return n.StructureName()
	}
	return camelToSnake(t.Name())
}

func groupNameOf(t reflect.Type, file string) string {
	if g, ok := implOf[StructureGrouper](t); ok {
		return g.StructureGroup()
	}
	return file + "s"
}

// camelWords splits a Go identifier into its camel-case words, keeping
// acronym runs together ("CPTList" splits as CPT, List).
func camelWords(s string) []string {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := unicode.IsUpper(cur) && (unicode.IsLower(prev) || unicode.IsDigit(prev))
		if !boundary && i+1 < len(runes) {
			boundary = unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(runes[i+1])
		}
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func camelToUpper(s string) string {
	return strings.ToUpper(strings.Join(camelWords(s), " "))
}

func camelToSnake(s string) string {
	return strings.ToLower(strings.Join(camelWords(s), "_"))
}
