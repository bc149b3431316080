package dseries

import (
	"fmt"
	"io"
	"reflect"

	dserrors "github.com/mwestland/go-dseries/errors"
	"github.com/mwestland/go-dseries/plan"
)

// Decoder reads D-Series documents from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads flat-text sections from r.
//
// Note: this is a non-streaming implementation. It reads the entire
// reader into memory before parsing.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode parses the input and stores the result in the value pointed to
// by v. If v is nil or not a pointer, Decode returns an error.
//
// A corrupt document fails atomically: v is untouched by any error except
// UnsupportedVersionError, which is returned with v fully populated so the
// caller may decide to proceed best-effort.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("dseries: Decode(nil reader)")
	}
	o, err := buildOptions(d.opts)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return &dserrors.IOFault{Op: "read", Err: err}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("dseries: Decode(non-pointer %T or nil)", v)
	}
	target := rv.Elem()
	sc, err := schemaOf(target.Type())
	if err != nil {
		return err
	}

	node, err := parseDocument(data, target.Type(), o.maxDepth)
	if err != nil {
		return err
	}

	// Map into a fresh value first so a mapping failure leaves v untouched.
	fresh := reflect.New(target.Type()).Elem()
	ms := &mapState{depth: o.maxDepth}
	if err := ms.mapStruct(node, fresh, sc); err != nil {
		return err
	}
	target.Set(fresh)

	return gateVersion(v, o)
}

// gateVersion validates the declared document version against the range
// the caller claims to support. The version section has already been read
// at this point; the gate only decides whether the combination is allowed.
func gateVersion(v any, o *options) error {
	if o.versions == nil || o.allowOldVer {
		return nil
	}
	ver, ok := v.(Versioned)
	if !ok {
		return nil
	}
	dv := ver.DocumentVersion()
	if o.versions.Contains(dv) {
		return nil
	}
	return &dserrors.UnsupportedVersionError{
		Schema: dv.Schema,
		Tool:   dv.Tool,
		Msg:    fmt.Sprintf("supported range is %s to %s", o.versions.Min, o.versions.Max),
	}
}

// mapState assigns a parsed emission plan onto typed values. It relies on
// the reader having already validated the plan's shape against the schema,
// so only token-level failures can occur here; those carry the source line
// recorded in the plan.
type mapState struct {
	depth int
}

func (ms *mapState) mapStruct(n *plan.Node, rv reflect.Value, sc *structSchema) error {
	ms.depth--
	if ms.depth <= 0 {
		return fmt.Errorf("dseries: reached max nesting depth")
	}
	defer func() { ms.depth++ }()

	switch sc.kind {
	case plan.KindBlock:
		for _, child := range n.Children {
			idx, ok := sc.bySection[child.Name]
			if !ok {
				return &dserrors.FormatError{Section: child.Name, Line: child.Line, Msg: "section not declared by schema"}
			}
			f := &sc.fields[idx]
			if err := ms.mapBlockChild(child, rv.Field(f.index), f); err != nil {
				return err
			}
		}
		return nil

	case plan.KindInline, plan.KindInlineMapped:
		return ms.mapInlineBody(n, rv, sc)

	case plan.KindTree:
		return ms.mapTreeBody(n, rv, sc)

	case plan.KindCollection, plan.KindTreeCollection:
		f := &sc.fields[sc.slice]
		if err := ms.mapSlice(n, rv.Field(f.index), f); err != nil {
			return err
		}
		if sc.count >= 0 {
			rv.Field(sc.fields[sc.count].index).SetInt(int64(len(n.Children)))
		}
		return nil

	default:
		return &dserrors.SchemaError{Type: rv.Type().String(), Msg: "unsupported structural kind " + sc.kind.String()}
	}
}

func (ms *mapState) mapBlockChild(n *plan.Node, fv reflect.Value, f *fieldSchema) error {
	if f.optional {
		if f.always && n.Kind == plan.KindScalar && n.Value == SentinelLiteral {
			return nil // declared-absent stays nil
		}
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}
	ft := fv.Type()

	switch {
	case isVariantType(ft):
		if n.Kind == plan.KindOpaque {
			fv.FieldByName("Raw").SetString(n.Raw)
			return nil
		}
		value := fv.FieldByName("Value")
		value.Set(reflect.New(value.Type().Elem()))
		elem := value.Elem()
		esc, err := schemaOf(elem.Type())
		if err != nil {
			return err
		}
		return ms.mapStruct(n, elem, esc)

	case ft.Kind() == reflect.String:
		fv.SetString(n.Raw)
		return nil

	case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
		esc, err := schemaOf(ft)
		if err != nil {
			return err
		}
		return ms.mapStruct(n, fv, esc)

	case ft.Kind() == reflect.Slice:
		return ms.mapSlice(n, fv, f)

	default:
		return ms.mapToken(n, fv, f)
	}
}

func (ms *mapState) mapInlineBody(n *plan.Node, rv reflect.Value, sc *structSchema) error {
	for _, child := range n.Children {
		if child.Kind == plan.KindOpaque {
			if sc.tail < 0 {
				return &dserrors.FormatError{Section: n.Name, Line: child.Line, Msg: "no opaque tail declared"}
			}
			rv.Field(sc.fields[sc.tail].index).SetString(child.Raw)
			continue
		}
		idx, ok := sc.byKey[child.Name]
		if !ok {
			return &dserrors.UnknownFieldError{Section: n.Name, Line: child.Line, Key: child.Name}
		}
		f := &sc.fields[idx]
		fv := rv.Field(f.index)
		if f.optional {
			if f.always && child.Value == SentinelLiteral {
				continue
			}
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			fv = fv.Elem()
		}
		if err := ms.mapToken(child, fv, f); err != nil {
			return err
		}
	}
	return nil
}

func (ms *mapState) mapTreeBody(n *plan.Node, rv reflect.Value, sc *structSchema) error {
	if len(n.Children) != len(sc.fields) {
		return &dserrors.FormatError{
			Section: n.Name,
			Line:    n.Line,
			Msg:     fmt.Sprintf("tree block holds %d values, schema declares %d", len(n.Children), len(sc.fields)),
		}
	}
	for i, child := range n.Children {
		f := &sc.fields[i]
		fv := rv.Field(f.index)
		if f.optional {
			if child.Kind == plan.KindScalar && child.Value == SentinelLiteral {
				continue
			}
			if fv.IsNil() {
				fv.Set(reflect.New(fv.Type().Elem()))
			}
			fv = fv.Elem()
		}
		ft := fv.Type()
		switch {
		case ft.Kind() == reflect.Slice:
			if err := ms.mapSlice(child, fv, f); err != nil {
				return err
			}
		case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
			esc, err := schemaOf(ft)
			if err != nil {
				return err
			}
			if err := ms.mapStruct(child, fv, esc); err != nil {
				return err
			}
		default:
			if err := ms.mapToken(child, fv, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ms *mapState) mapSlice(n *plan.Node, fv reflect.Value, f *fieldSchema) error {
	sliceType := fv.Type()
	out := reflect.MakeSlice(sliceType, len(n.Children), len(n.Children))
	elemT := sliceType.Elem()
	for i, child := range n.Children {
		ev := out.Index(i)
		if elemT.Kind() == reflect.Pointer {
			ev.Set(reflect.New(elemT.Elem()))
			ev = ev.Elem()
		}
		if st := elemStructType(sliceType); st != nil {
			esc, err := schemaOf(st)
			if err != nil {
				return err
			}
			if err := ms.mapStruct(child, ev, esc); err != nil {
				return err
			}
			continue
		}
		if err := ms.mapToken(child, ev, f); err != nil {
			return err
		}
	}
	fv.Set(out)
	return nil
}

// mapToken assigns a scalar token, translating token-level failures into
// positioned format errors.
func (ms *mapState) mapToken(n *plan.Node, fv reflect.Value, f *fieldSchema) error {
	if err := parseScalar(n.Value, fv, f.sentinel); err != nil {
		return &dserrors.FormatError{Section: n.Name, Line: n.Line, Msg: err.Error()}
	}
	return nil
}
