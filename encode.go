package dseries

import (
	"fmt"
	"io"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	dserrors "github.com/mwestland/go-dseries/errors"
	"github.com/mwestland/go-dseries/plan"
)

// Encoder writes D-Series documents to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes flat-text sections to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the flat-text encoding of the document v to the stream.
//
// If v implements validation.Validatable, it is validated first and a
// failure aborts the encode with an IntegrityError: a document that fails
// its own declared invariants must never reach the wire.
func (e *Encoder) Encode(v any) error {
	o, err := buildOptions(e.opts)
	if err != nil {
		return err
	}

	if val, ok := v.(validation.Validatable); ok {
		if err := val.Validate(); err != nil {
			return &dserrors.IntegrityError{Msg: err.Error()}
		}
	}

	node, err := planWithDepth(v, o.maxDepth)
	if err != nil {
		return err
	}
	return renderDocument(e.w, node)
}

// Plan builds the emission plan for the document v without rendering it.
// The plan is the structural intermediate both the writer and the reader
// target; exposing it lets callers inspect exactly what would be emitted.
func Plan(v any) (*plan.Node, error) {
	return planWithDepth(v, defaultMaxDepth)
}

func planWithDepth(v any, maxDepth int) (*plan.Node, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("dseries: cannot plan nil document")
		}
		rv = rv.Elem()
	}
	sc, err := schemaOf(rv.Type())
	if err != nil {
		return nil, err
	}
	ps := &planState{depth: maxDepth}
	return ps.planStruct(rv, sc, sc.section)
}

type planState struct {
	depth int
}

// planStruct walks one structure according to its declared kind and
// returns the corresponding plan node. Field declaration order determines
// child order; that order is part of the format contract.
func (ps *planState) planStruct(rv reflect.Value, sc *structSchema, name string) (*plan.Node, error) {
	ps.depth--
	if ps.depth <= 0 {
		return nil, fmt.Errorf("dseries: reached max nesting depth")
	}
	defer func() { ps.depth++ }()

	node := &plan.Node{Name: name, Kind: sc.kind}

	switch sc.kind {
	case plan.KindBlock:
		for i := range sc.fields {
			f := &sc.fields[i]
			child, err := ps.planBlockField(rv.Field(f.index), f)
			if err != nil {
				return nil, err
			}
			if child != nil {
				node.Children = append(node.Children, child)
			}
		}
	case plan.KindInline, plan.KindInlineMapped:
		if err := ps.planInlineBody(node, rv, sc); err != nil {
			return nil, err
		}
	case plan.KindTree:
		if err := ps.planTreeBody(node, rv, sc); err != nil {
			return nil, err
		}
	case plan.KindCollection, plan.KindTreeCollection:
		f := &sc.fields[sc.slice]
		if sc.count >= 0 {
			cf := &sc.fields[sc.count]
			declared := int(rv.Field(cf.index).Int())
			if declared != rv.Field(f.index).Len() {
				return nil, &dserrors.IntegrityError{
					Section: name,
					Msg:     fmt.Sprintf("declared count %d disagrees with %d list elements", declared, rv.Field(f.index).Len()),
				}
			}
		}
		children, err := ps.planElements(rv.Field(f.index))
		if err != nil {
			return nil, err
		}
		node.Children = children
	default:
		return nil, &dserrors.SchemaError{Type: rv.Type().String(), Msg: "unsupported structural kind " + sc.kind.String()}
	}
	return node, nil
}

func (ps *planState) planBlockField(fv reflect.Value, f *fieldSchema) (*plan.Node, error) {
	if f.optional {
		if fv.IsNil() {
			if f.always {
				return plan.Leaf(f.section, SentinelLiteral), nil
			}
			return nil, nil // absent from the text entirely
		}
		fv = fv.Elem()
	}
	ft := fv.Type()

	switch {
	case isVariantType(ft):
		value := fv.FieldByName("Value")
		if !value.IsNil() {
			elem := value.Elem()
			sc, err := schemaOf(elem.Type())
			if err != nil {
				return nil, err
			}
			return ps.planStruct(elem, sc, f.section)
		}
		return plan.Opaque(f.section, fv.FieldByName("Raw").String()), nil

	case ft.Kind() == reflect.String:
		// Opaque and plain string fields are verbatim section bodies.
		return plan.Opaque(f.section, fv.String()), nil

	case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
		sc, err := schemaOf(ft)
		if err != nil {
			return nil, err
		}
		return ps.planStruct(fv, sc, f.section)

	case ft.Kind() == reflect.Slice:
		return ps.planList(f.section, fv)

	default:
		tok, err := formatScalar(fv, f.sentinel)
		if err != nil {
			return nil, err
		}
		return plan.Leaf(f.section, tok), nil
	}
}

func (ps *planState) planInlineBody(node *plan.Node, rv reflect.Value, sc *structSchema) error {
	var tail *plan.Node
	for i := range sc.fields {
		f := &sc.fields[i]
		fv := rv.Field(f.index)
		if f.isTail {
			if raw := fv.String(); raw != "" {
				tail = plan.Opaque("", raw)
			}
			continue
		}
		if f.optional {
			if fv.IsNil() {
				if f.always {
					node.Children = append(node.Children, plan.Leaf(f.key, SentinelLiteral))
				}
				continue
			}
			fv = fv.Elem()
		}
		tok, err := formatScalar(fv, f.sentinel)
		if err != nil {
			return err
		}
		node.Children = append(node.Children, plan.Leaf(f.key, tok))
	}
	if tail != nil {
		node.Children = append(node.Children, tail)
	}
	return nil
}

func (ps *planState) planTreeBody(node *plan.Node, rv reflect.Value, sc *structSchema) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		fv := rv.Field(f.index)
		if f.optional {
			if fv.IsNil() {
				// Tree values are positional; an absent optional still
				// occupies its line via the sentinel.
				node.Children = append(node.Children, plan.Leaf("", SentinelLiteral))
				continue
			}
			fv = fv.Elem()
		}
		ft := fv.Type()
		switch {
		case ft.Kind() == reflect.Slice:
			child, err := ps.planList("", fv)
			if err != nil {
				return err
			}
			node.Children = append(node.Children, child)
		case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
			csc, err := schemaOf(ft)
			if err != nil {
				return err
			}
			child, err := ps.planStruct(fv, csc, f.section)
			if err != nil {
				return err
			}
			node.Children = append(node.Children, child)
		default:
			tok, err := formatScalar(fv, f.sentinel)
			if err != nil {
				return err
			}
			node.Children = append(node.Children, plan.Leaf("", tok))
		}
	}
	return nil
}

// planList builds an anonymous or named collection node from a slice
// value. An empty slice still yields the node, so the zero count line is
// emitted.
func (ps *planState) planList(name string, fv reflect.Value) (*plan.Node, error) {
	children, err := ps.planElements(fv)
	if err != nil {
		return nil, err
	}
	kind := plan.KindCollection
	if et := elemStructType(fv.Type()); et != nil {
		if sc, err := schemaOf(et); err == nil && sc.kind == plan.KindTree {
			kind = plan.KindTreeCollection
		}
	}
	return &plan.Node{Name: name, Kind: kind, Children: children}, nil
}

func (ps *planState) planElements(fv reflect.Value) ([]*plan.Node, error) {
	children := make([]*plan.Node, 0, fv.Len())
	for i := 0; i < fv.Len(); i++ {
		ev := fv.Index(i)
		for ev.Kind() == reflect.Pointer {
			if ev.IsNil() {
				return nil, &dserrors.IntegrityError{Msg: fmt.Sprintf("nil element at index %d", i)}
			}
			ev = ev.Elem()
		}
		if ev.Kind() == reflect.Struct && ev.Type().Implements(kindedType) {
			sc, err := schemaOf(ev.Type())
			if err != nil {
				return nil, err
			}
			child, err := ps.planStruct(ev, sc, sc.section)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			continue
		}
		tok, err := formatScalar(ev, false)
		if err != nil {
			return nil, err
		}
		children = append(children, plan.Leaf("", tok))
	}
	return children, nil
}

// elemStructType returns the struct type of a slice's elements, following
// one level of pointer indirection, or nil when elements are scalars.
func elemStructType(t reflect.Type) reflect.Type {
	et := t.Elem()
	if et.Kind() == reflect.Pointer {
		et = et.Elem()
	}
	if et.Kind() == reflect.Struct && et.Implements(kindedType) {
		return et
	}
	return nil
}
