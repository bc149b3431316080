package dseries

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	dserrors "github.com/mwestland/go-dseries/errors"
	"github.com/mwestland/go-dseries/plan"
	"github.com/mwestland/go-dseries/scanner"
)

const countSuffix = "number of items"

// reader reconstructs an emission plan from sectioned text, validating
// headers, footers and collection counts against the declared schema. A
// failure anywhere aborts the whole parse; no partial plan is returned.
type reader struct {
	sc    *scanner.Scanner
	path  []string
	depth int
}

// parseDocument parses a whole document body for the root type t. The
// root's fields appear at the top level without an enclosing frame.
func parseDocument(data []byte, t reflect.Type, maxDepth int) (*plan.Node, error) {
	sc, err := schemaOf(t)
	if err != nil {
		return nil, err
	}
	if sc.kind != plan.KindBlock {
		return nil, &dserrors.SchemaError{Type: t.String(), Msg: "document root must be a plain block"}
	}
	r := &reader{sc: scanner.New(data), depth: maxDepth}
	node := &plan.Node{Name: sc.section, Kind: plan.KindBlock, Line: 1}
	if err := r.blockFields(node, t, sc); err != nil {
		return nil, err
	}
	r.skipBlank()
	if line, ok := r.sc.Peek(); ok {
		return nil, r.formatErr("unexpected content after document: %q", line)
	}
	return node, nil
}

func (r *reader) section() string {
	return strings.Join(r.path, "/")
}

func (r *reader) formatErr(format string, args ...any) error {
	return &dserrors.FormatError{Section: r.section(), Line: r.sc.Line(), Msg: fmt.Sprintf(format, args...)}
}

func (r *reader) truncatedErr(format string, args ...any) error {
	return &dserrors.TruncatedInputError{Section: r.section(), Line: r.sc.Line(), Msg: fmt.Sprintf(format, args...)}
}

// skipBlank consumes blank lines between sections.
func (r *reader) skipBlank() {
	for {
		line, ok := r.sc.Peek()
		if !ok || strings.TrimSpace(line) != "" {
			return
		}
		r.sc.Skip(1)
	}
}

func isMarker(line, marker string) bool {
	return strings.EqualFold(strings.TrimSpace(line), marker)
}

func (r *reader) expectHeader(name string) error {
	r.skipBlank()
	line, ok := r.sc.Peek()
	if !ok {
		return r.truncatedErr("expected [%s]", name)
	}
	if !isMarker(line, "["+name+"]") {
		return r.formatErr("expected [%s], found %q", name, strings.TrimSpace(line))
	}
	r.sc.Skip(1)
	return nil
}

func (r *reader) expectFooter(name string) error {
	r.skipBlank()
	line, ok := r.sc.Peek()
	if !ok {
		return r.truncatedErr("expected [END OF %s]", name)
	}
	if !isMarker(line, "[END OF "+name+"]") {
		return r.formatErr("expected [END OF %s], found %q", name, strings.TrimSpace(line))
	}
	r.sc.Skip(1)
	return nil
}

// atHeader reports whether the next significant line opens the named
// section, without consuming it. Used to detect absent optional fields.
func (r *reader) atHeader(name string) bool {
	r.skipBlank()
	line, ok := r.sc.Peek()
	return ok && isMarker(line, "["+name+"]")
}

// blockFields reads the framed fields of a plain block in declaration
// order, appending one child node per field present in the text.
func (r *reader) blockFields(node *plan.Node, t reflect.Type, sc *structSchema) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		ft := t.Field(f.index).Type
		if f.optional {
			ft = ft.Elem()
			if !r.atHeader(f.section) {
				continue
			}
		}
		child, err := r.blockField(ft, f)
		if err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}
	return nil
}

func (r *reader) blockField(ft reflect.Type, f *fieldSchema) (*plan.Node, error) {
	switch {
	case isVariantType(ft):
		return r.variantField(ft, f)

	case ft.Kind() == reflect.String:
		return r.captureOpaque(f.section)

	case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
		return r.readStruct(ft, f.section)

	case ft.Kind() == reflect.Slice:
		node := &plan.Node{Name: f.section, Kind: plan.KindCollection, Line: r.sc.Line()}
		if err := r.expectHeader(f.section); err != nil {
			return nil, err
		}
		children, err := r.collectionBody(ft)
		if err != nil {
			return nil, err
		}
		node.Children = children
		if err := r.expectFooter(f.section); err != nil {
			return nil, err
		}
		return node, nil

	default:
		if err := r.expectHeader(f.section); err != nil {
			return nil, err
		}
		leaf, err := r.valueLine(f.section)
		if err != nil {
			return nil, err
		}
		if err := r.expectFooter(f.section); err != nil {
			return nil, err
		}
		return leaf, nil
	}
}

// readStruct reads one framed structure of the given type.
func (r *reader) readStruct(t reflect.Type, name string) (*plan.Node, error) {
	r.depth--
	if r.depth <= 0 {
		return nil, r.formatErr("exceeded max nesting depth")
	}
	defer func() { r.depth++ }()

	sc, err := schemaOf(t)
	if err != nil {
		return nil, err
	}
	node := &plan.Node{Name: name, Kind: sc.kind, Line: r.sc.Line()}
	if err := r.expectHeader(name); err != nil {
		return nil, err
	}
	r.path = append(r.path, name)
	defer func() { r.path = r.path[:len(r.path)-1] }()
	r.sc.Skip(sc.headerLines)
	if err := r.structBody(node, t, sc, name); err != nil {
		return nil, err
	}
	return node, r.expectFooter(name)
}

// structBody reads the interior of a structure according to its kind.
// terminator is the section name whose footer ends an inline body; it is
// empty when the body runs to end-of-input (variant sub-parses).
func (r *reader) structBody(node *plan.Node, t reflect.Type, sc *structSchema, terminator string) error {
	switch sc.kind {
	case plan.KindBlock:
		return r.blockFields(node, t, sc)
	case plan.KindInline, plan.KindInlineMapped:
		return r.inlineBody(node, sc, terminator)
	case plan.KindTree:
		return r.treeBody(node, t, sc)
	case plan.KindCollection, plan.KindTreeCollection:
		children, err := r.collectionBody(t.Field(sc.fields[sc.slice].index).Type)
		if err != nil {
			return err
		}
		node.Children = children
		return nil
	default:
		return &dserrors.SchemaError{Type: t.String(), Msg: "unsupported structural kind " + sc.kind.String()}
	}
}

// inlineBody reads key=value lines until the terminating footer. Unknown
// keys are collected verbatim by the declared opaque tail, if any;
// otherwise they fail the parse.
func (r *reader) inlineBody(node *plan.Node, sc *structSchema, terminator string) error {
	var tail []string
	for {
		line, ok := r.sc.Peek()
		if !ok {
			if terminator == "" {
				break
			}
			return r.truncatedErr("expected [END OF %s]", terminator)
		}
		if terminator != "" && isMarker(line, "[END OF "+terminator+"]") {
			break
		}
		if strings.TrimSpace(line) == "" {
			r.sc.Skip(1)
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return r.formatErr("expected key=value, found %q", strings.TrimSpace(line))
		}
		idx, ok := sc.byKey[strings.TrimSpace(key)]
		if !ok {
			idx, ok = sc.byKey[strings.ToLower(strings.TrimSpace(key))]
		}
		if !ok {
			if sc.tail >= 0 {
				tail = append(tail, line)
				r.sc.Skip(1)
				continue
			}
			return &dserrors.UnknownFieldError{Section: r.section(), Line: r.sc.Line(), Key: strings.TrimSpace(key)}
		}
		child := plan.Leaf(sc.fields[idx].key, value)
		child.Line = r.sc.Line()
		node.Children = append(node.Children, child)
		r.sc.Skip(1)
	}
	if len(tail) > 0 {
		node.Children = append(node.Children, plan.Opaque("", strings.Join(tail, "\n")+"\n"))
	}
	return nil
}

// treeBody reads the positional values of a tree block in declaration
// order. Every declared field must be present; trees have no optional
// absence.
func (r *reader) treeBody(node *plan.Node, t reflect.Type, sc *structSchema) error {
	for i := range sc.fields {
		f := &sc.fields[i]
		ft := t.Field(f.index).Type
		if f.optional {
			ft = ft.Elem()
		}
		switch {
		case ft.Kind() == reflect.Slice:
			child := &plan.Node{Kind: plan.KindCollection, Line: r.sc.Line()}
			children, err := r.collectionBody(ft)
			if err != nil {
				return err
			}
			child.Children = children
			node.Children = append(node.Children, child)
		case ft.Kind() == reflect.Struct && ft.Implements(kindedType):
			child, err := r.readStruct(ft, f.section)
			if err != nil {
				return err
			}
			node.Children = append(node.Children, child)
		default:
			leaf, err := r.valueLine("")
			if err != nil {
				return err
			}
			node.Children = append(node.Children, leaf)
		}
	}
	return nil
}

// valueLine reads one scalar value line.
func (r *reader) valueLine(name string) (*plan.Node, error) {
	r.skipBlank()
	line, ok := r.sc.Peek()
	if !ok {
		return nil, r.truncatedErr("expected a value")
	}
	if strings.HasPrefix(strings.TrimSpace(line), "[") {
		return nil, r.formatErr("expected a value, found section marker %q", strings.TrimSpace(line))
	}
	leaf := plan.Leaf(name, strings.TrimSpace(line))
	leaf.Line = r.sc.Line()
	r.sc.Skip(1)
	return leaf, nil
}

// collectionBody reads a count line and exactly that many elements. Fewer
// elements than declared is truncated input; more is a format error. The
// count is never silently adjusted.
func (r *reader) collectionBody(sliceType reflect.Type) ([]*plan.Node, error) {
	n, err := r.countLine()
	if err != nil {
		return nil, err
	}
	elemT := elemStructType(sliceType)
	var esc *structSchema
	if elemT != nil {
		if esc, err = schemaOf(elemT); err != nil {
			return nil, err
		}
	}

	children := make([]*plan.Node, 0, n)
	for i := 0; i < n; i++ {
		if elemT != nil {
			r.skipBlank()
			if _, ok := r.sc.Peek(); !ok {
				return nil, r.truncatedErr("collection ends after %d of %d elements", i, n)
			}
			child, err := r.readStruct(elemT, esc.section)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
			continue
		}
		leaf, err := r.valueLine("")
		if err != nil {
			return nil, err
		}
		children = append(children, leaf)
	}
	if elemT != nil && r.atHeader(esc.section) {
		return nil, r.formatErr("collection holds more than the declared %d elements", n)
	}
	return children, nil
}

func (r *reader) countLine() (int, error) {
	r.skipBlank()
	line, ok := r.sc.Peek()
	if !ok {
		return 0, r.truncatedErr("expected a count line")
	}
	left, right, found := strings.Cut(line, "=")
	if !found || !strings.EqualFold(strings.TrimSpace(right), countSuffix) {
		return 0, r.formatErr("expected count line %q, found %q", "N = "+countSuffix, strings.TrimSpace(line))
	}
	n, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil || n < 0 {
		return 0, r.formatErr("invalid item count %q", strings.TrimSpace(left))
	}
	r.sc.Skip(1)
	return n, nil
}

// captureOpaque consumes everything between the named header and footer
// verbatim, without structural interpretation. Embedded bracket-like text
// passes through untouched as long as it is not the exact footer.
func (r *reader) captureOpaque(name string) (*plan.Node, error) {
	node := &plan.Node{Name: name, Kind: plan.KindOpaque, Line: r.sc.Line()}
	if err := r.expectHeader(name); err != nil {
		return nil, err
	}
	var lines []string
	for {
		line, ok := r.sc.Next()
		if !ok {
			return nil, &dserrors.TruncatedInputError{
				Section: r.section(),
				Line:    r.sc.Line(),
				Msg:     fmt.Sprintf("expected [END OF %s]", name),
			}
		}
		if isMarker(line, "[END OF "+name+"]") {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		node.Raw = strings.Join(lines, "\n") + "\n"
	}
	return node, nil
}

// variantField captures the section verbatim, then attempts a structured
// parse of the captured body. The typed arm wins when the body matches the
// schema completely; anything else stays raw. The resolution happens here,
// once, and is recorded in the plan.
func (r *reader) variantField(ft reflect.Type, f *fieldSchema) (*plan.Node, error) {
	vf, _ := ft.FieldByName("Value")
	elemT := vf.Type.Elem()

	opq, err := r.captureOpaque(f.section)
	if err != nil {
		return nil, err
	}

	esc, err := schemaOf(elemT)
	if err != nil {
		return opq, nil
	}
	sub := &reader{sc: scanner.New([]byte(opq.Raw)), path: append([]string(nil), r.path...), depth: r.depth}
	node := &plan.Node{Name: f.section, Kind: esc.kind, Line: opq.Line}
	if err := sub.structBody(node, elemT, esc, ""); err != nil {
		return opq, nil
	}
	sub.skipBlank()
	if sub.sc.More() {
		return opq, nil
	}
	return node, nil
}
