// Package plan defines the emission plan: the purely structural tree that
// sits between typed Go values and the rendered D-Series representation.
// Both the writer and the reader target this tree, which keeps the two
// directions of the codec symmetric for any schema built from the
// structural kinds.
package plan

import "fmt"

// Kind identifies the structural kind of a plan node. A structure type
// declares its kind once, at the type level; the kind never varies per
// instance.
type Kind int

const (
	// KindScalar is a single textual token: a number, an enumerated code,
	// a 0/1 boolean flag, or a short string value.
	KindScalar Kind = iota

	// KindBlock is a plain block: each child is framed as its own
	// bracketed subsection.
	KindBlock

	// KindInline is a block whose children render as key=value lines
	// inside a single section, with no subsections.
	KindInline

	// KindInlineMapped is like KindInline, but every key comes from an
	// externally fixed textual name declared on the field.
	KindInlineMapped

	// KindTree is a block whose children render positionally, one value
	// per line, nested one indentation level deeper than the parent.
	KindTree

	// KindCollection is a counted, ordered list of framed elements. The
	// count line precedes the elements and always equals their number.
	KindCollection

	// KindTreeCollection is a collection whose elements are tree blocks.
	KindTreeCollection

	// KindOpaque is raw section text preserved verbatim, without any
	// structural interpretation.
	KindOpaque
)

// String returns the kind's name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindInlineMapped:
		return "inline-mapped"
	case KindTree:
		return "tree"
	case KindCollection:
		return "collection"
	case KindTreeCollection:
		return "tree-collection"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one node of the emission plan.
//
// Exactly one of Value, Raw or Children carries content, depending on
// Kind: scalars use Value, opaque nodes use Raw, everything else nests
// through Children. Name is the section or key name; it is empty for
// positional values inside tree blocks.
type Node struct {
	Name     string
	Kind     Kind
	Value    string
	Raw      string
	Children []*Node

	// Line is the 1-based source line the node started on when the plan
	// was built by the reader. Plans built from in-memory values have no
	// source position and leave it zero.
	Line int
}

// Leaf returns a scalar node.
func Leaf(name, value string) *Node {
	return &Node{Name: name, Kind: KindScalar, Value: value}
}

// Opaque returns a verbatim passthrough node.
func Opaque(name, raw string) *Node {
	return &Node{Name: name, Kind: KindOpaque, Raw: raw}
}
