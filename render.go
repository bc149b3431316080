package dseries

import (
	"fmt"
	"io"
	"strings"

	"github.com/mwestland/go-dseries/plan"
)

const indentUnit = "  "

// renderDocument renders an emission plan as flat section text. The root
// node itself is not framed: a document is its top-level sections.
func renderDocument(w io.Writer, root *plan.Node) error {
	r := &renderer{w: w}
	for _, child := range root.Children {
		if err := r.node(child, 0); err != nil {
			return err
		}
	}
	return nil
}

type renderer struct {
	w io.Writer
}

func (r *renderer) write(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

func (r *renderer) line(depth int, s string) error {
	return r.write(strings.Repeat(indentUnit, depth) + s + "\n")
}

func (r *renderer) header(depth int, name string) error {
	return r.line(depth, "["+name+"]")
}

func (r *renderer) footer(depth int, name string) error {
	return r.line(depth, "[END OF "+name+"]")
}

func (r *renderer) node(n *plan.Node, depth int) error {
	if err := r.header(depth, n.Name); err != nil {
		return err
	}
	if err := r.body(n, depth); err != nil {
		return err
	}
	return r.footer(depth, n.Name)
}

func (r *renderer) body(n *plan.Node, depth int) error {
	switch n.Kind {
	case plan.KindScalar:
		return r.line(depth, n.Value)

	case plan.KindOpaque:
		return r.raw(n.Raw)

	case plan.KindInline, plan.KindInlineMapped:
		for _, c := range n.Children {
			if c.Kind == plan.KindOpaque {
				// Tail fallback: unknown keys preserved verbatim.
				if err := r.raw(c.Raw); err != nil {
					return err
				}
				continue
			}
			if err := r.line(depth, c.Name+"="+c.Value); err != nil {
				return err
			}
		}
		return nil

	case plan.KindBlock:
		for _, c := range n.Children {
			if err := r.node(c, depth); err != nil {
				return err
			}
		}
		return nil

	case plan.KindTree:
		return r.treeBody(n, depth+1)

	case plan.KindCollection, plan.KindTreeCollection:
		return r.collectionBody(n, depth)

	default:
		return fmt.Errorf("dseries: unsupported plan node kind %s", n.Kind)
	}
}

// treeBody renders the positional values of a tree block, one indentation
// level deeper than the enclosing frame.
func (r *renderer) treeBody(n *plan.Node, depth int) error {
	for _, c := range n.Children {
		switch c.Kind {
		case plan.KindScalar:
			if err := r.line(depth, c.Value); err != nil {
				return err
			}
		case plan.KindCollection, plan.KindTreeCollection:
			// Nested lists inside a tree carry no wrapper frame of their
			// own, only the count line and the framed elements.
			if err := r.collectionBody(c, depth); err != nil {
				return err
			}
		default:
			if err := r.node(c, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) collectionBody(n *plan.Node, depth int) error {
	if err := r.line(depth, fmt.Sprintf("%d = number of items", len(n.Children))); err != nil {
		return err
	}
	for _, c := range n.Children {
		if c.Kind == plan.KindScalar && c.Name == "" {
			if err := r.line(depth, c.Value); err != nil {
				return err
			}
			continue
		}
		if err := r.node(c, depth); err != nil {
			return err
		}
	}
	return nil
}

// raw writes opaque content verbatim, guaranteeing the following footer
// starts on its own line. Empty content contributes no lines at all.
func (r *renderer) raw(raw string) error {
	if raw == "" {
		return nil
	}
	if !strings.HasSuffix(raw, "\n") {
		raw += "\n"
	}
	return r.write(raw)
}
