package dseries

import (
	"reflect"

	"github.com/mwestland/go-dseries/plan"
)

// A concrete schema type declares its structural kind by embedding exactly
// one of the marker types below. The kind is fixed at the type level and
// never varies per instance, mirroring how the legacy format ties framing
// rules to each section rather than to individual documents.

// Block marks a plain block: every field renders as its own bracketed
// subsection.
type Block struct{}

func (Block) structureKind() plan.Kind { return plan.KindBlock }

// Inline marks a block whose fields render as key=value lines inside a
// single section. Keys default to the Go field name; a tag overrides.
type Inline struct{}

func (Inline) structureKind() plan.Kind { return plan.KindInline }

// InlineMapped marks an inline block whose keys are externally fixed
// textual names. Every field must carry an explicit tag name; the Go
// identifier is never used as a key.
type InlineMapped struct{}

func (InlineMapped) structureKind() plan.Kind { return plan.KindInlineMapped }

// Tree marks a block whose fields render positionally, one value per line,
// nested one indentation level deeper than the parent.
type Tree struct{}

func (Tree) structureKind() plan.Kind { return plan.KindTree }

// Collection marks a counted, ordered list of framed elements. The marked
// struct must declare exactly one slice field; an optional int field tagged
// "count" is cross-checked against the slice length at write time.
type Collection struct{}

func (Collection) structureKind() plan.Kind { return plan.KindCollection }

// TreeCollection marks a collection whose elements are tree blocks.
type TreeCollection struct{}

func (TreeCollection) structureKind() plan.Kind { return plan.KindTreeCollection }

// kinded is satisfied by any struct embedding one of the kind markers.
type kinded interface{ structureKind() plan.Kind }

var kindedType = reflect.TypeOf((*kinded)(nil)).Elem()

// Opaque is raw section text passed through unparsed and unvalidated: the
// escape hatch for sections the schema does not yet model structurally.
// The content is preserved verbatim in both directions, including text
// that looks like nested section headers.
type Opaque string

// Bool is the format's boolean, rendered as the tokens 0 and 1.
type Bool int

// Boolean token values.
const (
	False Bool = 0
	True  Bool = 1
)

// The legacy engine denotes "unset" numeric values with a fixed sentinel
// literal. Fields tagged with the "sentinel" option re-emit the exact
// literal whenever they hold SentinelValue, so round-trips never collapse
// it to a normalized float spelling.
const (
	SentinelValue   = 987654321.0
	SentinelLiteral = "987654321.00000"
)

// Variant is a tagged union of a typed structure and raw passthrough text,
// for legacy sections that may be either parsed or preserved verbatim. The
// choice is made once, at construction or at parse time, and is never
// re-inferred on later calls.
type Variant[T any] struct {
	Value *T
	Raw   Opaque
}

// Typed returns a Variant holding a parsed structure.
func Typed[T any](v T) Variant[T] { return Variant[T]{Value: &v} }

// Passthrough returns a Variant holding verbatim section text.
func Passthrough[T any](raw string) Variant[T] { return Variant[T]{Raw: Opaque(raw)} }

// IsTyped reports whether the variant holds a parsed structure.
func (v Variant[T]) IsTyped() bool { return v.Value != nil }

func (Variant[T]) isVariant() {}

// variantMarker identifies Variant[T] fields during reflection.
type variantMarker interface{ isVariant() }

var variantType = reflect.TypeOf((*variantMarker)(nil)).Elem()
