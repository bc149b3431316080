package dseries

import "fmt"

// Version is the schema/tool version pair recorded per document: two
// independent, monotonically increasing integers. The schema version
// governs which optional sections are expected; the tool version records
// the build of the engine that produced the document.
type Version struct {
	Schema int
	Tool   int
}

func (v Version) String() string {
	return fmt.Sprintf("%d/%d", v.Schema, v.Tool)
}

// VersionRange is the inclusive range of versions a caller claims to
// support. A zero Max component means "no upper bound".
type VersionRange struct {
	Min Version
	Max Version
}

// Contains reports whether v falls inside the range, comparing the schema
// and tool components independently.
func (r VersionRange) Contains(v Version) bool {
	if v.Schema < r.Min.Schema || v.Tool < r.Min.Tool {
		return false
	}
	if r.Max.Schema != 0 && v.Schema > r.Max.Schema {
		return false
	}
	if r.Max.Tool != 0 && v.Tool > r.Max.Tool {
		return false
	}
	return true
}

// Versioned is implemented by document root types that carry a version
// section. When a Decoder is configured with WithVersionRange, the declared
// version is validated after parsing and an out-of-range document is
// reported with an UnsupportedVersionError while still being returned
// populated, so the caller may proceed best-effort.
type Versioned interface {
	DocumentVersion() Version
}
