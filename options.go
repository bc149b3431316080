package dseries

import "fmt"

// Option configures an Encoder or Decoder.
type Option func(*options) error

type options struct {
	maxDepth    int
	versions    *VersionRange
	allowOldVer bool
}

const defaultMaxDepth = 1000

func buildOptions(opts []Option) (*options, error) {
	o := &options{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// MaxDepth sets the maximum nesting depth for encoding and decoding. This
// guards against stack exhaustion on pathologically nested documents and
// on cyclic in-memory object graphs.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("dseries: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// WithVersionRange declares the schema/tool version range the caller
// supports. When the decoded document root implements Versioned and its
// declared version falls outside the range, Decode returns an
// UnsupportedVersionError with the document still populated.
func WithVersionRange(r VersionRange) Option {
	return func(o *options) error {
		o.versions = &r
		return nil
	}
}

// AllowUnsupportedVersion suppresses the version gate: out-of-range
// documents decode without error. Intended for explicit best-effort
// re-reads after an UnsupportedVersionError, not as a default.
func AllowUnsupportedVersion() Option {
	return func(o *options) error {
		o.allowOldVer = true
		return nil
	}
}
