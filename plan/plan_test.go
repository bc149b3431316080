package plan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindScalar, "scalar"},
		{KindBlock, "block"},
		{KindInline, "inline"},
		{KindInlineMapped, "inline-mapped"},
		{KindTree, "tree"},
		{KindCollection, "collection"},
		{KindTreeCollection, "tree-collection"},
		{KindOpaque, "opaque"},
		{Kind(99), "kind(99)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.kind.String())
	}
}

func TestHelpers(t *testing.T) {
	leaf := Leaf("GroundLevel", "-0.5")
	require.Equal(t, KindScalar, leaf.Kind)
	require.Equal(t, "-0.5", leaf.Value)

	opq := Opaque("SLOPES", "0 = number of items\n")
	require.Equal(t, KindOpaque, opq.Kind)
	require.Equal(t, "0 = number of items\n", opq.Raw)
}
