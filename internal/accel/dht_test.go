package accel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeDHTRoundTrips(t *testing.T) {
	lit := []int{0, 8, 8, 9, 0, 7, 8}
	dist := []int{5, 5, 0, 5}

	blob := serializeDHT(lit, dist)
	require.GreaterOrEqual(t, len(blob), 4)

	dt, ok := deserializeDHT(blob)
	require.True(t, ok)
	require.NotNil(t, dt.lit)
	require.NotNil(t, dt.dist)

	// A symbol that had a nonzero length in the original array must still
	// decode through the rebuilt tree to the same canonical assignment a
	// freshly built tree from the same lengths would give.
	want := newHuffTree(lit)
	require.Equal(t, want.counts, dt.lit.counts)
	require.Equal(t, want.symbols, dt.lit.symbols)
}

func TestDeserializeDHTRejectsTruncatedBlob(t *testing.T) {
	_, ok := deserializeDHT([]byte{1, 2})
	require.False(t, ok)

	lit := []int{1, 2}
	dist := []int{1}
	blob := serializeDHT(lit, dist)
	_, ok = deserializeDHT(blob[:len(blob)-1])
	require.False(t, ok)
}

func TestSerializeDHTEmptyTables(t *testing.T) {
	blob := serializeDHT(nil, nil)
	require.Len(t, blob, 4)

	dt, ok := deserializeDHT(blob)
	require.True(t, ok)
	require.Equal(t, 0, len(dt.lit.symbols))
	require.Equal(t, 0, len(dt.dist.symbols))
}
