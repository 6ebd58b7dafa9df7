package accel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// bitWriter packs bits LSB-first into bytes, the inverse of bitReader, so
// tests can hand-build a bitstream for a known Huffman tree.
type bitWriter struct {
	bytes []byte
	cur   uint32
	nbits uint
}

func (w *bitWriter) writeBits(v uint32, n uint) {
	w.cur |= (v & ((1 << n) - 1)) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		w.bytes = append(w.bytes, byte(w.cur))
		w.cur >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) flush() []byte {
	if w.nbits > 0 {
		w.bytes = append(w.bytes, byte(w.cur))
		w.cur = 0
		w.nbits = 0
	}
	return w.bytes
}

// writeCode packs a canonical Huffman code's bits in the MSB-first order
// Decode expects to read them back in, one bit at a time via ReadBits(1).
func writeCode(w *bitWriter, code, length int) {
	for i := length - 1; i >= 0; i-- {
		bit := (code >> uint(i)) & 1
		w.writeBits(uint32(bit), 1)
	}
}

func TestFixedTreesDecodeKnownSymbols(t *testing.T) {
	lit, dist := fixedTrees()
	require.NotNil(t, lit)
	require.NotNil(t, dist)

	// Symbol 0 has an 8-bit fixed code starting at 0b00110000 (RFC 1951
	// §3.2.6).
	w := &bitWriter{}
	writeCode(w, 0b00110000, 8)
	d := &DDL{}
	d.Append(w.flush())
	br := newBitReader(newDDLReader(d))

	sym, ok := lit.Decode(br)
	require.True(t, ok)
	require.Equal(t, 0, sym)
}

func TestHuffTreeRoundTripsAssignedLengths(t *testing.T) {
	// A tiny alphabet: symbol 0 gets a 1-bit code, symbols 1 and 2 get
	// 2-bit codes — a valid canonical assignment.
	lengths := []int{1, 2, 2}
	tree := newHuffTree(lengths)

	// Canonical codes for these lengths: sym0=0 (1 bit), sym1=10 (2
	// bits), sym2=11 (2 bits).
	cases := []struct {
		code, length, want int
	}{
		{0b0, 1, 0},
		{0b10, 2, 1},
		{0b11, 2, 2},
	}
	for _, c := range cases {
		w := &bitWriter{}
		writeCode(w, c.code, c.length)
		d := &DDL{}
		d.Append(w.flush())
		br := newBitReader(newDDLReader(d))

		got, ok := tree.Decode(br)
		require.True(t, ok)
		require.Equal(t, c.want, got)
	}
}

func TestHuffTreeDecodeExhaustsOnShortInput(t *testing.T) {
	tree := newHuffTree([]int{1, 2, 2})
	d := &DDL{}
	d.Append([]byte{}) // no bits at all
	br := newBitReader(newDDLReader(d))

	_, ok := tree.Decode(br)
	require.False(t, ok)
}
