package accel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDDLReaderHonorsAdvertisedBudget(t *testing.T) {
	d := &DDL{}
	d.Append([]byte{1, 2, 3, 4, 5})
	d.SetAdvertised(3)

	r := newDDLReader(d)
	var got []byte
	for {
		b, ok := r.ReadByte()
		if !ok {
			break
		}
		got = append(got, b)
	}
	require.Equal(t, []byte{1, 2, 3}, got)
	require.Equal(t, 3, r.Consumed())
}

func TestDDLReaderSpansMultipleEntries(t *testing.T) {
	d := &DDL{}
	d.Append([]byte{1, 2})
	d.Append([]byte{3, 4, 5})

	r := newDDLReader(d)
	var got []byte
	for {
		b, ok := r.ReadByte()
		if !ok {
			break
		}
		got = append(got, b)
	}
	require.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}

func TestBitReaderReadsLSBFirst(t *testing.T) {
	// Byte 0b10110010: reading 3 bits then 5 bits LSB-first should yield
	// the low 3 bits first, then the remaining 5.
	d := &DDL{}
	d.Append([]byte{0b10110010})
	br := newBitReader(newDDLReader(d))

	v1, ok := br.ReadBits(3)
	require.True(t, ok)
	require.Equal(t, uint32(0b010), v1)

	v2, ok := br.ReadBits(5)
	require.True(t, ok)
	require.Equal(t, uint32(0b10110), v2)
}

func TestBitReaderReportsExhaustion(t *testing.T) {
	d := &DDL{}
	d.Append([]byte{0xff})
	br := newBitReader(newDDLReader(d))

	_, ok := br.ReadBits(8)
	require.True(t, ok)
	_, ok = br.ReadBits(1)
	require.False(t, ok)
}

func TestBitReaderAlignByteDropsPartialBits(t *testing.T) {
	d := &DDL{}
	d.Append([]byte{0b00000111, 0xAA})
	br := newBitReader(newDDLReader(d))

	_, ok := br.ReadBits(3)
	require.True(t, ok)
	br.AlignByte()

	v, ok := br.ReadByteAligned()
	require.True(t, ok)
	require.Equal(t, byte(0xAA), v)
}

func TestBitReaderSkipBitsAcrossByteBoundary(t *testing.T) {
	d := &DDL{}
	d.Append([]byte{0xff, 0b00000001})
	br := newBitReader(newDDLReader(d))

	br.SkipBits(9)
	v, ok := br.ReadBits(1)
	require.True(t, ok)
	require.Equal(t, uint32(0), v)
}

func TestBitReaderPendingBitsMatchesSUBC(t *testing.T) {
	d := &DDL{}
	d.Append([]byte{0xff})
	br := newBitReader(newDDLReader(d))

	_, ok := br.ReadBits(3)
	require.True(t, ok)
	require.Equal(t, uint(5), br.PendingBits())
}
