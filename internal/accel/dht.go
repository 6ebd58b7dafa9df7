package accel

import "encoding/binary"

// dynamicTables holds the two canonical trees a dynamic-Huffman block
// uses. Their code lengths are recovered from the trees when they are
// serialized into CPB.OutDHT/InDHT for carry-forward across a resumed job
// — the DHT named in §4.6's sfbt=1100/1101 row and the glossary.
type dynamicTables struct {
	lit  *huffTree
	dist *huffTree
}

// readDynamicHeader parses a dynamic-Huffman block header (RFC 1951
// §3.2.7): HLIT/HDIST/HCLEN, the code-length alphabet, then the literal
// and distance code length sequences (with run-length codes 16/17/18).
// Returns ok=false if the advertised input runs out before the header is
// fully parsed — the header is parsed in one shot, matching hardware that
// cannot suspend mid-header (sfbt 1110/1111 covers exactly "before or at"
// a block header boundary, never inside one, in this implementation).
func readDynamicHeader(b *bitReader) (*dynamicTables, []byte, bool) {
	hlit, ok := b.ReadBits(5)
	if !ok {
		return nil, nil, false
	}
	hdist, ok := b.ReadBits(5)
	if !ok {
		return nil, nil, false
	}
	hclen, ok := b.ReadBits(4)
	if !ok {
		return nil, nil, false
	}
	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4

	clLengths := make([]int, 19)
	for i := 0; i < nclen; i++ {
		v, ok := b.ReadBits(3)
		if !ok {
			return nil, nil, false
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clTree := newHuffTree(clLengths)

	all := make([]int, nlit+ndist)
	for i := 0; i < len(all); {
		sym, ok := clTree.Decode(b)
		if !ok {
			return nil, nil, false
		}
		switch {
		case sym < 16:
			all[i] = sym
			i++
		case sym == 16:
			n, ok := b.ReadBits(2)
			if !ok || i == 0 {
				return nil, nil, false
			}
			prev := all[i-1]
			for k := 0; k < int(n)+3 && i < len(all); k++ {
				all[i] = prev
				i++
			}
		case sym == 17:
			n, ok := b.ReadBits(3)
			if !ok {
				return nil, nil, false
			}
			for k := 0; k < int(n)+3 && i < len(all); k++ {
				all[i] = 0
				i++
			}
		case sym == 18:
			n, ok := b.ReadBits(7)
			if !ok {
				return nil, nil, false
			}
			for k := 0; k < int(n)+11 && i < len(all); k++ {
				all[i] = 0
				i++
			}
		}
	}

	litLengths := all[:nlit]
	distLengths := all[nlit:]
	dt := &dynamicTables{lit: newHuffTree(litLengths), dist: newHuffTree(distLengths)}
	return dt, serializeDHT(litLengths, distLengths), true
}

// serializeDHT packs the literal/length and distance code-length arrays
// into the opaque byte blob the spec's CPB.in_dht/out_dht fields carry
// between jobs (§3, §4.6: "dhtlen ≥ 42 must hold"). The encoding here is a
// simple length-prefixed pair of length arrays rather than the bit-packed
// hardware table format, since this device is a software stand-in: what
// matters for fidelity is that the same bytes round-trip through the
// CPB exactly as the real accelerator's internal table would.
func serializeDHT(lit, dist []int) []byte {
	buf := make([]byte, 4+len(lit)+len(dist))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(lit)))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(dist)))
	for i, l := range lit {
		buf[4+i] = byte(l)
	}
	for i, l := range dist {
		buf[4+len(lit)+i] = byte(l)
	}
	return buf
}

func deserializeDHT(buf []byte) (*dynamicTables, bool) {
	if len(buf) < 4 {
		return nil, false
	}
	nlit := int(binary.LittleEndian.Uint16(buf[0:2]))
	ndist := int(binary.LittleEndian.Uint16(buf[2:4]))
	if len(buf) < 4+nlit+ndist {
		return nil, false
	}
	lit := make([]int, nlit)
	dist := make([]int, ndist)
	for i := range lit {
		lit[i] = int(buf[4+i])
	}
	for i := range dist {
		dist[i] = int(buf[4+nlit+i])
	}
	return &dynamicTables{lit: newHuffTree(lit), dist: newHuffTree(dist)}, true
}
