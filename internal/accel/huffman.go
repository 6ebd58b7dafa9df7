package accel

// huffTree is a canonical Huffman decode table: codes are looked up bit by
// bit (slow but simple — correctness over speed, since this package
// stands in for hardware the rest of the module must not need to
// understand). table[code] for a code of a given length maps to a symbol;
// we instead walk a sorted list of (length, firstCode, firstSymbol)
// ranges, the classic canonical-Huffman decode by counts.
type huffTree struct {
	// counts[l] = number of codes of length l, 1..15
	counts [16]int
	// symbols lists the symbols in canonical order (sorted by (length, symbol)).
	symbols []int
}

// newHuffTree builds a canonical decode table from a slice of code
// lengths indexed by symbol (0 = symbol unused).
func newHuffTree(lengths []int) *huffTree {
	t := &huffTree{}
	for _, l := range lengths {
		if l > 0 {
			t.counts[l]++
		}
	}
	// Stable ordering: symbols grouped by length, ascending within a
	// length, matching RFC 1951 §3.2.2's canonical assignment.
	offsets := [16]int{}
	total := 0
	for l := 1; l <= 15; l++ {
		offsets[l] = total
		total += t.counts[l]
	}
	t.symbols = make([]int, total)
	for sym, l := range lengths {
		if l > 0 {
			t.symbols[offsets[l]] = sym
			offsets[l]++
		}
	}
	return t
}

// Decode reads one symbol, LSB-first bit at a time, building up the
// canonical code value and comparing against the per-length code-count
// table. Returns ok=false, consuming no new bits beyond what it already
// buffered, if the input is exhausted before a full symbol is read —
// exactly the symbol-aligned suspension point the resume controller
// relies on (§4.6): a job never stops mid-symbol because Decode itself
// never commits a partial code to the caller.
func (t *huffTree) Decode(b *bitReader) (int, bool) {
	code := 0
	first := 0
	index := 0
	for l := 1; l <= 15; l++ {
		bit, ok := b.ReadBits(1)
		if !ok {
			return 0, false
		}
		// DEFLATE Huffman codes are packed MSB-first within the code
		// itself even though bits arrive LSB-first on the wire; shift
		// the running code left and OR in the new bit at the bottom.
		code = (code << 1) | int(bit)
		count := t.counts[l]
		if code-first < count {
			return t.symbols[index+code-first], true
		}
		index += count
		first += count
		first <<= 1
	}
	return 0, false
}

var (
	fixedLitTree  *huffTree
	fixedDistTree *huffTree
)

func init() {
	lengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		lengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		lengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		lengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		lengths[i] = 8
	}
	fixedLitTree = newHuffTree(lengths)

	distLengths := make([]int, 30)
	for i := range distLengths {
		distLengths[i] = 5
	}
	fixedDistTree = newHuffTree(distLengths)
}

func fixedTrees() (*huffTree, *huffTree) {
	return fixedLitTree, fixedDistTree
}

// codeLengthOrder is the order code-length-alphabet lengths appear in a
// dynamic Huffman block header, RFC 1951 §3.2.7.
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

var lengthBase = [29]int{3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258}
var lengthExtra = [29]uint{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0}

var distBase = [30]int{1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577}
var distExtra = [30]uint{0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13}
