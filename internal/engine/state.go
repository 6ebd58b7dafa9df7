// Package engine implements the accelerator-driven inflate loop itself:
// the header state machine (C2), the fifo_in/fifo_out buffer pair and its
// compaction rules (C1), the job builder (C3), the accelerator driver and
// its retry policy (C4), the resume controller (C5) and the output
// splicer (C6). All six share one *State*, the way the teacher's gunzip.go
// spreads a single reader struct's methods across one package rather than
// passing a shared struct across package boundaries by pointer.
package engine

import (
	"github.com/klauspost/nxinflate/internal/accel"
	"github.com/klauspost/nxinflate/internal/checksum"
	"github.com/klauspost/nxinflate/internal/config"
	"github.com/klauspost/nxinflate/internal/stats"
)

// Wrap selects the container format a Stream expects, mirroring zlib's
// windowBits sign/offset convention (negative = raw, +16 = gzip, +32 =
// auto-detect) without exposing that encoding to callers.
type Wrap int

const (
	WrapZlib Wrap = iota
	WrapRaw
	WrapGzip
	WrapAuto
)

// headerState enumerates the C2 byte state machine's states (§4.2).
type headerState int

const (
	stateHead headerState = iota
	stateGzipFlags
	stateGzipMTime
	stateGzipXFlags
	stateGzipOS
	stateGzipExtraLen
	stateGzipExtra
	stateGzipName
	stateGzipComment
	stateGzipHCRC
	stateZlibFlag
	stateZlibDictID
	stateZlibDict
	stateBody
	stateDone
	stateBad
)

// GZipHeader records the optional fields a GZIP member may carry, handed
// back to the caller via Stream.Header after enough of the header has
// been parsed (§3's gz_header record).
type GZipHeader struct {
	Text    bool
	Time    uint32
	XFlags  byte
	OS      byte
	Extra   []byte
	Name    string
	Comment string
	HCRC    bool
	Done    bool
}

// controlBlock is the subset of accel.CPB the resume controller carries
// across calls to Stream.Inflate, independent of any one in-flight job.
type controlBlock struct {
	valid   bool // a resumable job context exists
	sfbt    uint8
	subc    uint8
	remByte uint16
	dht     []byte
	dhtLen  uint16
}

// State is the shared mutable record every engine file operates on, one
// per Stream: fifo buffers, cursors, header-parse progress, the carried
// control block, checksums and the compression-ratio heuristic (§3's data
// model).
type State struct {
	Cfg  config.Params
	Wrap Wrap

	Handle *accel.Handle
	Stats  *stats.Collector

	// Header parser (C2).
	Hdr      GZipHeader
	hdrState headerState
	hdrAcc   uint32 // accumulator for multi-byte fields (little-endian; the zlib DICTID is big-endian)
	hdrIdx   int    // bytes consumed of the current field (mtime/xlen/extra/dictid)
	hdrCRC   uint32 // running CRC-32 over the fixed 10-byte gzip header
	hdrZFlag byte
	zDictID  uint32
	needDict bool

	// Buffer pair (C1): fifo_in stages caller input that arrived in a
	// chunk too small to be worth handing the accelerator directly;
	// fifo_out holds the trailing 32 KiB window plus anything produced
	// that the caller's next_out could not yet absorb.
	fifoIn     []byte
	fifoInLen  int
	fifoOut    []byte
	fifoOutLen int // valid bytes in fifoOut[0:fifoOutLen]
	outDelivered int // of those, how many have already been copied to a caller's next_out

	// Resume controller (C5) carry-forward.
	cb controlBlock

	// Checksums, seeded the same for every Wrap (§3: CRC=0, Adler=1).
	CRC32   uint32
	Adler32 uint32

	lastCompRatio int // numerator/denominator pair folded into one permil value
	haveDict      bool

	finished bool
	dataErr  error
}

// NewState builds a State ready for the first Inflate call: fresh
// checksums, as after inflateInit2, and the compression ratio seeded at
// 100 permil.
func NewState(wrap Wrap, cfg config.Params, h *accel.Handle, st *stats.Collector) *State {
	s := &State{
		Cfg:           cfg,
		Wrap:          wrap,
		Handle:        h,
		Stats:         st,
		lastCompRatio: 100, // §3: seed at 10:1 (permil) until a job reports a real sample
	}
	s.resetChecksums()
	if wrap == WrapRaw {
		s.hdrState = stateBody
	}
	return s
}

func (s *State) resetChecksums() {
	s.CRC32 = checksum.InitCRC32
	s.Adler32 = checksum.InitAdler32
}

// Reset returns the state to its post-NewState condition without
// reallocating the fifo buffers, mirroring inflateReset's "keep the
// window, forget the stream" contract.
func (s *State) Reset() {
	s.Hdr = GZipHeader{}
	s.hdrState = stateHead
	if s.Wrap == WrapRaw {
		s.hdrState = stateBody
	}
	s.hdrAcc, s.hdrIdx, s.hdrCRC, s.hdrZFlag, s.zDictID = 0, 0, 0, 0, 0
	s.needDict = false
	s.fifoInLen, s.fifoOutLen, s.outDelivered = 0, 0, 0
	s.cb = controlBlock{}
	s.resetChecksums()
	s.lastCompRatio = 100
	s.haveDict = false
	s.finished = false
	s.dataErr = nil
}
