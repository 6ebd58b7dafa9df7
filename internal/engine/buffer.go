package engine

import "github.com/klauspost/nxinflate/internal/pages"

// ensureFifoOut grows fifoOut (page-aligned, via internal/pages) so it can
// hold at least the trailing window plus one job's worth of fresh output,
// the "window + overflow" capacity §3 describes for fifo_out.
func (s *State) ensureFifoOut(need int) {
	if cap(s.fifoOut) >= need {
		return
	}
	grown := pages.Alloc(need)
	copy(grown, s.fifoOut[:s.fifoOutLen])
	s.fifoOut = grown
}

// historyWindow returns the trailing up-to-WindowMax bytes of every
// decoded byte produced so far by this stream, the sliding dictionary a
// resumed job's source DDL is prefixed with (§4.4, §4.6).
func (s *State) historyWindow() []byte {
	start := s.fifoOutLen - s.Cfg.WindowMax
	if start < 0 {
		start = 0
	}
	return s.fifoOut[start:s.fifoOutLen]
}

// reserveOutputSpace grows fifoOut if needed and returns a slice at
// fifoOut[fifoOutLen:fifoOutLen+n] for the accelerator to write into
// directly, avoiding an extra copy from a scratch buffer.
func (s *State) reserveOutputSpace(n int) []byte {
	s.ensureFifoOut(s.fifoOutLen + n)
	return s.fifoOut[s.fifoOutLen : s.fifoOutLen+n]
}

// commitProduced records that n freshly-decoded bytes (already written
// into the slice reserveOutputSpace returned) are now part of the log.
func (s *State) commitProduced(n int) {
	s.fifoOutLen += n
}

// deliver copies as much of the undelivered tail of fifoOut as fits into
// out, advancing outDelivered. It is always the first thing each Inflate
// call does, per §4.7: bytes left over from a prior call's overflow are
// delivered before any new accelerator job runs.
func (s *State) deliver(out []byte) int {
	pending := s.fifoOut[s.outDelivered:s.fifoOutLen]
	n := copy(out, pending)
	s.outDelivered += n
	return n
}

// pendingOut reports how many decoded bytes are already waiting to be
// delivered (§4.7's overflow backlog), independent of the window.
func (s *State) pendingOut() int {
	return s.fifoOutLen - s.outDelivered
}

// compact drops the prefix of fifoOut that is both already delivered to a
// caller and older than the trailing window, the fifo_out_len_check
// compaction predicate §4.3 names. It keeps the buffer from growing
// without bound across a long stream.
func (s *State) compact() {
	safeToDrop := s.fifoOutLen - s.Cfg.WindowMax
	if safeToDrop > s.outDelivered {
		safeToDrop = s.outDelivered
	}
	if safeToDrop <= 0 {
		return
	}
	copy(s.fifoOut, s.fifoOut[safeToDrop:s.fifoOutLen])
	s.fifoOutLen -= safeToDrop
	s.outDelivered -= safeToDrop
}

// SeedHistory primes the window with a preset dictionary (§6's
// SetDictionary): the bytes are folded in as already-delivered history so
// the first job's source DDL is prefixed with them, but they are never
// themselves handed to a caller's next_out.
func (s *State) SeedHistory(dict []byte) {
	s.ensureFifoOut(len(dict))
	n := copy(s.fifoOut, dict)
	s.fifoOutLen = n
	s.outDelivered = n
	s.compact()
}

// stageInput appends newly-arrived caller bytes to fifoIn (the soft-copy
// staging buffer §4.3 describes) when there is already a pending remainder
// to coalesce with, or when the chunk is small enough that copying it once
// is cheaper than letting the job builder special-case a tiny source
// range. It returns the bytes the job builder should treat as "this
// call's available source": either the staged copy, or in, unmodified.
func (s *State) stageInput(in []byte) (src []byte, staged bool) {
	if s.fifoInLen == 0 && len(in) >= s.Cfg.SoftCopyThreshold {
		return in, false
	}
	need := s.fifoInLen + len(in)
	if cap(s.fifoIn) < need {
		grown := make([]byte, need, need+s.Cfg.SoftCopyThreshold)
		copy(grown, s.fifoIn[:s.fifoInLen])
		s.fifoIn = grown
	} else {
		s.fifoIn = s.fifoIn[:need]
	}
	copy(s.fifoIn[s.fifoInLen:], in)
	s.fifoInLen = need
	return s.fifoIn[:s.fifoInLen], true
}

// consumeStaged drops n bytes from the front of whichever buffer
// stageInput most recently returned, after the job builder reports how
// much of it the accelerator actually advertised and consumed. staged
// reports whether the returned slice was fifoIn (true) or the caller's own
// next_in (false), since only the former needs bookkeeping here.
func (s *State) consumeStaged(staged bool, n int) {
	if !staged {
		return
	}
	copy(s.fifoIn, s.fifoIn[n:s.fifoInLen])
	s.fifoInLen -= n
}
