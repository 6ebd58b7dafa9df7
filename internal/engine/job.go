package engine

import "github.com/klauspost/nxinflate/internal/accel"

// builtJob bundles the accel.Job together with the bookkeeping the driver
// and resume controller need once the accelerator returns: how many bytes
// of src (excluding history) were advertised, and where the target bytes
// landed in fifoOut.
type builtJob struct {
	job        *accel.Job
	srcAdvert  int // bytes of src advertised this job, not counting history
	targetBase int // fifoOutLen at the moment the job's target was reserved
	targetCap  int
}

// buildJob assembles one accelerator invocation per §4.4: prefix the
// trailing history window onto the source descriptor list, throttle how
// much of the available source is advertised using the last observed
// compression ratio so a job is unlikely to need a TARGET_SPACE retry, and
// carry forward whatever the resume controller has from a prior job.
func (s *State) buildJob(src []byte, targetCap int) *builtJob {
	history := s.historyWindow()

	srcAdvert := s.throttledSource(len(src), targetCap)

	srcDDL := &accel.DDL{}
	srcDDL.Append(history)
	srcDDL.Append(src)
	srcDDL.SetAdvertised(len(history) + srcAdvert)

	targetBase := s.fifoOutLen
	target := s.reserveOutputSpace(targetCap)
	dstDDL := &accel.DDL{}
	dstDDL.Append(target)

	cpb := &accel.CPB{
		InHistLen: uint32(len(history)),
		InCRC:     s.CRC32,
		InAdler:   s.Adler32,
	}
	crb := &accel.CRB{FuncCode: accel.FuncDecompress}
	if s.cb.valid {
		crb.FuncCode = accel.FuncDecompressResume
		cpb.InSUBC = s.cb.subc
		cpb.InSFBT = s.cb.sfbt
		cpb.InRemByteCnt = s.cb.remByte
		cpb.InDHT = s.cb.dht
		cpb.InDHTLen = s.cb.dhtLen
	}

	return &builtJob{
		job: &accel.Job{
			Src: srcDDL,
			Dst: dstDDL,
			CRB: crb,
			CPB: cpb,
		},
		srcAdvert:  srcAdvert,
		targetBase: targetBase,
		targetCap:  targetCap,
	}
}

// throttledSource bounds how much of the available source bytes get
// advertised to the accelerator, scaled by s.lastCompRatio (compressed
// bytes per 1000 decompressed bytes, §4.4 step 3) so a job sized for
// targetCap output rarely overflows it. The ratio starts at 100 (10:1,
// §3's seed value) until a completed job reports a real sample; a stream
// that has shown heavier expansion narrows the request further still.
func (s *State) throttledSource(avail, targetCap int) int {
	if avail == 0 {
		return 0
	}
	estimate := targetCap * s.lastCompRatio / 1000
	if estimate <= 0 {
		estimate = 1
	}
	if estimate < avail {
		return estimate
	}
	return avail
}

// updateCompRatio folds one job's consumed/produced counts into the
// running compressed-bytes-per-1000-decompressed-bytes estimate
// throttledSource reads, an exponential average so one unusually dense or
// sparse block does not swing the next job's request to an extreme.
func (s *State) updateCompRatio(consumed, produced int) {
	if produced == 0 {
		return
	}
	sample := consumed * 1000 / produced
	if sample > 1000 {
		sample = 1000
	}
	s.lastCompRatio = (s.lastCompRatio*3 + sample) / 4
}
