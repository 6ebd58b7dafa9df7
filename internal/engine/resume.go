package engine

import "github.com/klauspost/nxinflate/internal/accel"

// jobOutcome is what one completed accelerator job tells the rest of the
// engine: how much source it actually consumed (excluding the history
// prefix), how much target space it filled, and whether the stream has
// reached its logical end.
type jobOutcome struct {
	consumedSrc int
	produced    int
	streamEnd   bool
}

// applyResume folds a completed job's CPB/CSB back into the State: it
// carries the SFBT/SUBC/REMBYTECNT/DHT forward for the next job (§4.6's
// resume table), updates the running checksums from the accelerator's
// carried CRC/Adler, rewinds the reported consumed-source count so the
// trailing partially-consumed byte(s) get re-fed rather than dropped, and
// reports whether the terminal SFBT was reached.
func (s *State) applyResume(bj *builtJob) jobOutcome {
	job := bj.job

	produced := int(job.CRB.CSB.TPBC)
	spbc := int(job.CPB.OutSPBCDecomp)
	consumed := spbc - int(job.CPB.InHistLen)
	if consumed < 0 {
		consumed = 0
	}
	if consumed > bj.srcAdvert {
		consumed = bj.srcAdvert
	}

	s.CRC32 = job.CPB.OutCRC
	s.Adler32 = job.CPB.OutAdler
	s.commitProduced(produced)
	s.updateCompRatio(consumed, produced)

	if accel.IsTerminalSFBT(job.CPB.OutSFBT) {
		s.cb = controlBlock{}
		return jobOutcome{consumedSrc: consumed, produced: produced, streamEnd: true}
	}

	// Rewind consumed source by (subc+7)/8 bytes: every trailing byte that
	// still holds an unprocessed bit must be re-fed to the next job rather
	// than reported as consumed (§4.6). subc is carried forward unchanged
	// in s.cb; device.go's resume path re-discards the already-used bits
	// of the oldest of those bytes when the job resumes.
	rewind := (int(job.CPB.OutSUBC) + 7) / 8
	consumedSrc := consumed - rewind
	if consumedSrc < 0 {
		consumedSrc = 0
	}

	s.cb = controlBlock{
		valid:   true,
		sfbt:    job.CPB.OutSFBT,
		subc:    job.CPB.OutSUBC,
		remByte: job.CPB.OutRemByteCnt,
		dht:     job.CPB.OutDHT,
		dhtLen:  job.CPB.OutDHTLen,
	}
	return jobOutcome{consumedSrc: consumedSrc, produced: produced}
}
