package engine

// maxJobsPerCall bounds how many accelerator jobs a single Step call will
// submit, the anti-spin guard (§4.8/§8): once it is reached, Step returns
// the progress made so far instead of looping forever. Reaching it is not
// reported as an error.
const maxJobsPerCall = 65535

// StepResult reports what one Stream.Inflate call accomplished: how much
// of the caller's next_in was consumed, how much of next_out was filled,
// and the three terminal conditions the facade must translate into a
// zlib-shaped Code (§7).
type StepResult struct {
	ConsumedIn  int
	ProducedOut int
	NeedDict    bool
	StreamEnd   bool
	Err         error
}

// Step runs the full C1–C6 pipeline for one Stream.Inflate invocation: it
// first splices out any backlog left over from a prior call, parses as
// much of the container header as the available bytes allow, then drives
// the accelerator job by job (via the resume controller and driver) until
// the stream ends, the caller's buffers are exhausted, or the anti-spin
// bound is hit.
func (s *State) Step(out []byte, in []byte) StepResult {
	var res StepResult
	if s.Stats != nil {
		s.Stats.ObserveInflate(len(in), len(out))
	}

	res.ProducedOut += s.spliceOut(out)
	out = out[res.ProducedOut:]

	if s.finished {
		res.StreamEnd = true
		return res
	}

	origIn := in
	if s.hdrState != stateBody && s.hdrState != stateDone {
		hr, err := s.ParseHeader(&in)
		res.ConsumedIn = len(origIn) - len(in)
		switch hr {
		case headerWantMore:
			return res
		case headerNeedDict:
			res.NeedDict = true
			return res
		case headerBad:
			res.Err = err
			return res
		}
		// headerBodyReady: `in` now holds whatever was left after the
		// header, fall through into the decode loop below.
	}

	postHeaderIn := in
	src, staged := s.stageInput(in)
	stagedConsumed := 0

	for i := 0; i < maxJobsPerCall; i++ {
		freeOut := len(out)
		if freeOut == 0 {
			break // no caller output space left this call
		}
		if len(src) == 0 {
			break // nothing new to feed the accelerator this call
		}
		targetCap := freeOut
		if targetCap > s.Cfg.PerJobLen {
			targetCap = s.Cfg.PerJobLen
		}

		histLen := len(s.historyWindow())
		bj := s.buildJob(src, targetCap)
		outcome, err := s.runJob(bj, histLen)
		if err != nil {
			res.Err = err
			break
		}

		src = src[outcome.consumedSrc:]
		if staged {
			stagedConsumed += outcome.consumedSrc
		}

		n := s.spliceOut(out)
		out = out[n:]
		res.ProducedOut += n

		if outcome.streamEnd {
			s.finished = true
			res.StreamEnd = true
			break
		}
		if outcome.consumedSrc == 0 && outcome.produced == 0 {
			break // the accelerator made no progress; wait for more buffers
		}
	}

	if staged {
		s.consumeStaged(true, stagedConsumed)
		// stageInput copied all of postHeaderIn into fifoIn, which keeps
		// whatever the accelerator has not used yet, so the whole chunk
		// counts as consumed from the caller's next_in.
		res.ConsumedIn += len(postHeaderIn)
	} else {
		res.ConsumedIn += len(postHeaderIn) - len(src)
	}

	if s.Stats != nil {
		s.Stats.ObserveBytes(res.ConsumedIn, res.ProducedOut)
	}
	return res
}
