package engine

import (
	"fmt"

	"github.com/klauspost/nxinflate/internal/accel"
	"github.com/klauspost/nxinflate/internal/nxlog"
)

// ErrAccelerator wraps an unrecoverable accelerator completion code or
// retry-budget exhaustion, the facade's CodeErrno case (§7).
type ErrAccelerator struct {
	Code accel.Code
	Err  error
}

func (e *ErrAccelerator) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nxinflate: accelerator error (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("nxinflate: accelerator error (%s)", e.Code)
}

func (e *ErrAccelerator) Unwrap() error { return e.Err }

// runJob drives one accelerator submission through the retry policy §4.5
// names: TARGET_SPACE shrinks the advertised source and resubmits;
// TRANSLATION re-touches pages (Submit does this on every call) and
// resubmits; either of those past retryMax attempts, and any other
// non-DATA_LENGTH outcome on its first occurrence, is an unrecoverable
// error. It returns once a job completes with CodeDataLength.
func (s *State) runJob(bj *builtJob, histLen int) (jobOutcome, error) {
	log := nxlog.WithFields(nil)
	for attempt := 0; ; attempt++ {
		code, err := s.Handle.Submit(bj.job)
		if err != nil {
			return jobOutcome{}, &ErrAccelerator{Code: code, Err: err}
		}
		switch code {
		case accel.CodeDataLength:
			return s.applyResume(bj), nil

		case accel.CodeTargetSpace:
			s.Stats.ObserveRetry("target_space")
			if attempt >= s.Cfg.RetryMax {
				return jobOutcome{}, &ErrAccelerator{Code: code}
			}
			if !bj.shrinkSource(histLen) {
				return jobOutcome{}, &ErrAccelerator{Code: code,
					Err: fmt.Errorf("source cannot be shrunk further")}
			}
			log.WithFields(map[string]interface{}{
				"cc": "target_space", "retry": attempt + 1,
			}).Debug("accelerator target overflow, retrying with less source")

		case accel.CodeTranslation:
			s.Stats.ObserveRetry("translation")
			if attempt >= s.Cfg.RetryMax {
				return jobOutcome{}, &ErrAccelerator{Code: code}
			}
			log.WithFields(map[string]interface{}{
				"cc": "translation", "fault_addr": bj.job.CRB.CSB.FaultAddr, "retry": attempt + 1,
			}).Debug("accelerator translation fault, retrying")

		default:
			s.Stats.ObserveRetry("errno")
			return jobOutcome{}, &ErrAccelerator{Code: code}
		}
	}
}

// shrinkSource halves the non-history portion of the job's advertised
// source and reports whether any room was left to shrink, the "resubmit
// with less source" half of the TARGET_SPACE policy (§4.5).
func (bj *builtJob) shrinkSource(histLen int) bool {
	if bj.srcAdvert <= 1 {
		return false
	}
	bj.srcAdvert /= 2
	bj.job.Src.SetAdvertised(histLen + bj.srcAdvert)
	return true
}
