package nxinflate

import (
	"errors"
	"fmt"

	"github.com/klauspost/nxinflate/internal/accel"
	"github.com/klauspost/nxinflate/internal/config"
	"github.com/klauspost/nxinflate/internal/engine"
	"github.com/klauspost/nxinflate/internal/nxlog"
	"github.com/klauspost/nxinflate/internal/pages"
	"github.com/klauspost/nxinflate/internal/stats"
)

// Wrap selects the container format a Stream expects. WrapAuto detects
// ZLIB vs GZIP from the first byte, the way zlib's windowBits=47
// convention does, and never matches RAW (a raw DEFLATE stream has no
// framing to detect).
type Wrap int

const (
	WrapZlib Wrap = iota
	WrapRaw
	WrapGzip
	WrapAuto
)

func (w Wrap) engineWrap() engine.Wrap {
	switch w {
	case WrapRaw:
		return engine.WrapRaw
	case WrapGzip:
		return engine.WrapGzip
	case WrapAuto:
		return engine.WrapAuto
	default:
		return engine.WrapZlib
	}
}

// Stream is the C7 Stream Facade (§4.1): the public init/reset/inflate/end
// lifecycle wrapping the accelerator-driven engine. A Stream is
// single-owner and not safe for concurrent use (§1's Non-goals), matching
// zlib's own z_stream contract.
type Stream struct {
	st     *engine.State
	handle *accel.Handle
	ended  bool
}

// NewStream opens a Stream against the accelerator selected by
// config.FromEnv, matching nx_inflateInit2's device-open-then-init order.
// Close (End) releases the accelerator handle; failing to call it leaks
// the handle exactly as failing to call inflateEnd would.
func NewStream(wrap Wrap) (*Stream, error) {
	return NewStreamConfig(wrap, config.FromEnv())
}

// NewStreamConfig is NewStream with an explicit configuration, for callers
// that do not want environment-variable overrides (tests, primarily).
func NewStreamConfig(wrap Wrap, cfg config.Params) (*Stream, error) {
	pages.Size = cfg.PageSize
	h, err := accel.Open(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("nxinflate: %w: %v", ErrStream, err)
	}
	st := engine.NewState(wrap.engineWrap(), cfg, h, stats.Default)
	return &Stream{st: st, handle: h}, nil
}

// Header returns the GZIP header fields parsed so far. It is only
// meaningful once WrapGzip or WrapAuto (having detected GZIP) is in
// effect; for ZLIB/RAW streams it is always the zero value.
func (s *Stream) Header() GZipHeader { return s.st.Hdr }

// Reset returns the Stream to its post-NewStream state without releasing
// the accelerator handle, mirroring inflateReset (§4.1).
func (s *Stream) Reset() error {
	if s.ended {
		return fmt.Errorf("%w: Reset called after End", ErrStream)
	}
	s.st.Reset()
	return nil
}

// Inflate decompresses as much of in into out as one call can manage,
// returning how many bytes of each were consumed/produced and the
// resulting Code. Unlike zlib's in-place strm.next_in/avail_in fields,
// callers pass the currently-available slices directly; a Stream
// remembers any unconsumed bytes it needs to carry to the next call
// internally (§3's fifo_in/fifo_out).
func (s *Stream) Inflate(out, in []byte, flush Flush) (consumed, produced int, code Code, err error) {
	if s.ended {
		return 0, 0, CodeStreamError, fmt.Errorf("%w: Inflate called after End", ErrStream)
	}
	if flush != NoFlush && flush != SyncFlush && flush != Finish {
		return 0, 0, CodeStreamError, fmt.Errorf("%w: flush mode %d", ErrFlushMode, flush)
	}

	res := s.st.Step(out, in)

	switch {
	case res.Err != nil:
		var accelErr *engine.ErrAccelerator
		if errors.As(res.Err, &accelErr) {
			nxlog.WithFields(map[string]interface{}{"cc": accelErr.Code.String()}).
				Error("accelerator driver exhausted its retry budget")
			return res.ConsumedIn, res.ProducedOut, CodeErrno, res.Err
		}
		return res.ConsumedIn, res.ProducedOut, CodeDataError, fmt.Errorf("%w: %v", ErrHeader, res.Err)

	case res.NeedDict:
		return res.ConsumedIn, res.ProducedOut, CodeNeedDict, nil

	case res.StreamEnd:
		return res.ConsumedIn, res.ProducedOut, CodeStreamEnd, nil

	case res.ConsumedIn == 0 && res.ProducedOut == 0:
		// No progress was made: both buffers were empty, the input ran out
		// before the stream ended, or a pathological input chunk could not
		// move the state machine forward on its own.
		if flush == Finish && len(in) > 0 && len(out) > 0 {
			return res.ConsumedIn, res.ProducedOut, CodeDataError,
				fmt.Errorf("%w: unexpected end of stream", ErrChecksum)
		}
		return res.ConsumedIn, res.ProducedOut, CodeBufError, nil

	default:
		return res.ConsumedIn, res.ProducedOut, CodeOK, nil
	}
}

// End releases the accelerator handle. Further calls to Inflate or Reset
// return CodeStreamError/ErrStream.
func (s *Stream) End() error {
	if s.ended {
		return nil
	}
	s.ended = true
	return s.handle.Close()
}
