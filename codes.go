package nxinflate

import "errors"

// Code mirrors zlib's inflate() return values, the shape the original
// NX-GZIP shim (and every zlib-compatible wrapper) presents to callers
// (§7).
type Code int

const (
	// CodeOK: progress was made; call again with more input/output space.
	CodeOK Code = iota
	// CodeStreamEnd: the final block of the stream has been decoded.
	CodeStreamEnd
	// CodeNeedDict: a ZLIB header named a preset dictionary; call
	// SetDictionary before the next Inflate.
	CodeNeedDict
	// CodeBufError: no progress was possible: Inflate consumed and
	// produced nothing, for example because both next_in and next_out
	// were exhausted or the input ran out before the stream ended.
	CodeBufError
	// CodeStreamError: the Stream was used inconsistently (e.g. Inflate
	// called after End, or with a rejected flush mode).
	CodeStreamError
	// CodeDataError: the compressed data is corrupt (header, checksum, or
	// invalid Huffman/back-reference content).
	CodeDataError
	// CodeMemError: a buffer could not be allocated.
	CodeMemError
	// CodeErrno: the accelerator reported an unrecoverable completion code
	// or exhausted its retry budget; this path never falls back to software
	// decoding (§1's "if the accelerator is unavailable, the core fails").
	CodeErrno
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeStreamEnd:
		return "STREAM_END"
	case CodeNeedDict:
		return "NEED_DICT"
	case CodeBufError:
		return "BUF_ERROR"
	case CodeStreamError:
		return "STREAM_ERROR"
	case CodeDataError:
		return "DATA_ERROR"
	case CodeMemError:
		return "MEM_ERROR"
	case CodeErrno:
		return "ERRNO"
	default:
		return "UNKNOWN"
	}
}

// Flush selects the flush mode passed to Inflate. Only the three flush
// modes that make sense without a software fallback are supported; the
// inspection modes zlib offers (Z_BLOCK, Z_TREES) are explicitly out of
// scope (§1's Non-goals) since they require stopping mid-block, which the
// accelerator boundary does not expose.
type Flush int

const (
	NoFlush Flush = iota
	SyncFlush
	Finish
)

// Sentinel errors, in the style of pgzip's ErrChecksum/ErrHeader: wrapped
// with fmt.Errorf("%w", ...) rather than returned bare, so callers can
// errors.Is against them while still seeing a descriptive message.
var (
	ErrHeader     = errors.New("nxinflate: invalid container header")
	ErrChecksum   = errors.New("nxinflate: checksum mismatch")
	ErrDictionary = errors.New("nxinflate: dictionary required or mismatched")
	ErrStream     = errors.New("nxinflate: stream used inconsistently")
	ErrFlushMode  = errors.New("nxinflate: unsupported flush mode")
)
