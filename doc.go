// Package nxinflate implements a streaming, resumable DEFLATE/ZLIB/GZIP
// decompressor whose inner loop is offloaded to an accelerator device
// (internal/accel), in the shape of a software device this package can
// drive and test against without real hardware. The public Stream type
// offers the same init/reset/inflate/end lifecycle and Z_OK/Z_STREAM_END/
// Z_BUF_ERROR-style return contract as zlib's inflate(), adapted to
// idiomatic Go error handling.
//
// Unlike klauspost/pgzip (the io.Reader/io.Writer-shaped package this one
// is structurally descended from), nxinflate does not decode DEFLATE in
// software: a Stream has nothing to fall back to if the accelerator is
// unavailable, and fails outright (NewStream returns an error wrapping
// ErrStream; a job the accelerator cannot complete returns CodeErrno)
// rather than decoding on the CPU.
package nxinflate
