// Package refdecode is a software reference decoder used only by tests
// (and cmd/nxinflate's -verify flag) as the oracle the round-trip
// properties in §8 check the accelerator-driven engine against. It is
// never imported by the production Inflate path: the spec requires the
// core to fail outright when the accelerator is unavailable rather than
// fall back to software (§1).
package refdecode

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// InflateRaw decodes a raw DEFLATE stream (no container) using
// klauspost/compress/flate, the same decoder the teacher package
// (klauspost/pgzip) builds its Reader on.
func InflateRaw(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}

// InflateGzip decodes one GZIP member via klauspost/compress/gzip.
func InflateGzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// InflateZlib decodes a ZLIB stream via the standard library's
// compress/zlib, grounded on pgzip's gunzip_test.go use of the stdlib
// zlib package as its own cross-check decoder.
func InflateZlib(data []byte, dict []byte) ([]byte, error) {
	var r io.ReadCloser
	var err error
	if dict != nil {
		r, err = zlib.NewReaderDict(bytes.NewReader(data), dict)
	} else {
		r, err = zlib.NewReader(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
