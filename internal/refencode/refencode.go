// Package refencode builds the RFC1951/1950/1952 fixtures the round-trip
// tests in §8 decode with the accelerator-driven engine and compare
// against. Test-only, same reasoning as internal/refdecode.
package refencode

import (
	"bytes"
	"compress/zlib"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// Raw encodes data as a raw DEFLATE stream at the given level (use
// flate.BestCompression / flate.BestSpeed / flate.NoCompression for tests
// that want a specific block shape — NoCompression always yields a stored
// block, useful for exercising the resume controller's stored-block path
// deterministically).
func Raw(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Gzip encodes data as a single GZIP member, optionally with a name and
// comment set so header-parser tests can exercise FNAME/FCOMMENT (no
// extra field is written).
func Gzip(data []byte, name, comment string) ([]byte, error) {
	var buf bytes.Buffer
	w, _ := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
	w.Name = name
	w.Comment = comment
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Zlib encodes data as a ZLIB stream, optionally with a preset dictionary
// (exercising the DICTID/CodeNeedDict path).
func Zlib(data []byte, dict []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w *zlib.Writer
	var err error
	if dict != nil {
		w, err = zlib.NewWriterLevelDict(&buf, zlib.DefaultCompression, dict)
	} else {
		w, err = zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	}
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
