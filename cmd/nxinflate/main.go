// Command nxinflate decompresses a RAW/ZLIB/GZIP file through the
// accelerator-driven engine, for manual smoke-testing and as a runnable
// example of the public API. No subcommand framework is pulled in (a
// single command needs none), matching the teacher's own lack of a CLI.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/nxinflate"
	"github.com/klauspost/nxinflate/internal/refdecode"
)

func main() {
	wrapFlag := flag.String("wrap", "auto", "container format: raw, zlib, gzip, auto")
	verify := flag.Bool("verify", false, "cross-check output against the software reference decoder")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: nxinflate [-wrap=auto] [-verify] <file>")
		os.Exit(2)
	}

	in, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "nxinflate:", err)
		os.Exit(1)
	}

	wrap, err := parseWrap(*wrapFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nxinflate:", err)
		os.Exit(2)
	}

	out, err := decodeAll(wrap, in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nxinflate:", err)
		os.Exit(1)
	}

	if *verify {
		if err := crossCheck(wrap, in, out); err != nil {
			fmt.Fprintln(os.Stderr, "nxinflate: verify failed:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "nxinflate: verify OK")
	}

	os.Stdout.Write(out)
}

func parseWrap(s string) (nxinflate.Wrap, error) {
	switch s {
	case "raw":
		return nxinflate.WrapRaw, nil
	case "zlib":
		return nxinflate.WrapZlib, nil
	case "gzip":
		return nxinflate.WrapGzip, nil
	case "auto":
		return nxinflate.WrapAuto, nil
	default:
		return 0, fmt.Errorf("unknown -wrap value %q", s)
	}
}

func decodeAll(wrap nxinflate.Wrap, in []byte) ([]byte, error) {
	s, err := nxinflate.NewStream(wrap)
	if err != nil {
		return nil, err
	}
	defer s.End()

	var out bytes.Buffer
	buf := make([]byte, 64*1024)
	for {
		consumed, produced, code, err := s.Inflate(buf, in, nxinflate.Finish)
		out.Write(buf[:produced])
		in = in[consumed:]
		if err != nil {
			return nil, err
		}
		switch code {
		case nxinflate.CodeStreamEnd:
			return out.Bytes(), nil
		case nxinflate.CodeNeedDict:
			return nil, fmt.Errorf("stream requires a preset dictionary")
		case nxinflate.CodeBufError:
			return nil, io.ErrUnexpectedEOF
		}
	}
}

func crossCheck(wrap nxinflate.Wrap, in, out []byte) error {
	var ref []byte
	var err error
	switch wrap {
	case nxinflate.WrapRaw:
		ref, err = refdecode.InflateRaw(in)
	case nxinflate.WrapGzip:
		ref, err = refdecode.InflateGzip(in)
	default:
		ref, err = refdecode.InflateZlib(in, nil)
	}
	if err != nil {
		return err
	}
	if !bytes.Equal(ref, out) {
		return fmt.Errorf("output diverges from reference decoder (%d vs %d bytes)", len(out), len(ref))
	}
	return nil
}
