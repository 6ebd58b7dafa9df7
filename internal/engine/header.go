package engine

import (
	"fmt"

	"github.com/klauspost/nxinflate/internal/checksum"
)

// headerResult tells the Stream facade what to do after one ParseHeader
// call: keep asking for header bytes, start the accelerator-driven body,
// stop and report a need for a preset dictionary, or stop with a data
// error — the four outcomes §4.2 enumerates for the header parser.
type headerResult int

const (
	headerWantMore headerResult = iota
	headerBodyReady
	headerNeedDict
	headerBad
)

// takeByte consumes one byte from the front of *in, reporting ok=false if
// the caller has not supplied one yet this call.
func takeByte(in *[]byte) (byte, bool) {
	if len(*in) == 0 {
		return 0, false
	}
	c := (*in)[0]
	*in = (*in)[1:]
	return c, true
}

// ParseHeader advances the C2 byte state machine as far as the bytes
// currently available in *in allow, consuming them directly from the
// caller's next_in the way the original's nx_inflate_get_byte macro does
// (header bytes never pass through fifo_in: by the time fifo staging
// matters, the header is already behind us). It may be called repeatedly
// across several Inflate invocations; all progress is held in s.hdrState
// and friends so a header split arbitrarily across calls still parses
// correctly (§4.2's "a GZIP header’s NAME field may span many calls").
func (s *State) ParseHeader(in *[]byte) (headerResult, error) {
	for {
		switch s.hdrState {
		case stateBody, stateDone:
			return headerBodyReady, nil

		case stateBad:
			return headerBad, s.dataErr

		case stateHead:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			switch s.Wrap {
			case WrapGzip:
				if c != 0x1f {
					return s.failHeader("invalid gzip magic byte 1")
				}
				s.hdrIdx = 1
				s.hdrState = stateGzipFlags // collapsed: id2/cm consumed inline below
				s.hdrAcc = uint32(c)
				continue
			case WrapAuto:
				if c == 0x1f {
					s.Wrap = WrapGzip
					s.hdrIdx = 1
					s.hdrState = stateGzipFlags
					continue
				}
				// Not a gzip magic byte: fall through to zlib framing,
				// replaying the byte already consumed as the CMF.
				s.Wrap = WrapZlib
				if hr, err := s.parseZlibCMF(c); hr == headerBad {
					return hr, err
				}
				continue
			case WrapZlib:
				if hr, err := s.parseZlibCMF(c); hr == headerBad {
					return hr, err
				}
				continue
			default: // WrapRaw never reaches stateHead (see NewState/Reset)
				s.hdrState = stateBody
				return headerBodyReady, nil
			}

		case stateGzipFlags:
			// Collapses ID2/CM/FLG/magic bookkeeping: hdrIdx counts the
			// fixed 10-byte gzip header bytes consumed so far (ID1 already
			// counted above), hdrCRC accumulates them per pgzip's
			// readHeader (only the fixed header, not extra/name/comment).
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			if s.hdrIdx == 1 {
				s.hdrCRC = checksum.UpdateCRC32(s.hdrCRC, []byte{0x1f, c})
			} else {
				s.hdrCRC = checksum.UpdateCRC32(s.hdrCRC, []byte{c})
			}
			switch s.hdrIdx {
			case 1: // ID2
				if c != 0x8b {
					return s.failHeader("invalid gzip magic byte 2")
				}
			case 2: // CM
				if c != 8 {
					return s.failHeader("unsupported gzip compression method")
				}
			case 3: // FLG
				s.hdrZFlag = c
				if c&0xe0 != 0 {
					return s.failHeader("reserved gzip flag bits set")
				}
				s.Hdr.Text = c&0x01 != 0
				s.hdrAcc = 0
			}
			s.hdrIdx++
			if s.hdrIdx == 4 {
				s.hdrState = stateGzipMTime
				s.hdrIdx = 0
			}
			continue

		case stateGzipMTime:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			s.hdrCRC = checksum.UpdateCRC32(s.hdrCRC, []byte{c})
			s.hdrAcc |= uint32(c) << (8 * s.hdrIdx)
			s.hdrIdx++
			if s.hdrIdx == 4 {
				s.Hdr.Time = s.hdrAcc
				s.hdrState = stateGzipXFlags
			}
			continue

		case stateGzipXFlags:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			s.hdrCRC = checksum.UpdateCRC32(s.hdrCRC, []byte{c})
			s.Hdr.XFlags = c
			s.hdrState = stateGzipOS
			continue

		case stateGzipOS:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			s.hdrCRC = checksum.UpdateCRC32(s.hdrCRC, []byte{c})
			s.Hdr.OS = c
			s.hdrIdx = 0
			s.hdrAcc = 0
			if s.hdrZFlag&0x04 != 0 { // FEXTRA
				s.hdrState = stateGzipExtraLen
			} else if s.hdrZFlag&0x08 != 0 { // FNAME
				s.hdrState = stateGzipName
			} else if s.hdrZFlag&0x10 != 0 { // FCOMMENT
				s.hdrState = stateGzipComment
			} else if s.hdrZFlag&0x02 != 0 { // FHCRC
				s.hdrState = stateGzipHCRC
			} else {
				s.hdrState = stateBody
				return headerBodyReady, nil
			}
			continue

		case stateGzipExtraLen:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			s.hdrAcc |= uint32(c) << (8 * s.hdrIdx)
			s.hdrIdx++
			if s.hdrIdx == 2 {
				s.hdrIdx = 0
				n := int(s.hdrAcc)
				s.Hdr.Extra = make([]byte, 0, n)
				s.hdrState = stateGzipExtra
			}
			continue

		case stateGzipExtra:
			want := int(s.hdrAcc)
			for s.hdrIdx < want {
				c, ok := takeByte(in)
				if !ok {
					return headerWantMore, nil
				}
				if len(s.Hdr.Extra) < cap(s.Hdr.Extra) {
					s.Hdr.Extra = append(s.Hdr.Extra, c)
				}
				s.hdrIdx++
			}
			s.hdrIdx = 0
			if s.hdrZFlag&0x08 != 0 {
				s.hdrState = stateGzipName
			} else if s.hdrZFlag&0x10 != 0 {
				s.hdrState = stateGzipComment
			} else if s.hdrZFlag&0x02 != 0 {
				s.hdrState = stateGzipHCRC
			} else {
				s.hdrState = stateBody
				return headerBodyReady, nil
			}
			continue

		case stateGzipName:
			for {
				c, ok := takeByte(in)
				if !ok {
					return headerWantMore, nil
				}
				if c == 0 {
					break
				}
				if len(s.Hdr.Name) < s.Cfg.NameMax { // bounded: never let a corrupt
					s.Hdr.Name += string(c) // length field exhaust memory
				}
			}
			if s.hdrZFlag&0x10 != 0 {
				s.hdrState = stateGzipComment
			} else if s.hdrZFlag&0x02 != 0 {
				s.hdrState = stateGzipHCRC
			} else {
				s.hdrState = stateBody
				return headerBodyReady, nil
			}
			continue

		case stateGzipComment:
			for {
				c, ok := takeByte(in)
				if !ok {
					return headerWantMore, nil
				}
				if c == 0 {
					break
				}
				if len(s.Hdr.Comment) < s.Cfg.CommentMax {
					s.Hdr.Comment += string(c)
				}
			}
			if s.hdrZFlag&0x02 != 0 {
				s.hdrState = stateGzipHCRC
			} else {
				s.hdrState = stateBody
				return headerBodyReady, nil
			}
			continue

		case stateGzipHCRC:
			for s.hdrIdx < 2 {
				c, ok := takeByte(in)
				if !ok {
					return headerWantMore, nil
				}
				s.hdrAcc |= uint32(c) << (8 * s.hdrIdx)
				s.hdrIdx++
			}
			want := uint16(s.hdrAcc)
			got := uint16(s.hdrCRC & 0xffff)
			s.Hdr.HCRC = true
			if want != got {
				return s.failHeader("gzip header CRC mismatch")
			}
			s.hdrState = stateBody
			return headerBodyReady, nil

		case stateZlibFlag:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			check := uint32(s.hdrAcc)<<8 | uint32(c)
			if check%31 != 0 {
				return s.failHeader("invalid zlib header checksum")
			}
			s.hdrZFlag = c
			s.hdrIdx = 0
			s.hdrAcc = 0
			if c&0x20 != 0 { // FDICT
				s.hdrState = stateZlibDictID
			} else {
				s.hdrState = stateBody
				return headerBodyReady, nil
			}
			continue

		case stateZlibDictID:
			c, ok := takeByte(in)
			if !ok {
				return headerWantMore, nil
			}
			s.hdrAcc = (s.hdrAcc << 8) | uint32(c)
			s.hdrIdx++
			if s.hdrIdx == 4 {
				s.zDictID = s.hdrAcc
				s.hdrState = stateZlibDict
				s.needDict = true
				return headerNeedDict, nil
			}
			continue

		case stateZlibDict:
			// The caller must call SetDictionary before Inflate can make
			// further progress; this state never transitions on its own.
			return headerNeedDict, nil

		default:
			return s.failHeader(fmt.Sprintf("unreachable header state %d", s.hdrState))
		}
	}
}

// parseZlibCMF validates the CMF byte already consumed (cmf must name
// DEFLATE with a window no larger than 32 KiB, RFC 1950 §2.2) and
// advances to the FLG byte.
func (s *State) parseZlibCMF(cmf byte) (headerResult, error) {
	if cmf&0x0f != 8 {
		return s.failHeader("unsupported zlib compression method")
	}
	if cmf>>4 > 7 {
		return s.failHeader("invalid zlib window size")
	}
	s.hdrAcc = uint32(cmf)
	s.hdrState = stateZlibFlag
	return headerWantMore, nil
}

func (s *State) failHeader(msg string) (headerResult, error) {
	s.hdrState = stateBad
	s.dataErr = fmt.Errorf("nxinflate: %s", msg)
	return headerBad, s.dataErr
}

// AcceptDictionary supplies the preset dictionary a ZLIB header's FDICT
// bit demanded, resuming header parsing past stateZlibDict (§6's
// SetDictionary). id must match the DICTID the header carried.
func (s *State) AcceptDictionary(id uint32) error {
	if s.hdrState != stateZlibDict {
		return fmt.Errorf("nxinflate: no dictionary requested")
	}
	if id != s.zDictID {
		return fmt.Errorf("nxinflate: dictionary id mismatch")
	}
	s.haveDict = true
	s.needDict = false
	s.hdrState = stateBody
	return nil
}
