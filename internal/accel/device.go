// Package accel: device.go implements the one concrete accelerator this
// repository can drive without real hardware — a software device that
// honors the exact submit_job/CRB/CPB contract §6 describes, including
// the SFBT/SUBC/SPBC/TPBC resume bookkeeping §4.6 depends on.
// internal/engine uses only Open/Handle.Submit, IsTerminalSFBT and the
// Job/CRB/CPB types, never the decoder internals in this file.
package accel

import (
	"unsafe"

	"github.com/klauspost/nxinflate/internal/checksum"
	"github.com/klauspost/nxinflate/internal/pages"
)

// blockKind records which DEFLATE block type a resumed job must continue,
// derived from the 4-bit SFBT the previous job reported (§4.6's table).
type blockKind int

const (
	blockNone blockKind = iota // about to read a fresh block header
	blockStored
	blockFixed
	blockDynamic
)

// sfbtFor maps a blockKind (plus whether BFINAL was already seen for the
// block in flight) to the 4-bit Source Final Block Type code §4.6 names.
func sfbtFor(k blockKind, bfinal bool) uint8 {
	switch k {
	case blockStored:
		if bfinal {
			return 0b1001
		}
		return 0b1000
	case blockFixed:
		if bfinal {
			return 0b1011
		}
		return 0b1010
	case blockDynamic:
		if bfinal {
			return 0b1101
		}
		return 0b1100
	default: // blockNone: stopped at (or inside) a block header
		if bfinal {
			return 0b1111
		}
		return 0b1110
	}
}

// IsTerminalSFBT reports whether an SFBT value represents a stream that
// has reached its final block's end with no bits left to interpret — the
// resume controller's signal that the caller's stream is done rather than
// merely suspended (§4.6).
func IsTerminalSFBT(sfbt uint8) bool {
	return sfbt == 0b1111
}

func blockKindFor(sfbt uint8) blockKind {
	switch sfbt &^ 1 {
	case 0b1000:
		return blockStored
	case 0b1010:
		return blockFixed
	case 0b1100:
		return blockDynamic
	default:
		return blockNone
	}
}

// Handle is an open reference to the accelerator device, mirroring
// nx_open/nx_close. InjectTranslationFaults lets tests exercise the
// driver's TRANSLATION retry deterministically (§8's "Accelerator returns
// TRANSLATION twice then OK" case) without needing a real MMU to fault.
// There is no TARGET_SPACE injection hook: that code arises only from a
// target too small for the decoded output.
type Handle struct {
	device             int
	InjectTranslationFaults int
}

// Open acquires the accelerator, analogous to nx_open(id). The software
// device never fails to open; a real binding would return ErrNoDevice
// here if the device file cannot be reached.
func Open(device int) (*Handle, error) {
	return &Handle{device: device}, nil
}

// Close releases the accelerator handle.
func (h *Handle) Close() error { return nil }

// Submit runs one accelerator job. It first honors any injected
// TRANSLATION-fault test hook, then pre-faults the job's descriptors via
// pages.TouchPages (the real touch_pages call §6 names), then decodes.
func (h *Handle) Submit(job *Job) (Code, error) {
	if job == nil || job.Src == nil || job.Dst == nil || job.CRB == nil || job.CPB == nil {
		return CodeErr, ErrBadJob
	}
	if h.InjectTranslationFaults > 0 {
		h.InjectTranslationFaults--
		job.CRB.CSB.Code = CodeTranslation
		job.CRB.CSB.FaultAddr = firstAddr(job.Src)
		return CodeTranslation, nil
	}
	touchJob(job)
	return runJob(job)
}

func firstAddr(d *DDL) uint64 {
	if len(d.Entries) == 0 || len(d.Entries[0].Data) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&d.Entries[0].Data[0])))
}

// touchJob faults in every descriptor's backing pages before the job
// runs, the software equivalent of nx_touch_pages_dde.
func touchJob(job *Job) {
	for _, e := range job.Src.Entries {
		pages.TouchPages(e.Data, len(e.Data), false)
	}
	for _, e := range job.Dst.Entries {
		pages.TouchPages(e.Data, len(e.Data), true)
	}
}

// runJob performs the actual resumable DEFLATE decode. It returns
// CodeTargetSpace immediately, without committing any output, if the
// target descriptors cannot hold the decoded bytes — matching the
// original driver's "SPBC/TPBC are not valid" note for that completion
// code, since the whole job must be resubmitted with less source rather
// than partially applied.
func runJob(job *Job) (Code, error) {
	histLen := int(job.CPB.InHistLen)
	srcReader := newDDLReader(job.Src)
	history := make([]byte, 0, histLen)
	for i := 0; i < histLen; i++ {
		c, ok := srcReader.ReadByte()
		if !ok {
			break
		}
		history = append(history, c)
	}

	win := newWindow(history)
	dw := newDDLWriter(job.Dst)
	br := newBitReader(srcReader)

	kind := blockNone
	bfinalSeen := false
	var dyn *dynamicTables
	remBytes := 0

	if job.CRB.FuncCode == FuncDecompressResume {
		kind = blockKindFor(job.CPB.InSFBT)
		bfinalSeen = job.CPB.InSFBT&1 == 1
		// The engine re-feeds every source byte that held a pending bit at
		// suspension (resume.go's (subc+7)/8 rewind); only the oldest of
		// those bytes was partially consumed already, and only its low
		// (8 - subc%8) bits need discarding. Any further whole bytes the
		// rewind re-fed come back in fully via the ordinary fill path.
		if partial := uint(job.CPB.InSUBC) % 8; partial != 0 {
			br.SkipBits(8 - partial)
		}
		switch kind {
		case blockFixed:
			dyn = &dynamicTables{lit: fixedLitTree, dist: fixedDistTree}
		case blockDynamic:
			d, ok := deserializeDHT(job.CPB.InDHT)
			if !ok {
				return CodeErr, ErrBadJob
			}
			dyn = d
		case blockStored:
			remBytes = int(job.CPB.InRemByteCnt)
		}
	}

	overflow := false
	finished := false

decodeLoop:
	for !finished {
		switch kind {
		case blockNone:
			bfinal, ok := br.ReadBits(1)
			if !ok {
				break decodeLoop
			}
			bfinalSeen = bfinal == 1
			btype, ok := br.ReadBits(2)
			if !ok {
				break decodeLoop
			}
			switch btype {
			case 0:
				br.AlignByte()
				lenLo, ok1 := br.ReadByteAligned()
				lenHi, ok2 := br.ReadByteAligned()
				_, ok3 := br.ReadByteAligned() // NLEN low, complement, unused
				_, ok4 := br.ReadByteAligned() // NLEN high
				if !ok1 || !ok2 || !ok3 || !ok4 {
					break decodeLoop
				}
				remBytes = int(lenLo) | int(lenHi)<<8
				kind = blockStored
			case 1:
				dyn = &dynamicTables{lit: fixedLitTree, dist: fixedDistTree}
				kind = blockFixed
			case 2:
				d, _, ok := readDynamicHeader(br)
				if !ok {
					break decodeLoop
				}
				dyn = d
				kind = blockDynamic
			default:
				return CodeErr, ErrBadJob
			}

		case blockStored:
			for remBytes > 0 {
				c, ok := br.ReadByteAligned()
				if !ok {
					break decodeLoop
				}
				if !dw.WriteByte(c) {
					overflow = true
					break decodeLoop
				}
				win.Push(c)
				remBytes--
			}
			kind = blockNone
			if bfinalSeen {
				finished = true
			}

		case blockFixed, blockDynamic:
			sym, ok := dyn.lit.Decode(br)
			if !ok {
				break decodeLoop
			}
			switch {
			case sym < 256:
				if !dw.WriteByte(byte(sym)) {
					overflow = true
					break decodeLoop
				}
				win.Push(byte(sym))
			case sym == 256:
				kind = blockNone
				if bfinalSeen {
					finished = true
				}
			default:
				lidx := sym - 257
				if lidx < 0 || lidx >= len(lengthBase) {
					return CodeErr, ErrBadJob
				}
				extra, ok := br.ReadBits(lengthExtra[lidx])
				if !ok {
					break decodeLoop
				}
				length := lengthBase[lidx] + int(extra)
				dsym, ok := dyn.dist.Decode(br)
				if !ok {
					break decodeLoop
				}
				if dsym < 0 || dsym >= len(distBase) {
					return CodeErr, ErrBadJob
				}
				dextra, ok := br.ReadBits(distExtra[dsym])
				if !ok {
					break decodeLoop
				}
				dist := distBase[dsym] + int(dextra)
				for i := 0; i < length; i++ {
					c, ok := win.At(dist)
					if !ok {
						return CodeErr, ErrBadJob
					}
					if !dw.WriteByte(c) {
						overflow = true
						break decodeLoop
					}
					win.Push(c)
				}
			}
		}
	}

	if overflow {
		return CodeTargetSpace, nil
	}

	produced := dw.Written()
	job.CPB.OutCRC = checksum.UpdateCRC32(job.CPB.InCRC, dw.Produced())
	job.CPB.OutAdler = checksum.UpdateAdler32(job.CPB.InAdler, dw.Produced())
	job.CRB.CSB.TPBC = uint32(produced)

	// br.BytesConsumed() already counts the histLen bytes pulled by the
	// history loop above (they went through the same ddlReader).
	spbc := uint32(br.BytesConsumed())

	if finished && kind == blockNone {
		job.CPB.OutSFBT = sfbtFor(blockNone, true)
		job.CPB.OutSUBC = uint8(br.PendingBits())
		job.CPB.OutSPBCDecomp = spbc
		job.CRB.CSB.Code = CodeDataLength
		return CodeDataLength, nil
	}

	// Partial completion mid-stream: record where decoding stopped.
	job.CPB.OutSFBT = sfbtFor(kind, bfinalSeen)
	job.CPB.OutSUBC = uint8(minUint(br.PendingBits(), 255))
	job.CPB.OutSPBCDecomp = spbc
	job.CPB.OutRemByteCnt = uint16(remBytes)
	if kind == blockDynamic && dyn != nil {
		job.CPB.OutDHT = serializeDHT(treeLengths(dyn.lit), treeLengths(dyn.dist))
		job.CPB.OutDHTLen = uint16(len(job.CPB.OutDHT))
	}
	job.CRB.CSB.Code = CodeDataLength
	return CodeDataLength, nil
}

func minUint(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}

// treeLengths recovers a code-length array from a built huffTree, needed
// to re-serialize the DHT after a resumed dynamic-Huffman job suspends
// again (the tree was rebuilt from the carried blob rather than
// re-parsed, so there is no header to re-read).
func treeLengths(t *huffTree) []int {
	maxSym := 0
	for _, s := range t.symbols {
		if s > maxSym {
			maxSym = s
		}
	}
	lengths := make([]int, maxSym+1)
	idx := 0
	for l := 1; l <= 15; l++ {
		for i := 0; i < t.counts[l]; i++ {
			lengths[t.symbols[idx]] = l
			idx++
		}
	}
	return lengths
}
