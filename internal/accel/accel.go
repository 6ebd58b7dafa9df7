// Package accel defines the accelerator boundary named in §6: the device
// handle, the job-submission primitive, the scatter/gather descriptor list
// (DDL) and the CRB/CPB control block, plus a software device that
// implements the same submit_job contract a real NX-style ASIC would. The
// spec treats the real accelerator as an external collaborator, specified
// only through this interface; this package supplies the one concrete
// implementation available to a machine without the hardware, so the rest
// of the module (internal/engine) has something real to drive and test
// against.
package accel

import "errors"

// FuncCode selects the accelerator function, Table 6-6 in the original
// NX-gzip control block layout.
type FuncCode int

const (
	FuncDecompress FuncCode = iota
	FuncDecompressResume
)

// Code is the job completion classification the driver (§4.5) switches
// on.
type Code int

const (
	// CodeOK: all advertised source consumed, no suspension needed.
	CodeOK Code = iota
	// CodeDataLength: partial completion; sfbt/subc/spbc/tpbc in the CPB
	// describe where decoding stopped.
	CodeDataLength
	// CodeTargetSpace: target descriptor list too small for the
	// advertised source; resubmit with less source.
	CodeTargetSpace
	// CodeTranslation: a page backing a descriptor needs to be faulted
	// in; touch pages and retry.
	CodeTranslation
	// CodeErr: unrecognized or unrecoverable completion.
	CodeErr
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeDataLength:
		return "DATA_LENGTH"
	case CodeTargetSpace:
		return "TARGET_SPACE"
	case CodeTranslation:
		return "TRANSLATION"
	default:
		return "ERR"
	}
}

// ErrNoDevice is returned by Open when device construction fails, the
// software-device equivalent of nx_open returning NULL.
var ErrNoDevice = errors.New("accel: no device available")

// ErrBadJob is returned by Submit when a job is malformed (e.g. a resume
// job with no prior context), which in hardware terms is a programming
// error rather than a recoverable completion code.
var ErrBadJob = errors.New("accel: malformed job")

// DDE is one scatter/gather descriptor entry: an address/length pair. The
// software device only ever needs the bytes themselves.
type DDE struct {
	Data []byte
}

// DDL is an ordered descriptor list with a total-bytes header the core may
// write to throttle the advertised source size below the physical sum of
// its entries (§4.4 step 3's "advertised source byte count").
type DDL struct {
	Entries  []DDE
	Advertised int
	hasAdvertised bool
}

// Clear empties the list for reuse across jobs, avoiding an allocation per
// accelerator invocation the way the original clearp_dde does.
func (d *DDL) Clear() {
	d.Entries = d.Entries[:0]
	d.Advertised = 0
	d.hasAdvertised = false
}

// Append adds one descriptor entry referencing b. A zero-length b is
// skipped, matching nx_append_dde's treatment of empty ranges.
func (d *DDL) Append(b []byte) {
	if len(b) == 0 {
		return
	}
	d.Entries = append(d.Entries, DDE{Data: b})
}

// PhysicalLen is the sum of every entry's length.
func (d *DDL) PhysicalLen() int {
	n := 0
	for _, e := range d.Entries {
		n += len(e.Data)
	}
	return n
}

// SetAdvertised throttles the descriptor list's advertised total below
// (or up to) its physical length; Total reports whichever was set.
func (d *DDL) SetAdvertised(n int) {
	d.Advertised = n
	d.hasAdvertised = true
}

// Total returns the advertised byte count: SetAdvertised's value if one
// was given, else the physical length.
func (d *DDL) Total() int {
	if d.hasAdvertised {
		return d.Advertised
	}
	return d.PhysicalLen()
}

// CPB is the accelerator's command/parameter block: the fields carried
// across resumed jobs (§6, §4.4, §4.6).
type CPB struct {
	InCRC, InAdler uint32
	InHistLen      uint32

	InSUBC       uint8
	InSFBT       uint8
	InRemByteCnt uint16
	InDHTLen     uint16
	InDHT        []byte

	OutCRC, OutAdler uint32
	OutSFBT          uint8
	OutSUBC          uint8
	OutSPBCDecomp    uint32
	OutRemByteCnt    uint16
	OutDHTLen        uint16
	OutDHT           []byte
}

// CSB is the completion status block: termination vs partial completion,
// and tpbc, per §6.
type CSB struct {
	Code Code
	TPBC uint32
	// FaultAddr is set on CodeTranslation, identifying which descriptor
	// needs to be faulted in; the software device always faults at
	// descriptor 0 since it has no real MMU to consult.
	FaultAddr uint64
}

// CRB is the command request block.
type CRB struct {
	FuncCode FuncCode
	CSB      CSB
}

// Job is one accelerator invocation: source/target descriptor lists plus
// the control block, exactly the shape §4.4's Job Builder assembles.
type Job struct {
	Src *DDL
	Dst *DDL
	CRB *CRB
	CPB *CPB
}
