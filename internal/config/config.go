// Package config holds the tunable knobs of the accelerator-driven inflate
// engine: page size, soft-copy threshold, per-job length, retry bounds and
// the 32 KiB window maximum. Values mirror nx_config in the NX-GZIP zlib
// shim, sourced from environment variables the way qatzip reads
// QATGO_ALGORITHM / QATGO_COMPRESSION_LEVEL.
package config

import (
	"os"
	"strconv"
)

// Params collects every knob named in the external-interfaces section of
// the spec this package implements: page_sz, soft_copy_threshold,
// per_job_len, retry_max, window_max, and an optional device selector.
type Params struct {
	PageSize          int
	SoftCopyThreshold int
	PerJobLen         int
	RetryMax          int
	WindowMax         int
	Device            int
	NameMax           int
	CommentMax        int
}

const (
	// DefaultPageSize matches the common Linux page size; the real NX
	// driver reads this from the system instead of hard-coding it, but a
	// fixed default is a reasonable stand-in for a software accelerator.
	DefaultPageSize = 4096
	// DefaultSoftCopyThreshold is the input size below which bytes are
	// staged into fifo_in rather than handed straight to the accelerator.
	DefaultSoftCopyThreshold = 1 << 14 // 16 KiB
	DefaultPerJobLen         = 1 << 20
	DefaultRetryMax          = 50
	// DefaultNameMax / DefaultCommentMax bound the GZIP FNAME/FCOMMENT
	// accumulation (§4.2): a corrupt length field must not exhaust memory.
	DefaultNameMax    = 65536
	DefaultCommentMax = 65536
	// WindowMax is fixed by the DEFLATE format; it is not configurable,
	// but kept as a field for symmetry with the other knobs and so a test
	// build can shrink it to exercise the resume path without huge inputs.
	WindowMax = 1 << 15
)

// Envs used to override defaults, mirroring the NX_GZIP_DEV_NUM /
// QATGO_* convention of reading accelerator tuning from the environment.
const (
	EnvPageSize          = "NXINFLATE_PAGE_SIZE"
	EnvSoftCopyThreshold = "NXINFLATE_SOFT_COPY_THRESHOLD"
	EnvRetryMax          = "NXINFLATE_RETRY_MAX"
	EnvPerJobLen         = "NXINFLATE_PER_JOB_LEN"
	EnvDevice            = "NXINFLATE_DEVICE"
	EnvNameMax           = "NXINFLATE_NAME_MAX"
	EnvCommentMax        = "NXINFLATE_COMMENT_MAX"
)

// Default returns the baseline configuration before environment overrides.
func Default() Params {
	return Params{
		PageSize:          DefaultPageSize,
		SoftCopyThreshold: DefaultSoftCopyThreshold,
		PerJobLen:         DefaultPerJobLen,
		RetryMax:          DefaultRetryMax,
		WindowMax:         WindowMax,
		Device:            -1,
		NameMax:           DefaultNameMax,
		CommentMax:        DefaultCommentMax,
	}
}

// FromEnv returns Default() overridden by any NXINFLATE_* environment
// variables that parse successfully; malformed values are ignored and the
// default is kept, since a bad knob must not prevent the stream opening.
func FromEnv() Params {
	p := Default()
	if v, ok := envInt(EnvPageSize); ok {
		p.PageSize = v
	}
	if v, ok := envInt(EnvSoftCopyThreshold); ok {
		p.SoftCopyThreshold = v
	}
	if v, ok := envInt(EnvRetryMax); ok {
		p.RetryMax = v
	}
	if v, ok := envInt(EnvPerJobLen); ok {
		p.PerJobLen = v
	}
	if v, ok := envInt(EnvDevice); ok {
		p.Device = v
	}
	if v, ok := envInt(EnvNameMax); ok {
		p.NameMax = v
	}
	if v, ok := envInt(EnvCommentMax); ok {
		p.CommentMax = v
	}
	return p
}

func envInt(name string) (int, bool) {
	s := os.Getenv(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
