// Package pages implements the page-sized buffer allocator and the
// page-touch / fault-in helper named in §6 as external collaborators of
// the real accelerator boundary. fifo_in and fifo_out are page-aligned per
// §3/§5, so allocation goes through mmap (private, anonymous) the way
// amken3d-gopper's lower layers talk to memory-mapped peripherals via
// golang.org/x/sys, rather than through a plain make([]byte, n) that the
// runtime is free to place at an arbitrary, non-page-aligned address.
package pages

import (
	"golang.org/x/sys/unix"
)

// Size is the page size new buffers are aligned to. It defaults to 4 KiB
// and is set to config.Params.PageSize at Stream creation.
var Size = 4096

// AlignUp rounds n up to the next multiple of Size.
func AlignUp(n int) int {
	if n <= 0 {
		return Size
	}
	rem := n % Size
	if rem == 0 {
		return n
	}
	return n + (Size - rem)
}

// Alloc returns a zeroed, page-aligned buffer of at least n bytes, backed
// by an anonymous private mmap so TouchPages below can meaningfully
// pre-fault it. Falls back to a plain slice if mmap is unavailable (e.g.
// under an OS sandbox that forbids it), since the fallback is still
// correct, only not page-aligned at the OS level.
func Alloc(n int) []byte {
	size := AlignUp(n)
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return make([]byte, size)
	}
	return b[:size]
}

// Free releases a buffer obtained from Alloc. It is a no-op for buffers
// that fell back to a plain slice.
func Free(b []byte) {
	if b == nil {
		return
	}
	_ = unix.Munmap(b)
}

// TouchPages faults in every page of b[:n], optionally for writing, the
// way nx_touch_pages is called before each job submission and again after
// a TRANSLATION retry. It is a read or a read-modify-write of the first
// byte of each page, which is enough to force the OS to back the page
// before the (simulated) accelerator touches it directly.
func TouchPages(b []byte, n int, write bool) {
	if n > len(b) {
		n = len(b)
	}
	for off := 0; off < n; off += Size {
		if write {
			b[off] ^= 0
			b[off] = b[off]
		} else {
			_ = b[off]
		}
	}
}
