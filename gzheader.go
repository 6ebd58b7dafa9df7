package nxinflate

import "github.com/klauspost/nxinflate/internal/engine"

// GZipHeader is the gz_header record §3 names: every optional GZIP member
// field a caller may want to inspect once enough of the header has been
// parsed. It is an alias rather than a copy so the engine can populate it
// in place as header bytes arrive across several Inflate calls.
type GZipHeader = engine.GZipHeader
