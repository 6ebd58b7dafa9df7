// Package nxlog wires structured logging for the accelerator driver the
// way rclone's fs/log package wraps logrus: a single package-level
// FieldLogger a caller may replace, never consulted on the byte-copy hot
// path (buffer compaction, splicing), only on retries and terminal errors.
package nxlog

import "github.com/sirupsen/logrus"

// Logger is the package-wide logger used by the driver (internal/engine)
// and the Stream facade. Replace it (e.g. with a *logrus.Logger configured for JSON
// output) before opening any Stream; it is read, never mutated, by the
// engine.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// WithFields is a small convenience wrapper so callers in the root package
// and internal/engine don't need to import logrus directly.
func WithFields(fields logrus.Fields) logrus.FieldLogger {
	return Logger.WithFields(fields)
}
