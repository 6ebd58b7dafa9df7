// Package stats implements the one piece of process-wide state the core
// touches: a mutex-guarded statistics record (§5, §9). It is modeled after
// nx_inflate.c's zlib_stats record — avail_in/avail_out size-bucketed
// counters, per-call counts, and retry counts by completion code — and
// additionally exposed as Prometheus collectors, the way DataDog's agent
// and claircore surface internal counters without a full metrics
// framework.
package stats

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// sizeSlots mirrors ZLIB_SIZE_SLOTS: avail_in/avail_out are bucketed into
// 4 KiB slots, with the last slot catching everything larger.
const sizeSlots = 32

// Collector is the process-wide statistics record. The zero value is
// ready to use; Default() is the instance the engine updates unless a
// caller injects another one (tests use a private instance to avoid
// cross-test interference).
type Collector struct {
	mu sync.Mutex

	inflateCalls    uint64
	inflateAvailIn  [sizeSlots]uint64
	inflateAvailOut [sizeSlots]uint64
	bytesIn         uint64
	bytesOut        uint64

	retriesTargetSpace uint64
	retriesTranslation uint64
	retriesDataLength  uint64
	errnoFailures      uint64
}

// Default is the shared collector NewStreamConfig hands to
// engine.NewState (tests pass a private Collector instead), matching
// §5's "statistics
// record is shared and requires mutual exclusion on update".
var Default = &Collector{}

// ObserveInflate records one inflate() call's caller-supplied buffer sizes.
func (c *Collector) ObserveInflate(availIn, availOut int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflateCalls++
	c.inflateAvailIn[slot(availIn)]++
	c.inflateAvailOut[slot(availOut)]++
}

// ObserveBytes adds to the running in/out byte totals.
func (c *Collector) ObserveBytes(in, out int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bytesIn += uint64(in)
	c.bytesOut += uint64(out)
}

// ObserveRetry records one accelerator-driver retry by completion code
// name ("target_space", "translation", "data_length"); unrecognized names
// are folded into errnoFailures so a coding mistake does not panic.
func (c *Collector) ObserveRetry(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case "target_space":
		c.retriesTargetSpace++
	case "translation":
		c.retriesTranslation++
	case "data_length":
		c.retriesDataLength++
	default:
		c.errnoFailures++
	}
}

// Snapshot is a point-in-time copy of the counters, safe to read without
// the collector's lock.
type Snapshot struct {
	InflateCalls       uint64
	BytesIn, BytesOut  uint64
	RetriesTargetSpace uint64
	RetriesTranslation uint64
	RetriesDataLength  uint64
	ErrnoFailures      uint64
}

// Snapshot returns a consistent copy of the counters.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		InflateCalls:       c.inflateCalls,
		BytesIn:            c.bytesIn,
		BytesOut:           c.bytesOut,
		RetriesTargetSpace: c.retriesTargetSpace,
		RetriesTranslation: c.retriesTranslation,
		RetriesDataLength:  c.retriesDataLength,
		ErrnoFailures:      c.errnoFailures,
	}
}

func slot(n int) int {
	s := n / 4096
	if s >= sizeSlots {
		return sizeSlots - 1
	}
	if s < 0 {
		return 0
	}
	return s
}

var (
	bytesInDesc = prometheus.NewDesc("nxinflate_bytes_in_total", "Compressed bytes consumed.", nil, nil)
	bytesOutDesc = prometheus.NewDesc("nxinflate_bytes_out_total", "Decompressed bytes produced.", nil, nil)
	callsDesc    = prometheus.NewDesc("nxinflate_inflate_calls_total", "Number of inflate() invocations.", nil, nil)
	retriesDesc  = prometheus.NewDesc("nxinflate_driver_retries_total", "Accelerator driver retries by completion code.", []string{"code"}, nil)
)

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- bytesInDesc
	ch <- bytesOutDesc
	ch <- callsDesc
	ch <- retriesDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Snapshot()
	ch <- prometheus.MustNewConstMetric(bytesInDesc, prometheus.CounterValue, float64(s.BytesIn))
	ch <- prometheus.MustNewConstMetric(bytesOutDesc, prometheus.CounterValue, float64(s.BytesOut))
	ch <- prometheus.MustNewConstMetric(callsDesc, prometheus.CounterValue, float64(s.InflateCalls))
	ch <- prometheus.MustNewConstMetric(retriesDesc, prometheus.CounterValue, float64(s.RetriesTargetSpace), "target_space")
	ch <- prometheus.MustNewConstMetric(retriesDesc, prometheus.CounterValue, float64(s.RetriesTranslation), "translation")
	ch <- prometheus.MustNewConstMetric(retriesDesc, prometheus.CounterValue, float64(s.RetriesDataLength), "data_length")
}
