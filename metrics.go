package go_blockbuffer

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// WriterMetrics is shared by every buffer of a writer. It is safe to read
// while flushes are in flight.
type WriterMetrics struct {
	// IOCount is the number of write calls issued to sinks.
	IOCount atomic.Uint64
}

// NewMetricsCollector exposes m as a prometheus counter. The counter is read
// on scrape, so nothing is added to the flush path.
func NewMetricsCollector(m *WriterMetrics, constLabels prometheus.Labels) prometheus.Collector {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   "nogodb",
		Subsystem:   "block_buffer",
		Name:        "io_operations_total",
		Help:        "Total number of write operations issued while flushing block buffers",
		ConstLabels: constLabels,
	}, func() float64 {
		return float64(m.IOCount.Load())
	})
}
