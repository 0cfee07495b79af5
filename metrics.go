package pfb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordOpen is called after the file header and topology are parsed.
	RecordOpen(duration time.Duration, err error)

	// RecordRead is called after each single-subgrid read.
	// bytes is the number of bytes requested from the source.
	RecordRead(bytes int64, duration time.Duration, err error)

	// RecordScan is called after a read that spans several subgrids
	// (sequential scan or bounds subset).
	RecordScan(subgrids int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)        {}
func (NoopMetricsCollector) RecordRead(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordScan(int, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount      atomic.Int64
	OpenErrors     atomic.Int64
	OpenTotalNanos atomic.Int64
	ReadCount      atomic.Int64
	ReadErrors     atomic.Int64
	ReadBytes      atomic.Int64
	ReadTotalNanos atomic.Int64
	ScanCount      atomic.Int64
	ScanErrors     atomic.Int64
	ScanSubgrids   atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int64, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
		return
	}
	b.ReadBytes.Add(bytes)
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(subgrids int, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	if err != nil {
		b.ScanErrors.Add(1)
		return
	}
	b.ScanSubgrids.Add(int64(subgrids))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:    b.OpenCount.Load(),
		OpenErrors:   b.OpenErrors.Load(),
		OpenAvgNanos: avg(b.OpenTotalNanos.Load(), b.OpenCount.Load()),
		ReadCount:    b.ReadCount.Load(),
		ReadErrors:   b.ReadErrors.Load(),
		ReadBytes:    b.ReadBytes.Load(),
		ReadAvgNanos: avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		ScanCount:    b.ScanCount.Load(),
		ScanErrors:   b.ScanErrors.Load(),
		ScanSubgrids: b.ScanSubgrids.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	OpenCount    int64
	OpenErrors   int64
	OpenAvgNanos int64
	ReadCount    int64
	ReadErrors   int64
	ReadBytes    int64
	ReadAvgNanos int64
	ScanCount    int64
	ScanErrors   int64
	ScanSubgrids int64
}
