package flowsketch

import (
	"sync/atomic"
	"time"
)

// VerifyStats summarizes one Verify call.
type VerifyStats struct {
	Decoded        int           // distinct keys recovered
	Passes         int           // peeling passes after the initial sweep
	DecodeAttempts int           // Kbucket decodes tried
	Residual       int           // nonzero Kbuckets left across all Rows
	Duration       time.Duration // wall time
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement it to forward sketch activity to a monitoring system.
type MetricsCollector interface {
	// RecordInsert is called after each Insert or InsertN.
	// n is the multiplicity; err is nil if the update was applied.
	RecordInsert(n uint64, err error)

	// RecordDelete is called after each Delete, with the same arguments.
	RecordDelete(n uint64, err error)

	// RecordVerify is called once per Verify or VerifyContext call.
	RecordVerify(stats VerifyStats)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(uint64, error) {}
func (NoopMetricsCollector) RecordDelete(uint64, error) {}
func (NoopMetricsCollector) RecordVerify(VerifyStats)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	InsertCount     atomic.Int64
	InsertItems     atomic.Uint64
	InsertErrors    atomic.Int64
	DeleteCount     atomic.Int64
	DeleteItems     atomic.Uint64
	DeleteErrors    atomic.Int64
	VerifyCount     atomic.Int64
	DecodedKeys     atomic.Int64
	DecodeAttempts  atomic.Int64
	ResidualBuckets atomic.Int64
	VerifyNanos     atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(n uint64, err error) {
	if err != nil {
		b.InsertErrors.Add(1)
		return
	}
	b.InsertCount.Add(1)
	b.InsertItems.Add(n)
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(n uint64, err error) {
	if err != nil {
		b.DeleteErrors.Add(1)
		return
	}
	b.DeleteCount.Add(1)
	b.DeleteItems.Add(n)
}

// RecordVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVerify(s VerifyStats) {
	b.VerifyCount.Add(1)
	b.DecodedKeys.Add(int64(s.Decoded))
	b.DecodeAttempts.Add(int64(s.DecodeAttempts))
	b.ResidualBuckets.Add(int64(s.Residual))
	b.VerifyNanos.Add(s.Duration.Nanoseconds())
}

// BasicMetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	InsertCount     int64
	InsertItems     uint64
	InsertErrors    int64
	DeleteCount     int64
	DeleteItems     uint64
	DeleteErrors    int64
	VerifyCount     int64
	DecodedKeys     int64
	DecodeAttempts  int64
	ResidualBuckets int64
	VerifyAvgNanos  int64
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		InsertCount:     b.InsertCount.Load(),
		InsertItems:     b.InsertItems.Load(),
		InsertErrors:    b.InsertErrors.Load(),
		DeleteCount:     b.DeleteCount.Load(),
		DeleteItems:     b.DeleteItems.Load(),
		DeleteErrors:    b.DeleteErrors.Load(),
		VerifyCount:     b.VerifyCount.Load(),
		DecodedKeys:     b.DecodedKeys.Load(),
		DecodeAttempts:  b.DecodeAttempts.Load(),
		ResidualBuckets: b.ResidualBuckets.Load(),
	}
	if s.VerifyCount > 0 {
		s.VerifyAvgNanos = b.VerifyNanos.Load() / s.VerifyCount
	}
	return s
}
