package metrics

import "time"

// Snapshot is an immutable, point-in-time view produced by
// Collector.Snapshot. Side-effect-free: calling Snapshot never mutates
// collector state (besides the lock-protected histogram copy).
type Snapshot struct {
	StartTime     time.Time
	EndTime       time.Time
	ElapsedMillis int64

	TotalExecutions int64
	SuccessCount    int64
	FailureCount    int64
	DroppedCount    int64
	RejectedCount   int64

	SuccessTps  float64
	FailureTps  float64
	ResponseTps float64
	SuccessRate float64 // percent, 0..100

	QueueSize int64

	// Percentile maps keyed by the configured percentile (e.g. 0.5,
	// 0.95), values in nanoseconds. A percentile key with no data
	// reports 0.
	SuccessLatencyNanos map[float64]int64
	FailureLatencyNanos map[float64]int64
	QueueWaitNanos      map[float64]int64
}

// Duration returns EndTime - StartTime.
func (s Snapshot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// LatencyMs converts a nanosecond percentile value to milliseconds for
// display.
func LatencyMs(nanos int64) float64 {
	return float64(nanos) / 1e6
}

// MetricsProvider is the lightweight, read-only view of a Collector
// consumed by load patterns (notably the adaptive pattern) without
// granting write access.
type MetricsProvider interface {
	// FailureRate returns the all-time failure percentage (0..100).
	FailureRate() float64

	// RecentFailureRate returns the failure percentage over the
	// trailing windowSeconds, falling back to the all-time rate when no
	// recent data exists.
	RecentFailureRate(windowSeconds float64) float64

	// TotalExecutions returns the all-time execution count.
	TotalExecutions() uint64

	// FailureCount returns the all-time failure count.
	FailureCount() uint64
}
