// Package metrics provides the metrics collector: an accumulator for a
// high-frequency stream of execution records that produces a mergeable,
// low-cost Snapshot on demand, plus the exporters that consume it.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// recentWindow is the width of the sliding window used for
// RecentFailureRate.
const recentWindow = 10 * time.Second

// DefaultPercentiles is the percentile set used when a Config doesn't
// specify one.
var DefaultPercentiles = []float64{0.5, 0.9, 0.95, 0.99}

// Config configures a Collector.
type Config struct {
	// Percentiles is the set of percentile keys (in (0,1]) reported by
	// Snapshot. Defaults to DefaultPercentiles.
	Percentiles []float64

	// MaxSamples bounds each histogram's retained sample count; beyond
	// this, the oldest half is evicted (matching the teacher's
	// sliding-window eviction technique). Defaults to 10000.
	MaxSamples int

	// RecentWindow is the width of the sliding window used for
	// RecentFailureRate. Defaults to recentWindow.
	RecentWindow time.Duration
}

func (c Config) withDefaults() Config {
	if len(c.Percentiles) == 0 {
		c.Percentiles = DefaultPercentiles
	}
	if c.MaxSamples <= 0 {
		c.MaxSamples = 10000
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = recentWindow
	}
	return c
}

// outcomeEvent is one entry in the recent-failure ring used to compute
// RecentFailureRate.
type outcomeEvent struct {
	at      time.Time
	failure bool
}

// Collector accumulates ExecutionRecord-derived data and produces
// Snapshots. All writers (Track, Record, UpdateQueueSize) are safe for
// concurrent use without external synchronization.
//
// Thread safety: counters are atomic; histograms and the recent-event
// ring take a short-lived mutex, matching the teacher's
// collector.go latencyMu pattern.
type Collector struct {
	config Config

	startTime time.Time
	endTime   atomic.Pointer[time.Time]

	totalExecutions atomic.Int64
	successCount    atomic.Int64
	failureCount    atomic.Int64
	droppedCount    atomic.Int64
	rejectedCount   atomic.Int64
	queueDepth      atomic.Int64

	successLatency *histogram
	failureLatency *histogram
	queueWait      *histogram

	recentMu     sync.Mutex
	recentEvents []outcomeEvent
}

// NewCollector creates a Collector. The start time is recorded
// immediately; call Snapshot's Duration relative to this instant.
func NewCollector(config Config) *Collector {
	config = config.withDefaults()
	return &Collector{
		config:         config,
		startTime:      time.Now(),
		successLatency: newHistogram(config.MaxSamples),
		failureLatency: newHistogram(config.MaxSamples),
		queueWait:      newHistogram(config.MaxSamples),
	}
}

// Disposition is the outcome of a backpressure decision, used by Track to
// bump the raw counters unconditionally (see SPEC_FULL.md §11.1).
type Disposition int

const (
	Accepted Disposition = iota
	Queued
	Dropped
	Rejected
)

// Track updates the raw counters for a backpressure disposition. It is
// called unconditionally, even when the load pattern has suppressed
// sample recording (warm-up/cool-down).
func (c *Collector) Track(d Disposition) {
	switch d {
	case Dropped:
		c.droppedCount.Add(1)
	case Rejected:
		c.rejectedCount.Add(1)
	}
}

// Record accepts one completed execution. It is only called when the
// engine's shouldRecord flag is true.
func (c *Collector) Record(submittedAt, startedAt, completedAt time.Time, success bool) {
	c.totalExecutions.Add(1)

	latencyNanos := completedAt.Sub(startedAt).Nanoseconds()
	waitNanos := startedAt.Sub(submittedAt).Nanoseconds()
	c.queueWait.add(waitNanos)

	if success {
		c.successCount.Add(1)
		c.successLatency.add(latencyNanos)
	} else {
		c.failureCount.Add(1)
		c.failureLatency.add(latencyNanos)
	}

	c.recordRecentEvent(completedAt, !success)
}

// RecordSyntheticFailure records a failure that never ran on a worker
// (e.g. a backpressure rejection), with zero latency.
func (c *Collector) RecordSyntheticFailure(at time.Time) {
	c.totalExecutions.Add(1)
	c.failureCount.Add(1)
	c.failureLatency.add(0)
	c.recordRecentEvent(at, true)
}

func (c *Collector) recordRecentEvent(at time.Time, failure bool) {
	c.recentMu.Lock()
	defer c.recentMu.Unlock()

	c.recentEvents = append(c.recentEvents, outcomeEvent{at: at, failure: failure})
	c.evictOldRecentEventsLocked(at)
}

// evictOldRecentEventsLocked drops events older than config.RecentWindow.
// Caller must hold recentMu.
func (c *Collector) evictOldRecentEventsLocked(now time.Time) {
	cutoff := now.Add(-c.config.RecentWindow)
	idx := 0
	for _, ev := range c.recentEvents {
		if ev.at.Before(cutoff) {
			idx++
			continue
		}
		break
	}
	if idx > 0 {
		c.recentEvents = c.recentEvents[idx:]
	}
}

// UpdateQueueSize sets the queue-depth gauge.
func (c *Collector) UpdateQueueSize(n int64) {
	c.queueDepth.Store(n)
}

// QueueDepth returns the current queue-depth gauge, suitable as the
// QueueDepth callback of a backpressure.QueueProvider built on this
// collector.
func (c *Collector) QueueDepth() int64 {
	return c.queueDepth.Load()
}

// RecentSuccessP95Millis returns the current p95 of recorded success
// latencies in milliseconds, suitable as the RecentP95 callback of a
// backpressure.LatencyProvider. Cheap relative to a full Snapshot: it
// percentiles only the success histogram, not every tracked metric.
func (c *Collector) RecentSuccessP95Millis() float64 {
	nanos := c.successLatency.percentiles([]float64{0.95})[0.95]
	return float64(nanos) / float64(time.Millisecond)
}

// MarkEnd records the end-of-run timestamp, used by Snapshot's Duration.
// Idempotent; only the first call has effect.
func (c *Collector) MarkEnd() {
	now := time.Now()
	c.endTime.CompareAndSwap(nil, &now)
}

// Snapshot returns an immutable, consistent-enough point-in-time view.
// Each histogram's percentiles are read from a sorted copy of its
// retained samples (at most MaxSamples), so the cost grows with the
// retained sample count, not only with the number of percentiles.
func (c *Collector) Snapshot() Snapshot {
	end := time.Now()
	if p := c.endTime.Load(); p != nil {
		end = *p
	}

	total := c.totalExecutions.Load()
	success := c.successCount.Load()
	failure := c.failureCount.Load()
	dropped := c.droppedCount.Load()
	rejected := c.rejectedCount.Load()

	elapsed := end.Sub(c.startTime)
	elapsedSeconds := elapsed.Seconds()

	var successTps, failureTps, responseTps float64
	if elapsedSeconds > 0 {
		successTps = float64(success) / elapsedSeconds
		failureTps = float64(failure) / elapsedSeconds
		responseTps = float64(total) / elapsedSeconds
	}

	var successRate float64
	if total > 0 {
		successRate = float64(success) / float64(total) * 100
	}

	return Snapshot{
		StartTime:           c.startTime,
		EndTime:             end,
		ElapsedMillis:       elapsed.Milliseconds(),
		TotalExecutions:     total,
		SuccessCount:        success,
		FailureCount:        failure,
		DroppedCount:        dropped,
		RejectedCount:       rejected,
		SuccessTps:          successTps,
		FailureTps:          failureTps,
		ResponseTps:         responseTps,
		SuccessRate:         successRate,
		QueueSize:           c.queueDepth.Load(),
		SuccessLatencyNanos: c.successLatency.percentiles(c.config.Percentiles),
		FailureLatencyNanos: c.failureLatency.percentiles(c.config.Percentiles),
		QueueWaitNanos:      c.queueWait.percentiles(c.config.Percentiles),
	}
}

// Provider returns a lightweight MetricsProvider view backed by c.
func (c *Collector) Provider() MetricsProvider {
	return collectorProvider{c}
}

type collectorProvider struct {
	c *Collector
}

// FailureRate returns the all-time failure percentage (0..100).
func (p collectorProvider) FailureRate() float64 {
	total := p.c.totalExecutions.Load()
	if total == 0 {
		return 0
	}
	return float64(p.c.failureCount.Load()) / float64(total) * 100
}

// RecentFailureRate returns the failure percentage over the trailing
// windowSeconds, falling back to the all-time rate if no recent data
// exists.
func (p collectorProvider) RecentFailureRate(windowSeconds float64) float64 {
	p.c.recentMu.Lock()
	defer p.c.recentMu.Unlock()

	if len(p.c.recentEvents) == 0 {
		return p.FailureRate()
	}

	cutoff := time.Now().Add(-time.Duration(windowSeconds * float64(time.Second)))
	var total, failures int
	for _, ev := range p.c.recentEvents {
		if ev.at.Before(cutoff) {
			continue
		}
		total++
		if ev.failure {
			failures++
		}
	}
	if total == 0 {
		return p.FailureRate()
	}
	return float64(failures) / float64(total) * 100
}

// TotalExecutions returns the all-time execution count.
func (p collectorProvider) TotalExecutions() uint64 {
	return uint64(p.c.totalExecutions.Load())
}

// FailureCount returns the all-time failure count.
func (p collectorProvider) FailureCount() uint64 {
	return uint64(p.c.failureCount.Load())
}

// histogram stores nanosecond samples and answers percentile queries. It
// keeps at most maxSamples entries; beyond that, the oldest half is
// evicted, matching the sliding-window eviction technique in the
// teacher's latency slice.
type histogram struct {
	mu         sync.RWMutex
	samples    []int64
	maxSamples int
}

func newHistogram(maxSamples int) *histogram {
	return &histogram{maxSamples: maxSamples}
}

func (h *histogram) add(nanos int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, nanos)
	if len(h.samples) > h.maxSamples {
		half := len(h.samples) / 2
		copy(h.samples, h.samples[half:])
		h.samples = h.samples[:len(h.samples)-half]
	}
}

// percentiles returns a map from each requested percentile key to the
// corresponding nanosecond value, computed on a sorted copy so the
// internal slice's insertion order is preserved for future writes.
func (h *histogram) percentiles(keys []float64) map[float64]int64 {
	h.mu.RLock()
	cp := make([]int64, len(h.samples))
	copy(cp, h.samples)
	h.mu.RUnlock()

	result := make(map[float64]int64, len(keys))
	if len(cp) == 0 {
		for _, k := range keys {
			result[k] = 0
		}
		return result
	}

	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })

	for _, k := range keys {
		result[k] = cp[percentileIndex(len(cp), k)]
	}
	return result
}

// percentileIndex maps a percentile in (0,1] to an index into a
// length-n sorted slice.
func percentileIndex(n int, percentile float64) int {
	if n == 0 {
		return 0
	}
	idx := int(percentile*float64(n)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}
