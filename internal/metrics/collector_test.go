package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordUpdatesCounters(t *testing.T) {
	c := NewCollector(Config{})

	start := time.Now()
	c.Record(start, start.Add(time.Millisecond), start.Add(2*time.Millisecond), true)
	c.Record(start, start.Add(time.Millisecond), start.Add(3*time.Millisecond), false)

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.TotalExecutions)
	assert.Equal(t, int64(1), snap.SuccessCount)
	assert.Equal(t, int64(1), snap.FailureCount)
	assert.LessOrEqual(t, snap.SuccessCount+snap.FailureCount, snap.TotalExecutions)
}

func TestCollectorTrackUpdatesDispositionCountersUnconditionally(t *testing.T) {
	c := NewCollector(Config{})

	c.Track(Dropped)
	c.Track(Dropped)
	c.Track(Rejected)
	c.Track(Accepted) // no counter bump, but must not panic

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap.DroppedCount)
	assert.Equal(t, int64(1), snap.RejectedCount)
	assert.Equal(t, int64(0), snap.TotalExecutions)
}

func TestCollectorRecordSyntheticFailureCountsAsExecution(t *testing.T) {
	c := NewCollector(Config{})

	c.RecordSyntheticFailure(time.Now())

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.TotalExecutions)
	assert.Equal(t, int64(1), snap.FailureCount)
	assert.Equal(t, int64(0), snap.SuccessCount)
}

func TestCollectorPercentilesReportExactValuesForUniformSamples(t *testing.T) {
	c := NewCollector(Config{Percentiles: []float64{0.5, 1.0}})

	start := time.Now()
	for i := int64(1); i <= 100; i++ {
		latency := time.Duration(i) * time.Millisecond
		c.Record(start, start, start.Add(latency), true)
	}

	snap := c.Snapshot()
	require.Contains(t, snap.SuccessLatencyNanos, 0.5)
	require.Contains(t, snap.SuccessLatencyNanos, 1.0)

	// p50 of [1..100]ms sorted ascending sits at index 49 (0-indexed) = 50ms.
	assert.Equal(t, int64(50*time.Millisecond), snap.SuccessLatencyNanos[0.5])
	// p100 is the maximum: 100ms.
	assert.Equal(t, int64(100*time.Millisecond), snap.SuccessLatencyNanos[1.0])
}

func TestCollectorPercentilesAreZeroWithNoSamples(t *testing.T) {
	c := NewCollector(Config{})
	snap := c.Snapshot()

	for _, pct := range DefaultPercentiles {
		assert.Equal(t, int64(0), snap.SuccessLatencyNanos[pct])
		assert.Equal(t, int64(0), snap.FailureLatencyNanos[pct])
		assert.Equal(t, int64(0), snap.QueueWaitNanos[pct])
	}
}

func TestCollectorQueueWaitReflectsSubmittedToStartedGap(t *testing.T) {
	c := NewCollector(Config{Percentiles: []float64{1.0}})

	submitted := time.Now()
	started := submitted.Add(25 * time.Millisecond)
	completed := started.Add(time.Millisecond)
	c.Record(submitted, started, completed, true)

	snap := c.Snapshot()
	assert.Equal(t, int64(25*time.Millisecond), snap.QueueWaitNanos[1.0])
}

func TestCollectorRecentFailureRateFallsBackToAllTimeWhenEmpty(t *testing.T) {
	c := NewCollector(Config{})
	provider := c.Provider()

	assert.Equal(t, float64(0), provider.RecentFailureRate(10))
}

func TestCollectorRecentFailureRateReflectsWindow(t *testing.T) {
	c := NewCollector(Config{RecentWindow: time.Hour})
	provider := c.Provider()

	now := time.Now()
	c.Record(now, now, now, true)
	c.Record(now, now, now, false)
	c.Record(now, now, now, false)

	rate := provider.RecentFailureRate(3600)
	assert.InDelta(t, 66.66, rate, 0.5)
	assert.Equal(t, uint64(3), provider.TotalExecutions())
	assert.Equal(t, uint64(2), provider.FailureCount())
}

func TestCollectorUpdateQueueSizeReflectsLatestValue(t *testing.T) {
	c := NewCollector(Config{})
	c.UpdateQueueSize(7)
	c.UpdateQueueSize(3)

	assert.Equal(t, int64(3), c.Snapshot().QueueSize)
}

func TestCollectorMarkEndIsIdempotent(t *testing.T) {
	c := NewCollector(Config{})
	c.MarkEnd()
	first := c.Snapshot().EndTime
	c.MarkEnd()
	second := c.Snapshot().EndTime

	assert.Equal(t, first, second)
}

func TestHistogramEvictsOldestHalfBeyondMaxSamples(t *testing.T) {
	h := newHistogram(4)
	for i := int64(1); i <= 6; i++ {
		h.add(i)
	}

	result := h.percentiles([]float64{1.0})
	// After inserting 1..4 the slice is full; inserting 5 evicts the
	// oldest half (1,2), leaving (3,4,5); inserting 6 leaves (3,4,5,6).
	assert.Equal(t, int64(6), result[1.0])
}
