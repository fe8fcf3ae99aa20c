package adaptive

// MetricsProvider is the read-only metrics view the adaptive pattern
// polls at most once per rampInterval. Satisfied by
// internal/metrics.Collector.Provider().
type MetricsProvider interface {
	FailureRate() float64
	RecentFailureRate(windowSeconds float64) float64
	TotalExecutions() uint64
	FailureCount() uint64
}

// BackpressureProvider reports the current system backpressure level in
// [0,1]. Satisfied by internal/backpressure providers.
type BackpressureProvider interface {
	Level() float64
}

// MetricsSnapshot is the per-interval input to the decision engine,
// built from a MetricsProvider and optional BackpressureProvider.
// FailureRate and RecentFailureRate are ratios here (0..1), converted
// once at construction from the provider's percentage (0..100).
type MetricsSnapshot struct {
	FailureRate       float64
	RecentFailureRate float64
	Backpressure      float64
	TotalExecutions   uint64
}

func buildSnapshot(metrics MetricsProvider, backpressure BackpressureProvider, windowSeconds float64) MetricsSnapshot {
	snap := MetricsSnapshot{
		FailureRate:     metrics.FailureRate() / 100,
		TotalExecutions: metrics.TotalExecutions(),
	}
	snap.RecentFailureRate = metrics.RecentFailureRate(windowSeconds) / 100
	if backpressure != nil {
		snap.Backpressure = backpressure.Level()
	}
	return snap
}
