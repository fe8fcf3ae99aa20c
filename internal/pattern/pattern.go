// Package pattern defines the LoadPattern contract and the built-in,
// non-adaptive load patterns. A LoadPattern is a pure function of elapsed
// time to target TPS, plus a declared duration; it may be stateful only
// in ways that keep it deterministic for a given configuration (the
// adaptive pattern, which is genuinely stateful across calls, lives in
// internal/adaptive).
package pattern

import "time"

// Indefinite is the sentinel Duration returned by patterns that run until
// externally stopped.
const Indefinite = time.Duration(1<<63 - 1)

// LoadPattern is the core contract every load pattern implements.
type LoadPattern interface {
	// TPS returns the target throughput for the given elapsed time,
	// measured in milliseconds since the run started. TPS is always
	// >= 0. Two calls with the same elapsedMillis and the same
	// configuration return the same value.
	TPS(elapsedMillis int64) float64

	// Duration returns the intended test length. Indefinite means the
	// engine runs until externally stopped.
	Duration() time.Duration
}

// MetricsRecorder is an optional capability a LoadPattern may implement to
// segment which executions get recorded (e.g. suppressing warm-up and
// cool-down samples).
type MetricsRecorder interface {
	ShouldRecordMetrics(elapsedMillis int64) bool
}

// PhaseReporter is an optional capability a LoadPattern may implement to
// describe which named phase it is currently in.
type PhaseReporter interface {
	CurrentPhase(elapsedMillis int64) string
}

// ShouldRecordMetrics reports whether p records metrics at elapsedMillis.
// Patterns that don't implement MetricsRecorder always record.
func ShouldRecordMetrics(p LoadPattern, elapsedMillis int64) bool {
	if r, ok := p.(MetricsRecorder); ok {
		return r.ShouldRecordMetrics(elapsedMillis)
	}
	return true
}

// CurrentPhase returns the named phase of p at elapsedMillis, or "" if p
// doesn't implement PhaseReporter.
func CurrentPhase(p LoadPattern, elapsedMillis int64) string {
	if r, ok := p.(PhaseReporter); ok {
		return r.CurrentPhase(elapsedMillis)
	}
	return ""
}

func millisOf(d time.Duration) int64 {
	return d.Milliseconds()
}
