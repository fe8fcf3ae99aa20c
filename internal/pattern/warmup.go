package pattern

import (
	"fmt"
	"time"
)

// Phase names reported by WarmupCooldownLoadPattern's CurrentPhase.
const (
	PhaseWarmup   = "warmup"
	PhaseSteady   = "steady"
	PhaseCooldown = "cooldown"
	PhaseDone     = "done"
)

// WarmupCooldownLoadPattern wraps a base pattern with linear ramp-in and
// ramp-out phases. It excludes warm-up and cool-down samples from recorded
// metrics via ShouldRecordMetrics, so measured results reflect only the
// steady-state phase.
type WarmupCooldownLoadPattern struct {
	base     LoadPattern
	warmup   time.Duration
	cooldown time.Duration

	baseStartTps float64 // base.TPS(0)
	baseEndTps   float64 // base.TPS(base.Duration() - 1), approximated at the last instant
}

// NewWarmupCooldownLoadPattern wraps base with the given warm-up and
// cool-down durations. Zero durations are permitted (jump-in/jump-out).
// Negative durations are rejected.
func NewWarmupCooldownLoadPattern(base LoadPattern, warmup, cooldown time.Duration) (*WarmupCooldownLoadPattern, error) {
	if base == nil {
		return nil, fmt.Errorf("warmup/cooldown pattern: base pattern is required")
	}
	if warmup < 0 {
		return nil, fmt.Errorf("warmup/cooldown pattern: warmup cannot be negative, got %v", warmup)
	}
	if cooldown < 0 {
		return nil, fmt.Errorf("warmup/cooldown pattern: cooldown cannot be negative, got %v", cooldown)
	}

	baseDurMillis := millisOf(base.Duration())
	lastInstant := baseDurMillis - 1
	if lastInstant < 0 {
		lastInstant = 0
	}

	return &WarmupCooldownLoadPattern{
		base:         base,
		warmup:       warmup,
		cooldown:     cooldown,
		baseStartTps: base.TPS(0),
		baseEndTps:   base.TPS(lastInstant),
	}, nil
}

func (w *WarmupCooldownLoadPattern) steadyStartMillis() int64 {
	return millisOf(w.warmup)
}

func (w *WarmupCooldownLoadPattern) steadyEndMillis() int64 {
	return w.steadyStartMillis() + millisOf(w.base.Duration())
}

// TPS ramps linearly from 0 to base.TPS(0) during warm-up, tracks the base
// pattern (offset by warmup) during the steady phase, then ramps linearly
// from the base's rate at its last instant (base.Duration() - 1ms) to 0
// during cool-down.
func (w *WarmupCooldownLoadPattern) TPS(elapsedMillis int64) float64 {
	steadyStart := w.steadyStartMillis()
	steadyEnd := w.steadyEndMillis()
	cooldownMillis := millisOf(w.cooldown)

	switch {
	case elapsedMillis < 0:
		return 0
	case elapsedMillis < steadyStart:
		if steadyStart == 0 {
			return w.baseStartTps
		}
		return w.baseStartTps * float64(elapsedMillis) / float64(steadyStart)
	case elapsedMillis < steadyEnd:
		return w.base.TPS(elapsedMillis - steadyStart)
	case elapsedMillis < steadyEnd+cooldownMillis:
		if cooldownMillis == 0 {
			return 0
		}
		remaining := steadyEnd + cooldownMillis - elapsedMillis
		return w.baseEndTps * float64(remaining) / float64(cooldownMillis)
	default:
		return 0
	}
}

// Duration returns warmup + base.Duration() + cooldown.
func (w *WarmupCooldownLoadPattern) Duration() time.Duration {
	return w.warmup + w.base.Duration() + w.cooldown
}

// ShouldRecordMetrics reports true only during the steady phase.
func (w *WarmupCooldownLoadPattern) ShouldRecordMetrics(elapsedMillis int64) bool {
	steadyStart := w.steadyStartMillis()
	steadyEnd := w.steadyEndMillis()
	return elapsedMillis >= steadyStart && elapsedMillis < steadyEnd
}

// CurrentPhase reports which named phase elapsedMillis falls into.
func (w *WarmupCooldownLoadPattern) CurrentPhase(elapsedMillis int64) string {
	steadyStart := w.steadyStartMillis()
	steadyEnd := w.steadyEndMillis()
	switch {
	case elapsedMillis < steadyStart:
		return PhaseWarmup
	case elapsedMillis < steadyEnd:
		return PhaseSteady
	case elapsedMillis < steadyEnd+millisOf(w.cooldown):
		return PhaseCooldown
	default:
		return PhaseDone
	}
}
