package adaptive

import (
	"sync/atomic"
	"time"

	"github.com/vajrapulse/vajrapulse/internal/pattern"
)

// windowSeconds is the width of the recent-failure-rate window the
// pattern asks MetricsProvider for on each decision.
const windowSeconds = 10

// Pattern is the adaptive load pattern: a phase state machine driven by
// a RampDecisionPolicy reading a MetricsProvider and an optional
// BackpressureProvider. It implements pattern.LoadPattern and
// pattern.PhaseReporter.
//
// Thread safety: TPS is safe for concurrent calls; the composite state
// is swapped via a single CAS loop per decision, matching spec.md
// §4.3's "all transitions go through a single atomic compare-and-swap".
type Pattern struct {
	config       Config
	metrics      MetricsProvider
	backpressure BackpressureProvider
	policy       RampDecisionPolicy
	listeners    []Listener

	state atomic.Pointer[State]
}

// Option configures a Pattern at construction.
type Option func(*Pattern)

// WithBackpressure attaches a BackpressureProvider; without one,
// backpressure is always treated as 0.
func WithBackpressure(bp BackpressureProvider) Option {
	return func(p *Pattern) { p.backpressure = bp }
}

// WithPolicy overrides the default ramp decision policy.
func WithPolicy(policy RampDecisionPolicy) Option {
	return func(p *Pattern) { p.policy = policy }
}

// WithListener registers a listener, fanned out to in registration
// order.
func WithListener(l Listener) Option {
	return func(p *Pattern) { p.listeners = append(p.listeners, l) }
}

// New builds a Pattern. config must already be validated (see
// NewConfig).
func New(config Config, metrics MetricsProvider, opts ...Option) *Pattern {
	p := &Pattern{
		config:  config,
		metrics: metrics,
		policy:  DefaultRampDecisionPolicy{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Duration reports InitialRampDuration if configured, else Indefinite —
// the adaptive pattern has no natural end; it runs until the engine
// stops it.
func (p *Pattern) Duration() time.Duration {
	if p.config.InitialRampDuration > 0 {
		return p.config.InitialRampDuration
	}
	return pattern.Indefinite
}

// CurrentPhase implements pattern.PhaseReporter.
func (p *Pattern) CurrentPhase(elapsedMillis int64) string {
	s := p.state.Load()
	if s == nil {
		return RampUp.String()
	}
	return s.Phase.String()
}

// PhaseTransitions returns the total number of phase changes so far, for
// JSON report population (JSONAdaptivePattern.PhaseTransitions).
func (p *Pattern) PhaseTransitions() int64 {
	s := p.state.Load()
	if s == nil {
		return 0
	}
	return s.PhaseTransitionCount
}

// StableTps returns the most recently latched stable TPS, or 0 if
// SUSTAIN has never been reached.
func (p *Pattern) StableTps() float64 {
	s := p.state.Load()
	if s == nil {
		return 0
	}
	return s.StableTps
}

// TPS implements pattern.LoadPattern. Metrics are read at most once per
// rampInterval; calls within one interval of the last decision return
// the cached CurrentTps (spec.md §4.3 "Caching").
func (p *Pattern) TPS(elapsedMillis int64) float64 {
	rampIntervalMillis := p.config.RampInterval.Milliseconds()

	for {
		old := p.state.Load()
		if old == nil {
			initial := &State{
				Phase:                RampUp,
				CurrentTps:           p.config.InitialTps,
				LastKnownGoodTps:     p.config.InitialTps,
				PhaseEnteredAtMillis: elapsedMillis,
				LastDecisionAtMillis: elapsedMillis,
			}
			if p.state.CompareAndSwap(nil, initial) {
				return initial.CurrentTps
			}
			continue
		}

		if elapsedMillis-old.LastDecisionAtMillis < rampIntervalMillis {
			return old.CurrentTps
		}

		snapshot := buildSnapshot(p.metrics, p.backpressure, windowSeconds)
		next := decide(*old, snapshot, p.config, p.policy, elapsedMillis)
		next.LastDecisionAtMillis = old.LastDecisionAtMillis + rampIntervalMillis

		if !p.state.CompareAndSwap(old, &next) {
			continue
		}

		p.emitEvents(*old, next)
		return next.CurrentTps
	}
}

func (p *Pattern) emitEvents(old, next State) {
	if len(p.listeners) == 0 {
		return
	}

	if next.Phase != old.Phase {
		notifyListeners(p.listeners, func(l Listener) {
			l.OnPhaseTransition(PhaseTransitionEvent{From: old.Phase, To: next.Phase, AtTps: next.CurrentTps})
		})
		if next.Phase == Recovery {
			notifyListeners(p.listeners, func(l Listener) {
				l.OnRecovery(RecoveryEvent{Entering: true, MinTps: p.config.MinTps, NewTps: next.CurrentTps})
			})
		}
		if old.Phase == Recovery && next.Phase == RampUp {
			notifyListeners(p.listeners, func(l Listener) {
				l.OnRecovery(RecoveryEvent{Entering: false, MinTps: p.config.MinTps, NewTps: next.CurrentTps})
			})
		}
	}

	if next.CurrentTps != old.CurrentTps {
		notifyListeners(p.listeners, func(l Listener) {
			l.OnTpsChange(TpsChangeEvent{Phase: next.Phase, OldTps: old.CurrentTps, NewTps: next.CurrentTps})
		})
	}

	if next.Phase == Sustain && old.Phase != Sustain {
		notifyListeners(p.listeners, func(l Listener) {
			l.OnStabilityDetected(StabilityDetectedEvent{StableTps: next.StableTps, ConsecutiveStableIntervals: next.ConsecutiveStableIntervals})
		})
	}
}
