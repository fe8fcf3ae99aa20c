package adaptive

import "log"

// PhaseTransitionEvent fires whenever the phase changes.
type PhaseTransitionEvent struct {
	From   Phase
	To     Phase
	AtTps  float64
	Reason string
}

// TpsChangeEvent fires whenever the current TPS target changes, even
// within the same phase.
type TpsChangeEvent struct {
	Phase  Phase
	OldTps float64
	NewTps float64
}

// StabilityDetectedEvent fires when the stability tracker latches
// (enough consecutive good, in-tolerance intervals to enter SUSTAIN).
type StabilityDetectedEvent struct {
	StableTps                 float64
	ConsecutiveStableIntervals int
}

// RecoveryEvent fires when the pattern enters or exits RECOVERY.
type RecoveryEvent struct {
	Entering bool
	MinTps   float64
	NewTps   float64
}

// Listener receives adaptive pattern events. All four methods default to
// no-ops via BaseListener; implement only what you need by embedding it.
type Listener interface {
	OnPhaseTransition(PhaseTransitionEvent)
	OnTpsChange(TpsChangeEvent)
	OnStabilityDetected(StabilityDetectedEvent)
	OnRecovery(RecoveryEvent)
}

// BaseListener implements Listener with no-ops, for embedding.
type BaseListener struct{}

func (BaseListener) OnPhaseTransition(PhaseTransitionEvent)     {}
func (BaseListener) OnTpsChange(TpsChangeEvent)                 {}
func (BaseListener) OnStabilityDetected(StabilityDetectedEvent) {}
func (BaseListener) OnRecovery(RecoveryEvent)                   {}

// notifyListeners fans out to every listener in registration order,
// recovering from a panicking listener so one broken observer never
// aborts the decision path (spec.md §7: "listener exceptions ... do not
// abort the pattern").
func notifyListeners(listeners []Listener, fn func(Listener)) {
	for _, l := range listeners {
		callListener(l, fn)
	}
}

func callListener(l Listener, fn func(Listener)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: adaptive: listener %T panicked: %v", l, r)
		}
	}()
	fn(l)
}
