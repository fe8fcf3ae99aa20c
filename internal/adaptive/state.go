package adaptive

// State is the adaptive pattern's full composite state, swapped
// atomically as a whole via compare-and-set so that every reader sees a
// consistent, totally-ordered sequence of transitions (spec invariant:
// phaseTransitionCount increments iff phase changes).
type State struct {
	Phase      Phase
	CurrentTps float64

	// StableTps is latched when SUSTAIN is entered; zero otherwise.
	StableTps float64

	// Stability tracking, reset whenever conditions break or the
	// candidate TPS drifts beyond tolerance.
	ConsecutiveStableIntervals int
	CandidateStableTps         float64

	// LastKnownGoodTps is the highest TPS seen under "good" conditions;
	// it survives phase changes and seeds recovery's new TPS.
	LastKnownGoodTps float64

	// PhaseEnteredAtMillis marks when the current phase began, used by
	// SUSTAIN to measure elapsed sustainDuration.
	PhaseEnteredAtMillis int64

	// LastDecisionAtMillis is the elapsed-millis boundary of the most
	// recent decision; tps() calls within one rampInterval of it return
	// CurrentTps without re-querying metrics.
	LastDecisionAtMillis int64

	PhaseTransitionCount int64
}

// withPhase returns a copy of s transitioned to newPhase, bumping
// PhaseTransitionCount and resetting PhaseEnteredAtMillis iff the phase
// actually changes.
func (s State) withPhase(newPhase Phase, atMillis int64) State {
	next := s
	if newPhase != s.Phase {
		next.Phase = newPhase
		next.PhaseTransitionCount = s.PhaseTransitionCount + 1
		next.PhaseEnteredAtMillis = atMillis
	}
	return next
}
