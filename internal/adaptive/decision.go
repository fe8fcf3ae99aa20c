package adaptive

import "math"

// decide runs one interval of the phase state machine, producing the
// next State from the current one. It never mutates old; callers swap
// the result in via CompareAndSwap (spec.md §4.3: "all transitions go
// through a single atomic compare-and-swap on the adaptive state").
//
// RECOVERY is modeled as a distinct Phase value reached whenever
// RAMP_DOWN decrements to minTps (spec.md's "inRecovery flag on
// RAMP_DOWN" and the closed four-value phase enumeration are the same
// state described two ways; see DESIGN.md).
func decide(old State, snapshot MetricsSnapshot, config Config, policy RampDecisionPolicy, atMillis int64) State {
	good := policy.ShouldRampUp(snapshot, config)
	bad := policy.ShouldRampDown(snapshot, config)

	lastKnownGood := old.LastKnownGoodTps
	if good {
		lastKnownGood = math.Max(lastKnownGood, old.CurrentTps)
	}

	switch old.Phase {
	case RampUp:
		return decideFromRampUp(old, bad, good, lastKnownGood, config, policy, atMillis)
	case RampDown:
		return decideFromRampDown(old, bad, good, lastKnownGood, config, policy, atMillis)
	case Sustain:
		return decideFromSustain(old, bad, good, lastKnownGood, config, atMillis)
	case Recovery:
		return decideFromRecovery(old, snapshot, lastKnownGood, config, policy, atMillis)
	default:
		return old
	}
}

func decideFromRampUp(old State, bad, good bool, lastKnownGood float64, config Config, policy RampDecisionPolicy, atMillis int64) State {
	if bad {
		return enterRampDown(old, lastKnownGood, config, atMillis)
	}

	candidate, count := updateStability(old, good, config)
	atCeiling := !config.isUnboundedMax() && old.CurrentTps >= config.MaxTps
	if atCeiling || policy.ShouldSustain(count, config.StableIntervalsRequired) {
		next := old.withPhase(Sustain, atMillis)
		next.StableTps = old.CurrentTps
		next.ConsecutiveStableIntervals = count
		next.CandidateStableTps = candidate
		next.LastKnownGoodTps = lastKnownGood
		return next
	}

	next := old
	next.ConsecutiveStableIntervals = count
	next.CandidateStableTps = candidate
	next.LastKnownGoodTps = lastKnownGood
	if good {
		newTps := old.CurrentTps + config.RampIncrement
		if !config.isUnboundedMax() && newTps > config.MaxTps {
			newTps = config.MaxTps
		}
		next.CurrentTps = newTps
	}
	return next
}

func decideFromRampDown(old State, bad, good bool, lastKnownGood float64, config Config, policy RampDecisionPolicy, atMillis int64) State {
	if bad {
		return enterRampDown(old, lastKnownGood, config, atMillis)
	}

	candidate, count := updateStability(old, good, config)
	if policy.ShouldSustain(count, config.StableIntervalsRequired) {
		next := old.withPhase(Sustain, atMillis)
		next.StableTps = old.CurrentTps
		next.ConsecutiveStableIntervals = count
		next.CandidateStableTps = candidate
		next.LastKnownGoodTps = lastKnownGood
		return next
	}

	next := old
	next.ConsecutiveStableIntervals = count
	next.CandidateStableTps = candidate
	next.LastKnownGoodTps = lastKnownGood
	return next
}

func decideFromSustain(old State, bad, good bool, lastKnownGood float64, config Config, atMillis int64) State {
	if bad {
		return enterRampDown(old, lastKnownGood, config, atMillis)
	}

	belowMax := config.isUnboundedMax() || old.CurrentTps < config.MaxTps
	sustainedFor := atMillis - old.PhaseEnteredAtMillis
	if good && belowMax && sustainedFor >= config.SustainDuration.Milliseconds() {
		next := old.withPhase(RampUp, atMillis)
		next.ConsecutiveStableIntervals = 0
		next.CandidateStableTps = 0
		next.LastKnownGoodTps = lastKnownGood
		return next
	}

	next := old
	next.LastKnownGoodTps = lastKnownGood
	return next
}

func decideFromRecovery(old State, snapshot MetricsSnapshot, lastKnownGood float64, config Config, policy RampDecisionPolicy, atMillis int64) State {
	if policy.CanRecoverFromMinimum(snapshot, config) {
		newTps := math.Max(config.MinTps, lastKnownGood*config.RecoveryTpsRatio)
		next := old.withPhase(RampUp, atMillis)
		next.CurrentTps = newTps
		next.ConsecutiveStableIntervals = 0
		next.CandidateStableTps = 0
		next.LastKnownGoodTps = lastKnownGood
		return next
	}

	next := old
	next.LastKnownGoodTps = lastKnownGood
	return next
}

// enterRampDown decrements toward minTps, promoting to RECOVERY once the
// floor is reached.
func enterRampDown(old State, lastKnownGood float64, config Config, atMillis int64) State {
	newTps := math.Max(config.MinTps, old.CurrentTps-config.RampDecrement)
	newPhase := RampDown
	if newTps <= config.MinTps {
		newPhase = Recovery
	}

	next := old.withPhase(newPhase, atMillis)
	next.CurrentTps = newTps
	next.ConsecutiveStableIntervals = 0
	next.CandidateStableTps = 0
	next.LastKnownGoodTps = lastKnownGood
	return next
}

// updateStability advances the stability tracker using the TPS held
// during this interval (old.CurrentTps, i.e. before any change this
// decision makes). Resets on any break in "good" conditions or a
// candidate drift beyond tpsTolerance.
func updateStability(old State, good bool, config Config) (candidate float64, count int) {
	if !good {
		return 0, 0
	}
	if old.ConsecutiveStableIntervals == 0 || math.Abs(old.CurrentTps-old.CandidateStableTps) > config.TpsTolerance {
		return old.CurrentTps, 1
	}
	return old.CandidateStableTps, old.ConsecutiveStableIntervals + 1
}
