package pattern

import (
	"fmt"
	"time"
)

// RampUpLoad linearly ramps from 0 to maxTps over rampDuration, then holds
// at maxTps indefinitely (its Duration equals rampDuration; callers that
// want a sustain phase after the ramp should use RampUpToMaxLoad).
type RampUpLoad struct {
	maxTps       float64
	rampDuration time.Duration
}

// NewRampUpLoad creates a RampUpLoad. maxTps must be positive and
// rampDuration must be positive.
func NewRampUpLoad(maxTps float64, rampDuration time.Duration) (*RampUpLoad, error) {
	if maxTps <= 0 {
		return nil, fmt.Errorf("ramp-up load: maxTps must be positive, got %f", maxTps)
	}
	if rampDuration <= 0 {
		return nil, fmt.Errorf("ramp-up load: rampDuration must be positive, got %v", rampDuration)
	}
	return &RampUpLoad{maxTps: maxTps, rampDuration: rampDuration}, nil
}

// TPS returns a linear interpolation from 0 to maxTps over rampDuration,
// saturating at maxTps after.
func (r *RampUpLoad) TPS(elapsedMillis int64) float64 {
	rampMillis := millisOf(r.rampDuration)
	if elapsedMillis >= rampMillis {
		return r.maxTps
	}
	if elapsedMillis <= 0 {
		return 0
	}
	return r.maxTps * float64(elapsedMillis) / float64(rampMillis)
}

// Duration returns the ramp duration.
func (r *RampUpLoad) Duration() time.Duration {
	return r.rampDuration
}

// RampUpToMaxLoad ramps linearly to maxTps over rampDuration, then sustains
// maxTps for sustainDuration. Total duration is ramp + sustain.
type RampUpToMaxLoad struct {
	ramp            *RampUpLoad
	sustainDuration time.Duration
}

// NewRampUpToMaxLoad creates a RampUpToMaxLoad.
func NewRampUpToMaxLoad(maxTps float64, rampDuration, sustainDuration time.Duration) (*RampUpToMaxLoad, error) {
	ramp, err := NewRampUpLoad(maxTps, rampDuration)
	if err != nil {
		return nil, fmt.Errorf("ramp-up-to-max load: %w", err)
	}
	if sustainDuration <= 0 {
		return nil, fmt.Errorf("ramp-up-to-max load: sustainDuration must be positive, got %v", sustainDuration)
	}
	return &RampUpToMaxLoad{ramp: ramp, sustainDuration: sustainDuration}, nil
}

// TPS ramps to maxTps, then holds it for the sustain window, then drops to
// zero past the total duration.
func (r *RampUpToMaxLoad) TPS(elapsedMillis int64) float64 {
	if elapsedMillis >= millisOf(r.Duration()) {
		return 0
	}
	return r.ramp.TPS(elapsedMillis)
}

// Duration returns ramp duration + sustain duration.
func (r *RampUpToMaxLoad) Duration() time.Duration {
	return r.ramp.Duration() + r.sustainDuration
}
