package pattern

import (
	"fmt"
	"time"
)

// StaticLoad drives a constant rate for its full duration, then drops to
// zero.
type StaticLoad struct {
	rate     float64
	duration time.Duration
}

// NewStaticLoad creates a StaticLoad. rate must be positive and duration
// must be positive.
func NewStaticLoad(rate float64, duration time.Duration) (*StaticLoad, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("static load: rate must be positive, got %f", rate)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("static load: duration must be positive, got %v", duration)
	}
	return &StaticLoad{rate: rate, duration: duration}, nil
}

// TPS returns rate while elapsedMillis < duration, else 0.
func (s *StaticLoad) TPS(elapsedMillis int64) float64 {
	if elapsedMillis >= millisOf(s.duration) {
		return 0
	}
	return s.rate
}

// Duration returns the configured duration.
func (s *StaticLoad) Duration() time.Duration {
	return s.duration
}
