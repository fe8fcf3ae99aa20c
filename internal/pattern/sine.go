package pattern

import (
	"fmt"
	"math"
	"time"
)

// SineWaveLoad oscillates sinusoidally around a mean rate.
// tps(t) = mean + amplitude*sin(2*pi*t/period).
//
// Invariant: output is always >= 0, enforced at construction by requiring
// amplitude <= mean.
type SineWaveLoad struct {
	mean      float64
	amplitude float64
	total     time.Duration
	period    time.Duration
}

// NewSineWaveLoad creates a SineWaveLoad. Rejects amplitude > mean (which
// would make the trough negative), non-positive period, and non-positive
// total.
func NewSineWaveLoad(mean, amplitude float64, total, period time.Duration) (*SineWaveLoad, error) {
	if mean < 0 {
		return nil, fmt.Errorf("sine wave load: mean must be non-negative, got %f", mean)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("sine wave load: amplitude cannot be negative, got %f", amplitude)
	}
	if amplitude > mean {
		return nil, fmt.Errorf("sine wave load: amplitude (%f) cannot exceed mean (%f)", amplitude, mean)
	}
	if period <= 0 {
		return nil, fmt.Errorf("sine wave load: period must be positive, got %v", period)
	}
	if total <= 0 {
		return nil, fmt.Errorf("sine wave load: total duration must be positive, got %v", total)
	}
	return &SineWaveLoad{mean: mean, amplitude: amplitude, total: total, period: period}, nil
}

// TPS returns the sine-wave value at elapsedMillis, or 0 past total.
func (s *SineWaveLoad) TPS(elapsedMillis int64) float64 {
	if elapsedMillis < 0 || elapsedMillis >= millisOf(s.total) {
		return 0
	}
	phase := 2 * math.Pi * float64(elapsedMillis) / float64(millisOf(s.period))
	v := s.mean + s.amplitude*math.Sin(phase)
	if v < 0 {
		v = 0
	}
	return v
}

// Duration returns the total configured duration.
func (s *SineWaveLoad) Duration() time.Duration {
	return s.total
}
