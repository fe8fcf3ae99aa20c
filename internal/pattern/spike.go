package pattern

import (
	"fmt"
	"time"
)

// SpikeLoad alternates between a base rate and periodic spikes. Within
// each interval window starting at t=0, the first spikeDuration is spent
// at spike TPS, the remainder at base TPS.
type SpikeLoad struct {
	base          float64
	spike         float64
	total         time.Duration
	interval      time.Duration
	spikeDuration time.Duration
}

// NewSpikeLoad creates a SpikeLoad. Rejects negative rates and
// spikeDuration >= interval.
func NewSpikeLoad(base, spike float64, total, interval, spikeDuration time.Duration) (*SpikeLoad, error) {
	if base < 0 {
		return nil, fmt.Errorf("spike load: base rate cannot be negative, got %f", base)
	}
	if spike < 0 {
		return nil, fmt.Errorf("spike load: spike rate cannot be negative, got %f", spike)
	}
	if total <= 0 {
		return nil, fmt.Errorf("spike load: total duration must be positive, got %v", total)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("spike load: interval must be positive, got %v", interval)
	}
	if spikeDuration >= interval {
		return nil, fmt.Errorf("spike load: spikeDuration (%v) must be less than interval (%v)", spikeDuration, interval)
	}
	return &SpikeLoad{
		base:          base,
		spike:         spike,
		total:         total,
		interval:      interval,
		spikeDuration: spikeDuration,
	}, nil
}

// TPS returns spike during the leading spikeDuration of each interval
// window, base otherwise, 0 past total.
func (s *SpikeLoad) TPS(elapsedMillis int64) float64 {
	if elapsedMillis < 0 || elapsedMillis >= millisOf(s.total) {
		return 0
	}
	positionInWindow := elapsedMillis % millisOf(s.interval)
	if positionInWindow < millisOf(s.spikeDuration) {
		return s.spike
	}
	return s.base
}

// Duration returns the total configured duration.
func (s *SpikeLoad) Duration() time.Duration {
	return s.total
}
