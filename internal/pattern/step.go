package pattern

import (
	"fmt"
	"time"
)

// Step is a single constant-rate segment of a StepLoad.
type Step struct {
	Rate     float64
	Duration time.Duration
}

// StepLoad is piecewise constant: each step holds its rate for its
// duration, in order. TPS past the end of the last step is 0.
type StepLoad struct {
	steps       []Step
	cumMillis   []int64 // cumulative end time of each step, in millis
	totalMillis int64
}

// NewStepLoad creates a StepLoad. Rejects an empty step list, non-positive
// rates, and zero/negative durations.
func NewStepLoad(steps []Step) (*StepLoad, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("step load: at least one step is required")
	}

	cum := make([]int64, len(steps))
	var total int64
	for i, s := range steps {
		if s.Rate <= 0 {
			return nil, fmt.Errorf("step load: step %d rate must be positive, got %f", i, s.Rate)
		}
		if s.Duration <= 0 {
			return nil, fmt.Errorf("step load: step %d duration must be positive, got %v", i, s.Duration)
		}
		total += millisOf(s.Duration)
		cum[i] = total
	}

	cp := make([]Step, len(steps))
	copy(cp, steps)

	return &StepLoad{steps: cp, cumMillis: cum, totalMillis: total}, nil
}

// TPS returns the rate of whichever step contains elapsedMillis, or 0 past
// the end.
func (s *StepLoad) TPS(elapsedMillis int64) float64 {
	if elapsedMillis < 0 || elapsedMillis >= s.totalMillis {
		return 0
	}
	for i, end := range s.cumMillis {
		if elapsedMillis < end {
			return s.steps[i].Rate
		}
	}
	return 0
}

// Duration returns the sum of all step durations.
func (s *StepLoad) Duration() time.Duration {
	return time.Duration(s.totalMillis) * time.Millisecond
}
