package adaptive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetrics struct {
	failureRate       float64
	recentFailureRate float64
	total             uint64
	failures          uint64
}

func (f fakeMetrics) FailureRate() float64                { return f.failureRate }
func (f fakeMetrics) RecentFailureRate(_ float64) float64 { return f.recentFailureRate }
func (f fakeMetrics) TotalExecutions() uint64             { return f.total }
func (f fakeMetrics) FailureCount() uint64                { return f.failures }

type fakeBackpressure struct{ level float64 }

func (f fakeBackpressure) Level() float64 { return f.level }

func cleanConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(Config{
		InitialTps:                    100,
		RampIncrement:                 50,
		RampDecrement:                 100,
		RampInterval:                  time.Second,
		MaxTps:                        1000,
		MinTps:                        10,
		SustainDuration:               10 * time.Second,
		ErrorThreshold:                0.01,
		BackpressureRampUpThreshold:   0.5,
		BackpressureRampDownThreshold: 0.8,
		StableIntervalsRequired:       3,
		TpsTolerance:                  5,
		RecoveryTpsRatio:              0.5,
	})
	require.NoError(t, err)
	return cfg
}

func TestConfigValidationRejectsBadInputs(t *testing.T) {
	base := Config{
		InitialTps: 100, RampIncrement: 50, RampDecrement: 100,
		RampInterval: time.Second, MaxTps: 1000, MinTps: 10,
		SustainDuration: time.Second, ErrorThreshold: 0.01,
		BackpressureRampUpThreshold: 0.5, BackpressureRampDownThreshold: 0.8,
		StableIntervalsRequired: 3, TpsTolerance: 5, RecoveryTpsRatio: 0.5,
	}

	_, err := NewConfig(base)
	assert.NoError(t, err)

	bad := base
	bad.MinTps = 2000
	_, err = NewConfig(bad)
	assert.Error(t, err)

	bad = base
	bad.BackpressureRampUpThreshold = 0.9
	_, err = NewConfig(bad)
	assert.Error(t, err, "rampUp threshold must be < rampDown threshold")

	bad = base
	bad.RecoveryTpsRatio = 0
	_, err = NewConfig(bad)
	assert.Error(t, err)
}

// TestScenarioD encodes spec.md Scenario D: clean conditions ramp
// linearly from initial to max, then enter SUSTAIN.
func TestScenarioD_AdaptiveRampUnderCleanConditions(t *testing.T) {
	cfg := cleanConfig(t)
	metrics := fakeMetrics{failureRate: 0, recentFailureRate: 0}
	bp := fakeBackpressure{level: 0}

	p := New(cfg, metrics, WithBackpressure(bp))

	assert.Equal(t, 100.0, p.TPS(0))
	assert.Equal(t, 150.0, p.TPS(1001))

	tps := 150.0
	elapsed := int64(1001)
	for tps < 1000 {
		elapsed += 1000
		tps = p.TPS(elapsed)
	}
	assert.Equal(t, 1000.0, tps)
	assert.Equal(t, RampUp.String(), p.CurrentPhase(elapsed))

	// One more interval at the ceiling latches SUSTAIN.
	elapsed += 1000
	finalTps := p.TPS(elapsed)
	assert.Equal(t, 1000.0, finalTps)
	assert.Equal(t, Sustain.String(), p.CurrentPhase(elapsed))
}

// TestScenarioE encodes spec.md Scenario E: errors appear after the
// first interval, forcing a ramp-down.
func TestScenarioE_AdaptiveWithErrors(t *testing.T) {
	metrics := &mutableMetrics{failureRate: 0, recentFailureRate: 0}
	cfg := cleanConfig(t)
	p := New(cfg, metrics, WithBackpressure(fakeBackpressure{level: 0}))

	assert.Equal(t, 100.0, p.TPS(0))
	assert.Equal(t, 150.0, p.TPS(1001))

	metrics.failureRate = 2
	metrics.recentFailureRate = 2

	newTps := p.TPS(2002)
	assert.Equal(t, RampDown.String(), p.CurrentPhase(2002))
	assert.Equal(t, 50.0, newTps) // max(minTps, 150-100) = 50
}

// TestScenarioF encodes spec.md Scenario F: recovery from the floor once
// conditions improve.
func TestScenarioF_RecoveryLoop(t *testing.T) {
	cfg := cleanConfig(t)
	cfg.MinTps = 10
	cfg.RecoveryTpsRatio = 0.5

	metrics := fakeMetrics{failureRate: 0, recentFailureRate: 0}
	p := New(cfg, metrics, WithBackpressure(fakeBackpressure{level: 0}))

	p.state.Store(&State{
		Phase:                Recovery,
		CurrentTps:           cfg.MinTps,
		LastKnownGoodTps:     200,
		LastDecisionAtMillis: 0,
		PhaseEnteredAtMillis: 0,
	})

	newTps := p.TPS(1001)
	assert.Equal(t, RampUp.String(), p.CurrentPhase(1001))
	assert.Equal(t, 100.0, newTps) // max(10, 200*0.5) = 100
}

func TestCachingReturnsLastDecisionWithinInterval(t *testing.T) {
	cfg := cleanConfig(t)
	metrics := fakeMetrics{failureRate: 0, recentFailureRate: 0}
	p := New(cfg, metrics, WithBackpressure(fakeBackpressure{level: 0}))

	assert.Equal(t, 100.0, p.TPS(0))
	assert.Equal(t, 100.0, p.TPS(500)) // inside the same interval: cached
	assert.Equal(t, 150.0, p.TPS(1001))
}

func TestCurrentTpsStaysWithinConfiguredBounds(t *testing.T) {
	cfg := cleanConfig(t)
	metrics := &mutableMetrics{}
	p := New(cfg, metrics, WithBackpressure(fakeBackpressure{level: 0}))

	elapsed := int64(0)
	for i := 0; i < 40; i++ {
		tps := p.TPS(elapsed)
		assert.GreaterOrEqual(t, tps, cfg.MinTps)
		assert.LessOrEqual(t, tps, cfg.MaxTps)
		elapsed += 1001
		if i%5 == 0 {
			metrics.failureRate, metrics.recentFailureRate = 5, 5
		} else {
			metrics.failureRate, metrics.recentFailureRate = 0, 0
		}
	}
}

func TestPhaseTransitionCountIncrementsOnlyOnPhaseChange(t *testing.T) {
	cfg := cleanConfig(t)
	metrics := fakeMetrics{}
	p := New(cfg, metrics, WithBackpressure(fakeBackpressure{level: 0}))

	p.TPS(0)
	before := p.PhaseTransitions()
	p.TPS(1001) // still RAMP_UP, no transition
	assert.Equal(t, before, p.PhaseTransitions())
}

func TestListenerPanicDoesNotAbortDecision(t *testing.T) {
	cfg := cleanConfig(t)
	metrics := fakeMetrics{}
	panicky := panickyListener{}
	p := New(cfg, metrics, WithBackpressure(fakeBackpressure{level: 0}), WithListener(panicky))

	p.TPS(0)
	assert.NotPanics(t, func() { p.TPS(1001) })
}

type mutableMetrics struct {
	failureRate       float64
	recentFailureRate float64
}

func (m *mutableMetrics) FailureRate() float64               { return m.failureRate }
func (m *mutableMetrics) RecentFailureRate(_ float64) float64 { return m.recentFailureRate }
func (m *mutableMetrics) TotalExecutions() uint64             { return 0 }
func (m *mutableMetrics) FailureCount() uint64                { return 0 }

type panickyListener struct{ BaseListener }

func (panickyListener) OnTpsChange(TpsChangeEvent) { panic("boom") }
