package ratecontrol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWarnThrottleAllowsFirstCallImmediately(t *testing.T) {
	th := NewWarnThrottle(1)
	assert.True(t, th.limiter.Allow())
}

func TestWarnThrottleSuppressesBurstsWithinInterval(t *testing.T) {
	th := NewWarnThrottle(10) // one allowed per 100ms

	first := th.limiter.Allow()
	second := th.limiter.Allow()

	assert.True(t, first)
	assert.False(t, second)
}

func TestWarnThrottleAllowsAgainAfterInterval(t *testing.T) {
	th := NewWarnThrottle(100) // one allowed per 10ms

	assert.True(t, th.limiter.Allow())
	time.Sleep(15 * time.Millisecond)
	assert.True(t, th.limiter.Allow())
}

func TestNewWarnThrottleRejectsNonPositiveRate(t *testing.T) {
	th := NewWarnThrottle(0)
	assert.True(t, th.limiter.Allow())
}
