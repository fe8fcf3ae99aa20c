package backpressure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinHandlersAlwaysReturnTheirDisposition(t *testing.T) {
	assert.Equal(t, Dropped, Drop.Handle(0.99, Context{}))
	assert.Equal(t, Queued, Queue.Handle(0.99, Context{}))
	assert.Equal(t, Rejected, Reject.Handle(0.01, Context{}))
}

func TestThresholdHandlerBands(t *testing.T) {
	h := Threshold(0.3, 0.6, 0.9)

	assert.Equal(t, Accepted, h.Handle(0.1, Context{}))
	assert.Equal(t, Queued, h.Handle(0.4, Context{}))
	assert.Equal(t, Rejected, h.Handle(0.7, Context{}))
	assert.Equal(t, Dropped, h.Handle(0.95, Context{}))
}

func TestThresholdHandlerBoundariesAreHalfOpen(t *testing.T) {
	h := Threshold(0.3, 0.6, 0.9)

	assert.Equal(t, Queued, h.Handle(0.3, Context{}))
	assert.Equal(t, Rejected, h.Handle(0.6, Context{}))
	assert.Equal(t, Dropped, h.Handle(0.9, Context{}))
}

func TestThresholdPanicsOnInvalidOrdering(t *testing.T) {
	assert.Panics(t, func() { Threshold(0.6, 0.3, 0.9) })
	assert.Panics(t, func() { Threshold(-0.1, 0.5, 0.9) })
	assert.Panics(t, func() { Threshold(0.1, 0.5, 1.1) })
}

func TestDispositionString(t *testing.T) {
	assert.Equal(t, "ACCEPTED", Accepted.String())
	assert.Equal(t, "QUEUED", Queued.String())
	assert.Equal(t, "DROPPED", Dropped.String())
	assert.Equal(t, "REJECTED", Rejected.String())
}
