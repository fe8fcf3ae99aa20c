package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolExecutesSubmittedJobs(t *testing.T) {
	p := newPool(4, 16)
	ctx := context.Background()
	p.start(ctx)

	var executed atomic.Int32
	for range 20 {
		err := p.submit(ctx, func(context.Context) { executed.Add(1) })
		assert.NoError(t, err)
	}

	p.drain()
	assert.Equal(t, int32(20), executed.Load())
}

func TestPoolDrainWaitsForInFlightJobs(t *testing.T) {
	p := newPool(2, 8)
	ctx := context.Background()
	p.start(ctx)

	var done atomic.Bool
	err := p.submit(ctx, func(context.Context) {
		time.Sleep(30 * time.Millisecond)
		done.Store(true)
	})
	assert.NoError(t, err)

	p.drain()
	assert.True(t, done.Load())
}

func TestPoolSubmitReturnsErrorWhenContextCancelled(t *testing.T) {
	p := newPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Fill the single-slot queue first so submit has to block on ctx.
	p.taskCh <- func(context.Context) {}

	err := p.submit(ctx, func(context.Context) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolWorkersExitWhenContextCancelled(t *testing.T) {
	p := newPool(3, 8)
	ctx, cancel := context.WithCancel(context.Background())
	p.start(ctx)

	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after context cancellation")
	}
}

func TestPoolDefaultsInvalidSizeToOne(t *testing.T) {
	p := newPool(0, 0)
	assert.Equal(t, 1, p.size)
	assert.Equal(t, 2, cap(p.taskCh))
}

func TestPoolConcurrentSubmit(t *testing.T) {
	p := newPool(8, 64)
	ctx := context.Background()
	p.start(ctx)

	var executed atomic.Int64
	var wg sync.WaitGroup

	const goroutines = 10
	const jobsPerGoroutine = 50

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobsPerGoroutine {
				_ = p.submit(ctx, func(context.Context) { executed.Add(1) })
			}
		}()
	}

	wg.Wait()
	p.drain()

	assert.Equal(t, int64(goroutines*jobsPerGoroutine), executed.Load())
}
