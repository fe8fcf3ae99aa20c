// Package engine implements the execution engine: the dispatch loop that
// paces submissions through a load pattern and rate controller, filters
// them through an optional backpressure handler, runs them on a worker
// pool, and records outcomes to a metrics collector.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vajrapulse/vajrapulse/internal/backpressure"
	"github.com/vajrapulse/vajrapulse/internal/metrics"
	"github.com/vajrapulse/vajrapulse/internal/pattern"
	"github.com/vajrapulse/vajrapulse/internal/ratecontrol"
	"github.com/vajrapulse/vajrapulse/internal/task"
)

// ErrMissingTask is returned by Build when no Task was configured.
var ErrMissingTask = errors.New("engine: task is required")

// ErrMissingLoadPattern is returned by Build when no LoadPattern was
// configured.
var ErrMissingLoadPattern = errors.New("engine: loadPattern is required")

// ErrMissingCollector is returned by Build when no metrics collector was
// configured.
var ErrMissingCollector = errors.New("engine: metricsCollector is required")

const (
	defaultWorkerCount   = 32
	defaultGracePeriod   = 30 * time.Second
	defaultMaxQueueDepth = 10_000
)

// Builder assembles an Engine. Zero value is usable; call the With*
// methods then Build.
type Builder struct {
	task      task.Task
	pattern   pattern.LoadPattern
	collector *metrics.Collector

	backpressureHandler   backpressure.Handler
	backpressureProvider  backpressure.Provider
	backpressureThreshold float64

	workerCount   int
	maxQueueDepth int64
	gracePeriod   time.Duration

	exporters  []metrics.Exporter
	runContext metrics.RunContext
	title      string
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) WithTask(t task.Task) *Builder { b.task = t; return b }

func (b *Builder) WithLoadPattern(p pattern.LoadPattern) *Builder { b.pattern = p; return b }

func (b *Builder) WithMetricsCollector(c *metrics.Collector) *Builder { b.collector = c; return b }

// WithBackpressure configures a handler, the provider it reads from, and
// the level threshold at which the handler is even consulted (below
// threshold, every submission is accepted without calling handler).
func (b *Builder) WithBackpressure(handler backpressure.Handler, provider backpressure.Provider, threshold float64) *Builder {
	b.backpressureHandler = handler
	b.backpressureProvider = provider
	b.backpressureThreshold = threshold
	return b
}

func (b *Builder) WithWorkerCount(n int) *Builder { b.workerCount = n; return b }

func (b *Builder) WithMaxQueueDepth(n int64) *Builder { b.maxQueueDepth = n; return b }

func (b *Builder) WithGracePeriod(d time.Duration) *Builder { b.gracePeriod = d; return b }

// WithExporters configures the exporters flushed once at run end, along
// with the title and run metadata passed to each. There is no periodic
// export: every exporter runs exactly once, during shutdown.
func (b *Builder) WithExporters(title string, runCtx metrics.RunContext, exporters ...metrics.Exporter) *Builder {
	b.title = title
	b.runContext = runCtx
	b.exporters = exporters
	return b
}

// Build validates the builder and constructs an Engine. Configuration
// errors fail fast here; no run is started on a bad configuration.
func (b *Builder) Build() (*Engine, error) {
	if b.task == nil {
		return nil, ErrMissingTask
	}
	if b.pattern == nil {
		return nil, ErrMissingLoadPattern
	}
	if b.collector == nil {
		return nil, ErrMissingCollector
	}
	if b.backpressureHandler != nil && (b.backpressureThreshold < 0 || b.backpressureThreshold > 1) {
		return nil, fmt.Errorf("engine: backpressureThreshold must be in [0,1], got %v", b.backpressureThreshold)
	}

	workerCount := b.workerCount
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	maxQueueDepth := b.maxQueueDepth
	if maxQueueDepth <= 0 {
		maxQueueDepth = defaultMaxQueueDepth
	}
	gracePeriod := b.gracePeriod
	if gracePeriod <= 0 {
		gracePeriod = defaultGracePeriod
	}

	return &Engine{
		task:                  b.task,
		pattern:               b.pattern,
		collector:             b.collector,
		backpressureHandler:   b.backpressureHandler,
		backpressureProvider:  b.backpressureProvider,
		backpressureThreshold: b.backpressureThreshold,
		maxQueueDepth:         maxQueueDepth,
		gracePeriod:           gracePeriod,
		exporters:             b.exporters,
		runContext:            b.runContext,
		title:                 b.title,
		rateController:        ratecontrol.New(),
		pool:                  newPool(workerCount, int(maxQueueDepth)),
		stopRequest:           make(chan struct{}),
	}, nil
}

// Engine orchestrates one run: own the worker pool, pace submissions,
// apply backpressure, and record outcomes.
//
// Thread safety: Run and Stop are safe to call from different
// goroutines; Stop is idempotent.
type Engine struct {
	task      task.Task
	pattern   pattern.LoadPattern
	collector *metrics.Collector

	backpressureHandler   backpressure.Handler
	backpressureProvider  backpressure.Provider
	backpressureThreshold float64

	maxQueueDepth int64
	gracePeriod   time.Duration

	exporters  []metrics.Exporter
	runContext metrics.RunContext
	title      string

	rateController *ratecontrol.Controller
	pool           *pool

	pendingWork atomic.Int64
	iteration   atomic.Uint64

	stopOnce    sync.Once
	stopRequest chan struct{}
}

// Stop requests a graceful shutdown. Idempotent: later calls are no-ops.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopRequest)
	})
}

func (e *Engine) stopRequested() bool {
	select {
	case <-e.stopRequest:
		return true
	default:
		return false
	}
}

// Run executes the dispatch loop until the pattern's duration elapses
// or Stop is called, then runs the shutdown protocol. It returns an
// error only for setup failure or unrecoverable internal state; task
// execution failures never cause Run to return an error (spec.md §7).
func (e *Engine) Run(ctx context.Context) error {
	if err := e.task.Setup(ctx); err != nil {
		return fmt.Errorf("engine: task setup failed: %w", err)
	}

	e.rateController.Start()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.pool.start(runCtx)

	e.dispatchLoop(runCtx)
	e.shutdown(ctx, cancel)

	return nil
}

func (e *Engine) dispatchLoop(ctx context.Context) {
	duration := e.pattern.Duration()
	indefinite := duration == pattern.Indefinite

	for {
		if e.stopRequested() {
			return
		}

		elapsed := e.rateController.ElapsedMillis()
		if !indefinite && elapsed >= duration.Milliseconds() {
			return
		}

		targetTps := e.pattern.TPS(elapsed)
		shouldRecord := pattern.ShouldRecordMetrics(e.pattern, elapsed)

		if _, err := e.rateController.WaitForNext(ctx, targetTps); err != nil {
			return // context cancelled
		}

		if e.stopRequested() {
			return
		}

		if e.backpressureHandler != nil && e.backpressureProvider != nil {
			level := e.backpressureProvider.Level()
			if level >= e.backpressureThreshold {
				bpCtx := backpressure.Context{
					QueueDepth:    e.pendingWork.Load(),
					MaxQueueDepth: e.maxQueueDepth,
					Iteration:     e.iteration.Load(),
				}
				switch e.backpressureHandler.Handle(level, bpCtx) {
				case backpressure.Dropped:
					e.collector.Track(metrics.Dropped)
					continue
				case backpressure.Rejected:
					e.collector.Track(metrics.Rejected)
					if shouldRecord {
						e.collector.RecordSyntheticFailure(time.Now())
					}
					continue
				case backpressure.Accepted, backpressure.Queued:
					// fall through to submission
				}
			}
		}

		e.submit(ctx, shouldRecord)
	}
}

func (e *Engine) submit(ctx context.Context, shouldRecord bool) {
	iteration := e.iteration.Add(1) - 1
	submittedAt := time.Now()

	e.pendingWork.Add(1)
	e.collector.UpdateQueueSize(e.pendingWork.Load())

	err := e.pool.submit(ctx, func(workerCtx context.Context) {
		defer func() {
			e.pendingWork.Add(-1)
			e.collector.UpdateQueueSize(e.pendingWork.Load())
		}()

		startedAt := time.Now()
		result := e.safeExecute(workerCtx, iteration)
		completedAt := time.Now()

		if shouldRecord {
			e.collector.Record(submittedAt, startedAt, completedAt, result.IsSuccess())
		}
	})
	if err != nil {
		// Submission itself was cancelled (shutdown race): undo the
		// pending-work accounting since the closure above never ran.
		e.pendingWork.Add(-1)
		e.collector.UpdateQueueSize(e.pendingWork.Load())
	}
}

// safeExecute runs task.Execute, converting any panic into a Failure so
// one misbehaving task never kills a worker goroutine (spec.md §4.5
// step 8).
func (e *Engine) safeExecute(ctx context.Context, iteration uint64) (result task.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = task.Fail(fmt.Errorf("engine: task panic: %v", r))
		}
	}()
	return e.task.Execute(ctx, iteration)
}

// shutdown implements spec.md §4.5's shutdown protocol: stop dispatching
// (already true by the time this runs), wait a bounded grace period for
// in-flight work, then cancel stragglers, call task.Cleanup exactly
// once, and flush exporters.
func (e *Engine) shutdown(ctx context.Context, cancelWorkers context.CancelFunc) {
	graceDeadline := time.NewTimer(e.gracePeriod)
	defer graceDeadline.Stop()

	drained := make(chan struct{})
	go func() {
		for e.pendingWork.Load() > 0 {
			time.Sleep(5 * time.Millisecond)
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-graceDeadline.C:
		// Forced: cancel remaining workers. An in-flight Execute call
		// sees its context cancelled and its result is recorded like any
		// other outcome (the collector keeps no error kind, so there is
		// no separate "shutdown cancellation" count); jobs still queued
		// when the workers exit may never run and are not recorded.
		cancelWorkers()
	}

	e.pool.drain()
	e.collector.MarkEnd()

	if err := e.task.Cleanup(ctx); err != nil {
		// Cleanup failure is logged and never overwrites the run
		// result (spec.md §6).
		log.Printf("WARN: engine: task cleanup failed: %v", err)
	}

	if len(e.exporters) > 0 {
		snapshot := e.collector.Snapshot()
		for _, err := range metrics.ExportAll(ctx, e.exporters, e.title, snapshot, e.runContext) {
			log.Printf("WARN: engine: exporter failed: %v", err)
		}
	}
}
