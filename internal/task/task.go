// Package task defines the unit-of-work contract driven by the execution
// engine. Concrete task bodies (HTTP clients, DB clients, ...) are external
// collaborators; this package only specifies the interface and the
// immutable records that flow across it.
package task

import (
	"context"
	"time"
)

// Task is a user-provided unit of work with an explicit lifecycle. The
// engine owns at-most-one concurrent Setup/Cleanup call per Task instance;
// many Execute calls may run concurrently on distinct workers.
type Task interface {
	// Setup is called once before the first submission. A Setup failure
	// aborts the run before any work is dispatched.
	Setup(ctx context.Context) error

	// Execute is called once per submission with a monotonically
	// increasing iteration index. It must never panic across worker
	// boundaries; the engine recovers and converts a panic to a Failure,
	// but well-behaved tasks return errors instead.
	Execute(ctx context.Context, iteration uint64) Result

	// Cleanup is called exactly once after shutdown, regardless of how
	// the run ended. A Cleanup failure is logged and does not overwrite
	// the run result.
	Cleanup(ctx context.Context) error
}

// Result is a tagged variant: either a Success carrying optional opaque
// data, or a Failure carrying the error. The zero value is never a valid
// Result; use Succeed or Fail to construct one.
type Result struct {
	success bool
	data    any
	err     error
}

// Succeed builds a successful Result. data is optional and may be nil.
func Succeed(data any) Result {
	return Result{success: true, data: data}
}

// Fail builds a failed Result. err must be non-nil.
func Fail(err error) Result {
	return Result{success: false, err: err}
}

// IsSuccess reports whether the Result represents a success.
func (r Result) IsSuccess() bool {
	return r.success
}

// Data returns the success payload, if any. Callers must check IsSuccess
// before trusting the return value.
func (r Result) Data() any {
	return r.data
}

// Err returns the failure error, or nil for a successful Result.
func (r Result) Err() error {
	return r.err
}

// ExecutionRecord describes one execution: its timestamps, result and
// iteration index. Immutable after construction. The engine does not
// build one; it passes the same timestamps and outcome straight to
// metrics.Collector.Record.
type ExecutionRecord struct {
	SubmittedAt time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	Result      Result
	Iteration   uint64
}

// QueueWait is the duration between submission and the worker picking up
// the task.
func (r ExecutionRecord) QueueWait() time.Duration {
	return r.StartedAt.Sub(r.SubmittedAt)
}

// Latency is the duration the task spent executing.
func (r ExecutionRecord) Latency() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
