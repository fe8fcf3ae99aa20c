package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTLPExporter translates a Snapshot into OpenTelemetry instruments on a
// package-local meter. Wiring a concrete OTLP network exporter (gRPC/HTTP)
// into the MeterProvider is the caller's responsibility — this type only
// owns instrument creation and recording, matching how the rest of
// VajraPulse keeps exporters thin consumers of a Snapshot (spec.md §1
// lists OTLP as out-of-scope-but-interface).
type OTLPExporter struct {
	meter metric.Meter

	totalExecutions metric.Int64Counter
	successCount    metric.Int64Counter
	failureCount    metric.Int64Counter
	droppedCount    metric.Int64Counter
	rejectedCount   metric.Int64Counter
	successLatency metric.Float64Histogram
	failureLatency metric.Float64Histogram
	queueWait      metric.Float64Histogram
}

// NewOTLPExporter creates an OTLPExporter against the given
// MeterProvider. If provider is nil, a no-op SDK MeterProvider is used
// (instruments are created but never exported anywhere).
func NewOTLPExporter(provider metric.MeterProvider) (*OTLPExporter, error) {
	if provider == nil {
		provider = sdkmetric.NewMeterProvider()
	}
	meter := provider.Meter("vajrapulse")

	totalExecutions, err := meter.Int64Counter("vajrapulse.total_executions")
	if err != nil {
		return nil, fmt.Errorf("creating total_executions counter: %w", err)
	}
	successCount, err := meter.Int64Counter("vajrapulse.success_count")
	if err != nil {
		return nil, fmt.Errorf("creating success_count counter: %w", err)
	}
	failureCount, err := meter.Int64Counter("vajrapulse.failure_count")
	if err != nil {
		return nil, fmt.Errorf("creating failure_count counter: %w", err)
	}
	droppedCount, err := meter.Int64Counter("vajrapulse.dropped_count")
	if err != nil {
		return nil, fmt.Errorf("creating dropped_count counter: %w", err)
	}
	rejectedCount, err := meter.Int64Counter("vajrapulse.rejected_count")
	if err != nil {
		return nil, fmt.Errorf("creating rejected_count counter: %w", err)
	}
	successLatency, err := meter.Float64Histogram("vajrapulse.success_latency_seconds")
	if err != nil {
		return nil, fmt.Errorf("creating success_latency histogram: %w", err)
	}
	failureLatency, err := meter.Float64Histogram("vajrapulse.failure_latency_seconds")
	if err != nil {
		return nil, fmt.Errorf("creating failure_latency histogram: %w", err)
	}
	queueWait, err := meter.Float64Histogram("vajrapulse.queue_wait_seconds")
	if err != nil {
		return nil, fmt.Errorf("creating queue_wait histogram: %w", err)
	}

	return &OTLPExporter{
		meter:           meter,
		totalExecutions: totalExecutions,
		successCount:    successCount,
		failureCount:    failureCount,
		droppedCount:    droppedCount,
		rejectedCount:   rejectedCount,
		successLatency:  successLatency,
		failureLatency:  failureLatency,
		queueWait:       queueWait,
	}, nil
}

// Export implements Exporter. It adds the snapshot's cumulative totals to
// the counters and records each latency percentile as one histogram
// observation, tagged with the run ID and title. The counters sum every
// Add, so exporting the same run more than once counts its totals again;
// the engine exports once, at the end of the run.
func (e *OTLPExporter) Export(ctx context.Context, title string, snapshot Snapshot, runCtx RunContext) error {
	attrs := metric.WithAttributes(
		attribute.String("run_id", runCtx.RunID),
		attribute.String("title", title),
	)

	e.totalExecutions.Add(ctx, snapshot.TotalExecutions, attrs)
	e.successCount.Add(ctx, snapshot.SuccessCount, attrs)
	e.failureCount.Add(ctx, snapshot.FailureCount, attrs)
	e.droppedCount.Add(ctx, snapshot.DroppedCount, attrs)
	e.rejectedCount.Add(ctx, snapshot.RejectedCount, attrs)

	for _, nanos := range snapshot.SuccessLatencyNanos {
		e.successLatency.Record(ctx, float64(nanos)/1e9, attrs)
	}
	for _, nanos := range snapshot.FailureLatencyNanos {
		e.failureLatency.Record(ctx, float64(nanos)/1e9, attrs)
	}
	for _, nanos := range snapshot.QueueWaitNanos {
		e.queueWait.Record(ctx, float64(nanos)/1e9, attrs)
	}

	return nil
}
