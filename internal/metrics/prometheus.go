package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Prometheus metric names.
const (
	MetricTotalExecutions = "vajrapulse_total_executions"
	MetricSuccessCount    = "vajrapulse_success_count"
	MetricFailureCount    = "vajrapulse_failure_count"
	MetricDroppedCount    = "vajrapulse_dropped_count"
	MetricRejectedCount   = "vajrapulse_rejected_count"
	MetricResponseTps     = "vajrapulse_response_tps"
	MetricSuccessRate     = "vajrapulse_success_rate"
	MetricQueueSize       = "vajrapulse_queue_size"
	MetricLatencySeconds  = "vajrapulse_latency_seconds"
)

// PrometheusExporter exposes the latest Snapshot via an HTTP /metrics
// endpoint. It is both an Exporter (updates the gauges) and an HTTP
// server (Start/Stop) matching the teacher's registry-per-instance
// design, so tests never collide with the global default registry.
//
// Thread safety: safe for concurrent use.
type PrometheusExporter struct {
	mu sync.RWMutex

	config   PrometheusConfig
	registry *prometheus.Registry

	totalExecutions prometheus.Gauge
	successCount    prometheus.Gauge
	failureCount    prometheus.Gauge
	droppedCount    prometheus.Gauge
	rejectedCount   prometheus.Gauge
	responseTps     prometheus.Gauge
	successRate     prometheus.Gauge
	queueSize       prometheus.Gauge
	latencySeconds  *prometheus.GaugeVec

	server  *http.Server
	ln      net.Listener
	running bool

	lastError error
}

// PrometheusConfig configures a PrometheusExporter.
type PrometheusConfig struct {
	// Port is the HTTP port for the metrics endpoint. Default: 9090.
	Port int
	// Path is the URL path for the metrics endpoint. Default: /metrics.
	Path string
}

// DefaultPrometheusConfig returns the default configuration.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{Port: 9090, Path: "/metrics"}
}

// NewPrometheusExporter creates a PrometheusExporter with its own
// registry.
func NewPrometheusExporter(config PrometheusConfig) *PrometheusExporter {
	if config.Port == 0 {
		config.Port = 9090
	}
	if config.Path == "" {
		config.Path = "/metrics"
	}

	e := &PrometheusExporter{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	e.initMetrics()
	return e
}

func (e *PrometheusExporter) initMetrics() {
	e.totalExecutions = prometheus.NewGauge(prometheus.GaugeOpts{Name: "total_executions", Help: "Total executions recorded.", Namespace: "vajrapulse"})
	e.successCount = prometheus.NewGauge(prometheus.GaugeOpts{Name: "success_count", Help: "Successful executions.", Namespace: "vajrapulse"})
	e.failureCount = prometheus.NewGauge(prometheus.GaugeOpts{Name: "failure_count", Help: "Failed executions.", Namespace: "vajrapulse"})
	e.droppedCount = prometheus.NewGauge(prometheus.GaugeOpts{Name: "dropped_count", Help: "Dropped submissions.", Namespace: "vajrapulse"})
	e.rejectedCount = prometheus.NewGauge(prometheus.GaugeOpts{Name: "rejected_count", Help: "Rejected submissions.", Namespace: "vajrapulse"})
	e.responseTps = prometheus.NewGauge(prometheus.GaugeOpts{Name: "response_tps", Help: "Current response TPS.", Namespace: "vajrapulse"})
	e.successRate = prometheus.NewGauge(prometheus.GaugeOpts{Name: "success_rate", Help: "Current success rate percentage.", Namespace: "vajrapulse"})
	e.queueSize = prometheus.NewGauge(prometheus.GaugeOpts{Name: "queue_size", Help: "Current queue depth.", Namespace: "vajrapulse"})
	e.latencySeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "latency_seconds", Help: "Latency percentile in seconds.", Namespace: "vajrapulse"}, []string{"outcome", "percentile"})

	e.registry.MustRegister(
		e.totalExecutions, e.successCount, e.failureCount, e.droppedCount,
		e.rejectedCount, e.responseTps, e.successRate, e.queueSize, e.latencySeconds,
	)
}

// Export implements Exporter: it updates every gauge from the snapshot.
func (e *PrometheusExporter) Export(_ context.Context, _ string, snapshot Snapshot, _ RunContext) error {
	e.totalExecutions.Set(float64(snapshot.TotalExecutions))
	e.successCount.Set(float64(snapshot.SuccessCount))
	e.failureCount.Set(float64(snapshot.FailureCount))
	e.droppedCount.Set(float64(snapshot.DroppedCount))
	e.rejectedCount.Set(float64(snapshot.RejectedCount))
	e.responseTps.Set(snapshot.ResponseTps)
	e.successRate.Set(snapshot.SuccessRate)
	e.queueSize.Set(float64(snapshot.QueueSize))

	for pct, nanos := range snapshot.SuccessLatencyNanos {
		e.latencySeconds.WithLabelValues("success", percentileLabel(pct, false)).Set(float64(nanos) / 1e9)
	}
	for pct, nanos := range snapshot.FailureLatencyNanos {
		e.latencySeconds.WithLabelValues("failure", percentileLabel(pct, false)).Set(float64(nanos) / 1e9)
	}

	return nil
}

// Start starts the HTTP server for the metrics endpoint.
func (e *PrometheusExporter) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", e.config.Port))
	if err != nil {
		return fmt.Errorf("starting prometheus exporter: %w", err)
	}
	e.ln = ln

	mux := http.NewServeMux()
	mux.Handle(e.config.Path, promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	e.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := e.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.mu.Lock()
			e.lastError = err
			e.mu.Unlock()
		}
	}()

	e.running = true
	return nil
}

// Stop stops the HTTP server.
func (e *PrometheusExporter) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false
	if e.server != nil {
		return e.server.Shutdown(ctx)
	}
	return nil
}

// Registry returns the exporter's private registry, for testing.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}

// Gather collects all metric families from the registry, for testing.
func (e *PrometheusExporter) Gather() ([]*dto.MetricFamily, error) {
	return e.registry.Gather()
}

// LastError returns the last error observed by the HTTP server, if any.
func (e *PrometheusExporter) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastError
}
