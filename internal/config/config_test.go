package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromBytesMinimalStaticConfig(t *testing.T) {
	yamlDoc := `
name: "Smoke Test"
pattern:
  type: static
  static:
    rate: 100
    duration: 30s
`
	cfg, err := LoadFromBytes([]byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, "Smoke Test", cfg.Name)
	assert.Equal(t, "1.0", cfg.Version) // default
	assert.Equal(t, 32, cfg.WorkerPool.Size)
	assert.Equal(t, int64(10000), cfg.WorkerPool.MaxQueueDepth)
	assert.Equal(t, 30*time.Second, cfg.WorkerPool.GracePeriod)
	assert.Equal(t, []float64{0.5, 0.9, 0.95, 0.99}, cfg.Metrics.Percentiles)
	require.NotNil(t, cfg.Output.Console)
	assert.True(t, *cfg.Output.Console.Enabled)
}

func TestLoadFromBytesRejectsMissingName(t *testing.T) {
	_, err := LoadFromBytes([]byte(`pattern: {type: static, static: {rate: 1, duration: 1s}}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFromBytesRejectsUnknownPatternType(t *testing.T) {
	_, err := LoadFromBytes([]byte(`
name: x
pattern:
  type: nonsense
`))
	assert.Error(t, err)
}

func TestLoadFromBytesRejectsMissingSubConfig(t *testing.T) {
	_, err := LoadFromBytes([]byte(`
name: x
pattern:
  type: ramp
`))
	assert.Error(t, err)
}

func TestLoadFromBytesAdaptiveRequiresAdaptiveBlock(t *testing.T) {
	_, err := LoadFromBytes([]byte(`
name: x
pattern:
  type: adaptive
`))
	assert.Error(t, err)
}

func TestLoadFromBytesFullAdaptiveConfig(t *testing.T) {
	yamlDoc := `
name: "Adaptive Run"
pattern:
  type: adaptive
  warmup: 5s
adaptive:
  initialTps: 100
  rampIncrement: 50
  rampDecrement: 100
  rampInterval: 1s
  maxTps: unlimited
  minTps: 10
  errorThreshold: 0.01
  backpressureRampUpThreshold: 0.5
  backpressureRampDownThreshold: 0.8
backpressure:
  provider: queue
  maxQueueDepth: 1000
  handler: threshold
  queueBand: 0.3
  rejectBand: 0.6
  dropBand: 0.9
workerPool:
  size: 16
output:
  json:
    enabled: true
  prometheus:
    enabled: true
`
	cfg, err := LoadFromBytes([]byte(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, "adaptive", cfg.Pattern.Type)
	require.NotNil(t, cfg.Adaptive)
	assert.Equal(t, 100.0, cfg.Adaptive.InitialTps)
	assert.True(t, float64(cfg.Adaptive.MaxTps) > 1e300) // +Inf from "unlimited"

	require.NotNil(t, cfg.Backpressure)
	assert.Equal(t, "queue", cfg.Backpressure.Provider)
	assert.Equal(t, "threshold", cfg.Backpressure.Handler)

	assert.Equal(t, 16, cfg.WorkerPool.Size)
	assert.Equal(t, "./results/vajrapulse-{{.Timestamp}}.json", cfg.Output.JSON.File)
	assert.Equal(t, 9090, cfg.Output.Prometheus.Port)
	assert.Equal(t, "/metrics", cfg.Output.Prometheus.Path)
}

func TestLoadFromBytesMaxTpsAcceptsNumericValue(t *testing.T) {
	yamlDoc := `
name: x
pattern:
  type: adaptive
adaptive:
  initialTps: 10
  rampIncrement: 5
  rampDecrement: 5
  rampInterval: 1s
  maxTps: 500
  minTps: 1
  errorThreshold: 0.05
  backpressureRampUpThreshold: 0.3
  backpressureRampDownThreshold: 0.6
`
	cfg, err := LoadFromBytes([]byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, 500.0, float64(cfg.Adaptive.MaxTps))
}

func TestBackpressureThresholdHandlerRejectsBadBands(t *testing.T) {
	yamlDoc := `
name: x
pattern: {type: static, static: {rate: 1, duration: 1s}}
backpressure:
  provider: queue
  maxQueueDepth: 10
  handler: threshold
  queueBand: 0.6
  rejectBand: 0.3
  dropBand: 0.9
`
	_, err := LoadFromBytes([]byte(yamlDoc))
	assert.Error(t, err)
}

func TestConfigNotFoundForMissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/to/config.yaml")
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestBuildPatternConstructsStaticLoad(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern:
  type: static
  static: {rate: 50, duration: 10s}
`))
	require.NoError(t, err)

	p, err := cfg.BuildPattern(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.TPS(0))
	assert.Equal(t, 10*time.Second, p.Duration())
}

func TestBuildPatternWrapsWarmupCooldown(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern:
  type: static
  static: {rate: 100, duration: 10s}
  warmup: 2s
  cooldown: 2s
`))
	require.NoError(t, err)

	p, err := cfg.BuildPattern(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 14*time.Second, p.Duration())
}

func TestBuildPatternConstructsStepLoad(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern:
  type: step
  step:
    steps:
      - {rate: 10, duration: 5s}
      - {rate: 20, duration: 5s}
`))
	require.NoError(t, err)

	p, err := cfg.BuildPattern(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.TPS(0))
	assert.Equal(t, 20.0, p.TPS(6000))
}

func TestBuildMetricsCollectorUsesConfiguredPercentiles(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern: {type: static, static: {rate: 1, duration: 1s}}
metrics:
  percentiles: [0.5, 0.99]
`))
	require.NoError(t, err)

	collector := cfg.BuildMetricsCollector()
	require.NotNil(t, collector)

	snapshot := collector.Snapshot()
	assert.Len(t, snapshot.SuccessLatencyNanos, 2)
	assert.Contains(t, snapshot.SuccessLatencyNanos, 0.5)
	assert.Contains(t, snapshot.SuccessLatencyNanos, 0.99)
}

func TestBuildExportersHonoursEnabledFlags(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern: {type: static, static: {rate: 1, duration: 1s}}
output:
  json: {enabled: true}
  csv: {enabled: false}
`))
	require.NoError(t, err)

	exporters, err := cfg.BuildExporters()
	require.NoError(t, err)
	// console (default-enabled) + json, no csv
	assert.Len(t, exporters, 2)
}

func TestBuildBackpressureReturnsNilWhenUnset(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern: {type: static, static: {rate: 1, duration: 1s}}
`))
	require.NoError(t, err)

	collector := cfg.BuildMetricsCollector()
	provider, handler, threshold, err := cfg.BuildBackpressure(collector)
	require.NoError(t, err)
	assert.Nil(t, provider)
	assert.Nil(t, handler)
	assert.Equal(t, 0.0, threshold)
}

func TestBuildBackpressureWiresQueueProviderToCollector(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
name: x
pattern: {type: static, static: {rate: 1, duration: 1s}}
backpressure:
  provider: queue
  maxQueueDepth: 100
  handler: drop
`))
	require.NoError(t, err)

	collector := cfg.BuildMetricsCollector()
	collector.UpdateQueueSize(50)

	provider, handler, _, err := cfg.BuildBackpressure(collector)
	require.NoError(t, err)
	assert.Equal(t, 0.5, provider.Level())
	assert.NotNil(t, handler)
}
