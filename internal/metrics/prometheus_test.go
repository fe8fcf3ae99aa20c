package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporterExportPopulatesRegistry(t *testing.T) {
	exporter := NewPrometheusExporter(PrometheusConfig{})

	require.NoError(t, exporter.Export(context.Background(), "prom test", testSnapshot(), RunContext{}))

	families, err := exporter.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	assert.True(t, names[MetricTotalExecutions])
	assert.True(t, names[MetricSuccessCount])
	assert.True(t, names[MetricLatencySeconds])
}

func TestPrometheusExporterDefaultsConfig(t *testing.T) {
	exporter := NewPrometheusExporter(PrometheusConfig{})
	assert.Equal(t, 9090, exporter.config.Port)
	assert.Equal(t, "/metrics", exporter.config.Path)
}

func TestPrometheusExporterStartStopIsIdempotent(t *testing.T) {
	exporter := NewPrometheusExporter(PrometheusConfig{Port: 0})
	// Port 0 is replaced by the default port 9090 (see
	// NewPrometheusExporter), so this test listens on that port.
	require.NoError(t, exporter.Start())
	require.NoError(t, exporter.Start()) // second Start is a no-op

	assert.NoError(t, exporter.Stop(context.Background()))
	assert.NoError(t, exporter.Stop(context.Background())) // second Stop is a no-op
}
