package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTLPExporterDefaultsToNoopProvider(t *testing.T) {
	exporter, err := NewOTLPExporter(nil)
	require.NoError(t, err)
	require.NotNil(t, exporter)
}

func TestOTLPExporterExportDoesNotError(t *testing.T) {
	exporter, err := NewOTLPExporter(nil)
	require.NoError(t, err)

	err = exporter.Export(context.Background(), "otlp test", testSnapshot(), RunContext{RunID: "run-1"})
	assert.NoError(t, err)
}
