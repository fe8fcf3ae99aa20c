package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLExporterWritesWellFormedDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.html")
	exporter := &HTMLExporter{Path: path}

	require.NoError(t, exporter.Export(context.Background(), "html test", testSnapshot(), RunContext{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "<html>")
	assert.Contains(t, content, "html test")
	assert.Contains(t, content, "Total executions")
	assert.Contains(t, content, "100")
}

func TestHTMLExporterSkipsWriteWhenPathEmpty(t *testing.T) {
	exporter := &HTMLExporter{}
	assert.NoError(t, exporter.Export(context.Background(), "no output", testSnapshot(), RunContext{}))
}

func TestPercentileHTMLRowsSortedAscending(t *testing.T) {
	rows := percentileHTMLRows(map[float64]int64{0.99: 1, 0.5: 2, 0.9: 3})
	require.Len(t, rows, 3)
	assert.Equal(t, "P50", rows[0].Metric)
	assert.Equal(t, "P90", rows[1].Metric)
	assert.Equal(t, "P99", rows[2].Metric)
}
