package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterWritesHeaderAndSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	exporter := &CSVExporter{Path: path}

	require.NoError(t, exporter.Export(context.Background(), "csv test", testSnapshot(), RunContext{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	lines := strings.Split(content, "\n")
	assert.Equal(t, "Metric,Value", lines[0])
	assert.Contains(t, content, "Total Executions,100")
	assert.Contains(t, content, "Success Latency P50,10.00 ms")
	assert.Contains(t, content, "\n\n") // blank-row section separators
}

func TestCSVFieldQuotesSpecialCharacters(t *testing.T) {
	assert.Equal(t, "plain", csvField("plain"))
	assert.Equal(t, `"has,comma"`, csvField("has,comma"))
	assert.Equal(t, `"has ""quote"""`, csvField(`has "quote"`))
	assert.Equal(t, "\"has\nnewline\"", csvField("has\nnewline"))
}

func TestCSVExporterSkipsWriteWhenPathEmpty(t *testing.T) {
	exporter := &CSVExporter{}
	assert.NoError(t, exporter.Export(context.Background(), "no output", testSnapshot(), RunContext{}))
}
