package metrics

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleExporterPrintsSummary(t *testing.T) {
	var buf bytes.Buffer
	exporter := &ConsoleExporter{Writer: &buf, UseColors: false}

	require.NoError(t, exporter.Export(context.Background(), "console test", testSnapshot(), RunContext{}))

	out := buf.String()
	assert.Contains(t, out, "console test")
	assert.Contains(t, out, "executions:")
	assert.Contains(t, out, "success rate:")
	assert.NotContains(t, out, colorReset) // UseColors false emits no ANSI codes
}

func TestConsoleExporterColorsHighSuccessRateGreen(t *testing.T) {
	var buf bytes.Buffer
	exporter := &ConsoleExporter{Writer: &buf, UseColors: true}

	snap := testSnapshot()
	snap.SuccessRate = 99.9

	require.NoError(t, exporter.Export(context.Background(), "green", snap, RunContext{}))
	assert.Contains(t, buf.String(), colorGreen)
}

func TestConsoleExporterColorsLowSuccessRateRed(t *testing.T) {
	var buf bytes.Buffer
	exporter := &ConsoleExporter{Writer: &buf, UseColors: true}

	snap := testSnapshot()
	snap.SuccessRate = 50.0

	require.NoError(t, exporter.Export(context.Background(), "red", snap, RunContext{}))
	assert.Contains(t, buf.String(), colorRed)
}

func TestPrintPercentilesHandlesEmptyMap(t *testing.T) {
	var buf bytes.Buffer
	printPercentiles(&buf, "label:", map[float64]int64{})
	assert.Contains(t, buf.String(), "N/A")
}
