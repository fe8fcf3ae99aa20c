package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CSVExporter writes a Snapshot as a two-column "Metric,Value" CSV, with
// sections separated by blank rows, per spec.md §6.
type CSVExporter struct {
	// Path is the output file path. Supports the same template
	// variables as JSONExporter.
	Path string
}

// Export implements Exporter.
func (e *CSVExporter) Export(_ context.Context, title string, snapshot Snapshot, _ RunContext) error {
	var b strings.Builder
	b.WriteString("Metric,Value\n")

	writeSection(&b, []csvRow{
		{"Title", title},
		{"Elapsed Seconds", fmt.Sprintf("%.2f", snapshot.Duration().Seconds())},
	})
	b.WriteString("\n")

	writeSection(&b, []csvRow{
		{"Total Executions", fmt.Sprintf("%d", snapshot.TotalExecutions)},
		{"Success Count", fmt.Sprintf("%d", snapshot.SuccessCount)},
		{"Failure Count", fmt.Sprintf("%d", snapshot.FailureCount)},
		{"Dropped Count", fmt.Sprintf("%d", snapshot.DroppedCount)},
		{"Rejected Count", fmt.Sprintf("%d", snapshot.RejectedCount)},
		{"Success Rate", fmt.Sprintf("%.2f", snapshot.SuccessRate)},
		{"Success TPS", fmt.Sprintf("%.2f", snapshot.SuccessTps)},
		{"Failure TPS", fmt.Sprintf("%.2f", snapshot.FailureTps)},
		{"Response TPS", fmt.Sprintf("%.2f", snapshot.ResponseTps)},
	})
	b.WriteString("\n")

	writeSection(&b, percentileRows("Success Latency", snapshot.SuccessLatencyNanos))
	b.WriteString("\n")
	writeSection(&b, percentileRows("Failure Latency", snapshot.FailureLatencyNanos))
	b.WriteString("\n")
	writeSection(&b, percentileRows("Queue Wait", snapshot.QueueWaitNanos))

	if e.Path == "" {
		return nil
	}

	path := filepath.Clean(expandPathTemplate(e.Path))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing CSV report: %w", err)
	}
	return nil
}

type csvRow struct {
	metric string
	value  string
}

func percentileRows(prefix string, nanos map[float64]int64) []csvRow {
	keys := make([]float64, 0, len(nanos))
	for k := range nanos {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	rows := make([]csvRow, 0, len(keys))
	for _, k := range keys {
		label := fmt.Sprintf("%s %s", prefix, percentileLabel(k, true))
		rows = append(rows, csvRow{label, fmt.Sprintf("%.2f ms", LatencyMs(nanos[k]))})
	}
	return rows
}

func writeSection(b *strings.Builder, rows []csvRow) {
	for _, r := range rows {
		b.WriteString(csvField(r.metric))
		b.WriteString(",")
		b.WriteString(csvField(r.value))
		b.WriteString("\n")
	}
}

// csvField quotes a field if it contains a comma, quote, or newline,
// doubling any embedded quotes, per spec.md §6.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
