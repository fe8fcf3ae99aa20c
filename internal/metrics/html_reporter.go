package metrics

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// HTMLExporter renders a Snapshot as a self-contained HTML page with a
// summary grid and a latency table. It is not bit-exact across
// implementations (spec.md §6).
type HTMLExporter struct {
	// Path is the output file path. Supports the same template variables
	// as JSONExporter.
	Path string
}

type htmlRow struct {
	Metric string
	Value  string
}

type htmlData struct {
	Title       string
	GeneratedAt string
	Summary     []htmlRow
	Success     []htmlRow
	Failure     []htmlRow
	QueueWait   []htmlRow
}

// Export implements Exporter.
func (h *HTMLExporter) Export(_ context.Context, title string, snapshot Snapshot, _ RunContext) error {
	data := htmlData{
		Title:       title,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary: []htmlRow{
			{"Elapsed", fmt.Sprintf("%.2fs", snapshot.Duration().Seconds())},
			{"Total executions", fmt.Sprintf("%d", snapshot.TotalExecutions)},
			{"Success count", fmt.Sprintf("%d", snapshot.SuccessCount)},
			{"Failure count", fmt.Sprintf("%d", snapshot.FailureCount)},
			{"Dropped count", fmt.Sprintf("%d", snapshot.DroppedCount)},
			{"Rejected count", fmt.Sprintf("%d", snapshot.RejectedCount)},
			{"Success rate", fmt.Sprintf("%.2f%%", snapshot.SuccessRate)},
			{"Response TPS", fmt.Sprintf("%.2f", snapshot.ResponseTps)},
			{"Queue size", fmt.Sprintf("%d", snapshot.QueueSize)},
		},
		Success:   percentileHTMLRows(snapshot.SuccessLatencyNanos),
		Failure:   percentileHTMLRows(snapshot.FailureLatencyNanos),
		QueueWait: percentileHTMLRows(snapshot.QueueWaitNanos),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}

	if h.Path == "" {
		return nil
	}

	path := filepath.Clean(expandPathTemplate(h.Path))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing HTML report: %w", err)
	}
	return nil
}

func percentileHTMLRows(nanos map[float64]int64) []htmlRow {
	keys := make([]float64, 0, len(nanos))
	for k := range nanos {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	rows := make([]htmlRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, htmlRow{percentileLabel(k, true), fmt.Sprintf("%.2f ms", LatencyMs(nanos[k]))})
	}
	return rows
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.7rem; text-align: left; }
h2 { margin-top: 2rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated at {{.GeneratedAt}}</p>
<h2>Summary</h2>
<table>
{{range .Summary}}<tr><td>{{.Metric}}</td><td>{{.Value}}</td></tr>
{{end}}
</table>
<h2>Success latency</h2>
<table>
{{range .Success}}<tr><td>{{.Metric}}</td><td>{{.Value}}</td></tr>
{{end}}
</table>
<h2>Failure latency</h2>
<table>
{{range .Failure}}<tr><td>{{.Metric}}</td><td>{{.Value}}</td></tr>
{{end}}
</table>
<h2>Queue wait</h2>
<table>
{{range .QueueWait}}<tr><td>{{.Metric}}</td><td>{{.Value}}</td></tr>
{{end}}
</table>
</body>
</html>
`))
