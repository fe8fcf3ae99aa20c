package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// JSONReport is the nested object shape described in spec.md §6: a
// metadata block, a summary, queue stats, and per-outcome latency maps.
type JSONReport struct {
	Metadata JSONMetadata         `json:"metadata"`
	Summary  JSONSummary          `json:"summary"`
	Queue    JSONQueue            `json:"queue"`
	Success  map[string]float64   `json:"successLatencyMs"`
	Failure  map[string]float64   `json:"failureLatencyMs"`
	Adaptive *JSONAdaptivePattern `json:"adaptivePattern,omitempty"`
}

// JSONMetadata is the metadata block of a JSON report.
type JSONMetadata struct {
	Title          string    `json:"title"`
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds float64   `json:"elapsedSeconds"`
}

// JSONSummary is the summary block of a JSON report.
type JSONSummary struct {
	TotalExecutions int64   `json:"totalExecutions"`
	SuccessCount    int64   `json:"successCount"`
	FailureCount    int64   `json:"failureCount"`
	DroppedCount    int64   `json:"droppedCount"`
	RejectedCount   int64   `json:"rejectedCount"`
	SuccessRate     float64 `json:"successRate"`
	SuccessTps      float64 `json:"successTps"`
	FailureTps      float64 `json:"failureTps"`
	ResponseTps     float64 `json:"responseTps"`
}

// JSONQueue is the queue block of a JSON report.
type JSONQueue struct {
	Size        int64              `json:"size"`
	WaitTimeMs  map[string]float64 `json:"waitTimeMs"`
}

// JSONAdaptivePattern is the optional adaptive-pattern block, populated by
// callers that ran an adaptive pattern.
type JSONAdaptivePattern struct {
	Phase             string  `json:"phase"`
	PhaseOrdinal      int     `json:"phaseOrdinal"`
	CurrentTps        float64 `json:"currentTps"`
	StableTps         float64 `json:"stableTps,omitempty"`
	PhaseTransitions  int     `json:"phaseTransitions"`
}

// JSONExporter writes Snapshots as nested JSON reports, using lowercase
// "p{n}" percentile keys.
type JSONExporter struct {
	// Path is the output file path. Supports {{.Timestamp}}, {{.Date}},
	// {{.Time}} template variables, matching the teacher's
	// expandPathTemplate.
	Path string

	// Adaptive, if set, is consulted to populate the optional
	// adaptivePattern block.
	Adaptive func() *JSONAdaptivePattern
}

// Export implements Exporter.
func (e *JSONExporter) Export(_ context.Context, title string, snapshot Snapshot, _ RunContext) error {
	report := e.buildReport(title, snapshot)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON report: %w", err)
	}

	if e.Path == "" {
		return nil
	}

	path := filepath.Clean(expandPathTemplate(e.Path))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing JSON report: %w", err)
	}
	return nil
}

func (e *JSONExporter) buildReport(title string, snapshot Snapshot) JSONReport {
	report := JSONReport{
		Metadata: JSONMetadata{
			Title:          title,
			Timestamp:      time.Now().UTC(),
			ElapsedSeconds: snapshot.Duration().Seconds(),
		},
		Summary: JSONSummary{
			TotalExecutions: snapshot.TotalExecutions,
			SuccessCount:    snapshot.SuccessCount,
			FailureCount:    snapshot.FailureCount,
			DroppedCount:    snapshot.DroppedCount,
			RejectedCount:   snapshot.RejectedCount,
			SuccessRate:     snapshot.SuccessRate,
			SuccessTps:      snapshot.SuccessTps,
			FailureTps:      snapshot.FailureTps,
			ResponseTps:     snapshot.ResponseTps,
		},
		Queue: JSONQueue{
			Size:       snapshot.QueueSize,
			WaitTimeMs: msMap(snapshot.QueueWaitNanos),
		},
		Success: msMap(snapshot.SuccessLatencyNanos),
		Failure: msMap(snapshot.FailureLatencyNanos),
	}

	if e.Adaptive != nil {
		report.Adaptive = e.Adaptive()
	}

	return report
}

// msMap converts a nanosecond percentile map to a "p{n}"-keyed
// millisecond map, e.g. 0.95 -> "p95", 0.999 -> "p99.9".
func msMap(nanos map[float64]int64) map[string]float64 {
	result := make(map[string]float64, len(nanos))
	for pct, v := range nanos {
		result[percentileLabel(pct, false)] = LatencyMs(v)
	}
	return result
}

// percentileLabel formats a percentile key as "P{n}" (CSV style,
// uppercase) or "p{n}" (JSON style, lowercase), with trailing zeros
// stripped from n.
func percentileLabel(pct float64, upper bool) string {
	n := pct * 100
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if upper {
		return "P" + s
	}
	return "p" + s
}

// expandPathTemplate expands {{.Timestamp}}, {{.Date}}, {{.Time}} in path.
func expandPathTemplate(path string) string {
	now := time.Now()
	replacements := map[string]string{
		"{{.Timestamp}}": now.Format("20060102-150405"),
		"{{.Date}}":      now.Format("2006-01-02"),
		"{{.Time}}":      now.Format("150405"),
	}
	result := path
	for tmpl, value := range replacements {
		result = strings.ReplaceAll(result, tmpl, value)
	}
	return result
}
