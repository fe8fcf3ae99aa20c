package metrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
)

// ANSI color codes, used sparingly for pass/fail coloring.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBold  = "\033[1m"
)

// ConsoleExporter prints a Snapshot summary to an io.Writer. The engine
// runs it once, at the end of the run.
type ConsoleExporter struct {
	// Writer is the output destination. Defaults to os.Stdout.
	Writer io.Writer

	// UseColors enables ANSI color codes. The zero value is false;
	// config.BuildExporters sets it to true unless useColors is false.
	UseColors bool
}

// Export implements Exporter.
func (c *ConsoleExporter) Export(_ context.Context, title string, snapshot Snapshot, _ RunContext) error {
	w := c.Writer
	if w == nil {
		w = os.Stdout
	}

	successColor, resetColor := "", ""
	if c.UseColors {
		resetColor = colorReset
		if snapshot.SuccessRate >= 99 {
			successColor = colorGreen
		} else if snapshot.SuccessRate < 95 {
			successColor = colorRed
		}
	}

	fmt.Fprintf(w, "%s%s%s\n", colorBoldIf(c.UseColors), title, resetColor)
	fmt.Fprintf(w, "  elapsed:     %.1fs\n", snapshot.Duration().Seconds())
	fmt.Fprintf(w, "  executions:  %d (success %d, failure %d, dropped %d, rejected %d)\n",
		snapshot.TotalExecutions, snapshot.SuccessCount, snapshot.FailureCount,
		snapshot.DroppedCount, snapshot.RejectedCount)
	fmt.Fprintf(w, "  success rate: %s%.2f%%%s\n", successColor, snapshot.SuccessRate, resetColor)
	fmt.Fprintf(w, "  response tps: %.2f (success %.2f, failure %.2f)\n",
		snapshot.ResponseTps, snapshot.SuccessTps, snapshot.FailureTps)
	fmt.Fprintf(w, "  queue size:  %d\n", snapshot.QueueSize)
	printPercentiles(w, "  success latency:", snapshot.SuccessLatencyNanos)
	printPercentiles(w, "  failure latency:", snapshot.FailureLatencyNanos)
	printPercentiles(w, "  queue wait:     ", snapshot.QueueWaitNanos)

	return nil
}

func printPercentiles(w io.Writer, label string, nanos map[float64]int64) {
	if len(nanos) == 0 {
		fmt.Fprintf(w, "%s N/A\n", label)
		return
	}
	keys := make([]float64, 0, len(nanos))
	for k := range nanos {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	fmt.Fprintf(w, "%s", label)
	for _, k := range keys {
		fmt.Fprintf(w, " %s=%.2fms", percentileLabel(k, true), LatencyMs(nanos[k]))
	}
	fmt.Fprintln(w)
}

func colorBoldIf(enabled bool) string {
	if enabled {
		return colorBold
	}
	return ""
}
