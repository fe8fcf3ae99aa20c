package metrics

import (
	"context"
	"time"
)

// SystemInfo is opaque run metadata describing the host a run executed on.
type SystemInfo struct {
	GoVersion           string
	OSName              string
	OSArch              string
	Hostname            string
	AvailableProcessors int
}

// RunContext carries metadata identifying a single run, passed to every
// exporter alongside a Snapshot.
type RunContext struct {
	RunID           string
	TaskClass       string
	LoadPatternType string
	StartTime       time.Time
	System          SystemInfo
}

// Exporter consumes a Snapshot and a RunContext. Exporter failures are
// isolated: one exporter's error does not stop the others from running
// (see SPEC_FULL.md §4.A / spec.md §7).
type Exporter interface {
	Export(ctx context.Context, title string, snapshot Snapshot, runCtx RunContext) error
}

// ExportAll runs every exporter, collecting (not short-circuiting on)
// errors so a failure in one does not prevent the others from running.
func ExportAll(ctx context.Context, exporters []Exporter, title string, snapshot Snapshot, runCtx RunContext) []error {
	var errs []error
	for _, e := range exporters {
		if err := e.Export(ctx, title, snapshot, runCtx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
