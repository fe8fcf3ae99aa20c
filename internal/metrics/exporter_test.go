package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingExporter struct {
	failWith error
	called   bool
}

func (r *recordingExporter) Export(_ context.Context, _ string, _ Snapshot, _ RunContext) error {
	r.called = true
	return r.failWith
}

func TestExportAllIsolatesFailures(t *testing.T) {
	failing := &recordingExporter{failWith: errors.New("boom")}
	healthy := &recordingExporter{}

	errs := ExportAll(context.Background(), []Exporter{failing, healthy}, "t", testSnapshot(), RunContext{})

	assert.Len(t, errs, 1)
	assert.True(t, failing.called)
	assert.True(t, healthy.called, "a failing exporter must not prevent later exporters from running")
}

func TestExportAllReturnsNoErrorsWhenAllSucceed(t *testing.T) {
	a := &recordingExporter{}
	b := &recordingExporter{}

	errs := ExportAll(context.Background(), []Exporter{a, b}, "t", testSnapshot(), RunContext{})
	assert.Empty(t, errs)
}
