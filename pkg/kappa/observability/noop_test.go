package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordFilterDecision(ctx, "ElectronTriggerMatchingFilter", true)
		m.RecordFilterDecision(ctx, "", false)
		m.RecordTagDecision(ctx, "b", false, true)
		m.RecordRun(ctx, 10, time.Second, nil)
		m.RecordRun(ctx, 0, 0, errors.New("boom"))
	})
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	runCtx, run := sm.StartRunSpan(ctx, "run-1", 5)
	assert.Equal(t, ctx, runCtx)
	assert.False(t, run.IsRecording())

	workerCtx, worker := sm.StartWorkerSpan(runCtx, 0, 42)
	assert.Equal(t, ctx, workerCtx)
	assert.False(t, worker.SpanContext().IsValid())

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(worker, errors.New("failed"))
		sm.EndSpanWithError(run, nil)
	})
}
