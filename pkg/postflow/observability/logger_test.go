package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCapturedLogger returns a debug-level logger writing JSON to buf.
func newCapturedLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, buf
}

// TestLogHelpers_NilLoggerSafe tests every helper tolerates nil.
func TestLogHelpers_NilLoggerSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRunStart(nil, "r", "t", "p", "tone")
		LogRunComplete(nil, "r", "full", 1)
		LogRunError(nil, "r", "research", errors.New("x"), 1)
		LogStageStart(nil, "research")
		LogStageComplete(nil, "research", 1)
		LogStageError(nil, "research", errors.New("x"))
		LogStageDegraded(nil, "image", errors.New("x"))
		LogNotifierPanic(nil, "image", "boom")
		LogArtifactSaved(nil, "static/images/x.png", 1)
		assert.Nil(t, EnrichLogger(nil, "r", "s"))
	})
}

// TestLogRunStart tests run context fields are emitted.
func TestLogRunStart(t *testing.T) {
	logger, buf := newCapturedLogger()

	LogRunStart(logger, "run-1", "renewable energy", "twitter", "engaging")

	out := buf.String()
	assert.Contains(t, out, "pipeline run starting")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "renewable energy")
	assert.Contains(t, out, "twitter")
}

// TestLogStageDegraded tests absorbed failures log at warn level.
func TestLogStageDegraded(t *testing.T) {
	logger, buf := newCapturedLogger()

	LogStageDegraded(logger, "image", errors.New("render failed"))

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "continuing degraded")
	assert.Contains(t, out, "render failed")
}

// TestEnrichLogger tests contextual field attachment.
func TestEnrichLogger(t *testing.T) {
	logger, buf := newCapturedLogger()

	enriched := EnrichLogger(logger, "run-7", "content")
	require.NotNil(t, enriched)
	enriched.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "run-7")
	assert.Contains(t, out, "content")
}

// TestTimedOperation tests elapsed measurement.
func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(5 * time.Millisecond)

	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, float64(1))
}
