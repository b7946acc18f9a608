package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsTraceIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("plain")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	WithContext(ctx, base).Info("traced")

	require.Equal(t, 2, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "trace_id")
	assert.Equal(t, sc.TraceID().String(), logs.All()[1].ContextMap()["trace_id"])
	assert.Equal(t, sc.SpanID().String(), logs.All()[1].ContextMap()["span_id"])
}

func TestBuildZapConfig(t *testing.T) {
	cfg, err := buildZapConfig(Config{Level: "warn", Format: "Console"})
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, zapcore.WarnLevel, cfg.Level.Level())

	_, err = buildZapConfig(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWithoutLifecycle(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	log, err := New(nil, Config{Level: "error", Debug: true})
	require.NoError(t, err)
	assert.Same(t, log, zap.L())
}
