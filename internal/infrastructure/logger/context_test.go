package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestWithContext(t *testing.T) {
	t.Run("round-trips the logger", func(t *testing.T) {
		l, _ := observedLogger()
		ctx := WithContext(context.Background(), l)

		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("missing logger yields no-op", func(t *testing.T) {
		got := FromContext(context.Background())

		assert.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("dropped") })
	})
}

func TestWithRequestID(t *testing.T) {
	l, logs := observedLogger()

	ctx, enriched := WithRequestID(context.Background(), l, "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Empty(t, GetRunID(ctx))

	enriched.Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
}

func TestWithRunID(t *testing.T) {
	l, logs := observedLogger()

	ctx, enriched := WithRunID(context.Background(), l, "run-42")

	assert.Equal(t, "run-42", GetRunID(ctx))

	enriched.Info("working")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "run-42", logs.All()[0].ContextMap()["run_id"])

	t.Run("context logger carries the id too", func(t *testing.T) {
		FromContext(ctx).Info("still working")
		assert.Equal(t, "run-42", logs.All()[logs.Len()-1].ContextMap()["run_id"])
	})
}
