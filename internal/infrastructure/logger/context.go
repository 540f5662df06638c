package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	ctxLogger contextKey = iota
	ctxRequestID
	ctxRunID
)

// WithContext attaches a logger to the context.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLogger, l)
}

// FromContext returns the context logger, or a no-op logger when none was
// attached. Callers never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxLogger).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the HTTP request ID and returns a logger enriched
// with it, attached to the returned context.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ctxRequestID, requestID)
	enriched := l.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithRunID stores the report run ID and returns a logger enriched with it,
// attached to the returned context. Every log line produced inside a report
// run carries the run it belongs to.
func WithRunID(ctx context.Context, l *zap.Logger, runID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ctxRunID, runID)
	enriched := l.With(zap.String("run_id", runID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID returns the request ID stored by WithRequestID, if any.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// GetRunID returns the run ID stored by WithRunID, if any.
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(ctxRunID).(string)
	return id
}
