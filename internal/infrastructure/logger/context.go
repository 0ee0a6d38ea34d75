package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	userIDKey     contextKey = "user_id"
	workItemIDKey contextKey = "work_item_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds the request ID to ctx and its logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, requestIDKey, requestID)
}

// WithUserID adds the acting user ID to ctx and its logger
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, userIDKey, userID)
}

// WithWorkItemID adds the background work item ID to ctx and its logger
func WithWorkItemID(ctx context.Context, logger *zap.Logger, workItemID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, workItemIDKey, workItemID)
}

func withField(ctx context.Context, logger *zap.Logger, key contextKey, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	enriched := logger.With(zap.String(string(key), value))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

// GetWorkItemID retrieves the work item ID from context
func GetWorkItemID(ctx context.Context) string {
	return stringValue(ctx, workItemIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// L returns the context's logger with trace_id and span_id added.
//
//	logger.L(ctx).Info("draft converted", zap.String("draft_id", id))
func L(ctx context.Context) *zap.Logger {
	// the context logger already carries the ids added through withField
	return withTrace(ctx, FromContext(ctx))
}

// Enrich adds the context fields to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}

	l = withTrace(ctx, l)
	for _, key := range []contextKey{requestIDKey, userIDKey, workItemIDKey} {
		if v := stringValue(ctx, key); v != "" {
			l = l.With(zap.String(string(key), v))
		}
	}
	return l
}

func withTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		return l.With(
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return l
}
