package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	tenantIDKey  contextKey = "tenant_id"
	userIDKey    contextKey = "user_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request logger, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and enriches the context logger
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return enrich(context.WithValue(ctx, requestIDKey, requestID), zap.String("request_id", requestID))
}

// WithTenantID stores the tenant ID and enriches the context logger
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return enrich(context.WithValue(ctx, tenantIDKey, tenantID), zap.String("tenant_id", tenantID))
}

// WithUserID stores the user ID and enriches the context logger
func WithUserID(ctx context.Context, userID string) context.Context {
	return enrich(context.WithValue(ctx, userIDKey, userID), zap.String("user_id", userID))
}

func enrich(ctx context.Context, field zap.Field) context.Context {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return WithContext(ctx, l.With(field))
	}
	return ctx
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func GetTenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDKey).(string)
	return v
}

func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// GetTraceID returns the trace ID of the active span, or ""
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// L returns the context logger with the current trace and span IDs attached.
//
//	logger.L(ctx).Info("order placed", zap.String("number", o.Number))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		l = l.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
