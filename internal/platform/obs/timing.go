package obs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

const tracerName = "shipment-dispatch-service"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Start opens a span named op and returns a finisher that logs the duration
// and records *errp on the span.
func Start(ctx context.Context, op string) (context.Context, func(errp *error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	reqID := RequestID(ctx)

	return ctx, func(errp *error) {
		defer span.End()
		dur := time.Since(start)

		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("op", op),
			zap.Int64("dur_ms", dur.Milliseconds()),
		}

		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
			Logger(ctx).Info("op failed", append(fields, zap.Error(*errp))...)
			return
		}
		Logger(ctx).Debug("op done", fields...)
	}
}

// Time is Start for callers that do not need the span context.
func Time(ctx context.Context, op string) func(errp *error) {
	_, done := Start(ctx, op)
	return done
}

// SpanFromContext exposes the active span so callers can add attributes.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
