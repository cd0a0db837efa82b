package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "placebook/store"

// startSpan opens a client span for a single statement against the places
// table. The returned function ends the span; ErrNotFound is not an error.
func startSpan(ctx context.Context, tracer trace.Tracer, op string) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, op+" "+tableName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.operation", op),
			attribute.String("db.sql.table", tableName),
		),
	)

	return ctx, func(err error) {
		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, ErrNotFound):
			span.SetAttributes(attribute.Bool("db.result.found", false))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
