// Package otel provides OpenTelemetry span helpers shared by the sync engine
// and the HTTP layer.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on sync spans.
const (
	AttrSyncKind       = attribute.Key("sync.kind")
	AttrRunID          = attribute.Key("sync.run_id")
	AttrItemIdentifier = attribute.Key("item.identifier")
	AttrItemOutcome    = attribute.Key("item.outcome")
	AttrPageSize       = attribute.Key("pagination.limit")
	AttrResultCount    = attribute.Key("result.count")
	AttrHasCursor      = attribute.Key("pagination.has_cursor")
	AttrFailedCount    = attribute.Key("sync.failed_count")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed. The status message
// stays generic because upstream errors may echo credentials or payloads.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
