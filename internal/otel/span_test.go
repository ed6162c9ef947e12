package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func recordingTracer(t *testing.T) (*tracetest.InMemoryExporter, trace.Tracer) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp.Tracer("sync-test")
}

func TestStartSpan(t *testing.T) {
	t.Parallel()

	t.Run("nil tracer yields a no-op span", func(t *testing.T) {
		t.Parallel()

		ctx, span := StartSpan(context.Background(), nil, "sync.page")
		require.NotNil(t, ctx)
		assert.False(t, span.SpanContext().IsValid())
		assert.NotPanics(t, func() { span.End() })
	})

	t.Run("tracer records name and attributes", func(t *testing.T) {
		t.Parallel()

		exporter, tracer := recordingTracer(t)
		_, span := StartSpan(context.Background(), tracer, "sync.page",
			trace.WithAttributes(AttrSyncKind.String("delta"), AttrPageSize.Int(5)),
		)
		assert.True(t, span.SpanContext().IsValid())
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "sync.page", spans[0].Name)
		assert.Contains(t, spans[0].Attributes, AttrSyncKind.String("delta"))
		assert.Contains(t, spans[0].Attributes, AttrPageSize.Int(5))
	})
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { RecordError(nil, errors.New("x")) })
	assert.NotPanics(t, func() { RecordError(nil, nil) })

	exporter, tracer := recordingTracer(t)

	_, ok := tracer.Start(context.Background(), "ok")
	RecordError(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	RecordError(failed, errors.New("token rejected for user admin"))
	failed.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)

	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "operation failed", spans[1].Status.Description)
	require.NotEmpty(t, spans[1].Events)
	assert.Equal(t, "exception", spans[1].Events[0].Name)
}
