// Package telemetry provides OpenTelemetry instrumentation for the catalog sync.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/composable-com/ct-connect-akeneo/sync"

// Item results recorded by RecordItem besides the reconcile outcomes.
const (
	ItemResultFailed = "failed"
)

// SyncMetrics holds the OpenTelemetry instruments of the batch sync
type SyncMetrics struct {
	itemsTotal     metric.Int64Counter
	imagesUploaded metric.Int64Counter
	pageDuration   metric.Float64Histogram
	runDuration    metric.Float64Histogram
}

// NewSyncMetrics creates the sync instruments on provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	itemsTotal, err := meter.Int64Counter(
		"akeneo_sync_items_total",
		metric.WithDescription("Number of PIM products processed, by result"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	imagesUploaded, err := meter.Int64Counter(
		"akeneo_sync_images_uploaded_total",
		metric.WithDescription("Number of images attached to commerce variants"),
		metric.WithUnit("{image}"),
	)
	if err != nil {
		return nil, err
	}

	pageDuration, err := meter.Float64Histogram(
		"akeneo_sync_page_duration_seconds",
		metric.WithDescription("Duration of one page of the batch sync, fetch included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"akeneo_sync_run_duration_seconds",
		metric.WithDescription("Duration of sync runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 10, 30, 60, 300, 600, 900, 1500, 1800),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		itemsTotal:     itemsTotal,
		imagesUploaded: imagesUploaded,
		pageDuration:   pageDuration,
		runDuration:    runDuration,
	}, nil
}

// RecordItem counts one processed item. result is a reconcile outcome or ItemResultFailed.
func (m *SyncMetrics) RecordItem(ctx context.Context, kind, result string) {
	if m == nil || m.itemsTotal == nil {
		return
	}
	m.itemsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result),
	))
}

// RecordImages counts the images uploaded for one item.
func (m *SyncMetrics) RecordImages(ctx context.Context, kind string, uploaded int, success bool) {
	if m == nil || m.imagesUploaded == nil || uploaded == 0 && success {
		return
	}
	m.imagesUploaded.Add(ctx, int64(uploaded), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	))
}

// RecordPage records how long one page took.
func (m *SyncMetrics) RecordPage(ctx context.Context, kind string, duration time.Duration) {
	if m == nil || m.pageDuration == nil {
		return
	}
	m.pageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRun records the duration of a run and how it ended.
func (m *SyncMetrics) RecordRun(ctx context.Context, kind string, duration time.Duration, success bool) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	))
}
