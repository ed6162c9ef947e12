package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Telemetry owns the trace and metric providers of one sync server together
// with the sync instruments created on them.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	registry       *prometheus.Registry
	syncMetrics    *SyncMetrics

	shutdown     []shutdownFunc
	shutdownOnce sync.Once
	shutdownErr  error
}

// Disabled returns telemetry backed by no-op providers.
func Disabled() *Telemetry {
	return &Telemetry{
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
}

// New sets up tracing and metrics from cfg. A nil or disabled cfg yields
// Disabled(). Call Shutdown before exiting to flush pending data.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if cfg == nil || !cfg.Enabled {
		slog.Debug("Telemetry disabled")
		return Disabled(), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	slog.Info("Initializing telemetry",
		"service_name", cfg.GetServiceName(),
		"service_version", cfg.GetServiceVersion(),
	)

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	t := &Telemetry{}
	tp, stopTracing, err := newTracerProvider(ctx, res, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	t.tracerProvider = tp
	t.shutdown = append(t.shutdown, stopTracing)

	meters, err := newMeterProvider(ctx, res, cfg)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}
	t.meterProvider = meters.provider
	t.registry = meters.registry
	t.shutdown = append(t.shutdown, meters.shutdown)

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		t.syncMetrics, err = NewSyncMetrics(t.meterProvider)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create sync metrics: %w", err)
		}
	}
	return t, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// Tracer returns a named tracer from the tracer provider
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.tracerProvider.Tracer(name, opts...)
}

// SyncMetrics returns the batch sync instruments, nil when metrics are disabled.
func (t *Telemetry) SyncMetrics() *SyncMetrics {
	return t.syncMetrics
}

// MetricsHandler returns the scrape handler for the prometheus exporter, or
// nil when metrics are pushed over OTLP or disabled.
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes the providers, meters first. Later calls return the result
// of the first one.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		var errs []error
		for i := len(t.shutdown) - 1; i >= 0; i-- {
			if err := t.shutdown[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		t.shutdownErr = errors.Join(errs...)
		if t.shutdownErr == nil && len(t.shutdown) > 0 {
			slog.Info("Telemetry shutdown complete")
		}
	})
	return t.shutdownErr
}
