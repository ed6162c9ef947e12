package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// DefaultMetricsInterval is the push interval of the OTLP exporter
const DefaultMetricsInterval = 60 * time.Second

// meterSetup is what newMeterProvider hands back to New.
type meterSetup struct {
	provider metric.MeterProvider
	// registry is only set for the prometheus exporter
	registry *prometheus.Registry
	shutdown shutdownFunc
}

// newMeterProvider either pushes metrics to the collector or exposes them for
// scraping, depending on the configured exporter.
func newMeterProvider(ctx context.Context, res *resource.Resource, cfg *Config) (*meterSetup, error) {
	metrics := cfg.Metrics
	if metrics == nil || !metrics.Enabled {
		slog.Debug("Metrics disabled")
		return &meterSetup{provider: noop.NewMeterProvider(), shutdown: noopShutdown}, nil
	}

	setup := &meterSetup{}
	var reader sdkmetric.Reader
	switch metrics.GetExporter() {
	case ExporterPrometheus:
		setup.registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(setup.registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter
	default:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.GetEndpoint())}
		if cfg.GetInsecure() {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricsInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)
	setup.provider = mp
	setup.shutdown = mp.Shutdown

	slog.Info("Metrics initialized", "exporter", metrics.GetExporter(), "endpoint", cfg.GetEndpoint())
	return setup, nil
}
