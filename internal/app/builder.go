package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/composable-com/ct-connect-akeneo/internal/api"
	"github.com/composable-com/ct-connect-akeneo/internal/app/storage"
	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
	"github.com/composable-com/ct-connect-akeneo/internal/reconcile"
	"github.com/composable-com/ct-connect-akeneo/internal/service"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
	pkgsync "github.com/composable-com/ct-connect-akeneo/internal/sync"
	"github.com/composable-com/ct-connect-akeneo/internal/sync/coordinator"
	"github.com/composable-com/ct-connect-akeneo/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 45 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	syncTracerName = "github.com/composable-com/ct-connect-akeneo/sync"
)

// SyncAppOptions is a function that configures the sync app builder
type SyncAppOptions func(*syncAppConfig) error

// syncAppConfig collects what NewSyncApp needs. It supports dependency
// injection for testing while providing sensible defaults for production.
type syncAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	storageFactory storage.Factory
	processor      coordinator.Processor
	commerceClient *commerce.Client
	pimClient      *pim.Client

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	telemetry *telemetry.Telemetry
}

func baseConfig(opts ...SyncAppOptions) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return cfg, nil
}

// NewSyncApp wires the clients, the store, the sync engine, the service and
// the HTTP server from the configuration.
func NewSyncApp(
	ctx context.Context,
	opts ...SyncAppOptions,
) (*SyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if err := buildClients(cfg); err != nil {
		return nil, err
	}

	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config,
			storage.WithCustomObjectClient(cfg.commerceClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	// Ensure cleanup happens on error
	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	recordStore, err := cfg.storageFactory.CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	syncCoordinator, err := buildSyncComponents(cfg, recordStore)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	var launcher service.Launcher
	if syncCoordinator != nil {
		launcher = syncCoordinator
	}
	svc := buildServiceComponents(cfg, recordStore, launcher)

	httpServer, err := buildHTTPServer(cfg, svc, launcher)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	cancelFunc := func() {
		cfg.storageFactory.Cleanup()
		cancel()
	}

	return &SyncApp{
		config: cfg.config,
		components: &AppComponents{
			SyncCoordinator: syncCoordinator,
			Processor:       cfg.processor,
			SyncService:     svc,
			Store:           recordStore,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithProcessor allows injecting a custom processor (for testing)
func WithProcessor(p coordinator.Processor) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.processor = p
		return nil
	}
}

// WithTelemetry instruments the sync runs and the HTTP server
func WithTelemetry(t *telemetry.Telemetry) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

func buildClients(b *syncAppConfig) error {
	var err error
	if b.commerceClient == nil {
		b.commerceClient, err = NewCommerceClient(b.config)
		if err != nil {
			return fmt.Errorf("failed to create commerce client: %w", err)
		}
	}
	if b.pimClient == nil && b.processor == nil {
		b.pimClient, err = NewPIMClient(b.config)
		if err != nil {
			return fmt.Errorf("failed to create PIM client: %w", err)
		}
	}
	return nil
}

func (b *syncAppConfig) tracer() trace.Tracer {
	if b.telemetry == nil {
		return nil
	}
	return b.telemetry.Tracer(syncTracerName)
}

// buildSyncComponents builds the processor and, when enabled, the coordinator
func buildSyncComponents(b *syncAppConfig, s store.Store) (coordinator.Coordinator, error) {
	slog.Info("Initializing sync components")

	if b.processor == nil {
		settings, err := SyncSettings(b.config)
		if err != nil {
			return nil, err
		}

		var syncMetrics *telemetry.SyncMetrics
		if b.telemetry != nil {
			syncMetrics = b.telemetry.SyncMetrics()
		}

		pipeline := reconcile.NewPipeline(b.pimClient, b.commerceClient, reconcile.Options{
			SetPublishedToModified: b.config.GetSync().SetPublishedToModified,
		})

		var loopOpts []pkgsync.Option
		var procOpts []coordinator.ProcessorOption
		if syncMetrics != nil {
			loopOpts = append(loopOpts, pkgsync.WithMetrics(syncMetrics))
			procOpts = append(procOpts, coordinator.WithProcessorMetrics(syncMetrics))
			slog.Info("Sync metrics enabled")
		}
		if tracer := b.tracer(); tracer != nil {
			loopOpts = append(loopOpts, pkgsync.WithTracer(tracer))
			procOpts = append(procOpts, coordinator.WithProcessorTracer(tracer))
		}

		loop := pkgsync.NewLoop(b.pimClient, pipeline, settings, loopOpts...)
		b.processor = coordinator.NewProcessor(s, b.pimClient, loop, settings, procOpts...)
	}

	if !b.config.IsCoordinatorEnabled() {
		slog.Info("Background sync trigger disabled")
		return nil, nil
	}

	kinds := make([]jobstatus.Kind, 0, len(b.config.GetCoordinatorKinds()))
	for _, raw := range b.config.GetCoordinatorKinds() {
		kind, err := jobstatus.ParseKind(raw)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	syncCoordinator := coordinator.New(b.processor,
		coordinator.WithInterval(coordinator.ParseInterval(b.config.GetCoordinatorInterval())),
		coordinator.WithKinds(kinds...),
	)
	slog.Info("Sync components initialized successfully")

	return syncCoordinator, nil
}

// buildServiceComponents builds the sync service
func buildServiceComponents(b *syncAppConfig, s store.Store, launcher service.Launcher) service.Service {
	opts := []service.Option{}
	if launcher != nil {
		opts = append(opts, service.WithLauncher(launcher))
	}
	if b.telemetry != nil {
		opts = append(opts, service.WithTracer(b.telemetry.Tracer(service.TracerName)))
	}
	return service.New(s, opts...)
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(
	b *syncAppConfig,
	svc service.Service,
	launcher service.Launcher,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	serverOpts := []api.ServerOption{}
	if launcher != nil {
		serverOpts = append(serverOpts, api.WithLauncher(launcher))
	}

	if b.telemetry != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.telemetry.MeterProvider())
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		// Outermost so that every request is measured
		b.middlewares = append([]func(http.Handler) http.Handler{
			telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
			metricsMiddleware,
		}, b.middlewares...)

		if h := b.telemetry.MetricsHandler(); h != nil {
			serverOpts = append(serverOpts, api.WithMetricsHandler(h))
		}
		slog.Info("HTTP telemetry middleware enabled")
	}

	serverOpts = append(serverOpts, api.WithMiddlewares(b.middlewares...))
	router := api.NewServer(svc, serverOpts...)

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server, nil
}

func parseDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
