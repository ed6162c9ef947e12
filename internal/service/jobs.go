package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/otel"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

// TracerName is the name used for the service tracer
const TracerName = "github.com/composable-com/ct-connect-akeneo/service"

// Option configures the service
type Option func(*syncService)

// WithLauncher starts scheduled jobs right away instead of on the next tick
func WithLauncher(l Launcher) Option {
	return func(s *syncService) {
		s.launcher = l
	}
}

// WithTracer sets the tracer for the service operations
func WithTracer(tracer trace.Tracer) Option {
	return func(s *syncService) {
		s.tracer = tracer
	}
}

type syncService struct {
	store    store.Store
	configs  *jobstatus.ConfigStore
	launcher Launcher
	tracer   trace.Tracer
}

// New creates a service keeping its records in s
func New(s store.Store, opts ...Option) Service {
	svc := &syncService{
		store:   s,
		configs: jobstatus.NewConfigStore(s),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *syncService) handler(kind jobstatus.Kind) (*jobstatus.Handler, error) {
	if kind != jobstatus.KindFull && kind != jobstatus.KindDelta {
		return nil, fmt.Errorf("%w: %s", ErrNotAJob, kind)
	}
	return jobstatus.NewHandler(s.store, kind), nil
}

func (s *syncService) startSpan(ctx context.Context, name string, kind jobstatus.Kind) (context.Context, trace.Span) {
	var opts []trace.SpanStartOption
	if kind != "" {
		opts = append(opts, trace.WithAttributes(otel.AttrSyncKind.String(string(kind))))
	}
	return otel.StartSpan(ctx, s.tracer, name, opts...)
}

// CheckReadiness reads the config record to check the store is reachable
func (s *syncService) CheckReadiness(ctx context.Context) error {
	if _, err := s.configs.Load(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// CheckStatus returns the current status of a job
func (s *syncService) CheckStatus(ctx context.Context, kind jobstatus.Kind) (*jobstatus.JobStatus, error) {
	ctx, span := s.startSpan(ctx, "service.CheckStatus", kind)
	defer span.End()

	h, err := s.handler(kind)
	if err != nil {
		return nil, err
	}
	status, err := h.Check(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return status, nil
}

// LaunchIfReady schedules the job from idle, stopped or scheduled. A
// resumable job keeps its cursor and is handed to the launcher as is.
func (s *syncService) LaunchIfReady(ctx context.Context, kind jobstatus.Kind) (jobstatus.State, error) {
	ctx, span := s.startSpan(ctx, "service.LaunchIfReady", kind)
	defer span.End()

	h, err := s.handler(kind)
	if err != nil {
		return "", err
	}
	status, err := h.Check(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return "", err
	}

	switch status.Status {
	case jobstatus.StateIdle, jobstatus.StateStopped, jobstatus.StateScheduled:
	case jobstatus.StateResumable:
		slog.Info("Resuming parked job", "kind", kind)
		s.trigger(kind)
		return status.Status, nil
	default:
		slog.Debug("Job not launched", "kind", kind, "status", status.Status)
		return status.Status, nil
	}

	if err := h.Start(ctx); err != nil {
		otel.RecordError(span, err)
		return "", fmt.Errorf("failed to schedule %s sync: %w", kind, err)
	}
	slog.Info("Job scheduled", "kind", kind, "previous", status.Status)

	s.trigger(kind)
	return jobstatus.StateScheduled, nil
}

func (s *syncService) trigger(kind jobstatus.Kind) {
	if s.launcher != nil && !s.launcher.Trigger(kind) {
		slog.Debug("Job already processing in this instance", "kind", kind)
	}
}

// RequestStop stops the job unless a stop is already pending
func (s *syncService) RequestStop(ctx context.Context, kind jobstatus.Kind) (jobstatus.State, error) {
	ctx, span := s.startSpan(ctx, "service.RequestStop", kind)
	defer span.End()

	h, err := s.handler(kind)
	if err != nil {
		return "", err
	}
	status, err := h.Check(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return "", err
	}
	if status.Status == jobstatus.StateToStop {
		return status.Status, nil
	}

	next := jobstatus.StateToStop
	if kind == jobstatus.KindFull {
		next = jobstatus.StateStopped
		err = h.Stop(ctx)
	} else {
		err = h.Cancel(ctx)
	}
	if err != nil {
		otel.RecordError(span, err)
		return "", fmt.Errorf("failed to stop %s sync: %w", kind, err)
	}
	slog.Info("Job stop requested", "kind", kind, "status", next)
	return next, nil
}

// SaveConfig validates raw and stores it next to the registered URL
func (s *syncService) SaveConfig(ctx context.Context, raw []byte) error {
	ctx, span := s.startSpan(ctx, "service.SaveConfig", jobstatus.KindAll)
	defer span.End()

	if err := mapping.Validate(raw); err != nil {
		var verr *mapping.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, verr.Err)
		}
		otel.RecordError(span, err)
		return err
	}

	_, err := s.configs.Modify(ctx, func(rec *jobstatus.SyncConfigRecord) {
		rec.Config = append(json.RawMessage(nil), raw...)
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save config: %w", err)
	}
	slog.Info("Mapping config saved")
	return nil
}

// LoadConfig returns the stored config record
func (s *syncService) LoadConfig(ctx context.Context) (*jobstatus.SyncConfigRecord, error) {
	ctx, span := s.startSpan(ctx, "service.LoadConfig", jobstatus.KindAll)
	defer span.End()

	rec, err := s.configs.Load(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	return rec, nil
}

// Register records url. A config saved earlier is kept.
func (s *syncService) Register(ctx context.Context, url string) error {
	ctx, span := s.startSpan(ctx, "service.Register", jobstatus.KindAll)
	defer span.End()

	_, err := s.configs.Modify(ctx, func(rec *jobstatus.SyncConfigRecord) {
		rec.URL = url
		if !rec.HasConfig() {
			rec.Config = json.RawMessage(`""`)
		}
	})
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to register connector: %w", err)
	}
	slog.Info("Connector registered", "url", url)
	return nil
}

// Teardown deletes the job records and the config record. Every delete is
// attempted even when an earlier one fails.
func (s *syncService) Teardown(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "service.Teardown", "")
	defer span.End()

	var errs []error
	for _, kind := range []jobstatus.Kind{jobstatus.KindFull, jobstatus.KindDelta} {
		if err := jobstatus.NewHandler(s.store, kind).Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s sync status: %w", kind, err))
		}
	}
	if err := s.configs.Delete(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete sync config: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		otel.RecordError(span, err)
		return err
	}
	slog.Info("Connector records deleted")
	return nil
}
