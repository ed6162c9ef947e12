package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/otel"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
	pkgsync "github.com/composable-com/ct-connect-akeneo/internal/sync"
	"github.com/composable-com/ct-connect-akeneo/internal/telemetry"
)

// Process outcome reasons
const (
	ReasonIdle              = "sync-idle"
	ReasonAlreadyInProgress = "sync-already-in-progress"
	ReasonStopRequested     = "sync-stop-requested"
	ReasonNotReady          = "sync-not-ready"
	ReasonNoConfig          = "no-config"
	ReasonStarted           = "sync-started"
	ReasonResumed           = "sync-resumed"
)

// Result describes what a Process call did.
type Result struct {
	Kind   jobstatus.Kind
	Reason string
	// Summary is set when a run was executed.
	Summary *pkgsync.Summary
}

// Ran reports whether a run was executed.
func (r *Result) Ran() bool {
	return r.Reason == ReasonStarted || r.Reason == ReasonResumed
}

// Counter counts the products a run will walk.
type Counter interface {
	CountProducts(ctx context.Context, params pim.ListParams) (int, error)
}

// Runner executes a sync run.
type Runner interface {
	Run(ctx context.Context, p pkgsync.RunParams) (*pkgsync.Summary, error)
}

// Processor runs a sync job of one kind if its status allows it.
//
//go:generate mockgen -destination=mocks/mock_processor.go -package=mocks -source=processor.go Processor
type Processor interface {
	Process(ctx context.Context, kind jobstatus.Kind) (*Result, error)
}

// ProcessorOption configures the processor.
type ProcessorOption func(*defaultProcessor)

// WithProcessorMetrics records run durations.
func WithProcessorMetrics(m *telemetry.SyncMetrics) ProcessorOption {
	return func(p *defaultProcessor) {
		p.metrics = m
	}
}

// WithProcessorTracer creates a span per run.
func WithProcessorTracer(t trace.Tracer) ProcessorOption {
	return func(p *defaultProcessor) {
		p.tracer = t
	}
}

// WithProcessorClock overrides the clock.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *defaultProcessor) {
		p.now = now
	}
}

type defaultProcessor struct {
	store    store.Store
	configs  *jobstatus.ConfigStore
	counter  Counter
	runner   Runner
	settings pkgsync.Settings
	metrics  *telemetry.SyncMetrics
	tracer   trace.Tracer
	now      func() time.Time
}

// NewProcessor creates a processor keeping job status in s.
func NewProcessor(
	s store.Store,
	counter Counter,
	runner Runner,
	settings pkgsync.Settings,
	opts ...ProcessorOption,
) Processor {
	p := &defaultProcessor{
		store:    s,
		configs:  jobstatus.NewConfigStore(s),
		counter:  counter,
		runner:   runner,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process gates on the job status, loads the mapping config, moves the job to
// running and runs it to the end of the listing, the time budget, or a stop.
// Lifecycle conflicts and a missing config are not errors.
func (p *defaultProcessor) Process(ctx context.Context, kind jobstatus.Kind) (*Result, error) {
	h := jobstatus.NewHandler(p.store, kind)
	result := &Result{Kind: kind}

	status, err := h.Check(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case status.Status == jobstatus.StateIdle:
		result.Reason = ReasonIdle
		return result, nil
	case jobstatus.IsInProgress(status.Status):
		slog.Debug("Sync already in progress", "kind", kind, "status", status.Status)
		result.Reason = ReasonAlreadyInProgress
		return result, nil
	case status.Status == jobstatus.StateToStop:
		_, err := h.UpdateFrom(ctx, jobstatus.StateToStop, jobstatus.ToStopped(nil, p.now()))
		if errors.Is(err, jobstatus.ErrConcurrentUpdate) {
			result.Reason = ReasonAlreadyInProgress
			return result, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stop %s sync: %w", kind, err)
		}
		slog.Info("Sync stopped", "kind", kind)
		result.Reason = ReasonStopRequested
		return result, nil
	case !jobstatus.IsReady(status.Status):
		result.Reason = ReasonNotReady
		return result, nil
	}

	rec, err := p.configs.Load(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.HasConfig() {
		slog.Info("No config found, skipping job", "kind", kind)
		result.Reason = ReasonNoConfig
		return result, nil
	}
	cfg, err := rec.Mapping()
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// read before the status moves to running, which drops the cursor
	cursor := status.LastCursor
	updatedAfter := p.now().Add(-p.settings.DeltaLookback)
	if status.LastSyncDate != nil {
		updatedAfter = *status.LastSyncDate
	}
	isDelta := kind == jobstatus.KindDelta

	var failures []jobstatus.SyncError
	if status.Status == jobstatus.StateResumable {
		failures = status.FailedSyncs
		result.Reason = ReasonResumed
		_, err = h.UpdateFrom(ctx, status.Status, jobstatus.ToRunning(nil))
	} else {
		cursor = nil
		var filter *time.Time
		if isDelta {
			filter = &updatedAfter
		}
		total, countErr := p.counter.CountProducts(ctx, p.settings.ListParams(cfg, filter))
		if countErr != nil {
			return nil, fmt.Errorf("failed to count products: %w", countErr)
		}
		result.Reason = ReasonStarted
		_, err = h.UpdateFrom(ctx, status.Status, jobstatus.ToRunning(&total))
	}
	if errors.Is(err, jobstatus.ErrConcurrentUpdate) {
		slog.Info("Sync was started concurrently", "kind", kind)
		result.Reason = ReasonAlreadyInProgress
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start %s sync: %w", kind, err)
	}

	start := p.now()
	ctx, span := otel.StartSpan(ctx, p.tracer, "sync.run",
		trace.WithAttributes(
			otel.AttrSyncKind.String(string(kind)),
			otel.AttrRunID.String(RunIDFromContext(ctx)),
		))
	defer span.End()

	slog.Info("Sync run starting",
		"kind", kind,
		"reason", result.Reason,
		"run_id", RunIDFromContext(ctx),
		"resume", cursor != nil)

	summary, err := p.runner.Run(ctx, pkgsync.RunParams{
		Kind:           kind,
		Cursor:         cursor,
		UpdatedAfter:   updatedAfter,
		IsDelta:        isDelta,
		Config:         cfg,
		Failures:       failures,
		ShouldContinue: pkgsync.NewContinuation(h, p.settings, p.now),
		Checkpoint:     pkgsync.NewCheckpoint(h, kind, start, p.settings, p.now),
	})
	p.metrics.RecordRun(ctx, string(kind), p.now().Sub(start), err == nil)
	result.Summary = summary
	if err != nil {
		otel.RecordError(span, err)
		if summary != nil {
			p.park(context.WithoutCancel(ctx), h, summary)
		}
		return result, fmt.Errorf("%s sync run failed: %w", kind, err)
	}
	return result, nil
}

// park leaves a failed run resumable at the page it would have fetched next,
// or scheduled when no page was fetched yet. A job that left the running
// state meanwhile is not touched.
func (p *defaultProcessor) park(ctx context.Context, h *jobstatus.Handler, summary *pkgsync.Summary) {
	patch := jobstatus.ToScheduled(summary.Failed)
	if summary.Cursor != nil {
		patch = jobstatus.ToResumable(*summary.Cursor, summary.Failed)
	}
	_, err := h.UpdateFrom(ctx, jobstatus.StateRunning, patch)
	if errors.Is(err, jobstatus.ErrConcurrentUpdate) {
		slog.Info("Failed sync run no longer running, not parking", "kind", h.Kind())
		return
	}
	if err != nil {
		slog.Error("Failed to park sync run", "kind", h.Kind(), "error", err)
		return
	}
	slog.Info("Parked failed sync run", "kind", h.Kind(), "resumable", summary.Cursor != nil)
}

type runIDKey struct{}

// ContextWithRunID tags ctx with the id of the run it drives.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id of ctx, empty when untagged.
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
