package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/mappers"
	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/otel"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
	"github.com/composable-com/ct-connect-akeneo/internal/reconcile"
	"github.com/composable-com/ct-connect-akeneo/internal/telemetry"
)

// Source lists PIM products page by page.
//
//go:generate mockgen -destination=mocks/mock_sync.go -package=mocks -source=loop.go Source,ItemSyncer,StatusHandler
type Source interface {
	ListProducts(ctx context.Context, params pim.ListParams) (*pim.Page, error)
}

// ItemSyncer reconciles a single product into the commerce catalog.
type ItemSyncer interface {
	Sync(ctx context.Context, item *pim.Product, cfg *mapping.Config) (*reconcile.Result, error)
}

// StatusHandler reads the status record of one job kind and patches it while
// it is still in an expected state.
type StatusHandler interface {
	Check(ctx context.Context) (*jobstatus.JobStatus, error)
	UpdateFrom(ctx context.Context, from jobstatus.State, patch jobstatus.Patch) (*jobstatus.JobStatus, error)
}

// ContinueFunc is asked before every page fetch with the failures collected
// so far. Returning false ends the run without fetching.
type ContinueFunc func(ctx context.Context, failed []jobstatus.SyncError) (bool, error)

// CheckpointFunc is called after every page. A nil cursor means the listing
// is exhausted. Returning ErrRunInterrupted ends the run without error.
type CheckpointFunc func(ctx context.Context, cursor *string, failed []jobstatus.SyncError) error

// RunParams drives a single run.
type RunParams struct {
	Kind jobstatus.Kind
	// Cursor resumes the listing; nil starts from the first page.
	Cursor *string
	// UpdatedAfter filters the listing when IsDelta is set.
	UpdatedAfter time.Time
	IsDelta      bool
	Config       *mapping.Config
	// Failures seeds the failure list, for runs resumed from a checkpoint.
	Failures []jobstatus.SyncError

	ShouldContinue ContinueFunc
	Checkpoint     CheckpointFunc
}

// Summary describes how a run ended.
type Summary struct {
	Pages  int
	Items  int
	Failed []jobstatus.SyncError
	// Cursor is the page the run would have fetched next, nil when it
	// started from the first page or completed.
	Cursor *string
	// Completed is set when the listing was exhausted.
	Completed bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithMetrics records page, item and image metrics.
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithTracer creates spans for pages and items.
func WithTracer(t trace.Tracer) Option {
	return func(l *Loop) {
		l.tracer = t
	}
}

// WithClock overrides the clock used to stamp failures.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// Loop walks the product listing and syncs every item.
type Loop struct {
	source   Source
	syncer   ItemSyncer
	settings Settings
	metrics  *telemetry.SyncMetrics
	tracer   trace.Tracer
	now      func() time.Time
}

// NewLoop creates a loop reading from source and syncing through syncer.
func NewLoop(source Source, syncer ItemSyncer, settings Settings, opts ...Option) *Loop {
	l := &Loop{
		source:   source,
		syncer:   syncer,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run walks the listing until the continuation predicate declines, the
// listing is exhausted, or a page fails. Item failures are collected and never
// abort the run. Cancellation of ctx is honoured between pages only.
func (l *Loop) Run(ctx context.Context, p RunParams) (*Summary, error) {
	if p.ShouldContinue == nil || p.Checkpoint == nil {
		return nil, fmt.Errorf("run requires a continuation predicate and a checkpoint")
	}
	if p.Config == nil {
		return nil, fmt.Errorf("run requires a mapping config")
	}

	summary := &Summary{Failed: append([]jobstatus.SyncError(nil), p.Failures...)}
	cursor := p.Cursor

	for {
		summary.Cursor = cursor
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		proceed, err := p.ShouldContinue(ctx, summary.Failed)
		if err != nil {
			return summary, fmt.Errorf("failed to check whether to continue: %w", err)
		}
		if !proceed {
			slog.Info("Sync run stopped before next page",
				"kind", p.Kind,
				"pages", summary.Pages,
				"failed", len(summary.Failed))
			return summary, nil
		}

		next, err := l.runPage(ctx, p, cursor, summary)
		if errors.Is(err, ErrRunInterrupted) {
			slog.Info("Sync run ended by a status change",
				"kind", p.Kind,
				"pages", summary.Pages,
				"failed", len(summary.Failed))
			return summary, nil
		}
		if err != nil {
			return summary, err
		}
		if next == nil {
			summary.Cursor = nil
			summary.Completed = true
			slog.Info("Sync run completed",
				"kind", p.Kind,
				"pages", summary.Pages,
				"items", summary.Items,
				"failed", len(summary.Failed))
			return summary, nil
		}
		cursor = next
	}
}

// runPage fetches and syncs one page, then checkpoints. It returns the cursor
// of the next page, nil once the listing is exhausted.
func (l *Loop) runPage(ctx context.Context, p RunParams, cursor *string, summary *Summary) (*string, error) {
	start := time.Now()
	ctx, span := otel.StartSpan(ctx, l.tracer, "sync.page",
		trace.WithAttributes(
			otel.AttrSyncKind.String(string(p.Kind)),
			otel.AttrPageSize.Int(l.settings.PageSize),
			otel.AttrHasCursor.Bool(cursor != nil),
		))
	defer span.End()

	page, err := l.source.ListProducts(ctx, l.listParams(p, cursor))
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	summary.Pages++
	span.SetAttributes(otel.AttrResultCount.Int(len(page.Items)))

	if len(page.Items) == 0 {
		if err := p.Checkpoint(ctx, nil, summary.Failed); err != nil {
			otel.RecordError(span, err)
			return nil, fmt.Errorf("failed to checkpoint: %w", err)
		}
		return nil, nil
	}

	failures := l.syncItems(ctx, p, page.Items)
	summary.Items += len(page.Items)
	summary.Failed = append(summary.Failed, failures...)
	span.SetAttributes(otel.AttrFailedCount.Int(len(summary.Failed)))

	var next *string
	if page.NextCursor != "" {
		next = &page.NextCursor
	}
	if err := p.Checkpoint(ctx, next, summary.Failed); err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to checkpoint: %w", err)
	}

	l.metrics.RecordPage(ctx, string(p.Kind), time.Since(start))
	slog.Debug("Sync page done",
		"kind", p.Kind,
		"items", len(page.Items),
		"page_failed", len(failures),
		"has_next", next != nil)
	return next, nil
}

func (l *Loop) listParams(p RunParams, cursor *string) pim.ListParams {
	var updatedAfter *time.Time
	if p.IsDelta {
		updatedAfter = &p.UpdatedAfter
	}
	params := l.settings.ListParams(p.Config, updatedAfter)
	if cursor != nil {
		params.SearchAfter = *cursor
	}
	return params
}

// syncItems syncs every item of a page and returns the failures in page order.
// Items sharing a parent map to the same commerce product, so each parent's
// items run in page order on one goroutine.
func (l *Loop) syncItems(ctx context.Context, p RunParams, items []pim.Product) []jobstatus.SyncError {
	results := make([]*jobstatus.SyncError, len(items))

	if l.settings.Concurrency <= 1 {
		for i := range items {
			results[i] = l.syncItem(ctx, p, &items[i])
		}
	} else {
		var (
			g  errgroup.Group
			mu gosync.Mutex
		)
		g.SetLimit(l.settings.Concurrency)
		for _, group := range groupByParent(items) {
			g.Go(func() error {
				for _, i := range group {
					failure := l.syncItem(ctx, p, &items[i])
					mu.Lock()
					results[i] = failure
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	var failures []jobstatus.SyncError
	for _, f := range results {
		if f != nil {
			failures = append(failures, *f)
		}
	}
	return failures
}

// groupByParent returns the indexes of items grouped by commerce product, in
// order of first appearance.
func groupByParent(items []pim.Product) [][]int {
	var groups [][]int
	byParent := make(map[string]int)
	for i := range items {
		code := mappers.ParentCode(&items[i])
		g, ok := byParent[code]
		if !ok {
			g = len(groups)
			byParent[code] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

func (l *Loop) syncItem(ctx context.Context, p RunParams, item *pim.Product) *jobstatus.SyncError {
	id := item.Identifier
	if id == "" {
		id = item.UUID
	}
	ctx, span := otel.StartSpan(ctx, l.tracer, "sync.item",
		trace.WithAttributes(
			otel.AttrSyncKind.String(string(p.Kind)),
			otel.AttrItemIdentifier.String(id),
		))
	defer span.End()

	result, err := l.syncer.Sync(ctx, item, p.Config)
	if err != nil {
		otel.RecordError(span, err)
		l.metrics.RecordItem(ctx, string(p.Kind), telemetry.ItemResultFailed)
		slog.Warn("Failed to sync product", "kind", p.Kind, "identifier", id, "error", err)
		failure := jobstatus.NewSyncError(id, err, l.now())
		return &failure
	}

	span.SetAttributes(otel.AttrItemOutcome.String(string(result.Outcome.Kind)))
	l.metrics.RecordItem(ctx, string(p.Kind), string(result.Outcome.Kind))
	if result.Outcome.Kind != reconcile.OutcomeSkip {
		l.metrics.RecordImages(ctx, string(p.Kind), result.Images.Uploaded, result.Images.Success)
	}
	if !result.Images.Success && result.Images.Err != nil {
		slog.Warn("Failed to sync product images", "kind", p.Kind, "identifier", id, "error", result.Images.Err)
	}
	return nil
}
