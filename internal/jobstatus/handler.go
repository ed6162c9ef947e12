package jobstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

// ErrConcurrentUpdate is returned by Update when the record changed between
// the read and the write.
var ErrConcurrentUpdate = errors.New("job status was modified concurrently")

// Handler reads and writes the status record of one job kind.
type Handler struct {
	store store.Store
	kind  Kind
	now   func() time.Time
}

// NewHandler returns a handler for kind backed by s.
func NewHandler(s store.Store, kind Kind) *Handler {
	return &Handler{store: s, kind: kind, now: time.Now}
}

// Kind returns the job kind this handler manages.
func (h *Handler) Kind() Kind {
	return h.kind
}

// Check returns the current status. A missing record reads as scheduled.
func (h *Handler) Check(ctx context.Context) (*JobStatus, error) {
	status, _, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Update merges patch onto the current record. The write is conditional on
// the version that was read, so a concurrent writer makes Update fail with
// ErrConcurrentUpdate instead of being overwritten.
func (h *Handler) Update(ctx context.Context, patch Patch) (*JobStatus, error) {
	current, version, err := h.load(ctx)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(*current)
	if err := h.write(ctx, next, &version); err != nil {
		return nil, err
	}
	return &next, nil
}

// UpdateFrom is Update guarded on the record still being in state from. It
// fails with ErrConcurrentUpdate when another writer moved the job since the
// caller read it.
func (h *Handler) UpdateFrom(ctx context.Context, from State, patch Patch) (*JobStatus, error) {
	current, version, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	if current.Status != from {
		return nil, fmt.Errorf("%w: %s: expected %s, found %s", ErrConcurrentUpdate, h.kind, from, current.Status)
	}

	next := patch.Apply(*current)
	if err := h.write(ctx, next, &version); err != nil {
		return nil, err
	}
	return &next, nil
}

// Start overwrites the record with a fresh scheduled status.
func (h *Handler) Start(ctx context.Context) error {
	return h.overwrite(ctx, ToScheduled(nil))
}

// Cancel overwrites the record with a cooperative stop request.
func (h *Handler) Cancel(ctx context.Context) error {
	return h.overwrite(ctx, ToToStop())
}

// Stop overwrites the record with a stopped status.
func (h *Handler) Stop(ctx context.Context) error {
	return h.overwrite(ctx, ToStopped(nil, h.now()))
}

// Delete removes the record.
func (h *Handler) Delete(ctx context.Context) error {
	return h.store.Delete(ctx, Container, h.kind.Key())
}

func (h *Handler) overwrite(ctx context.Context, patch Patch) error {
	return h.write(ctx, patch.Apply(JobStatus{}), nil)
}

// load returns the status and the version it was read at, 0 when absent.
func (h *Handler) load(ctx context.Context) (*JobStatus, int64, error) {
	rec, err := h.store.Get(ctx, Container, h.kind.Key())
	if errors.Is(err, store.ErrNotFound) {
		return &JobStatus{Status: StateScheduled}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s job status: %w", h.kind, err)
	}

	var status JobStatus
	if err := json.Unmarshal(rec.Value, &status); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s job status: %w", h.kind, err)
	}
	if status.Status == "" {
		status.Status = StateScheduled
	}
	return &status, rec.Version, nil
}

func (h *Handler) write(ctx context.Context, status JobStatus, version *int64) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode %s job status: %w", h.kind, err)
	}

	_, err = h.store.Put(ctx, Container, h.kind.Key(), data, version)
	if errors.Is(err, store.ErrVersionConflict) {
		return fmt.Errorf("%w: %s: %v", ErrConcurrentUpdate, h.kind, err)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s job status: %w", h.kind, err)
	}
	return nil
}
