package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
)

// ErrRunInterrupted is returned by a checkpoint when the job left the running
// state while its page was processed. The loop ends such a run without error.
var ErrRunInterrupted = errors.New("sync run interrupted")

// maxStatusWrites bounds the retries of a status write that lost a version
// race while the job stayed running.
const maxStatusWrites = 3

// NewContinuation builds the predicate asked before every page. It ends the
// run when the job is no longer running, writing stopped when a stop was
// requested, and when the failure cap is reached. Otherwise it counts the
// remaining estimate down by one page.
func NewContinuation(h StatusHandler, settings Settings, now func() time.Time) ContinueFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, failed []jobstatus.SyncError) (bool, error) {
		status, err := h.Check(ctx)
		if err != nil {
			return false, err
		}

		if status.Status != jobstatus.StateRunning {
			return false, completeStop(ctx, h, status, failed, now)
		}

		if len(failed) >= settings.MaxFailed {
			slog.Warn("Too many failed products, stopping sync run",
				"failed", len(failed),
				"max_failed", settings.MaxFailed)
			err := updateRunning(ctx, h, jobstatus.ToStopped(failed, now()), failed, now)
			if err != nil && !errors.Is(err, ErrRunInterrupted) {
				return false, fmt.Errorf("failed to mark run stopped: %w", err)
			}
			return false, nil
		}

		if status.RemainingToSync != nil {
			remaining := max(*status.RemainingToSync-settings.PageSize, 0)
			err := updateRunning(ctx, h, jobstatus.Patch{RemainingToSync: jobstatus.Set(remaining)}, failed, now)
			if errors.Is(err, ErrRunInterrupted) {
				return false, nil
			}
			if err != nil {
				return false, fmt.Errorf("failed to update remaining count: %w", err)
			}
		}
		return true, nil
	}
}

// NewCheckpoint builds the callback run after every page of a run that
// started at start. Failures are written on every call. An exhausted listing
// completes a full sync to idle and a delta sync back to scheduled. Once the
// time budget is spent the run is parked as resumable at cursor.
//
// Writes only land while the job is running. A job stopped during the page
// keeps its stop and the checkpoint returns ErrRunInterrupted.
func NewCheckpoint(
	h StatusHandler,
	kind jobstatus.Kind,
	start time.Time,
	settings Settings,
	now func() time.Time,
) CheckpointFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, cursor *string, failed []jobstatus.SyncError) error {
		var patch jobstatus.Patch
		switch {
		case cursor == nil && kind == jobstatus.KindDelta:
			patch = jobstatus.ToScheduled(failed)
		case cursor == nil:
			patch = jobstatus.ToIdle()
			patch.FailedSyncs = jobstatus.Set(failed)
		case now().Sub(start) >= settings.TimeBudget:
			slog.Info("Time budget spent, parking sync run", "kind", kind, "budget", settings.TimeBudget)
			patch = jobstatus.ToResumable(*cursor, failed)
		default:
			patch = jobstatus.Patch{FailedSyncs: jobstatus.Set(failed)}
		}

		err := updateRunning(ctx, h, patch, failed, now)
		if errors.Is(err, ErrRunInterrupted) {
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to write checkpoint: %w", err)
		}
		return nil
	}
}

// updateRunning applies patch while the job is running. When the job left
// the running state under the run, a pending stop request is completed with
// failed and ErrRunInterrupted is returned.
func updateRunning(
	ctx context.Context,
	h StatusHandler,
	patch jobstatus.Patch,
	failed []jobstatus.SyncError,
	now func() time.Time,
) error {
	for range maxStatusWrites {
		_, err := h.UpdateFrom(ctx, jobstatus.StateRunning, patch)
		if !errors.Is(err, jobstatus.ErrConcurrentUpdate) {
			return err
		}

		status, err := h.Check(ctx)
		if err != nil {
			return err
		}
		if status.Status != jobstatus.StateRunning {
			slog.Info("Sync run interrupted", "status", status.Status)
			if err := completeStop(ctx, h, status, failed, now); err != nil {
				return err
			}
			return ErrRunInterrupted
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts", jobstatus.ErrConcurrentUpdate, maxStatusWrites)
}

// completeStop turns a pending stop request into stopped, keeping the
// failures of the run. Any other state is left to whoever wrote it.
func completeStop(
	ctx context.Context,
	h StatusHandler,
	status *jobstatus.JobStatus,
	failed []jobstatus.SyncError,
	now func() time.Time,
) error {
	if status.Status != jobstatus.StateToStop {
		return nil
	}
	slog.Info("Stop requested, stopping sync run", "failed", len(failed))
	_, err := h.UpdateFrom(ctx, jobstatus.StateToStop, jobstatus.ToStopped(failed, now()))
	if err != nil && !errors.Is(err, jobstatus.ErrConcurrentUpdate) {
		return fmt.Errorf("failed to mark run stopped: %w", err)
	}
	return nil
}
