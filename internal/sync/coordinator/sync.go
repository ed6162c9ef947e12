package coordinator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
)

// performSync processes one kind under a fresh run id and logs the outcome
func (c *defaultCoordinator) performSync(ctx context.Context, kind jobstatus.Kind) {
	runID := uuid.NewString()
	ctx = ContextWithRunID(ctx, runID)
	startTime := time.Now()

	result, err := c.processor.Process(ctx, kind)
	if err != nil {
		slog.Error("Sync failed",
			"kind", kind,
			"run_id", runID,
			"duration", time.Since(startTime),
			"error", err)
		return
	}

	if !result.Ran() {
		slog.Debug("Sync not run", "kind", kind, "run_id", runID, "reason", result.Reason)
		return
	}

	attrs := []any{
		"kind", kind,
		"run_id", runID,
		"reason", result.Reason,
		"duration", time.Since(startTime),
	}
	if s := result.Summary; s != nil {
		attrs = append(attrs,
			"pages", s.Pages,
			"items", s.Items,
			"failed", len(s.Failed),
			"completed", s.Completed)
	}
	slog.Info("Sync finished", attrs...)
}
