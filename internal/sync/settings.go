package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/pim"
)

// Defaults for Settings.
const (
	DefaultPageSize      = 5
	DefaultTimeBudget    = 25 * time.Minute
	DefaultMaxFailed     = 100
	DefaultConcurrency   = 1
	DefaultDeltaLookback = 5 * time.Minute
	DefaultCompleteness  = "100"
)

// Settings holds the policy numbers of a sync run.
type Settings struct {
	// PageSize is how many products are fetched per page.
	PageSize int
	// TimeBudget is the wall clock a run may spend before parking itself as
	// resumable. Zero parks the run after the first page with a cursor.
	TimeBudget time.Duration
	// MaxFailed stops the run once this many items have failed.
	MaxFailed int
	// Concurrency is how many items of a page are synced at once.
	Concurrency int
	// DeltaLookback is how far back a delta run looks when no last sync date
	// is recorded.
	DeltaLookback time.Duration
	// Completeness filters products on their completeness in the sync scope.
	Completeness string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		PageSize:      DefaultPageSize,
		TimeBudget:    DefaultTimeBudget,
		MaxFailed:     DefaultMaxFailed,
		Concurrency:   DefaultConcurrency,
		DeltaLookback: DefaultDeltaLookback,
		Completeness:  DefaultCompleteness,
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	var errs []error
	if s.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", s.PageSize))
	}
	if s.TimeBudget < 0 {
		errs = append(errs, fmt.Errorf("time budget must not be negative, got %s", s.TimeBudget))
	}
	if s.MaxFailed <= 0 {
		errs = append(errs, fmt.Errorf("max failed must be positive, got %d", s.MaxFailed))
	}
	if s.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", s.Concurrency))
	}
	if s.DeltaLookback < 0 {
		errs = append(errs, fmt.Errorf("delta lookback must not be negative, got %s", s.DeltaLookback))
	}
	return errors.Join(errs...)
}

// ListParams returns the product filter of a run over cfg. A non-nil
// updatedAfter restricts it to recently changed products.
func (s Settings) ListParams(cfg *mapping.Config, updatedAfter *time.Time) pim.ListParams {
	return pim.ListParams{
		Families:     cfg.Families(),
		Completeness: s.Completeness,
		Scope:        cfg.AkeneoScope,
		Limit:        s.PageSize,
		UpdatedAfter: updatedAfter,
	}
}
