// Package service provides the operations the trigger surface calls to drive
// the sync jobs: reading a job status, launching, stopping and saving the
// mapping configuration.
package service

import (
	"context"
	"errors"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
)

var (
	// ErrNotAJob is returned when a lifecycle operation names the config record
	ErrNotAJob = errors.New("sync type does not name a job")
	// ErrInvalidConfig is returned when a mapping config fails validation
	ErrInvalidConfig = errors.New("invalid mapping config")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go Service

// Service defines the operations on the sync jobs
type Service interface {
	// CheckReadiness checks that the record store can be read
	CheckReadiness(ctx context.Context) error

	// CheckStatus returns the current status of a job, scheduled when none was written
	CheckStatus(ctx context.Context, kind jobstatus.Kind) (*jobstatus.JobStatus, error)

	// LaunchIfReady schedules a job unless it is running, resumable or stopping,
	// and returns the resulting state
	LaunchIfReady(ctx context.Context, kind jobstatus.Kind) (jobstatus.State, error)

	// RequestStop stops a full sync immediately and asks a delta sync to stop at
	// its next page, returning the resulting state
	RequestStop(ctx context.Context, kind jobstatus.Kind) (jobstatus.State, error)

	// SaveConfig validates and persists a mapping config, keeping the stored URL
	SaveConfig(ctx context.Context, raw []byte) error

	// LoadConfig returns the stored config record, nil when none was saved
	LoadConfig(ctx context.Context) (*jobstatus.SyncConfigRecord, error)

	// Register records the URL the connector is reachable at
	Register(ctx context.Context, url string) error

	// Teardown deletes every record the connector wrote
	Teardown(ctx context.Context) error
}

// Launcher starts processing a job without waiting for the next tick
type Launcher interface {
	Trigger(kind jobstatus.Kind) bool
}
