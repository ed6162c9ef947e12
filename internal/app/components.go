package app

import (
	"github.com/composable-com/ct-connect-akeneo/internal/service"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
	"github.com/composable-com/ct-connect-akeneo/internal/sync/coordinator"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncCoordinator triggers runs in the background. Nil when disabled.
	SyncCoordinator coordinator.Coordinator

	// Processor runs a single job on demand
	Processor coordinator.Processor

	// SyncService exposes the job lifecycle and configuration operations
	SyncService service.Service

	// Store holds the job records
	Store store.Store
}
