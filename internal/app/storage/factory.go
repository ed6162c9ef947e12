// Package storage provides factory functions for creating the record store.
// It hides the configured backend behind a single decision point so that the
// rest of the application only ever sees a store.Store.
package storage

import (
	"context"
	"fmt"

	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the record store for one backend.
//
// It also manages the lifecycle of storage resources (e.g., database connections).
type Factory interface {
	// CreateStore returns the store. Calling it more than once returns the
	// same instance.
	CreateStore(ctx context.Context) (store.Store, error)

	// Cleanup releases any resources held by this factory.
	// Should be called when the application shuts down.
	Cleanup()
}

// Option configures NewStorageFactory
type Option func(*options)

type options struct {
	customObjects store.CustomObjectClient
}

// WithCustomObjectClient supplies the commerce client the customObjects
// backend writes through.
func WithCustomObjectClient(c store.CustomObjectClient) Option {
	return func(o *options) {
		o.customObjects = c
	}
}

// NewStorageFactory creates a storage factory based on the configured storage type.
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...Option) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	switch cfg.GetStorageType() {
	case config.StorageTypeFile:
		return NewFileFactory(cfg)
	case config.StorageTypeSQLite:
		return NewSQLiteFactory(cfg)
	case config.StorageTypePostgres:
		return NewDatabaseFactory(ctx, cfg)
	case config.StorageTypeCustomObjects:
		return NewCustomObjectFactory(o.customObjects)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.GetStorageType())
	}
}
