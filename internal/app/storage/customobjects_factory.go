package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

// CustomObjectFactory creates the store that keeps records as commerce
// custom objects.
type CustomObjectFactory struct {
	client store.CustomObjectClient
}

var _ Factory = (*CustomObjectFactory)(nil)

// NewCustomObjectFactory creates a factory writing through client.
func NewCustomObjectFactory(client store.CustomObjectClient) (*CustomObjectFactory, error) {
	if client == nil {
		return nil, fmt.Errorf("a commerce client is required for customObjects storage type")
	}
	slog.Info("Creating custom object storage factory")
	return &CustomObjectFactory{client: client}, nil
}

// CreateStore creates the custom object store.
func (f *CustomObjectFactory) CreateStore(_ context.Context) (store.Store, error) {
	return store.NewCustomObjectStore(f.client), nil
}

// Cleanup is a no-op; the commerce client holds no pooled resources of its own.
func (*CustomObjectFactory) Cleanup() {}
