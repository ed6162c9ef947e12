package app

import (
	"context"
	"fmt"

	"github.com/composable-com/ct-connect-akeneo/internal/app/storage"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/service"
)

// OpenService opens the configured store and returns a service over it with
// no background processing, for one-shot commands. The returned function
// releases the store.
func OpenService(ctx context.Context, cfg *config.Config) (service.Service, func(), error) {
	var opts []storage.Option
	if cfg.GetStorageType() == config.StorageTypeCustomObjects {
		client, err := NewCommerceClient(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create commerce client: %w", err)
		}
		opts = append(opts, storage.WithCustomObjectClient(client))
	}

	factory, err := storage.NewStorageFactory(ctx, cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage factory: %w", err)
	}

	s, err := factory.CreateStore(ctx)
	if err != nil {
		factory.Cleanup()
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}

	return service.New(s), factory.Cleanup, nil
}
