package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/composable-com/ct-connect-akeneo/internal/commerce"
	"github.com/composable-com/ct-connect-akeneo/internal/httpclient"
)

//go:generate mockgen -destination=mocks/mock_customobjects.go -package=mocks -source=customobjects.go CustomObjectClient

// CustomObjectClient is the subset of the commerce API used to keep records
// as custom objects.
type CustomObjectClient interface {
	GetCustomObject(ctx context.Context, container, key string) (*commerce.CustomObject, error)
	PutCustomObject(ctx context.Context, draft commerce.CustomObjectDraft) (*commerce.CustomObject, error)
	DeleteCustomObject(ctx context.Context, container, key string) error
}

// customObjectStore keeps records as commerce custom objects, which is where
// the connector's admin screens read them from. Those screens expect the
// object value to be a JSON encoded string, so documents are wrapped in a
// string on write and unwrapped on read.
type customObjectStore struct {
	client CustomObjectClient
}

// NewCustomObjectStore returns a store writing through client.
func NewCustomObjectStore(client CustomObjectClient) Store {
	return &customObjectStore{client: client}
}

func (c *customObjectStore) Get(ctx context.Context, container, key string) (*Record, error) {
	obj, err := c.client.GetCustomObject(ctx, container, key)
	if err != nil {
		if httpclient.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Record{Container: container, Key: key, Value: unwrapValue(obj.Value), Version: obj.Version}, nil
}

func (c *customObjectStore) Put(ctx context.Context, container, key string, value []byte, expectedVersion *int64) (*Record, error) {
	wrapped, err := json.Marshal(string(value))
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %s/%s: %w", container, key, err)
	}
	obj, err := c.client.PutCustomObject(ctx, commerce.CustomObjectDraft{
		Container: container,
		Key:       key,
		Value:     wrapped,
		Version:   expectedVersion,
	})
	if err != nil {
		if errors.Is(err, commerce.ErrConcurrentModification) {
			return nil, fmt.Errorf("%w: %v", ErrVersionConflict, err)
		}
		return nil, err
	}
	return &Record{Container: container, Key: key, Value: value, Version: obj.Version}, nil
}

func (c *customObjectStore) Delete(ctx context.Context, container, key string) error {
	return c.client.DeleteCustomObject(ctx, container, key)
}

func (*customObjectStore) Close() error {
	return nil
}

// unwrapValue returns the document held in a string value. Objects written by
// other tools without the string wrapping are returned as is.
func unwrapValue(raw json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	return raw
}
