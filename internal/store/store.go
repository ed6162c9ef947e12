// Package store provides the durable key-value records the sync keeps its job
// status and configuration in. Every backend supports conditional writes on a
// per-record version so that concurrent writers cannot silently overwrite
// each other.
package store

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

var (
	// ErrNotFound is returned by Get when the record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by Put when the stored version differs
	// from the expected one.
	ErrVersionConflict = errors.New("record version conflict")
)

// Record is a stored JSON document.
type Record struct {
	Container string
	Key       string
	Value     []byte
	// Version starts at 1 and increases by one on every write.
	Version   int64
	UpdatedAt time.Time
}

// Store is a versioned JSON document store addressed by container and key.
type Store interface {
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, container, key string) (*Record, error)

	// Put writes value. With a nil expectedVersion the write is unconditional.
	// Otherwise it only succeeds if the stored version equals *expectedVersion,
	// where 0 means the record must not exist yet. Mismatches return
	// ErrVersionConflict.
	Put(ctx context.Context, container, key string, value []byte, expectedVersion *int64) (*Record, error)

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, container, key string) error

	// Close releases resources held by the store.
	Close() error
}

// Version returns a pointer to v, for use as an expected version.
func Version(v int64) *int64 {
	return &v
}
