package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

var safeName = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// fileEnvelope is the on-disk representation of a record
type fileEnvelope struct {
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Value     json.RawMessage `json:"value"`
}

// fileStore keeps one JSON file per record under basePath/<container>/<key>.json.
// Writes go to a temporary file first and are renamed into place; a lock file
// per container serializes writers across processes.
type fileStore struct {
	basePath string
	mu       sync.Mutex
	now      func() time.Time
}

// NewFileStore creates a file based store rooted at basePath.
func NewFileStore(basePath string) (Store, error) {
	if basePath == "" {
		return nil, errors.New("file store base path is required")
	}
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &fileStore{basePath: basePath, now: time.Now}, nil
}

func (f *fileStore) Get(_ context.Context, container, key string) (*Record, error) {
	path, err := f.recordPath(container, key)
	if err != nil {
		return nil, err
	}
	return f.read(path, container, key)
}

func (f *fileStore) Put(ctx context.Context, container, key string, value []byte, expectedVersion *int64) (*Record, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("value for %s/%s is not valid JSON", container, key)
	}
	path, err := f.recordPath(container, key)
	if err != nil {
		return nil, err
	}

	unlock, err := f.lock(ctx, container)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var current int64
	existing, err := f.read(path, container, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		current = existing.Version
	}

	if expectedVersion != nil && *expectedVersion != current {
		return nil, fmt.Errorf("%w: %s/%s is at version %d, expected %d",
			ErrVersionConflict, container, key, current, *expectedVersion)
	}

	env := fileEnvelope{Version: current + 1, UpdatedAt: f.now().UTC(), Value: json.RawMessage(value)}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record %s/%s: %w", container, key, err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write temporary record file %s/%s: %w", container, key, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return nil, fmt.Errorf("failed to rename record file %s/%s: %w", container, key, err)
	}

	return &Record{Container: container, Key: key, Value: value, Version: env.Version, UpdatedAt: env.UpdatedAt}, nil
}

func (f *fileStore) Delete(ctx context.Context, container, key string) error {
	path, err := f.recordPath(container, key)
	if err != nil {
		return err
	}

	unlock, err := f.lock(ctx, container)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record %s/%s: %w", container, key, err)
	}
	return nil
}

func (*fileStore) Close() error {
	return nil
}

func (f *fileStore) read(path, container, key string) (*Record, error) {
	// #nosec G304 -- path is built from basePath and validated names
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record %s/%s: %w", container, key, err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s/%s: %w", container, key, err)
	}
	return &Record{Container: container, Key: key, Value: env.Value, Version: env.Version, UpdatedAt: env.UpdatedAt}, nil
}

func (f *fileStore) recordPath(container, key string) (string, error) {
	if !safeName.MatchString(container) || !safeName.MatchString(key) {
		return "", fmt.Errorf("invalid record name %q/%q", container, key)
	}
	dir := filepath.Join(f.basePath, container)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create container directory %s: %w", container, err)
	}
	return filepath.Join(dir, key+".json"), nil
}

// lock takes the in-process mutex and the container lock file.
func (f *fileStore) lock(ctx context.Context, container string) (func(), error) {
	f.mu.Lock()
	fl := flock.New(filepath.Join(f.basePath, container, ".lock"))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		f.mu.Unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("failed to lock container %s: %w", container, err)
	}
	return func() {
		_ = fl.Unlock()
		f.mu.Unlock()
	}, nil
}
