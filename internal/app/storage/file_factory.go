package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

// FileFactory creates the JSON file store.
type FileFactory struct {
	baseDir string

	once  sync.Once
	store store.Store
	err   error
}

var _ Factory = (*FileFactory)(nil)

// NewFileFactory creates a new file-based storage factory, ensuring the base
// directory exists.
func NewFileFactory(cfg *config.Config) (*FileFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	baseDir := cfg.GetFileStorageBaseDir()
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", baseDir, err)
	}

	slog.Info("Creating file-based storage factory", "base_dir", baseDir)
	return &FileFactory{baseDir: baseDir}, nil
}

// CreateStore creates the file store rooted at the base directory.
func (f *FileFactory) CreateStore(_ context.Context) (store.Store, error) {
	f.once.Do(func() {
		slog.Debug("Creating file-based store")
		f.store, f.err = store.NewFileStore(f.baseDir)
	})
	return f.store, f.err
}

// Cleanup is a no-op for file storage.
func (*FileFactory) Cleanup() {
	slog.Debug("Cleaning up file storage factory (no-op)")
}

// SQLiteFactory creates the SQLite store.
type SQLiteFactory struct {
	path string

	once  sync.Once
	store store.Store
	err   error
}

var _ Factory = (*SQLiteFactory)(nil)

// NewSQLiteFactory creates a new SQLite-backed storage factory, ensuring the
// database file's directory exists.
func NewSQLiteFactory(cfg *config.Config) (*SQLiteFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	path := cfg.GetSQLitePath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	slog.Info("Creating SQLite storage factory", "path", path)
	return &SQLiteFactory{path: path}, nil
}

// CreateStore opens the SQLite database, creating its schema when needed.
func (f *SQLiteFactory) CreateStore(_ context.Context) (store.Store, error) {
	f.once.Do(func() {
		slog.Debug("Opening SQLite store", "path", f.path)
		f.store, f.err = store.NewSQLiteStore(f.path)
	})
	return f.store, f.err
}

// Cleanup closes the database file.
func (f *SQLiteFactory) Cleanup() {
	if f.store == nil {
		return
	}
	if err := f.store.Close(); err != nil {
		slog.Warn("Failed to close SQLite store", "error", err)
	}
}
