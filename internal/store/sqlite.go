package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// sqliteStore keeps records in a single SQLite table.
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

func (s *sqliteStore) Get(ctx context.Context, container, key string) (*Record, error) {
	var (
		rec       = Record{Container: container, Key: key}
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, version, updated_at FROM records WHERE container = ? AND key = ?`,
		container, key,
	).Scan(&rec.Value, &rec.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s/%s: %w", container, key, err)
	}
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &rec, nil
}

func (s *sqliteStore) Put(ctx context.Context, container, key string, value []byte, expectedVersion *int64) (*Record, error) {
	now := s.now().UTC()
	stamp := now.Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM records WHERE container = ? AND key = ?`, container, key,
	).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read record version %s/%s: %w", container, key, err)
	}

	if expectedVersion != nil && *expectedVersion != current {
		return nil, fmt.Errorf("%w: %s/%s is at version %d, expected %d",
			ErrVersionConflict, container, key, current, *expectedVersion)
	}

	next := current + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (container, key, value, version, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (container, key) DO UPDATE SET
			value = excluded.value, version = excluded.version, updated_at = excluded.updated_at`,
		container, key, value, next, stamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write record %s/%s: %w", container, key, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit record %s/%s: %w", container, key, err)
	}
	return &Record{Container: container, Key: key, Value: value, Version: next, UpdatedAt: now}, nil
}

func (s *sqliteStore) Delete(ctx context.Context, container, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE container = ? AND key = ?`, container, key); err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", container, key, err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
