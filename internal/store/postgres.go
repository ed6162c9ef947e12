package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStore keeps records in the kv_records table created by the
// database migrations.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store backed by pool. The pool is owned by the
// store and closed by Close.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (p *postgresStore) Get(ctx context.Context, container, key string) (*Record, error) {
	rec := Record{Container: container, Key: key}
	err := p.pool.QueryRow(ctx,
		`SELECT value, version, updated_at FROM kv_records WHERE container = $1 AND key = $2`,
		container, key,
	).Scan(&rec.Value, &rec.Version, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s/%s: %w", container, key, err)
	}
	return &rec, nil
}

func (p *postgresStore) Put(ctx context.Context, container, key string, value []byte, expectedVersion *int64) (*Record, error) {
	var (
		version   int64
		updatedAt time.Time
		err       error
	)

	switch {
	case expectedVersion == nil:
		err = p.pool.QueryRow(ctx, `
			INSERT INTO kv_records (container, key, value, version, updated_at)
			VALUES ($1, $2, $3, 1, now())
			ON CONFLICT (container, key) DO UPDATE
				SET value = EXCLUDED.value, version = kv_records.version + 1, updated_at = now()
			RETURNING version, updated_at`,
			container, key, value,
		).Scan(&version, &updatedAt)

	case *expectedVersion == 0:
		err = p.pool.QueryRow(ctx, `
			INSERT INTO kv_records (container, key, value, version, updated_at)
			VALUES ($1, $2, $3, 1, now())
			ON CONFLICT (container, key) DO NOTHING
			RETURNING version, updated_at`,
			container, key, value,
		).Scan(&version, &updatedAt)

	default:
		err = p.pool.QueryRow(ctx, `
			UPDATE kv_records SET value = $3, version = version + 1, updated_at = now()
			WHERE container = $1 AND key = $2 AND version = $4
			RETURNING version, updated_at`,
			container, key, value, *expectedVersion,
		).Scan(&version, &updatedAt)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s expected version %d", ErrVersionConflict, container, key, *expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write record %s/%s: %w", container, key, err)
	}

	return &Record{Container: container, Key: key, Value: value, Version: version, UpdatedAt: updatedAt}, nil
}

func (p *postgresStore) Delete(ctx context.Context, container, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM kv_records WHERE container = $1 AND key = $2`, container, key); err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", container, key, err)
	}
	return nil
}

func (p *postgresStore) Close() error {
	p.pool.Close()
	return nil
}
