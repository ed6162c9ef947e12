//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-com/ct-connect-akeneo/database"
	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

func TestNewDatabaseFactory(t *testing.T) {
	pool, cleanupFunc := database.SetupTestDB(t)
	t.Cleanup(cleanupFunc)
	conn := pool.Config().ConnConfig

	t.Setenv("AKENEO_SYNC_DATABASE_PASSWORD", conn.Password)

	ctx := context.Background()
	factory, err := NewDatabaseFactory(ctx, &config.Config{
		Storage: &config.StorageConfig{
			Type: config.StorageTypePostgres,
			Database: &config.DatabaseConfig{
				Host:            conn.Host,
				Port:            int(conn.Port),
				User:            conn.User,
				Database:        conn.Database,
				SSLMode:         "disable",
				MaxOpenConns:    4,
				MaxIdleConns:    1,
				ConnMaxLifetime: "1h",
			},
		},
	})
	require.NoError(t, err)
	t.Cleanup(factory.Cleanup)

	assert.Equal(t, int32(4), factory.pool.Config().MaxConns)

	s, err := factory.CreateStore(ctx)
	require.NoError(t, err)

	rec, err := s.Put(ctx, "ct-connect-akeneo", "sync-config", []byte(`{"url":"https://connector.example.com","config":""}`), store.Version(0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Version)
}

func TestNewDatabaseFactory_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := NewDatabaseFactory(context.Background(), &config.Config{
		Storage: &config.StorageConfig{
			Type: config.StorageTypePostgres,
			Database: &config.DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     1,
				User:     "nobody",
				Database: "missing",
				SSLMode:  "disable",
			},
		},
	})
	require.Error(t, err)
}
