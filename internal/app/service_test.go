package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-com/ct-connect-akeneo/internal/config"
	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
)

func TestOpenService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := createValidTestConfig(t)

	svc, cleanup, err := OpenService(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Register(ctx, "https://connector.example.com"))
	cleanup()

	// a second open sees the same records
	svc, cleanup, err = OpenService(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rec, err := svc.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://connector.example.com", rec.URL)

	status, err := svc.CheckStatus(ctx, jobstatus.KindFull)
	require.NoError(t, err)
	assert.Equal(t, jobstatus.StateScheduled, status.Status, "a missing record reads as scheduled")
}

func TestOpenService_CustomObjectsNeedCommerce(t *testing.T) {
	t.Parallel()

	_, _, err := OpenService(context.Background(), &config.Config{
		Storage: &config.StorageConfig{Type: config.StorageTypeCustomObjects},
	})
	require.ErrorContains(t, err, "failed to create commerce client")
}
