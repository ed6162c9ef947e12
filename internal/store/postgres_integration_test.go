//go:build integration

package store

import (
	"testing"

	"github.com/composable-com/ct-connect-akeneo/database"
)

func TestPostgresStore_Conformance(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	runConformance(t, NewPostgresStore(pool))
}
