package jobstatus

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cs := NewConfigStore(newFileStore(t))

	rec, err := cs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = cs.Modify(ctx, func(r *SyncConfigRecord) {
		r.URL = "https://connector.example.com"
		r.Config = json.RawMessage(`""`)
	})
	require.NoError(t, err)
	assert.False(t, rec.HasConfig())

	mappingJSON, err := os.ReadFile("../../examples/mapping-apparel.json")
	require.NoError(t, err)

	_, err = cs.Modify(ctx, func(r *SyncConfigRecord) {
		r.Config = mappingJSON
	})
	require.NoError(t, err)

	rec, err = cs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://connector.example.com", rec.URL, "saving the config keeps the URL")
	require.True(t, rec.HasConfig())

	cfg, err := rec.Mapping()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.FamilyMapping)

	require.NoError(t, cs.Delete(ctx))
	rec, err = cs.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSyncConfigRecord_StringEncodedConfig(t *testing.T) {
	t.Parallel()

	mappingJSON, err := os.ReadFile("../../examples/mapping-apparel.json")
	require.NoError(t, err)
	encoded, err := json.Marshal(string(mappingJSON))
	require.NoError(t, err)

	rec := &SyncConfigRecord{Config: encoded}
	require.True(t, rec.HasConfig())
	_, err = rec.Mapping()
	require.NoError(t, err)

	for _, empty := range []string{``, `""`, `null`} {
		rec := &SyncConfigRecord{Config: json.RawMessage(empty)}
		assert.False(t, rec.HasConfig(), "config %q", empty)
		_, err := rec.Mapping()
		assert.Error(t, err)
	}
}
