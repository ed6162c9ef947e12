package jobstatus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/composable-com/ct-connect-akeneo/internal/mapping"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
)

// SyncConfigRecord is the shared record holding the mapping configuration
// and the URL the connector is reachable at.
type SyncConfigRecord struct {
	URL    string          `json:"url"`
	Config json.RawMessage `json:"config"`
}

// HasConfig reports whether a mapping configuration was saved. A freshly
// registered connector stores an empty string.
func (r *SyncConfigRecord) HasConfig() bool {
	c := bytes.TrimSpace(r.Config)
	return len(c) > 0 && !bytes.Equal(c, []byte(`""`)) && !bytes.Equal(c, []byte("null"))
}

// Mapping parses the stored mapping configuration.
func (r *SyncConfigRecord) Mapping() (*mapping.Config, error) {
	if !r.HasConfig() {
		return nil, errors.New("no mapping configuration saved")
	}
	raw := []byte(r.Config)

	// Older records keep the configuration as a JSON encoded string
	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		raw = []byte(encoded)
	}
	return mapping.Parse(raw)
}

// ConfigStore reads and writes the sync configuration record.
type ConfigStore struct {
	store store.Store
}

// NewConfigStore returns a ConfigStore backed by s.
func NewConfigStore(s store.Store) *ConfigStore {
	return &ConfigStore{store: s}
}

// Load returns the record, or nil when none was saved yet.
func (c *ConfigStore) Load(ctx context.Context) (*SyncConfigRecord, error) {
	rec, _, err := c.load(ctx)
	return rec, err
}

// Modify applies fn to the current record (an empty one when absent) and
// writes it back conditionally on the version that was read.
func (c *ConfigStore) Modify(ctx context.Context, fn func(rec *SyncConfigRecord)) (*SyncConfigRecord, error) {
	rec, version, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &SyncConfigRecord{}
	}
	fn(rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync config: %w", err)
	}
	_, err = c.store.Put(ctx, Container, KindAll.Key(), data, &version)
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, fmt.Errorf("%w: sync config: %v", ErrConcurrentUpdate, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write sync config: %w", err)
	}
	return rec, nil
}

// Delete removes the record.
func (c *ConfigStore) Delete(ctx context.Context) error {
	return c.store.Delete(ctx, Container, KindAll.Key())
}

func (c *ConfigStore) load(ctx context.Context) (*SyncConfigRecord, int64, error) {
	rec, err := c.store.Get(ctx, Container, KindAll.Key())
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read sync config: %w", err)
	}

	var cfg SyncConfigRecord
	if err := json.Unmarshal(rec.Value, &cfg); err != nil {
		return nil, 0, fmt.Errorf("failed to decode sync config: %w", err)
	}
	return &cfg, rec.Version, nil
}
