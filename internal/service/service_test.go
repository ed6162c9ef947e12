package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/service"
	"github.com/composable-com/ct-connect-akeneo/internal/service/mocks"
	"github.com/composable-com/ct-connect-akeneo/internal/store"
	storemocks "github.com/composable-com/ct-connect-akeneo/internal/store/mocks"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s store.Store, kind jobstatus.Kind, state jobstatus.State) {
	t.Helper()
	if state == "" {
		return
	}
	_, err := jobstatus.NewHandler(s, kind).Update(context.Background(), jobstatus.Patch{Status: jobstatus.Set(state)})
	require.NoError(t, err)
}

func mappingJSON(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../../examples/mapping-apparel.json")
	require.NoError(t, err)
	return data
}

func TestLaunchIfReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		kind        jobstatus.Kind
		current     jobstatus.State
		want        jobstatus.State
		wantTrigger bool
	}{
		{name: "fresh job is scheduled", kind: jobstatus.KindFull, want: jobstatus.StateScheduled, wantTrigger: true},
		{name: "idle full sync is rescheduled", kind: jobstatus.KindFull, current: jobstatus.StateIdle, want: jobstatus.StateScheduled, wantTrigger: true},
		{name: "stopped delta sync is rescheduled", kind: jobstatus.KindDelta, current: jobstatus.StateStopped, want: jobstatus.StateScheduled, wantTrigger: true},
		{name: "running job is left alone", kind: jobstatus.KindFull, current: jobstatus.StateRunning, want: jobstatus.StateRunning},
		{name: "resumable job is resumed", kind: jobstatus.KindFull, current: jobstatus.StateResumable, want: jobstatus.StateResumable, wantTrigger: true},
		{name: "pending stop is not overridden", kind: jobstatus.KindDelta, current: jobstatus.StateToStop, want: jobstatus.StateToStop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			launcher := mocks.NewMockLauncher(ctrl)
			if tt.wantTrigger {
				launcher.EXPECT().Trigger(tt.kind).Return(true)
			}

			s := newStore(t)
			seed(t, s, tt.kind, tt.current)
			svc := service.New(s, service.WithLauncher(launcher))

			got, err := svc.LaunchIfReady(context.Background(), tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			status, err := svc.CheckStatus(context.Background(), tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Status)
		})
	}
}

func TestLaunchIfReady_ClearsPreviousRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	h := jobstatus.NewHandler(s, jobstatus.KindFull)
	require.NoError(t, h.Stop(ctx))
	_, err := h.Update(ctx, jobstatus.Patch{FailedSyncs: jobstatus.Set([]jobstatus.SyncError{{Identifier: "sku-1"}})})
	require.NoError(t, err)

	svc := service.New(s)
	_, err = svc.LaunchIfReady(ctx, jobstatus.KindFull)
	require.NoError(t, err)

	status, err := svc.CheckStatus(ctx, jobstatus.KindFull)
	require.NoError(t, err)
	assert.Equal(t, &jobstatus.JobStatus{Status: jobstatus.StateScheduled}, status)
}

func TestLaunchIfReady_ResumableKeepsCursor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	h := jobstatus.NewHandler(s, jobstatus.KindDelta)
	failed := []jobstatus.SyncError{{Identifier: "sku-1"}}
	_, err := h.Update(ctx, jobstatus.ToResumable("c4", failed))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	launcher := mocks.NewMockLauncher(ctrl)
	launcher.EXPECT().Trigger(jobstatus.KindDelta).Return(true)

	svc := service.New(s, service.WithLauncher(launcher))
	got, err := svc.LaunchIfReady(ctx, jobstatus.KindDelta)
	require.NoError(t, err)
	assert.Equal(t, jobstatus.StateResumable, got)

	status, err := svc.CheckStatus(ctx, jobstatus.KindDelta)
	require.NoError(t, err)
	require.NotNil(t, status.LastCursor)
	assert.Equal(t, "c4", *status.LastCursor)
	assert.Equal(t, failed, status.FailedSyncs)
}

func TestRequestStop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    jobstatus.Kind
		current jobstatus.State
		want    jobstatus.State
	}{
		{name: "full sync stops immediately", kind: jobstatus.KindFull, current: jobstatus.StateRunning, want: jobstatus.StateStopped},
		{name: "delta sync stops at the next page", kind: jobstatus.KindDelta, current: jobstatus.StateRunning, want: jobstatus.StateToStop},
		{name: "waiting delta sync is stopped", kind: jobstatus.KindDelta, current: jobstatus.StateScheduled, want: jobstatus.StateToStop},
		{name: "resumable full sync is stopped", kind: jobstatus.KindFull, current: jobstatus.StateResumable, want: jobstatus.StateStopped},
		{name: "pending stop is a no-op", kind: jobstatus.KindDelta, current: jobstatus.StateToStop, want: jobstatus.StateToStop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newStore(t)
			seed(t, s, tt.kind, tt.current)
			svc := service.New(s)

			got, err := svc.RequestStop(context.Background(), tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			status, err := svc.CheckStatus(context.Background(), tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Status)
		})
	}
}

func TestLifecycleOperationsRejectConfigRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := service.New(newStore(t))

	_, err := svc.CheckStatus(ctx, jobstatus.KindAll)
	require.ErrorIs(t, err, service.ErrNotAJob)
	_, err = svc.LaunchIfReady(ctx, jobstatus.KindAll)
	require.ErrorIs(t, err, service.ErrNotAJob)
	_, err = svc.RequestStop(ctx, jobstatus.KindAll)
	require.ErrorIs(t, err, service.ErrNotAJob)
}

func TestConfigRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := service.New(newStore(t))

	rec, err := svc.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, svc.Register(ctx, "https://connector.example.com"))
	rec, err = svc.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://connector.example.com", rec.URL)
	assert.False(t, rec.HasConfig())

	require.NoError(t, svc.SaveConfig(ctx, mappingJSON(t)))
	rec, err = svc.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://connector.example.com", rec.URL)
	cfg, err := rec.Mapping()
	require.NoError(t, err)
	assert.Equal(t, "ecommerce", cfg.AkeneoScope)

	// registering again keeps the saved config
	require.NoError(t, svc.Register(ctx, "https://moved.example.com"))
	rec, err = svc.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://moved.example.com", rec.URL)
	assert.True(t, rec.HasConfig())
}

func TestSaveConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed JSON", raw: `{"familyMapping":`},
		{name: "wrong shape", raw: `{"familyMapping": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			svc := service.New(newStore(t))

			err := svc.SaveConfig(ctx, []byte(tt.raw))
			require.ErrorIs(t, err, service.ErrInvalidConfig)

			rec, err := svc.LoadConfig(ctx)
			require.NoError(t, err)
			assert.Nil(t, rec, "an invalid config is never stored")
		})
	}
}

func TestTeardown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	svc := service.New(s)

	seed(t, s, jobstatus.KindFull, jobstatus.StateIdle)
	require.NoError(t, svc.Register(ctx, "https://connector.example.com"))

	require.NoError(t, svc.Teardown(ctx))

	for _, key := range []string{"full-sync", "delta-sync", "sync-config"} {
		_, err := s.Get(ctx, jobstatus.Container, key)
		require.ErrorIs(t, err, store.ErrNotFound, key)
	}

	// nothing left to delete is not an error
	require.NoError(t, svc.Teardown(ctx))
}

func TestCheckReadiness(t *testing.T) {
	t.Parallel()

	require.NoError(t, service.New(newStore(t)).CheckReadiness(context.Background()))

	ctrl := gomock.NewController(t)
	s := storemocks.NewMockStore(ctrl)
	s.EXPECT().Get(gomock.Any(), jobstatus.Container, "sync-config").Return(nil, errors.New("connection refused"))
	err := service.New(s).CheckReadiness(context.Background())
	require.ErrorContains(t, err, "store not ready")
}

func TestTeardown_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := storemocks.NewMockStore(ctrl)
	s.EXPECT().Delete(gomock.Any(), jobstatus.Container, "full-sync").Return(errors.New("unavailable"))
	s.EXPECT().Delete(gomock.Any(), jobstatus.Container, "delta-sync").Return(nil)
	s.EXPECT().Delete(gomock.Any(), jobstatus.Container, "sync-config").Return(nil)

	err := service.New(s).Teardown(context.Background())
	require.ErrorContains(t, err, "failed to delete full sync status: unavailable")
}

func TestSaveConfig_KeepsRawDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t)
	raw := mappingJSON(t)
	require.NoError(t, service.New(s).SaveConfig(ctx, raw))

	rec, err := s.Get(ctx, jobstatus.Container, "sync-config")
	require.NoError(t, err)
	var stored struct {
		Config json.RawMessage `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rec.Value, &stored))
	assert.JSONEq(t, string(raw), string(stored.Config))
}
