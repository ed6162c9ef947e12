package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
	"github.com/composable-com/ct-connect-akeneo/internal/sync/coordinator"
	"github.com/composable-com/ct-connect-akeneo/internal/sync/coordinator/mocks"
)

func TestParseInterval(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		raw      string
		expected time.Duration
	}{
		{name: "empty interval returns default", raw: "", expected: coordinator.DefaultInterval},
		{name: "valid interval is parsed correctly", raw: "90s", expected: 90 * time.Second},
		{name: "invalid interval returns default", raw: "often", expected: coordinator.DefaultInterval},
		{name: "negative interval returns default", raw: "-1m", expected: coordinator.DefaultInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, coordinator.ParseInterval(tt.raw))
		})
	}
}

func TestCoordinator_StartTriggersEveryKind(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcessor(ctrl)

	ran := make(chan jobstatus.Kind, 2)
	proc.EXPECT().Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, kind jobstatus.Kind) (*coordinator.Result, error) {
			assert.NotEmpty(t, coordinator.RunIDFromContext(ctx))
			ran <- kind
			return &coordinator.Result{Kind: kind, Reason: coordinator.ReasonIdle}, nil
		}).Times(2)

	c := coordinator.New(proc, coordinator.WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	got := map[jobstatus.Kind]bool{}
	for range 2 {
		select {
		case kind := <-ran:
			got[kind] = true
		case <-time.After(5 * time.Second):
			t.Fatal("kinds were not triggered on start")
		}
	}
	assert.Equal(t, map[jobstatus.Kind]bool{jobstatus.KindFull: true, jobstatus.KindDelta: true}, got)

	require.NoError(t, c.Stop())
	require.NoError(t, <-errCh)
}

func TestCoordinator_TriggerKeepsOneRunPerKind(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcessor(ctrl)

	release := make(chan struct{})
	started := make(chan struct{})
	proc.EXPECT().Process(gomock.Any(), jobstatus.KindFull).
		DoAndReturn(func(context.Context, jobstatus.Kind) (*coordinator.Result, error) {
			close(started)
			<-release
			return &coordinator.Result{Kind: jobstatus.KindFull, Reason: coordinator.ReasonStarted}, nil
		})

	c := coordinator.New(proc, coordinator.WithKinds(jobstatus.KindFull))

	require.True(t, c.Trigger(jobstatus.KindFull))
	<-started
	assert.False(t, c.Trigger(jobstatus.KindFull), "a second run must wait for the first")

	close(release)
	require.NoError(t, c.Stop())
}

func TestCoordinator_StopWaitsForInFlightRuns(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	proc := mocks.NewMockProcessor(ctrl)

	var sawCancel bool
	started := make(chan struct{})
	proc.EXPECT().Process(gomock.Any(), jobstatus.KindDelta).
		DoAndReturn(func(ctx context.Context, _ jobstatus.Kind) (*coordinator.Result, error) {
			close(started)
			<-ctx.Done()
			sawCancel = true
			return nil, ctx.Err()
		})

	c := coordinator.New(proc, coordinator.WithKinds(jobstatus.KindDelta), coordinator.WithInterval(time.Hour))
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()

	<-started
	require.NoError(t, c.Stop())
	assert.True(t, sawCancel)
	require.NoError(t, <-errCh)

	assert.False(t, c.Trigger(jobstatus.KindDelta), "a stopped coordinator does not start runs")
}

func TestCoordinator_StopBeforeStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	c := coordinator.New(mocks.NewMockProcessor(ctrl))
	require.NoError(t, c.Stop())
}
