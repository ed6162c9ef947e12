package jobstatus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestTransitions(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	failed := []SyncError{{Identifier: "sku-1", ErrorMessage: "boom", Date: "2024-05-01T11:00:00Z"}}
	busy := JobStatus{
		Status:          StateRunning,
		LastCursor:      strPtr("abc"),
		LastSyncDate:    &at,
		FailedSyncs:     failed,
		RemainingToSync: intPtr(10),
		TotalToSync:     intPtr(20),
	}

	tests := []struct {
		name  string
		from  JobStatus
		patch Patch
		want  JobStatus
	}{
		{
			name:  "idle keeps the rest",
			from:  busy,
			patch: ToIdle(),
			want: JobStatus{Status: StateIdle, LastCursor: strPtr("abc"), LastSyncDate: &at,
				FailedSyncs: failed, RemainingToSync: intPtr(10), TotalToSync: intPtr(20)},
		},
		{
			name:  "running with total sets counters",
			from:  JobStatus{Status: StateScheduled},
			patch: ToRunning(intPtr(42)),
			want:  JobStatus{Status: StateRunning, RemainingToSync: intPtr(42), TotalToSync: intPtr(42)},
		},
		{
			name:  "running without total clears counters and cursor",
			from:  JobStatus{Status: StateResumable, LastCursor: strPtr("abc"), RemainingToSync: intPtr(3), TotalToSync: intPtr(9), FailedSyncs: failed},
			patch: ToRunning(nil),
			want:  JobStatus{Status: StateRunning, FailedSyncs: failed},
		},
		{
			name:  "to-stop clears cursor date and counters",
			from:  busy,
			patch: ToToStop(),
			want:  JobStatus{Status: StateToStop, FailedSyncs: failed},
		},
		{
			name:  "stopped records failures and date",
			from:  JobStatus{Status: StateToStop, LastCursor: strPtr("abc")},
			patch: ToStopped(failed, at),
			want:  JobStatus{Status: StateStopped, LastSyncDate: &at, FailedSyncs: failed},
		},
		{
			name:  "stopped without failures clears them",
			from:  busy,
			patch: ToStopped(nil, at),
			want:  JobStatus{Status: StateStopped, LastSyncDate: &at, RemainingToSync: intPtr(10), TotalToSync: intPtr(20)},
		},
		{
			name:  "scheduled resets everything but the failures passed",
			from:  busy,
			patch: ToScheduled(failed),
			want:  JobStatus{Status: StateScheduled, FailedSyncs: failed},
		},
		{
			name:  "scheduled with nil clears failures",
			from:  busy,
			patch: ToScheduled(nil),
			want:  JobStatus{Status: StateScheduled},
		},
		{
			name:  "resumable keeps cursor",
			from:  busy,
			patch: ToResumable("next", nil),
			want: JobStatus{Status: StateResumable, LastCursor: strPtr("next"), LastSyncDate: &at,
				FailedSyncs: []SyncError{}, RemainingToSync: intPtr(10), TotalToSync: intPtr(20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.patch.Apply(tt.from))
		})
	}
}

func TestPatch_ZeroValueIsNoop(t *testing.T) {
	t.Parallel()

	s := JobStatus{Status: StateRunning, LastCursor: strPtr("x"), RemainingToSync: intPtr(1)}
	assert.Equal(t, s, Patch{}.Apply(s))
}

func TestPatch_DoesNotAliasValues(t *testing.T) {
	t.Parallel()

	p := Patch{RemainingToSync: Set(5)}
	a := p.Apply(JobStatus{})
	*a.RemainingToSync = 1
	b := p.Apply(JobStatus{})
	assert.Equal(t, 5, *b.RemainingToSync)
}

func TestValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state      State
		inProgress bool
		ready      bool
	}{
		{StateIdle, false, false},
		{StateScheduled, false, true},
		{StateRunning, true, false},
		{StateToStop, false, false},
		{StateStopped, true, false},
		{StateResumable, false, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.inProgress, IsInProgress(tt.state), "IsInProgress(%s)", tt.state)
		assert.Equal(t, tt.ready, IsReady(tt.state), "IsReady(%s)", tt.state)
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "full-sync", KindFull.Key())
	assert.Equal(t, "delta-sync", KindDelta.Key())
	assert.Equal(t, "sync-config", KindAll.Key())

	k, err := ParseKind("delta")
	assert.NoError(t, err)
	assert.Equal(t, KindDelta, k)

	_, err = ParseKind("weekly")
	assert.Error(t, err)
}
