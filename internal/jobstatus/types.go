// Package jobstatus holds the durable lifecycle record of the sync jobs and
// the named transitions that are the only way to change it.
package jobstatus

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a job
type State string

const (
	// StateIdle means a full sync finished and has nothing left to do
	StateIdle State = "idle"

	// StateScheduled means the job will start from scratch on the next trigger
	StateScheduled State = "scheduled"

	// StateRunning means a run is in progress
	StateRunning State = "running"

	// StateToStop means a cooperative stop was requested
	StateToStop State = "to-stop"

	// StateStopped means the run was stopped, by request or by the failure cap
	StateStopped State = "stopped"

	// StateResumable means the run hit its time budget and kept a cursor to resume from
	StateResumable State = "resumable"
)

// Kind identifies one of the durable records
type Kind string

const (
	// KindFull is the full sync job
	KindFull Kind = "full"

	// KindDelta is the incremental sync job
	KindDelta Kind = "delta"

	// KindAll is the shared sync configuration record
	KindAll Kind = "all"
)

// Container is the store container every record lives in.
const Container = "ct-connect-akeneo"

// Key returns the store key of the record for k.
func (k Kind) Key() string {
	switch k {
	case KindFull:
		return "full-sync"
	case KindDelta:
		return "delta-sync"
	case KindAll:
		return "sync-config"
	default:
		return string(k)
	}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFull, KindDelta, KindAll:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sync type %q", s)
	}
}

// SyncError records a single item that failed to sync.
type SyncError struct {
	Identifier   string `json:"identifier"`
	ErrorMessage string `json:"errorMessage"`
	Date         string `json:"date"`
}

// NewSyncError builds a failure entry stamped with at.
func NewSyncError(identifier string, err error, at time.Time) SyncError {
	return SyncError{
		Identifier:   identifier,
		ErrorMessage: err.Error(),
		Date:         at.UTC().Format(time.RFC3339),
	}
}

// JobStatus is the persisted status of a sync job. Field names match the
// documents read by the connector's admin UI.
type JobStatus struct {
	Status          State       `json:"status"`
	LastCursor      *string     `json:"lastCursor,omitempty"`
	LastSyncDate    *time.Time  `json:"lastSyncDate,omitempty"`
	FailedSyncs     []SyncError `json:"failedSyncs,omitempty"`
	RemainingToSync *int        `json:"remainingToSync,omitempty"`
	TotalToSync     *int        `json:"totalToSync,omitempty"`
}

// IsInProgress reports whether s blocks a new run from being launched.
func IsInProgress(s State) bool {
	return s == StateRunning || s == StateStopped
}

// IsReady reports whether a run may be launched from s.
func IsReady(s State) bool {
	return s == StateResumable || s == StateScheduled
}
