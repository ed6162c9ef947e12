package jobstatus

import "time"

// Field is one entry of a Patch. The zero Field leaves the stored value
// untouched; a set Field with no value clears it.
type Field[T any] struct {
	set   bool
	value *T
}

// Set returns a Field that stores v.
func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: &v}
}

// Clear returns a Field that removes the stored value.
func Clear[T any]() Field[T] {
	return Field[T]{set: true}
}

// SetOrClear stores *v, or clears the value when v is nil.
func SetOrClear[T any](v *T) Field[T] {
	if v == nil {
		return Clear[T]()
	}
	return Set(*v)
}

// IsSet reports whether the field changes the stored value.
func (f Field[T]) IsSet() bool {
	return f.set
}

// Value returns the new value and whether there is one.
func (f Field[T]) Value() (T, bool) {
	if f.value == nil {
		var zero T
		return zero, false
	}
	return *f.value, true
}

func (f Field[T]) applyPtr(dst **T) {
	if !f.set {
		return
	}
	if f.value == nil {
		*dst = nil
		return
	}
	v := *f.value
	*dst = &v
}

func (f Field[T]) applyValue(dst *T) {
	if !f.set {
		return
	}
	if f.value == nil {
		var zero T
		*dst = zero
		return
	}
	*dst = *f.value
}

// Patch is a partial update of a JobStatus.
type Patch struct {
	Status          Field[State]
	LastCursor      Field[string]
	LastSyncDate    Field[time.Time]
	FailedSyncs     Field[[]SyncError]
	RemainingToSync Field[int]
	TotalToSync     Field[int]
}

// Apply returns s with the patch merged onto it.
func (p Patch) Apply(s JobStatus) JobStatus {
	p.Status.applyValue(&s.Status)
	p.LastCursor.applyPtr(&s.LastCursor)
	p.LastSyncDate.applyPtr(&s.LastSyncDate)
	p.FailedSyncs.applyValue(&s.FailedSyncs)
	p.RemainingToSync.applyPtr(&s.RemainingToSync)
	p.TotalToSync.applyPtr(&s.TotalToSync)
	return s
}

// ToIdle marks a full sync as complete.
func ToIdle() Patch {
	return Patch{Status: Set(StateIdle)}
}

// ToRunning starts a run. A nil total clears the counters, which is what a
// resumed run does since the totals are unknown mid-way. The cursor is only
// kept while resumable, so the caller reads it before applying this.
func ToRunning(total *int) Patch {
	return Patch{
		Status:          Set(StateRunning),
		LastCursor:      Clear[string](),
		TotalToSync:     SetOrClear(total),
		RemainingToSync: SetOrClear(total),
	}
}

// ToToStop requests a cooperative stop.
func ToToStop() Patch {
	return Patch{
		Status:          Set(StateToStop),
		LastCursor:      Clear[string](),
		LastSyncDate:    Clear[time.Time](),
		RemainingToSync: Clear[int](),
		TotalToSync:     Clear[int](),
	}
}

// ToStopped stops the job at the given time, recording failed.
func ToStopped(failed []SyncError, at time.Time) Patch {
	return Patch{
		Status:       Set(StateStopped),
		LastCursor:   Clear[string](),
		LastSyncDate: Set(at.UTC()),
		FailedSyncs:  Set(failed),
	}
}

// ToScheduled resets the job so the next trigger starts from scratch. Passing
// nil clears the failures.
func ToScheduled(failed []SyncError) Patch {
	return Patch{
		Status:          Set(StateScheduled),
		LastCursor:      Clear[string](),
		LastSyncDate:    Clear[time.Time](),
		RemainingToSync: Clear[int](),
		TotalToSync:     Clear[int](),
		FailedSyncs:     Set(failed),
	}
}

// ToResumable parks the run at cursor.
func ToResumable(cursor string, failed []SyncError) Patch {
	if failed == nil {
		failed = []SyncError{}
	}
	return Patch{
		Status:      Set(StateResumable),
		LastCursor:  Set(cursor),
		FailedSyncs: Set(failed),
	}
}
