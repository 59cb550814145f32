package snapshot

import (
	"dedi-tracker/internal/domain"
	"sync/atomic"
	"time"
)

// Snapshot is an immutable published dataset plus the moment it was
// published. Consumers must not mutate the records slice.
type Snapshot struct {
	Dataset   domain.Dataset
	UpdatedAt time.Time
}

// Slot is the process-wide handle to the most recent successful scrape.
// Publication is a whole-pointer swap: readers observe either the previous
// snapshot or the new one, never a mix.
type Slot struct {
	current atomic.Pointer[Snapshot]
}

func NewSlot() *Slot {
	return &Slot{}
}

// Publish atomically replaces the current snapshot.
func (s *Slot) Publish(dataset domain.Dataset, at time.Time) {
	s.current.Store(&Snapshot{Dataset: dataset, UpdatedAt: at})
}

// Load returns the current snapshot, or nil when nothing has been
// published yet.
func (s *Slot) Load() *Snapshot {
	return s.current.Load()
}
