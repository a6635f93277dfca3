// Package store holds the current entity snapshot and refreshes it from the backend.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/service-order-scheduler/internal/scheduler"
)

// Status reports the freshness of the published snapshot.
type Status struct {
	Loaded      bool
	Stale       bool
	LoadedAt    time.Time
	LastAttempt time.Time
	LastError   string
}

// Store publishes immutable snapshots. Readers never block; writers are serialized.
type Store struct {
	current atomic.Pointer[scheduler.Snapshot]

	mu     sync.Mutex
	status Status
}

// New returns a store holding an empty, never-loaded snapshot.
func New() *Store {
	s := &Store{}
	s.current.Store(&scheduler.Snapshot{})
	return s
}

// Snapshot returns the published snapshot. The caller must not mutate its slices.
func (s *Store) Snapshot() scheduler.Snapshot {
	if s == nil {
		return scheduler.Snapshot{}
	}
	if snap := s.current.Load(); snap != nil {
		return *snap
	}
	return scheduler.Snapshot{}
}

// Replace publishes a fully loaded snapshot and clears the stale flag.
func (s *Store) Replace(snapshot scheduler.Snapshot, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.LoadedAt = at
	s.current.Store(&snapshot)
	s.status = Status{Loaded: true, LoadedAt: at, LastAttempt: at}
}

// MarkStale records a failed refresh. The published snapshot is kept as is.
func (s *Store) MarkStale(err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Stale = true
	s.status.LastAttempt = at
	if err != nil {
		s.status.LastError = err.Error()
	}
}

// Apply publishes the snapshot returned by fn, which receives the current one.
// fn must return a modified copy (see the scheduler.Snapshot With helpers).
func (s *Store) Apply(fn func(scheduler.Snapshot) scheduler.Snapshot) scheduler.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.Snapshot())
	s.current.Store(&next)
	return next
}

// Status returns the freshness report.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
