package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot represents the acquisition status available to the UI.
type Snapshot struct {
	Source      string // human-readable name of the open stream
	Connected   bool
	SourceEnded bool // the source closed and the read loop exited

	RowsRead        uint64
	TransformErrors uint64
	ReadErrors      uint64
	LastRowAt       time.Time

	LastError error
}

// Stalled reports whether no row arrived for longer than after while the
// source is still connected.
func (s Snapshot) Stalled(now time.Time, after time.Duration) bool {
	if !s.Connected || s.SourceEnded || s.LastRowAt.IsZero() {
		return false
	}
	return now.Sub(s.LastRowAt) > after
}

// Store coordinates updates from the acquisition goroutine with reads from
// the UI event loop.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Connect records the stream that rows will come from.
func (s *Store) Connect(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Source = source
	s.snapshot.Connected = true
	s.snapshot.SourceEnded = false
	s.snapshot.LastError = nil
}

// Fail records a setup error. Counters are kept.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Connected = false
	s.snapshot.LastError = err
}

// RowRead counts one appended row.
func (s *Store) RowRead(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.RowsRead++
	s.snapshot.LastRowAt = at
}

// TransformFailed counts a dropped row and keeps its error for display.
func (s *Store) TransformFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.TransformErrors++
	s.snapshot.LastError = err
}

// ReadFailed counts a read error on a source that stayed open.
func (s *Store) ReadFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.ReadErrors++
	s.snapshot.LastError = err
}

// SourceEnded marks that the read loop observed a closed source.
func (s *Store) SourceEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.SourceEnded = true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
