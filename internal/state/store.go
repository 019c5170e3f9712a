package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/oneearth/internal/schema"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Latest      Query[schema.LatestMetric]
	Series      Query[schema.Series]
	Hello       string
	HelloErr    error
	LastUpdated time.Time
}

// Pending reports whether the dashboard has nothing to show yet.
func (s Snapshot) Pending() bool {
	return !s.Unavailable() && (!s.Latest.HasData || !s.Series.HasData)
}

// Unavailable reports whether either query's most recent cycle failed.
func (s Snapshot) Unavailable() bool {
	return s.Latest.Err != nil || s.Series.Err != nil
}

// IsOffline returns true when either query has been failing for multiple cycles.
func (s Snapshot) IsOffline() bool {
	return s.Latest.IsOffline() || s.Series.IsOffline()
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// UpdateLatest replaces the latest-reading query state.
func (s *Store) UpdateLatest(q Query[schema.LatestMetric]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Latest = q
	s.snapshot.LastUpdated = time.Now()
}

// UpdateSeries replaces the series query state.
func (s *Store) UpdateSeries(q Query[schema.Series]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q.Data = q.Data.Clone()
	s.snapshot.Series = q
	s.snapshot.LastUpdated = time.Now()
}

// UpdateHello records the status banner message. When err is non-nil the
// previous message is kept but the error is recorded for visibility.
func (s *Store) UpdateHello(msg string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.HelloErr = err
		return
	}
	s.snapshot.Hello = msg
	s.snapshot.HelloErr = nil
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Series.Data = s.snapshot.Series.Data.Clone()
	snap.Latest.Err = cloneErr(s.snapshot.Latest.Err)
	snap.Series.Err = cloneErr(s.snapshot.Series.Err)
	snap.HelloErr = cloneErr(s.snapshot.HelloErr)
	return snap
}

func cloneErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w", err)
}
