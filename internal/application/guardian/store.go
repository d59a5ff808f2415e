package guardian

import (
	"sync"
	"time"

	coreguardian "3tcapital/bridgeguardian/internal/core/guardian"
)

// Store owns the guardian counters and the restart history. It is shared by
// the guardian loop and the metrics collector; every method is one critical
// section under mu.
type Store struct {
	mu sync.Mutex

	checksTotal   uint64
	failuresTotal uint64
	restartsTotal uint64
	status        coreguardian.Status
	lastRestart   time.Time

	// history holds accepted restart times, pruned lazily by countRecentLocked.
	history []time.Time
}

// NewStore creates an empty store. The bridge is reported unhealthy until the
// first probe says otherwise.
func NewStore() *Store {
	return &Store{status: coreguardian.StatusUnhealthy}
}

// RecordCheck accounts for one probe attempt and its verdict.
func (s *Store) RecordCheck(healthy bool) coreguardian.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checksTotal++
	if !healthy {
		s.failuresTotal++
	}
	s.status = coreguardian.StatusFromVerdict(healthy)
	return s.status
}

// CountRecent returns the number of restarts accepted within the last hour
// before now, pruning older entries.
func (s *Store) CountRecent(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countRecentLocked(now)
}

// RecordRestart records an accepted restart at now. It does not check the
// hourly limit.
func (s *Store) RecordRestart(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordRestartLocked(now)
}

// TryReserveRestart decides and records a restart in one critical section.
// When the window already holds limit or more restarts, nothing is recorded
// and ok is false; count is the window size seen by the decision, or the size
// after recording when ok is true.
func (s *Store) TryReserveRestart(now time.Time, limit int) (count int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.countRecentLocked(now)
	if recent >= limit {
		return recent, false
	}
	s.recordRestartLocked(now)
	return len(s.history), true
}

// Snapshot copies every counter, together with the pruned recent restart
// count, under a single lock acquisition.
func (s *Store) Snapshot(now time.Time) coreguardian.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return coreguardian.Snapshot{
		ChecksTotal:    s.checksTotal,
		FailuresTotal:  s.failuresTotal,
		RestartsTotal:  s.restartsTotal,
		RecentRestarts: s.countRecentLocked(now),
		Status:         s.status,
		LastRestart:    s.lastRestart,
	}
}
