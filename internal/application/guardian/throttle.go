package guardian

import (
	"time"

	coreguardian "3tcapital/bridgeguardian/internal/core/guardian"
)

// countRecentLocked drops history entries older than the restart window and
// returns what is left. s.mu must be held.
func (s *Store) countRecentLocked(now time.Time) int {
	cutoff := now.Add(-coreguardian.RestartWindow)
	kept := s.history[:0]
	for _, t := range s.history {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	// Release the tail so pruned timestamps are not pinned by the backing array.
	clear(s.history[len(kept):])
	s.history = kept
	return len(s.history)
}

// recordRestartLocked appends an accepted restart. s.mu must be held.
func (s *Store) recordRestartLocked(now time.Time) {
	s.history = append(s.history, now)
	s.lastRestart = now
	s.restartsTotal++
}
