package guardian

import (
	"context"
	"time"
)

// EventKind distinguishes journal entries.
type EventKind string

const (
	EventRestart   EventKind = "restart"
	EventThrottled EventKind = "throttled"
)

// RestartEvent records one restart decision of the guardian loop.
type RestartEvent struct {
	ID            string
	CorrelationID string
	Service       string
	Kind          EventKind
	RecentCount   int
	RestartLimit  int
	Success       bool
	ErrorMessage  string
	OccurredAt    time.Time
}

// Journal persists restart decisions for later inspection. Entries are
// write-only from the guardian's point of view; counters are never rebuilt
// from them.
type Journal interface {
	Record(ctx context.Context, event RestartEvent) error
}
