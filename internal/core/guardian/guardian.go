package guardian

import (
	"context"
	"time"
)

// RestartWindow is the rolling period the restart budget applies to.
const RestartWindow = time.Hour

// Status is the most recent probe verdict as exported to metrics.
type Status int

const (
	StatusUnhealthy Status = 0
	StatusHealthy   Status = 1
)

// StatusFromVerdict maps a probe verdict to its gauge value.
func StatusFromVerdict(healthy bool) Status {
	if healthy {
		return StatusHealthy
	}
	return StatusUnhealthy
}

// Snapshot is a consistent copy of the guardian counters taken under one lock.
type Snapshot struct {
	ChecksTotal    uint64
	FailuresTotal  uint64
	RestartsTotal  uint64
	RecentRestarts int
	Status         Status
	LastRestart    time.Time // zero until the first accepted restart
}

// LastRestartUnix returns the last restart as fractional epoch seconds, or 0.
func (s Snapshot) LastRestartUnix() float64 {
	if s.LastRestart.IsZero() {
		return 0
	}
	return float64(s.LastRestart.UnixNano()) / 1e9
}

// Prober performs a single health probe against the bridge.
// A nil error means the bridge is healthy.
type Prober interface {
	Probe(ctx context.Context) error
}

// Restarter restarts the supervised service by name.
type Restarter interface {
	Restart(ctx context.Context, service string) error
}
