package testutil

import (
	"context"
	"sync"

	"3tcapital/bridgeguardian/internal/core/guardian"
)

// MockProber is a mock implementation of guardian.Prober.
type MockProber struct {
	ProbeFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls int
}

// Probe calls the mock function if set, otherwise reports healthy.
func (m *MockProber) Probe(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx)
	}
	return nil
}

// Calls returns how many probes were made.
func (m *MockProber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockRestarter is a mock implementation of guardian.Restarter.
type MockRestarter struct {
	RestartFunc func(ctx context.Context, service string) error

	mu       sync.Mutex
	services []string
}

// Restart records the call and delegates to the mock function if set.
func (m *MockRestarter) Restart(ctx context.Context, service string) error {
	m.mu.Lock()
	m.services = append(m.services, service)
	m.mu.Unlock()
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, service)
	}
	return nil
}

// Calls returns how many restarts were issued.
func (m *MockRestarter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.services)
}

// Services returns the service names passed to Restart, in order.
func (m *MockRestarter) Services() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.services...)
}

// MockJournal is an in-memory guardian.Journal.
type MockJournal struct {
	RecordFunc func(ctx context.Context, event guardian.RestartEvent) error

	mu     sync.Mutex
	events []guardian.RestartEvent
}

// Record stores the event, then delegates to the mock function if set.
func (m *MockJournal) Record(ctx context.Context, event guardian.RestartEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, event)
	}
	return nil
}

// Events returns the recorded events, in order.
func (m *MockJournal) Events() []guardian.RestartEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]guardian.RestartEvent(nil), m.events...)
}
