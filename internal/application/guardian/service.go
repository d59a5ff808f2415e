package guardian

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	coreguardian "3tcapital/bridgeguardian/internal/core/guardian"
	ctxutil "3tcapital/bridgeguardian/internal/infrastructure/context"
)

// Config holds the loop timings and the restart budget.
type Config struct {
	Service            string
	CheckInterval      time.Duration
	RestartCooldown    time.Duration
	StartupDelay       time.Duration
	ThrottleBackoff    time.Duration
	MaxRestartsPerHour int
	// JournalTimeout bounds a single journal write. Zero means no extra bound.
	JournalTimeout time.Duration
}

// Dependencies are the collaborators of the guardian loop.
type Dependencies struct {
	Store     *Store
	Prober    coreguardian.Prober
	Restarter coreguardian.Restarter
	Logger    *slog.Logger

	// Optional.
	Journal coreguardian.Journal
	Clock   Clock
}

// Decision is the outcome of one guardian cycle.
type Decision struct {
	State          coreguardian.State
	Healthy        bool
	RecentRestarts int
	Sleep          time.Duration
	ProbeErr       error
	RestartErr     error
}

// Service runs the probe / restart / sleep control loop.
type Service struct {
	cfg       Config
	store     *Store
	prober    coreguardian.Prober
	restarter coreguardian.Restarter
	journal   coreguardian.Journal
	clock     Clock
	log       *slog.Logger
}

// NewService validates the dependencies and builds a guardian loop.
func NewService(cfg Config, deps Dependencies) (*Service, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Prober == nil {
		return nil, errors.New("prober is required")
	}
	if deps.Restarter == nil {
		return nil, errors.New("restarter is required")
	}
	if cfg.Service == "" {
		return nil, errors.New("service name is required")
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}

	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		prober:    deps.Prober,
		restarter: deps.Restarter,
		journal:   deps.Journal,
		clock:     deps.Clock,
		log:       deps.Logger.With("service", cfg.Service),
	}, nil
}

// Run waits for the startup delay and then cycles until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("Startup delay", "delay", s.cfg.StartupDelay, "state", coreguardian.StateStarting.String())
	if err := s.clock.Sleep(ctx, s.cfg.StartupDelay); err != nil {
		return
	}
	s.log.Info("Starting health checks",
		"check_interval", s.cfg.CheckInterval,
		"restart_limit", s.cfg.MaxRestartsPerHour,
	)

	for {
		decision := s.Cycle(ctx)
		if err := s.clock.Sleep(ctx, decision.Sleep); err != nil {
			s.log.Info("Guardian loop stopped", "reason", err)
			return
		}
	}
}

// Cycle runs one probe and, when the bridge is unhealthy, one restart
// decision. It never sleeps; the returned Decision says for how long the
// caller should wait before the next cycle. A probe interrupted by ctx
// cancellation is neither counted nor acted on.
func (s *Service) Cycle(ctx context.Context) Decision {
	ctx, cycleID := ctxutil.NewCorrelationID(ctx)
	log := s.log.With("cycle_id", cycleID)

	probeErr := s.prober.Probe(ctx)
	if ctx.Err() != nil {
		// Shutting down: the probe result says nothing about the bridge.
		log.Info("Health check interrupted", "reason", ctx.Err())
		return Decision{State: coreguardian.StateChecking, ProbeErr: probeErr}
	}
	healthy := probeErr == nil
	s.store.RecordCheck(healthy)

	if healthy {
		log.Info("Bridge healthy")
		return Decision{
			State:   coreguardian.StateChecking,
			Healthy: true,
			Sleep:   s.cfg.CheckInterval,
		}
	}

	log.Warn("Bridge unhealthy", "error", probeErr)

	now := s.clock.Now()
	limit := s.cfg.MaxRestartsPerHour
	count, ok := s.store.TryReserveRestart(now, limit)
	if !ok {
		log.Warn("Restart limit reached, backing off",
			"recent", count,
			"limit", limit,
			"backoff", s.cfg.ThrottleBackoff,
			"state", coreguardian.StateThrottledWait.String(),
		)
		s.record(ctx, log, coreguardian.RestartEvent{
			Kind:        coreguardian.EventThrottled,
			RecentCount: count,
			OccurredAt:  now,
		})
		return Decision{
			State:          coreguardian.StateThrottledWait,
			RecentRestarts: count,
			Sleep:          s.cfg.ThrottleBackoff,
			ProbeErr:       probeErr,
		}
	}

	log.Info("Restarting bridge",
		"restart_number", count,
		"limit", limit,
		"state", coreguardian.StateRestarting.String(),
	)
	restartErr := s.restarter.Restart(ctx, s.cfg.Service)
	if restartErr != nil {
		log.Error("Failed to restart bridge", "error", restartErr)
	} else {
		log.Info("Bridge restarted", "cooldown", s.cfg.RestartCooldown)
	}

	event := coreguardian.RestartEvent{
		Kind:        coreguardian.EventRestart,
		RecentCount: count,
		Success:     restartErr == nil,
		OccurredAt:  now,
	}
	if restartErr != nil {
		event.ErrorMessage = restartErr.Error()
	}
	s.record(ctx, log, event)

	return Decision{
		State:          coreguardian.StateRestarting,
		RecentRestarts: count,
		Sleep:          s.cfg.RestartCooldown,
		ProbeErr:       probeErr,
		RestartErr:     restartErr,
	}
}

// record writes a journal entry when a journal is configured. Failures are
// logged and otherwise ignored.
func (s *Service) record(ctx context.Context, log *slog.Logger, event coreguardian.RestartEvent) {
	if s.journal == nil {
		return
	}

	event.ID = uuid.NewString()
	event.CorrelationID = ctxutil.GetCorrelationID(ctx)
	event.Service = s.cfg.Service
	event.RestartLimit = s.cfg.MaxRestartsPerHour

	if s.cfg.JournalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.JournalTimeout)
		defer cancel()
	}

	if err := s.journal.Record(ctx, event); err != nil {
		log.Warn("Failed to write restart journal", "error", err, "kind", event.Kind)
	}
}
