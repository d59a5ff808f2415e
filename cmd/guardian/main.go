package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"3tcapital/bridgeguardian/internal/adapters/docker"
	"3tcapital/bridgeguardian/internal/adapters/http/metrics"
	"3tcapital/bridgeguardian/internal/adapters/imap"
	journalpg "3tcapital/bridgeguardian/internal/adapters/journal/postgres"
	appguardian "3tcapital/bridgeguardian/internal/application/guardian"
	coreguardian "3tcapital/bridgeguardian/internal/core/guardian"
	"3tcapital/bridgeguardian/internal/infrastructure/config"
	"3tcapital/bridgeguardian/internal/infrastructure/database"
	"3tcapital/bridgeguardian/internal/infrastructure/http/server"
	"3tcapital/bridgeguardian/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "guardian stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := appguardian.NewStore()

	collector := metrics.NewCollector(store, cfg.Guardian.MaxRestartsPerHour, nil)
	metricsHandler, err := metrics.NewHandler(collector, log)
	if err != nil {
		return fmt.Errorf("create metrics handler: %w", err)
	}

	srv, err := server.New(server.Options{
		Addr:            cfg.HTTP.Address(),
		Logger:          log,
		MetricsHandler:  metricsHandler,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	// Without the metrics port the guardian cannot be observed; refuse to start.
	if err := srv.Listen(); err != nil {
		return fmt.Errorf("bind metrics port: %w", err)
	}
	defer srv.Close()

	journal, closeJournal := openJournal(ctx, cfg, log)
	defer closeJournal()

	prober := imap.NewProber(imap.Config{
		Host:        cfg.IMAP.Host,
		Port:        cfg.IMAP.Port,
		User:        cfg.IMAP.User,
		Password:    cfg.IMAP.Password,
		DialTimeout: cfg.IMAP.DialTimeout,
		ReadTimeout: cfg.IMAP.ReadTimeout,
	})
	restarter := docker.NewRestarter(docker.Options{Timeout: cfg.Bridge.RestartTimeout})

	guardian, err := appguardian.NewService(appguardian.Config{
		Service:            cfg.Bridge.Name,
		CheckInterval:      cfg.Guardian.CheckInterval,
		RestartCooldown:    cfg.Guardian.RestartCooldown,
		StartupDelay:       cfg.Guardian.StartupDelay,
		ThrottleBackoff:    cfg.Guardian.ThrottleBackoff,
		MaxRestartsPerHour: cfg.Guardian.MaxRestartsPerHour,
		JournalTimeout:     cfg.Journal.WriteTimeout,
	}, appguardian.Dependencies{
		Store:     store,
		Prober:    prober,
		Restarter: restarter,
		Journal:   journal,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("create guardian: %w", err)
	}

	log.Info("Guardian configured",
		"bridge", cfg.Bridge.Name,
		"imap", prober.Address(),
		"check_interval", cfg.Guardian.CheckInterval,
		"restart_cooldown", cfg.Guardian.RestartCooldown,
		"max_restarts_per_hour", cfg.Guardian.MaxRestartsPerHour,
		"startup_delay", cfg.Guardian.StartupDelay,
		"journal_enabled", journal != nil,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		guardian.Run(ctx)
	}()

	err = srv.Run(ctx)
	stop()
	wg.Wait()
	return err
}

// openJournal connects the optional restart journal. Connection problems are
// logged and the guardian runs without a journal.
func openJournal(ctx context.Context, cfg config.AppConfig, log *slog.Logger) (coreguardian.Journal, func()) {
	noop := func() {}
	if !cfg.Journal.Enabled {
		log.Info("Restart journal disabled")
		return nil, noop
	}

	pool, err := database.NewPool(ctx, database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Database,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Warn("Failed to connect to database, restart journal disabled",
			"error", err,
			"host", cfg.Database.Host,
			"database", cfg.Database.Database,
			"user", cfg.Database.User,
			"password_set", cfg.Database.Password != "",
		)
		return nil, noop
	}

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		log.Warn("Failed to migrate database, restart journal disabled", "error", err)
		pool.Close()
		return nil, noop
	}

	log.Info("Restart journal enabled", "database", cfg.Database.Database)
	return journalpg.NewRepository(pool, log), pool.Close
}
