package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App      AppSettings
	HTTP     HTTPSettings
	Log      LogSettings
	Bridge   BridgeSettings
	IMAP     IMAPSettings
	Guardian GuardianSettings
	Journal  JournalSettings
	Database DatabaseSettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

// HTTPSettings configures the metrics listener.
type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type LogSettings struct {
	Level string
}

// BridgeSettings identifies the supervised container.
type BridgeSettings struct {
	Name           string
	RestartTimeout time.Duration // Upper bound for a single `docker restart` call
}

type IMAPSettings struct {
	Host        string
	Port        int
	User        string
	Password    string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// GuardianSettings holds the loop timings and the restart budget.
type GuardianSettings struct {
	CheckInterval      time.Duration
	RestartCooldown    time.Duration
	StartupDelay       time.Duration
	ThrottleBackoff    time.Duration
	MaxRestartsPerHour int
}

// JournalSettings toggles the restart event journal kept in PostgreSQL.
type JournalSettings struct {
	Enabled      bool
	WriteTimeout time.Duration
}

type DatabaseSettings struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Load resolves the application configuration from environment variables.
// It first attempts to load variables from a .env file if it exists.
// Environment variables set in the system take precedence over .env file values.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "bridge-guardian"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "production"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("METRICS_PORT", 8008),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Bridge: BridgeSettings{
			Name:           strings.TrimSpace(getEnv("BRIDGE_NAME", "protonmail-bridge")),
			RestartTimeout: getEnvAsDuration("RESTART_TIMEOUT", 2*time.Minute),
		},
		IMAP: IMAPSettings{
			Host:        strings.TrimSpace(getEnv("IMAP_HOST", "protonmail-bridge")),
			Port:        getEnvAsInt("IMAP_PORT", 143),
			User:        getEnv("IMAP_USER", "CHANGE_ME"),
			Password:    getEnv("IMAP_PASS", "CHANGE_ME"),
			DialTimeout: getEnvAsDuration("PROBE_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout: getEnvAsDuration("PROBE_READ_TIMEOUT", 5*time.Second),
		},
		Guardian: GuardianSettings{
			CheckInterval:      getEnvAsSeconds("CHECK_INTERVAL", 20),
			RestartCooldown:    getEnvAsSeconds("RESTART_COOLDOWN", 30),
			StartupDelay:       getEnvAsSeconds("STARTUP_DELAY", 30),
			ThrottleBackoff:    getEnvAsDuration("THROTTLE_BACKOFF", 300*time.Second),
			MaxRestartsPerHour: getEnvAsInt("MAX_RESTARTS_PER_HOUR", 5),
		},
		Journal: JournalSettings{
			Enabled:      getEnvAsBool("JOURNAL_ENABLED", false),
			WriteTimeout: getEnvAsDuration("JOURNAL_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseSettings{
			Host:            strings.TrimSpace(os.Getenv("DB_HOST")),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        strings.TrimSpace(os.Getenv("DB_NAME")),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.Bridge.Name == "" {
		return errors.New("invalid config: BRIDGE_NAME must not be empty")
	}
	if c.IMAP.Host == "" {
		return errors.New("invalid config: IMAP_HOST must not be empty")
	}
	if !validPort(c.IMAP.Port) {
		return fmt.Errorf("invalid config: IMAP_PORT %d out of range", c.IMAP.Port)
	}
	if !validPort(c.HTTP.Port) {
		return fmt.Errorf("invalid config: METRICS_PORT %d out of range", c.HTTP.Port)
	}
	if c.Guardian.MaxRestartsPerHour < 0 {
		return errors.New("invalid config: MAX_RESTARTS_PER_HOUR must not be negative")
	}
	if c.Guardian.CheckInterval < 0 || c.Guardian.RestartCooldown < 0 ||
		c.Guardian.StartupDelay < 0 || c.Guardian.ThrottleBackoff < 0 {
		return errors.New("invalid config: guardian intervals must not be negative")
	}
	if c.IMAP.DialTimeout <= 0 || c.IMAP.ReadTimeout <= 0 {
		return errors.New("invalid config: PROBE_DIAL_TIMEOUT and PROBE_READ_TIMEOUT must be positive")
	}
	if c.Journal.Enabled {
		if c.Database.Host == "" {
			return errors.New("invalid config: DB_HOST is required when JOURNAL_ENABLED=true")
		}
		if c.Database.Database == "" {
			return errors.New("invalid config: DB_NAME is required when JOURNAL_ENABLED=true")
		}
	}
	return nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsSeconds reads a plain integer number of seconds, the format the
// bridge's compose files have always used for the loop timings.
func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
