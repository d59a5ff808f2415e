package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"3tcapital/bridgeguardian/internal/core/guardian"
)

const insertEventQuery = `
	INSERT INTO guardian_restart_events (
		id, correlation_id, service, kind, recent_count,
		restart_limit, success, error_message, occurred_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// execer is the subset of *pgxpool.Pool the repository needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository implements guardian.Journal using PostgreSQL.
type Repository struct {
	db  execer
	log *slog.Logger
}

// NewRepository creates a new PostgreSQL restart journal.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) *Repository {
	return &Repository{db: pool, log: log}
}

// Record inserts one restart decision.
func (r *Repository) Record(ctx context.Context, event guardian.RestartEvent) error {
	_, err := r.db.Exec(ctx, insertEventQuery,
		event.ID,
		event.CorrelationID,
		event.Service,
		string(event.Kind),
		event.RecentCount,
		event.RestartLimit,
		event.Success,
		event.ErrorMessage,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert restart event: %w", err)
	}

	if r.log != nil {
		r.log.Debug("Restart event journaled",
			"id", event.ID,
			"correlation_id", event.CorrelationID,
			"kind", event.Kind,
			"recent", event.RecentCount,
		)
	}
	return nil
}
