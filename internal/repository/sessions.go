package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/taskmanager/internal/db"
	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/lib/pq"
)

// PostgresSessionRepository stores refresh-token sessions as one row each,
// so appending a session never rewrites the ones already stored.
type PostgresSessionRepository struct {
	DB *sql.DB
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Append stores s for userID. When limit is positive, the user's oldest
// sessions beyond limit are evicted in the same transaction.
func (r *PostgresSessionRepository) Append(ctx context.Context, userID string, s models.Session, limit int) error {
	return db.WithTx(ctx, r.DB, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_sessions (user_id, token, expires_at) VALUES ($1, $2, $3)`,
			userID, s.Token, s.ExpiresAt,
		); err != nil {
			return fmt.Errorf("append session: %w", err)
		}

		if limit <= 0 {
			return nil
		}

		stale, err := overflowTokens(ctx, tx, userID, limit)
		if err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_sessions WHERE user_id = $1 AND token = ANY($2)`,
			userID, pq.Array(stale),
		); err != nil {
			return fmt.Errorf("evict sessions: %w", err)
		}
		return nil
	})
}

// ListByUser returns the user's sessions, oldest first.
func (r *PostgresSessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return listSessions(ctx, r.DB, userID)
}

func overflowTokens(ctx context.Context, tx db.DBTX, userID string, limit int) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT token FROM user_sessions WHERE user_id = $1 ORDER BY seq DESC OFFSET $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select overflow sessions: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
