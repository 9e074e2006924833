// Package repository provides PostgreSQL persistence for users, their
// refresh-token sessions, lists and tasks.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/taskmanager/internal/db"
	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// PostgresUserRepository stores user credentials in PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Create inserts a new user. A duplicate email yields models.ErrEmailTaken.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Email, u.PasswordHash,
	)
	if isUniqueViolation(err) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail returns the user registered with email, without sessions.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(ctx, "find user by email",
		`SELECT id, email, password_hash FROM users WHERE email = $1`, email)
}

// FindByID returns the user with the given id, without sessions.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.scanUser(ctx, "find user by id",
		`SELECT id, email, password_hash FROM users WHERE id = $1`, id)
}

// FindByIDAndToken returns the user only if it holds a session with exactly
// the given token. The returned user carries all of its sessions, oldest first.
func (r *PostgresUserRepository) FindByIDAndToken(ctx context.Context, id, token string) (*models.User, error) {
	u, err := r.scanUser(ctx, "find user by token", `
		SELECT u.id, u.email, u.password_hash FROM users u
		WHERE u.id = $1
		  AND EXISTS (SELECT 1 FROM user_sessions s WHERE s.user_id = u.id AND s.token = $2)
	`, id, token)
	if err != nil {
		return nil, err
	}

	u.Sessions, err = listSessions(ctx, r.DB, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Save persists the email and password hash of an existing user.
func (r *PostgresUserRepository) Save(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email = $2, password_hash = $3 WHERE id = $1`,
		u.ID, u.Email, u.PasswordHash,
	)
	if isUniqueViolation(err) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) scanUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func listSessions(ctx context.Context, q db.DBTX, userID string) ([]models.Session, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT token, expires_at FROM user_sessions WHERE user_id = $1 ORDER BY seq`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.Token, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
