package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/taskmanager/internal/models"
)

// PostgresListRepository stores lists. Every query is filtered by owner.
type PostgresListRepository struct {
	DB *sql.DB
}

// NewPostgresListRepository creates a new PostgresListRepository.
func NewPostgresListRepository(db *sql.DB) *PostgresListRepository {
	return &PostgresListRepository{DB: db}
}

// Create inserts l.
func (r *PostgresListRepository) Create(ctx context.Context, l *models.List) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO lists (id, title, owner_id) VALUES ($1, $2, $3)`,
		l.ID, l.Title, l.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's lists in creation order.
func (r *PostgresListRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.List, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, owner_id FROM lists WHERE owner_id = $1 ORDER BY created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := make([]models.List, 0)
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.Title, &l.OwnerID); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// FindOwned returns the list only when ownerID owns it.
func (r *PostgresListRepository) FindOwned(ctx context.Context, id, ownerID string) (*models.List, error) {
	return scanList(r.DB.QueryRowContext(ctx,
		`SELECT id, title, owner_id FROM lists WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	), "find list")
}

// Update applies patch to an owned list and returns the result.
func (r *PostgresListRepository) Update(ctx context.Context, id, ownerID string, patch models.ListPatch) (*models.List, error) {
	return scanList(r.DB.QueryRowContext(ctx, `
		UPDATE lists SET title = COALESCE($3, title)
		WHERE id = $1 AND owner_id = $2
		RETURNING id, title, owner_id
	`, id, ownerID, patch.Title), "update list")
}

// Delete removes an owned list and returns the removed row.
func (r *PostgresListRepository) Delete(ctx context.Context, id, ownerID string) (*models.List, error) {
	return scanList(r.DB.QueryRowContext(ctx,
		`DELETE FROM lists WHERE id = $1 AND owner_id = $2 RETURNING id, title, owner_id`,
		id, ownerID,
	), "delete list")
}

func scanList(row *sql.Row, op string) (*models.List, error) {
	var l models.List
	err := row.Scan(&l.ID, &l.Title, &l.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}
