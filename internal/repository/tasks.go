package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/taskmanager/internal/models"
)

// PostgresTaskRepository stores tasks. Ownership is checked by the caller
// against the parent list; queries here only scope by list id.
type PostgresTaskRepository struct {
	DB *sql.DB
}

// NewPostgresTaskRepository creates a new PostgresTaskRepository.
func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

// Create inserts t.
func (r *PostgresTaskRepository) Create(ctx context.Context, t *models.Task) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO tasks (id, title, list_id, completed) VALUES ($1, $2, $3, $4)`,
		t.ID, t.Title, t.ListID, t.Completed,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByList returns the tasks of a list in creation order.
func (r *PostgresTaskRepository) ListByList(ctx context.Context, listID string) ([]models.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, list_id, completed FROM tasks WHERE list_id = $1 ORDER BY created_at, id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.ListID, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies patch to a task of the given list.
func (r *PostgresTaskRepository) Update(ctx context.Context, listID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx, `
		UPDATE tasks SET title = COALESCE($3, title), completed = COALESCE($4, completed)
		WHERE id = $1 AND list_id = $2
		RETURNING id, title, list_id, completed
	`, taskID, listID, patch.Title, patch.Completed), "update task")
}

// Delete removes a task of the given list and returns the removed row.
func (r *PostgresTaskRepository) Delete(ctx context.Context, listID, taskID string) (*models.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND list_id = $2 RETURNING id, title, list_id, completed`,
		taskID, listID,
	), "delete task")
}

// DeleteByList removes every task of a list and reports how many were removed.
func (r *PostgresTaskRepository) DeleteByList(ctx context.Context, listID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = $1`, listID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks of list: %w", err)
	}
	return res.RowsAffected()
}

func scanTask(row *sql.Row, op string) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.ListID, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}
