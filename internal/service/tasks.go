package service

import (
	"context"

	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/google/uuid"
)

// ListOwnership confirms that a list belongs to a user.
type ListOwnership interface {
	FindOwned(ctx context.Context, id, ownerID string) (*models.List, error)
}

// TaskService manages tasks inside lists. Every call re-checks that the
// caller owns the parent list and answers models.ErrNotFound otherwise.
type TaskService struct {
	lists ListOwnership
	tasks TaskRepository
}

// NewTaskService constructs a TaskService.
func NewTaskService(lists ListOwnership, tasks TaskRepository) *TaskService {
	return &TaskService{lists: lists, tasks: tasks}
}

// Tasks returns the tasks of a list owned by ownerID.
func (s *TaskService) Tasks(ctx context.Context, ownerID, listID string) ([]models.Task, error) {
	if err := s.owns(ctx, ownerID, listID); err != nil {
		return nil, err
	}
	return s.tasks.ListByList(ctx, listID)
}

// Create adds a task to a list owned by ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID, listID, title string) (*models.Task, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}
	if err := s.owns(ctx, ownerID, listID); err != nil {
		return nil, err
	}

	t := &models.Task{ID: uuid.NewString(), Title: title, ListID: listID}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update applies patch to a task in a list owned by ownerID.
func (s *TaskService) Update(ctx context.Context, ownerID, listID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return nil, errNothingToUpdate
	}
	if patch.Title != nil {
		title, err := requireTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if err := s.owns(ctx, ownerID, listID); err != nil {
		return nil, err
	}
	return s.tasks.Update(ctx, listID, taskID, patch)
}

// Delete removes a task from a list owned by ownerID and returns it.
func (s *TaskService) Delete(ctx context.Context, ownerID, listID, taskID string) (*models.Task, error) {
	if err := s.owns(ctx, ownerID, listID); err != nil {
		return nil, err
	}
	return s.tasks.Delete(ctx, listID, taskID)
}

func (s *TaskService) owns(ctx context.Context, ownerID, listID string) error {
	_, err := s.lists.FindOwned(ctx, listID, ownerID)
	return err
}
