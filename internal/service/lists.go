package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cascadeTimeout bounds the background deletion of a removed list's tasks.
const cascadeTimeout = 30 * time.Second

// ListRepository defines the owner-scoped persistence of lists.
type ListRepository interface {
	Create(ctx context.Context, l *models.List) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.List, error)
	FindOwned(ctx context.Context, id, ownerID string) (*models.List, error)
	Update(ctx context.Context, id, ownerID string, patch models.ListPatch) (*models.List, error)
	Delete(ctx context.Context, id, ownerID string) (*models.List, error)
}

// TaskRepository defines the list-scoped persistence of tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	ListByList(ctx context.Context, listID string) ([]models.Task, error)
	Update(ctx context.Context, listID, taskID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, listID, taskID string) (*models.Task, error)
	DeleteByList(ctx context.Context, listID string) (int64, error)
}

// ListService manages lists on behalf of their owner. Lists owned by
// someone else are reported as models.ErrNotFound.
type ListService struct {
	lists ListRepository
	tasks TaskRepository
	log   *zap.Logger

	wg sync.WaitGroup
}

// NewListService constructs a ListService.
func NewListService(lists ListRepository, tasks TaskRepository, log *zap.Logger) *ListService {
	return &ListService{lists: lists, tasks: tasks, log: log}
}

// Lists returns every list owned by ownerID.
func (s *ListService) Lists(ctx context.Context, ownerID string) ([]models.List, error) {
	return s.lists.ListByOwner(ctx, ownerID)
}

// Create adds a list titled title for ownerID.
func (s *ListService) Create(ctx context.Context, ownerID, title string) (*models.List, error) {
	title, err := requireTitle(title)
	if err != nil {
		return nil, err
	}

	l := &models.List{ID: uuid.NewString(), Title: title, OwnerID: ownerID}
	if err := s.lists.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Update applies patch to a list owned by ownerID.
func (s *ListService) Update(ctx context.Context, ownerID, id string, patch models.ListPatch) (*models.List, error) {
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
	return s.lists.Update(ctx, id, ownerID, patch)
}

// Delete removes a list owned by ownerID and returns it. Its tasks are
// deleted in the background; Wait blocks until that finishes.
func (s *ListService) Delete(ctx context.Context, ownerID, id string) (*models.List, error) {
	l, err := s.lists.Delete(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cascadeTimeout)
		defer cancel()

		n, err := s.tasks.DeleteByList(cctx, l.ID)
		if err != nil {
			s.log.Error("failed to delete tasks of removed list", zap.String("list_id", l.ID), zap.Error(err))
			return
		}
		s.log.Info("deleted tasks of removed list", zap.String("list_id", l.ID), zap.Int64("removed", n))
	}()

	return l, nil
}

// Wait blocks until all background task deletions have finished.
func (s *ListService) Wait() {
	s.wg.Wait()
}

var errNothingToUpdate = &models.ValidationError{Field: "body", Reason: "no updatable fields"}

func requireTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &models.ValidationError{Field: "title", Reason: "is required"}
	}
	return title, nil
}
