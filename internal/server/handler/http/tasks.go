package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/taskmanager/internal/middleware"
	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TaskService defines the task operations required by TaskHandler. Each
// call checks that the caller owns the list.
type TaskService interface {
	Tasks(ctx context.Context, ownerID, listID string) ([]models.Task, error)
	Create(ctx context.Context, ownerID, listID, title string) (*models.Task, error)
	Update(ctx context.Context, ownerID, listID, taskID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, listID, taskID string) (*models.Task, error)
}

// TaskHandler serves /lists/{listId}/tasks.
type TaskHandler struct {
	TaskService TaskService
	Log         *zap.Logger
}

// List handles GET /lists/{listId}/tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskService.Tasks(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "listId"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Create handles POST /lists/{listId}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	t, err := h.TaskService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "listId"), req.Title)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Update handles PATCH /lists/{listId}/tasks/{taskId}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	t, err := h.TaskService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()),
		chi.URLParam(r, "listId"), chi.URLParam(r, "taskId"), patch)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /lists/{listId}/tasks/{taskId}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.TaskService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()),
		chi.URLParam(r, "listId"), chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
