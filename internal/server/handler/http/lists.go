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

// ListService defines the list operations required by ListHandler.
// Lists of other owners are reported as models.ErrNotFound.
type ListService interface {
	Lists(ctx context.Context, ownerID string) ([]models.List, error)
	Create(ctx context.Context, ownerID, title string) (*models.List, error)
	Update(ctx context.Context, ownerID, id string, patch models.ListPatch) (*models.List, error)
	Delete(ctx context.Context, ownerID, id string) (*models.List, error)
}

// ListHandler serves /lists.
type ListHandler struct {
	ListService ListService
	Log         *zap.Logger
}

type titleRequest struct {
	Title string `json:"title"`
}

// List handles GET /lists.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.ListService.Lists(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// Create handles POST /lists.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	l, err := h.ListService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.Title)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Update handles PATCH /lists/{id}.
func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.ListPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	l, err := h.ListService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Delete handles DELETE /lists/{id}. The list's tasks are removed afterwards.
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	l, err := h.ListService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
