package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/taskmanager/internal/middleware"
	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/atinyakov/taskmanager/internal/service"
	"go.uber.org/zap"
)

// UserService defines the account operations required by UserHandler.
type UserService interface {
	// SignUp registers a user and returns both tokens of its first session.
	SignUp(ctx context.Context, email, password string) (*models.User, service.TokenPair, error)
	// Login checks credentials and returns both tokens of a new session.
	Login(ctx context.Context, email, password string) (*models.User, service.TokenPair, error)
	// AccessToken mints a fresh access token for userID.
	AccessToken(userID string) (string, error)
}

// UserHandler handles sign-up, login and access-token refresh.
type UserHandler struct {
	UserService UserService
	Log         *zap.Logger
}

// credentialsRequest is the JSON payload of sign-up and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /users. The new tokens are returned in the
// x-refresh-token and x-access-token headers, the user in the body.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, pair, err := h.UserService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeTokens(w, pair)
	writeJSON(w, http.StatusOK, user)
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, pair, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeTokens(w, pair)
	writeJSON(w, http.StatusOK, user)
}

// AccessToken handles GET /users/me/access-token behind SessionGuard.
// The token is sent in the x-access-token header and as a one-element array.
func (h *UserHandler) AccessToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.UserService.AccessToken(userID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.Header().Set(middleware.HeaderAccessToken, token)
	writeJSON(w, http.StatusOK, []string{token})
}

func writeTokens(w http.ResponseWriter, pair service.TokenPair) {
	w.Header().Set(middleware.HeaderRefreshToken, pair.RefreshToken)
	w.Header().Set(middleware.HeaderAccessToken, pair.AccessToken)
}
