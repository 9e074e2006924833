package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/taskmanager/internal/models"
	"go.uber.org/zap"
)

// SessionStore looks up refresh-token sessions.
type SessionStore interface {
	FindByIDAndToken(ctx context.Context, id, token string) (*models.User, error)
	IsSessionValid(u *models.User, token string) bool
}

// SessionGuard admits requests whose _id and x-refresh-token headers name a
// stored, unexpired session. The user id, the user and the refresh token are
// stored in the request context.
func SessionGuard(store SessionStore, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderRefreshToken)
			userID := r.Header.Get(HeaderUserID)
			if token == "" || userID == "" {
				http.Error(w, "missing session credentials", http.StatusUnauthorized)
				return
			}

			user, err := store.FindByIDAndToken(r.Context(), userID, token)
			if errors.Is(err, models.ErrNotFound) {
				http.Error(w, "session not found", http.StatusUnauthorized)
				return
			}
			if err != nil {
				log.Error("session lookup failed", zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			if !store.IsSessionValid(user, token) {
				http.Error(w, "refresh token has expired or the session is invalid", http.StatusUnauthorized)
				return
			}

			ctx := WithUserID(r.Context(), user.ID)
			ctx = context.WithValue(ctx, userKey, user)
			ctx = context.WithValue(ctx, refreshTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
