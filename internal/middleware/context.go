// Package middleware provides HTTP middlewares for authentication, request
// logging and metrics, and accessors for the identity they attach to the
// request context.
package middleware

import (
	"context"

	"github.com/atinyakov/taskmanager/internal/models"
)

// Header names used to transport credentials in both directions.
const (
	HeaderAccessToken  = "x-access-token"
	HeaderRefreshToken = "x-refresh-token"
	HeaderUserID       = "_id"
)

type ctxKey string

const (
	userIDKey       ctxKey = "user_id"
	userKey         ctxKey = "user"
	refreshTokenKey ctxKey = "refresh_token"
)

// GetUserIDFromContext extracts the authenticated user id from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(userIDKey).(string); ok {
		return s
	}
	return ""
}

// GetUserFromContext returns the user loaded by SessionGuard, or nil.
func GetUserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// GetRefreshTokenFromContext returns the refresh token accepted by SessionGuard.
func GetRefreshTokenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(refreshTokenKey).(string)
	return s
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
