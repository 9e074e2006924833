// Package http provides HTTP routing and middleware configuration
// for the task manager API.
package http

import (
	"net/http"

	"github.com/atinyakov/taskmanager/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions carries the guards and cross-cutting pieces of the router.
type RouterOptions struct {
	// AccessGuard protects resource routes.
	AccessGuard func(http.Handler) http.Handler
	// SessionGuard protects the access-token refresh route.
	SessionGuard func(http.Handler) http.Handler
	// Metrics instruments every request when set.
	Metrics *middleware.Metrics
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	// AllowedOrigins lists CORS origins; empty means any.
	AllowedOrigins []string
}

// NewRouter constructs the API handler.
//
// Routes:
//
//	POST   /users                          → userHandler.SignUp
//	POST   /users/login                    → userHandler.Login
//	GET    /users/me/access-token          → userHandler.AccessToken (SessionGuard)
//	GET    /lists, POST /lists             → listHandler (AccessGuard)
//	PATCH  /lists/{id}, DELETE /lists/{id} → listHandler (AccessGuard)
//	GET    /lists/{listId}/tasks, POST     → taskHandler (AccessGuard)
//	PATCH  /lists/{listId}/tasks/{taskId}  → taskHandler.Update (AccessGuard)
//	DELETE /lists/{listId}/tasks/{taskId}  → taskHandler.Delete (AccessGuard)
//	GET    /metrics                        → opts.MetricsHandler
//
// Middleware chain (applied in order): panic recovery, CORS, metrics,
// request logging and JSON content-type enforcement.
func NewRouter(
	userHandler *UserHandler,
	listHandler *ListHandler,
	taskHandler *TaskHandler,
	opts RouterOptions,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(corsOptions(opts.AllowedOrigins)))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Instrument)
	}
	r.Use(middleware.WithRequestLogging(logger))
	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.SignUp)
		r.Post("/login", userHandler.Login)
		r.With(opts.SessionGuard).Get("/me/access-token", userHandler.AccessToken)
	})

	r.Route("/lists", func(r chi.Router) {
		r.Use(opts.AccessGuard)

		r.Get("/", listHandler.List)
		r.Post("/", listHandler.Create)
		r.Patch("/{id}", listHandler.Update)
		r.Delete("/{id}", listHandler.Delete)

		r.Route("/{listId}/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)
			r.Patch("/{taskId}", taskHandler.Update)
			r.Delete("/{taskId}", taskHandler.Delete)
		})
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions,
			http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.HeaderAccessToken, middleware.HeaderRefreshToken},
	}
}
