// Package main initializes and starts the task manager API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/taskmanager/internal/auth"
	"github.com/atinyakov/taskmanager/internal/config"
	"github.com/atinyakov/taskmanager/internal/db"
	"github.com/atinyakov/taskmanager/internal/logger"
	"github.com/atinyakov/taskmanager/internal/middleware"
	"github.com/atinyakov/taskmanager/internal/repository"
	"github.com/atinyakov/taskmanager/internal/server/handler/http"
	"github.com/atinyakov/taskmanager/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Purge expired refresh-token sessions in the background.
	db.StartSessionCleaner(ctx, postgresDB, options.SessionCleanupInterval, zapLogger)

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	sessionRepo := repository.NewPostgresSessionRepository(postgresDB)
	listRepo := repository.NewPostgresListRepository(postgresDB)
	taskRepo := repository.NewPostgresTaskRepository(postgresDB)

	issuer, err := auth.NewIssuer(options.SecretKey, options.PreviousSecretKeys, options.AccessTokenTTL)
	if err != nil {
		zapLogger.Fatal("cannot init token issuer", zap.Error(err))
	}

	// Initialize business-logic services.
	userService := service.NewUserService(userRepo, sessionRepo, issuer, service.UserConfig{
		RefreshTokenTTL: options.RefreshTokenTTL,
		MaxSessions:     options.MaxSessions,
	})
	listService := service.NewListService(listRepo, taskRepo, zapLogger)
	taskService := service.NewTaskService(listRepo, taskRepo)

	// Create HTTP handlers.
	userHandler := &http.UserHandler{UserService: userService, Log: zapLogger}
	listHandler := &http.ListHandler{ListService: listService, Log: zapLogger}
	taskHandler := &http.TaskHandler{TaskService: taskService, Log: zapLogger}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Build the router with middleware and routes.
	router := http.NewRouter(userHandler, listHandler, taskHandler, http.RouterOptions{
		AccessGuard:    middleware.AccessGuard(issuer),
		SessionGuard:   middleware.SessionGuard(userService, zapLogger),
		Metrics:        middleware.NewMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: options.AllowedOrigins,
	}, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if options.TLSCert != "" && options.TLSKey != "" {
			zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
			serveErr <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}

	// Let pending list cascades finish before the pool closes.
	listService.Wait()
}
