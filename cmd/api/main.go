// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

// Command api is the entry point for the Souqly admin API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers and the bulk-operation runner.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/souqly/souqly-api/internal/api"
	"github.com/souqly/souqly-api/internal/platform/cache"
	"github.com/souqly/souqly-api/internal/platform/config"
	"github.com/souqly/souqly-api/internal/platform/constants"
	"github.com/souqly/souqly-api/internal/platform/migration"
	pgstore "github.com/souqly/souqly-api/internal/platform/postgres"
	redisstore "github.com/souqly/souqly-api/internal/platform/redis"
	"github.com/souqly/souqly-api/internal/platform/sec"
	"github.com/souqly/souqly-api/internal/system/audit"
	"github.com/souqly/souqly-api/internal/taxonomy/bulkop"
	"github.com/souqly/souqly-api/internal/taxonomy/tag"
	"github.com/souqly/souqly-api/internal/tenants/tenant"
	"github.com/souqly/souqly-api/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "souqly"))
	slog.SetDefault(log)

	log.Info("[Souqly] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "souqly"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("bulk_workers", cfg.BulkWorkers),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Identity Service ───────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	store := cache.NewRedis(rdb)

	auditRepository := audit.NewPostgresRepository(pool)
	auditService := audit.NewService(auditRepository, log)
	auditHandler := audit.NewHandler(auditService)

	tagRepository := tag.NewPostgresRepository(pool)
	tagService := tag.NewService(tagRepository, store, auditService, log)
	tagHandler := tag.NewHandler(tagService)

	// The runner is the only background worker in the process. Its context
	// is cancelled on shutdown so in-flight operations park as paused.
	runnerCtx, runnerCancel := context.WithCancel(context.Background())
	defer runnerCancel()

	bulkRepository := bulkop.NewPostgresRepository(pool)
	var runner *bulkop.Runner
	if cfg.BulkWorkers > 0 {
		runner = bulkop.NewRunner(bulkRepository, &bulkop.TagExecutor{Tags: tagService}, cfg.BulkWorkers, log)
		runner.Start(runnerCtx)
	} else {
		log.Warn("bulk_runner_disabled")
	}
	bulkService := bulkop.NewService(bulkRepository, runner, auditService, log)
	bulkHandler := bulkop.NewHandler(bulkService)

	tenantRepository := tenant.NewPostgresRepository(pool)
	tenantService := tenant.NewService(tenantRepository, store, auditService, log)
	tenantHandler := tenant.NewHandler(tenantService)

	accountRepository := auth.NewPostgresAccountRepository(pool)
	sessionRepository := auth.NewRedisSessionRepository(rdb)
	authService := auth.NewService(accountRepository, sessionRepository, jwtSvc)
	authHandler := auth.NewHandler(authService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Tag:       tagHandler,
		Bulk:      bulkHandler,
		Tenant:    tenantHandler,
		Audit:     auditHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	// Stop the bulk runner after the HTTP server: no new work can arrive,
	// and in-flight operations park themselves as paused for later resume.
	if runner != nil {
		runnerCancel()
		runner.Stop()
		log.Info("bulk runner stopped")
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
