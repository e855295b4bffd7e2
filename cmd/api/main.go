// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Anirate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run the embedded database migrations (idempotent).
//  6. Wire the catalog, identity, rating and aggregation services.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/anirate/data/migrations"
	"github.com/taibuivan/anirate/internal/api"
	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/catalog/annict"
	"github.com/taibuivan/anirate/internal/core/anime"
	"github.com/taibuivan/anirate/internal/core/browse"
	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/internal/platform/config"
	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/internal/platform/migration"
	pgstore "github.com/taibuivan/anirate/internal/platform/postgres"
	redisstore "github.com/taibuivan/anirate/internal/platform/redis"
	"github.com/taibuivan/anirate/internal/platform/sec"
	"github.com/taibuivan/anirate/internal/users/identity"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "anirate"))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "anirate"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("catalog_configured", cfg.HasCatalogCredentials()),
		slog.Bool("identity_configured", cfg.HasIdentityKeys()),
		slog.Bool("mailer_configured", cfg.HasMailer()),
	)

	if cfg.IsProduction() && len(cfg.AllowedOrigins) == 0 {
		log.Warn("cors_origins_empty")
	}

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	var migrationSource fs.FS = migrations.FS
	if cfg.MigrationPath != "" {
		log.Info("migration_source_override", slog.String("path", cfg.MigrationPath))
		migrationSource = os.DirFS(cfg.MigrationPath)
	}
	must(log, migration.RunUp(cfg.DatabaseURL, migrationSource, log), "run migrations")

	// ── 6. Identity Gateway ───────────────────────────────────────────────
	// Missing keys are not fatal: credential operations answer with a configuration error.
	var tokens identity.TokenIssuer
	if cfg.HasIdentityKeys() {
		tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
		must(log, err, "initialize jwt service")
		tokens = tokenService
	} else {
		log.Warn("identity_keys_missing")
	}

	var mailer identity.Mailer = identity.NewLogMailer(log)
	if cfg.HasMailer() {
		mailer = identity.NewSMTPMailer(identity.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}

	identityService := identity.NewService(
		identity.NewPostgresStore(pool),
		identity.NewRedisLinkStore(rdb),
		tokens,
		mailer,
		cfg.LoginRedirectURL,
		log,
	)

	if len(cfg.AdminEmails) > 0 {
		must(log, identityService.EnsureAdmins(startupCtx, cfg.AdminEmails), "seed admin allow-list")
	}

	// ── 7. Catalog Source ─────────────────────────────────────────────────
	if !cfg.HasCatalogCredentials() {
		log.Warn("catalog_token_missing")
	}
	source := catalog.NewBreaker(annict.NewClient(annict.Config{
		BaseURL: cfg.AnnictBaseURL,
		Token:   cfg.AnnictToken,
		Timeout: cfg.AnnictTimeout,
	}, &http.Client{}), log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	ratingStore := rating.NewPostgresStore(pool)
	ratingService := rating.NewService(ratingStore, identityService, log)
	animeService := anime.NewService(source, ratingStore, log)

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(
		[]api.Probe{
			{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
			{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
		},
		[]api.Warning{
			{Name: "catalog_token", Missing: !cfg.HasCatalogCredentials()},
			{Name: "identity_keys", Missing: !cfg.HasIdentityKeys()},
		},
		log,
	)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Anime:     anime.NewHandler(animeService),
		Browse:    browse.NewHandler(animeService),
		Rating:    rating.NewHandler(ratingService),
		Identity:  identity.NewHandler(identityService),
	}

	server := api.NewServer(cfg, log, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
