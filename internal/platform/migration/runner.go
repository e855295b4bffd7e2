// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the versioned schema with golang-migrate.
//
// # Architecture
//
// This package belongs to the Infrastructure layer. Migrations are read from an
// [fs.FS] (the set embedded in the binary, or a directory override) and applied
// during startup, before traffic is served.
package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// driverScheme is the URL scheme the golang-migrate pgx/v5 driver registers.
const driverScheme = "pgx5://"

// postgresSchemes are the URL schemes pgx accepts for the same database.
var postgresSchemes = []string{"postgres://", "postgresql://"}

// # Migration Runner

// RunUp applies all pending UP migrations from source.
//
// A database already past the newest migration in source is an error: it means
// an older build is starting against a schema it does not know.
//
// # Parameters
//   - dsn: A postgres:// URL (keyword DSNs are not understood by golang-migrate).
//   - source: Directory tree holding NNNNNN_name.{up,down}.sql files at its root.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, source fs.FS, logger *slog.Logger) error {
	target, err := Latest(source)
	if err != nil {
		return err
	}

	driver, err := iofs.New(source, ".")
	if err != nil {
		return fmt.Errorf("migration: failed to read source: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", driver, DatabaseURL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	current, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}

	switch {
	case isDirty:
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", current)
	case current > target:
		return fmt.Errorf("migration: database is at version %d but this build only knows up to %d", current, target)
	case current == target:
		logger.Info("migration_already_up_to_date", slog.Uint64("version", uint64(current)))
		return nil
	}

	logger.Info("migration_started",
		slog.Uint64("from_version", uint64(current)),
		slog.Uint64("target_version", uint64(target)),
	)

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: up failed: %w", err)
	}

	logger.Info("migration_successful",
		slog.Uint64("from_version", uint64(current)),
		slog.Uint64("to_version", uint64(target)),
	)

	return nil
}

// Latest returns the highest migration version found in source.
func Latest(source fs.FS) (uint, error) {
	driver, err := iofs.New(source, ".")
	if err != nil {
		return 0, fmt.Errorf("migration: failed to read source: %w", err)
	}
	defer func() { _ = driver.Close() }()

	version, err := driver.First()
	if err != nil {
		return 0, fmt.Errorf("migration: source holds no migrations: %w", err)
	}

	for {
		next, err := driver.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			return version, nil
		}
		if err != nil {
			return 0, fmt.Errorf("migration: failed to walk versions after %d: %w", version, err)
		}
		version = next
	}
}

// DatabaseURL rewrites a postgres:// or postgresql:// URL to the pgx5:// scheme
// golang-migrate expects. Other values are returned unchanged.
func DatabaseURL(dsn string) string {
	for _, scheme := range postgresSchemes {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return driverScheme + rest
		}
	}
	return dsn
}

// # Logging Bridge

// migrateLogger forwards golang-migrate's progress lines to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

// Verbose implements migrate.Logger. Per-file progress is only produced when debug logs are kept.
func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
