// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/anirate/internal/platform/apperr"
)

// queryCanceled is the SQLSTATE Postgres reports when statement_timeout fires.
const queryCanceled = "57014"

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Parameters
//   - err: The raw pgx error.
//   - collaborator: The client-facing name of the store (e.g. "Rating store").
//   - action: A snake_case label kept in the cause for server-side logs.
func Wrap(err error, collaborator, action string) error {
	if err == nil {
		return nil
	}

	cause := fmt.Errorf("%s: %w", action, err)

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		notFound := apperr.NotFound(collaborator + " record")
		notFound.Cause = cause
		return notFound
	}

	// 2. Request deadline, or the server-side statement_timeout
	if errors.Is(err, context.DeadlineExceeded) || isQueryCanceled(err) {
		return apperr.UpstreamTimeout(collaborator, cause)
	}

	// 3. Everything else means the store itself failed
	return apperr.Upstream(collaborator, cause)
}

func isQueryCanceled(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == queryCanceled
}
