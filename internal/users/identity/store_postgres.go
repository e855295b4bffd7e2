// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/database/schema"
	"github.com/taibuivan/anirate/internal/platform/dberr"
)

// storeName is the client-facing name of the store in error messages.
const storeName = "Identity store"

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements [Store] on the users schema.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// # Accounts

/*
EnsureAccount implements [AccountStore].

Description: A single upsert keyed on the unique email. Concurrent sign-ins
for a new address converge on one row.
*/
func (store *PostgresStore) EnsureAccount(context context.Context, email string, signedInAt *time.Time) (*Account, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("identity_store_uuid_failed: %w", err)
	}

	table := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %[1]s AS existing (%[2]s, %[3]s, %[4]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%[3]s) DO UPDATE
		SET %[4]s = COALESCE(EXCLUDED.%[4]s, existing.%[4]s), %[5]s = now()
		RETURNING %[2]s, %[3]s, %[4]s, %[6]s
	`, table.Table, table.ID, table.Email, table.LastSignInAt, table.UpdatedAt, table.CreatedAt)

	account := &Account{}
	err = store.db.QueryRow(context, query, id.String(), email, signedInAt).Scan(
		&account.ID,
		&account.Email,
		&account.LastSignInAt,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, storeName, "ensure_account")
	}

	return account, nil
}

// # Sessions

// CreateSession implements [SessionStore].
func (store *PostgresStore) CreateSession(context context.Context, session *Session) error {
	table := schema.UserSession
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table.Table, table.ID, table.UserID, table.IPAddress, table.UserAgent, table.ExpiresAt, table.CreatedAt)

	_, err := store.db.Exec(context, query,
		session.ID,
		session.UserID,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, storeName, "create_session")
	}

	return nil
}

// FindSession implements [SessionStore].
func (store *PostgresStore) FindSession(context context.Context, id string) (*Session, error) {
	table := schema.UserSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, table.ID, table.UserID, table.IPAddress, table.UserAgent, table.IsRevoked, table.ExpiresAt, table.RevokedAt, table.CreatedAt,
		table.Table, table.ID)

	session := &Session{}
	if err := scanSession(store.db.QueryRow(context, query, id), session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, dberr.Wrap(err, storeName, "find_session")
	}

	return session, nil
}

// ListActiveSessions implements [SessionStore].
func (store *PostgresStore) ListActiveSessions(context context.Context, userID string, now time.Time) ([]Session, error) {
	table := schema.UserSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND NOT %s AND %s > $2
		ORDER BY %s DESC
	`, table.ID, table.UserID, table.IPAddress, table.UserAgent, table.IsRevoked, table.ExpiresAt, table.RevokedAt, table.CreatedAt,
		table.Table,
		table.UserID, table.IsRevoked, table.ExpiresAt,
		table.CreatedAt)

	rows, err := store.db.Query(context, query, userID, now)
	if err != nil {
		return nil, dberr.Wrap(err, storeName, "list_sessions")
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var session Session
		if err := scanSession(rows, &session); err != nil {
			return nil, dberr.Wrap(err, storeName, "scan_session")
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, storeName, "iterate_sessions")
	}

	return sessions, nil
}

// RevokeSession implements [SessionStore].
func (store *PostgresStore) RevokeSession(context context.Context, id, userID string, at time.Time) error {
	table := schema.UserSession
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = TRUE, %s = $3
		WHERE %s = $1 AND %s = $2 AND NOT %s
	`, table.Table, table.IsRevoked, table.RevokedAt, table.ID, table.UserID, table.IsRevoked)

	tag, err := store.db.Exec(context, query, id, userID, at)
	if err != nil {
		return dberr.Wrap(err, storeName, "revoke_session")
	}

	// Someone else's session and an unknown id look the same to the caller.
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session")
	}

	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner, session *Session) error {
	return row.Scan(
		&session.ID,
		&session.UserID,
		&session.IPAddress,
		&session.UserAgent,
		&session.IsRevoked,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.CreatedAt,
	)
}

// # Admin Allow-List

// IsAdmin implements [AdminStore].
func (store *PostgresStore) IsAdmin(context context.Context, userID string) (bool, error) {
	table := schema.UserAdmin
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, table.Table, table.UserID)

	var exists bool
	if err := store.db.QueryRow(context, query, userID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, storeName, "is_admin")
	}

	return exists, nil
}

// GrantAdmin implements [AdminStore].
func (store *PostgresStore) GrantAdmin(context context.Context, userID string) error {
	table := schema.UserAdmin
	query := fmt.Sprintf(`
		INSERT INTO %s (%s) VALUES ($1)
		ON CONFLICT (%s) DO NOTHING
	`, table.Table, table.UserID, table.UserID)

	if _, err := store.db.Exec(context, query, userID); err != nil {
		return dberr.Wrap(err, storeName, "grant_admin")
	}

	return nil
}
