// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"context"
	"time"

	"github.com/taibuivan/anirate/internal/platform/sec"
)

// # Persistence Contracts

// AccountStore persists accounts.
type AccountStore interface {

	/*
		EnsureAccount returns the account for email, creating it when absent.

		Parameters:
		  - context: context.Context
		  - email: string (normalized)
		  - signedInAt: *time.Time (nil leaves the last sign-in untouched)

		Returns:
		  - *Account: Existing or created entity
		  - error: Storage failures
	*/
	EnsureAccount(context context.Context, email string, signedInAt *time.Time) (*Account, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	CreateSession(context context.Context, session *Session) error

	// FindSession returns apperr.NotFound when the id is unknown.
	FindSession(context context.Context, id string) (*Session, error)

	// ListActiveSessions returns unrevoked, unexpired sessions, newest first.
	ListActiveSessions(context context.Context, userID string, now time.Time) ([]Session, error)

	// RevokeSession returns apperr.NotFound when no active session of userID has that id.
	RevokeSession(context context.Context, id, userID string, at time.Time) error
}

// AdminStore holds the admin allow-list.
type AdminStore interface {
	IsAdmin(context context.Context, userID string) (bool, error)

	// GrantAdmin is idempotent.
	GrantAdmin(context context.Context, userID string) error
}

// Store groups every relational contract the gateway needs.
type Store interface {
	AccountStore
	SessionStore
	AdminStore
}

// LinkStore keeps pending login links. Only token digests are stored.
type LinkStore interface {
	SaveLink(context context.Context, tokenHash, email string, ttl time.Duration) error

	// ConsumeLink returns the email and deletes the link atomically.
	// It returns apperr.NotFound when the link is unknown, expired, or already used.
	ConsumeLink(context context.Context, tokenHash string) (string, error)
}

// Mailer delivers login links.
type Mailer interface {
	SendLoginLink(context context.Context, email, link string, expiresAt time.Time) error
}

// TokenIssuer signs and verifies access tokens. [*sec.TokenService] implements it.
type TokenIssuer interface {
	GenerateAccessToken(identity sec.Identity, expiresAt time.Time) (string, error)
	VerifyToken(token string) (*sec.AccessClaims, error)
}
