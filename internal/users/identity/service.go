// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity is the gateway that turns bearer credentials into callers.

Sign-in is passwordless: a one-time link is mailed to the address, redeeming it
creates a server-side session and an RS256 access token bound to that session.
Admin membership is an allow-list keyed on the account id.

Architecture:

  - Service: Login links, session lifecycle, authentication and admin checks.
  - Store: PostgreSQL for accounts, sessions and the admin allow-list.
  - LinkStore: Redis for pending login links (digests only, with expiry).
  - Mailer: SMTP relay, or the log when none is configured.
*/
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/internal/platform/ctxutil"
	"github.com/taibuivan/anirate/internal/platform/metrics"
	"github.com/taibuivan/anirate/internal/platform/sec"
	"github.com/taibuivan/anirate/internal/platform/validate"
)

// maxEmailLength is the longest address SMTP allows in a forward path.
const maxEmailLength = 254

// notConfigured is returned by every credential operation while signing keys are absent.
func notConfigured() error {
	return apperr.Configuration("Identity gateway is not configured")
}

// # Service Layer

// Service implements the identity gateway.
type Service struct {
	store       Store
	links       LinkStore
	tokens      TokenIssuer
	mailer      Mailer
	redirectURL string
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a new identity [Service].
//
// A nil tokens issuer is allowed: the server still boots, and every credential
// operation answers with a configuration error.
func NewService(
	store Store,
	links LinkStore,
	tokens TokenIssuer,
	mailer Mailer,
	redirectURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:       store,
		links:       links,
		tokens:      tokens,
		mailer:      mailer,
		redirectURL: redirectURL,
		logger:      logger,
		now:         time.Now,
	}
}

// # Login Links

/*
RequestLoginLink mails a one-time sign-in link to the address.

Description: The raw token only travels in the link; the link store keeps
its SHA-256 digest until [constants.LoginLinkTTL] elapses.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: Validation, Configuration or Upstream errors
*/
func (service *Service) RequestLoginLink(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).
		MaxLen(FieldEmail, email, maxEmailLength).
		Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return err
	}

	if service.tokens == nil {
		return notConfigured()
	}

	token, err := sec.GenerateSecureToken(constants.LoginLinkTokenLength)
	if err != nil {
		return apperr.Internal(err)
	}

	expiresAt := service.now().Add(constants.LoginLinkTTL)
	if err := service.links.SaveLink(ctx, sec.HashToken(token), email, constants.LoginLinkTTL); err != nil {
		return err
	}

	link, err := service.buildLink(token)
	if err != nil {
		return apperr.Configuration("Login redirect URL is invalid")
	}

	if err := service.mailer.SendLoginLink(ctx, email, link, expiresAt); err != nil {
		return apperr.Upstream("Mailer", err)
	}

	metrics.LoginLinksIssued.Inc()
	ctxutil.GetLogger(ctx).InfoContext(ctx, "login_link_issued", slog.String("email", email))

	return nil
}

func (service *Service) buildLink(token string) (string, error) {
	target, err := url.Parse(service.redirectURL)
	if err != nil {
		return "", fmt.Errorf("identity_redirect_url_invalid: %w", err)
	}

	query := target.Query()
	query.Set(FieldToken, token)
	target.RawQuery = query.Encode()

	return target.String(), nil
}

/*
SignIn redeems a login link and opens a session.

Description: The link is consumed before anything else, so a replayed link
fails even if a later step errors. The account is created on first sign-in.

Parameters:
  - ctx: context.Context
  - loginToken: string (Raw token from the link)
  - meta: ClientMeta (Device recorded on the session)

Returns:
  - *Credentials: Access token bound to the new session
  - error: Validation, Unauthorized, Configuration or Upstream errors
*/
func (service *Service) SignIn(ctx context.Context, loginToken string, meta ClientMeta) (*Credentials, error) {
	validator := &validate.Validator{}
	validator.Required(FieldToken, loginToken)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if service.tokens == nil {
		return nil, notConfigured()
	}

	email, err := service.links.ConsumeLink(ctx, sec.HashToken(loginToken))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Login link is invalid or expired")
		}
		return nil, err
	}

	now := service.now().UTC()
	account, err := service.store.EnsureAccount(ctx, email, &now)
	if err != nil {
		return nil, err
	}

	sessionID, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	session := &Session{
		ID:        sessionID.String(),
		UserID:    account.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		ExpiresAt: now.Add(constants.SessionTTL),
		CreatedAt: now,
	}
	if err := service.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	accessToken, err := service.tokens.GenerateAccessToken(sec.Identity{
		UserID:    account.ID,
		Email:     account.Email,
		SessionID: session.ID,
	}, session.ExpiresAt)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	metrics.SignIns.Inc()
	ctxutil.GetLogger(ctx).InfoContext(ctx, "signed_in",
		slog.String("user_id", account.ID),
		slog.String("session_id", session.ID),
	)

	return &Credentials{
		AccessToken: accessToken,
		ExpiresAt:   session.ExpiresAt,
		UserID:      account.ID,
		Email:       account.Email,
	}, nil
}

// # Authentication

/*
Authenticate resolves a bearer credential into a verified caller.

Description: The token signature and expiry are checked first, then the
session it names must still be active and belong to the same account.

Parameters:
  - ctx: context.Context
  - bearer: string

Returns:
  - *sec.Identity: The verified caller
  - error: Configuration, Unauthorized or Upstream errors
*/
func (service *Service) Authenticate(ctx context.Context, bearer string) (*sec.Identity, error) {
	if service.tokens == nil {
		return nil, notConfigured()
	}

	claims, err := service.tokens.VerifyToken(bearer)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired access token")
	}

	session, err := service.store.FindSession(ctx, claims.SessionID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Session is no longer valid")
		}
		return nil, err
	}

	if !session.Active(service.now()) || session.UserID != claims.UserID {
		return nil, apperr.Unauthorized("Session is no longer valid")
	}

	return &sec.Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		SessionID: session.ID,
	}, nil
}

// RequireAdmin authenticates the bearer and demands admin membership (403 otherwise).
func (service *Service) RequireAdmin(ctx context.Context, bearer string) (*sec.Identity, error) {
	identity, err := service.Authenticate(ctx, bearer)
	if err != nil {
		return nil, err
	}

	admin, err := service.store.IsAdmin(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, apperr.Forbidden("Admin access required")
	}

	return identity, nil
}

// CheckAdmin reports whether the bearer belongs to an admin.
//
// A store failure is an error, never a false negative or a false positive.
func (service *Service) CheckAdmin(ctx context.Context, bearer string) (bool, error) {
	identity, err := service.Authenticate(ctx, bearer)
	if err != nil {
		return false, err
	}
	return service.store.IsAdmin(ctx, identity.UserID)
}

// # Session Management

// ListSessions returns the caller's active sessions, newest first.
func (service *Service) ListSessions(ctx context.Context, identity *sec.Identity) ([]Session, error) {
	return service.store.ListActiveSessions(ctx, identity.UserID, service.now())
}

/*
RevokeSession signs one of the caller's devices out.

Parameters:
  - ctx: context.Context
  - identity: *sec.Identity (The caller)
  - sessionID: string (UUID)

Returns:
  - error: Validation, NotFound or Upstream errors
*/
func (service *Service) RevokeSession(ctx context.Context, identity *sec.Identity, sessionID string) error {
	validator := &validate.Validator{}
	validator.UUID(FieldSessionID, sessionID)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.store.RevokeSession(ctx, sessionID, identity.UserID, service.now().UTC()); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "session_revoked",
		slog.String("user_id", identity.UserID),
		slog.String("session_id", sessionID),
	)

	return nil
}

// SignOut revokes the session behind the caller's own token.
func (service *Service) SignOut(ctx context.Context, identity *sec.Identity) error {
	return service.RevokeSession(ctx, identity, identity.SessionID)
}

// # Bootstrap

/*
EnsureAdmins seeds the admin allow-list from configuration.

Description: Accounts are created without a sign-in timestamp when they do
not exist yet. Blank entries are skipped. Running it twice changes nothing.

Parameters:
  - ctx: context.Context
  - emails: []string

Returns:
  - error: Joined storage failures
*/
func (service *Service) EnsureAdmins(ctx context.Context, emails []string) error {
	var errs []error

	for _, email := range emails {
		email = NormalizeEmail(email)
		if email == "" {
			continue
		}

		account, err := service.store.EnsureAccount(ctx, email, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("ensure_admin %s: %w", email, err))
			continue
		}

		if err := service.store.GrantAdmin(ctx, account.ID); err != nil {
			errs = append(errs, fmt.Errorf("grant_admin %s: %w", email, err))
			continue
		}

		service.logger.InfoContext(ctx, "admin_ensured", slog.String("email", email))
	}

	return errors.Join(errs...)
}
