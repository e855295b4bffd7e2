// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrAdminCheckFailed wraps failures of the admin check itself (network, 5xx),
// as opposed to a definite "not an admin" answer.
var ErrAdminCheckFailed = errors.New("library: admin check failed")

// Session is the client's authentication state.
type Session struct {
	api API

	mu       sync.RWMutex
	token    string
	email    string
	isAdmin  bool
	notAdmin bool
}

// NewSession creates a signed-out session.
func NewSession(api API) *Session {
	return &Session{api: api}
}

// Restore adopts a previously issued access token without checking it.
func (s *Session) Restore(token, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.email = email
	s.isAdmin = false
}

// RequestLogin asks the server to send a login link.
func (s *Session) RequestLogin(ctx context.Context, email string) error {
	return s.api.RequestLogin(ctx, email)
}

// Verify redeems a login link and then refreshes the admin flag.
//
// When the link was redeemed but the admin check failed, the credentials are
// returned together with an error wrapping [ErrAdminCheckFailed].
func (s *Session) Verify(ctx context.Context, loginToken string) (*Credentials, error) {
	credentials, err := s.api.Verify(ctx, loginToken)
	if err != nil {
		return nil, err
	}

	s.Restore(credentials.AccessToken, credentials.Email)
	s.mu.Lock()
	s.notAdmin = false
	s.mu.Unlock()

	if _, err := s.Refresh(ctx); err != nil {
		return credentials, err
	}
	return credentials, nil
}

/*
Refresh re-checks admin membership.

A signed-in non-admin is signed out and flagged NotAdmin so the UI can
explain why. Any failure of the check itself leaves the caller without
admin rights and is returned wrapped in [ErrAdminCheckFailed]; the token is
kept since the server never said it was invalid.
*/
func (s *Session) Refresh(ctx context.Context) (bool, error) {
	token := s.Token()
	if token == "" {
		s.mu.Lock()
		s.isAdmin = false
		s.mu.Unlock()
		return false, nil
	}

	isAdmin, err := s.api.CheckAdmin(ctx, token)

	// The server session of a non-admin is destroyed too; failures only leave it to expire.
	if err == nil && !isAdmin {
		_ = s.api.Logout(ctx, token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.isAdmin = false
		return false, fmt.Errorf("%w: %w", ErrAdminCheckFailed, err)
	}

	if !isAdmin {
		s.token = ""
		s.email = ""
		s.isAdmin = false
		s.notAdmin = true
		return false, nil
	}

	s.isAdmin = true
	return true, nil
}

// SignOut destroys the server session (best effort) and clears local state.
func (s *Session) SignOut(ctx context.Context) error {
	token := s.Token()

	var err error
	if token != "" {
		err = s.api.Logout(ctx, token)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.email = ""
	s.isAdmin = false
	s.notAdmin = false

	return err
}

// ClearNotAdmin dismisses the not-admin notice.
func (s *Session) ClearNotAdmin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notAdmin = false
}

// Token returns the current access token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Email returns the signed-in address.
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool { return s.Token() != "" }

// IsAdmin reports the outcome of the last successful admin check.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAdmin
}

// NotAdmin reports that the last check signed the caller out for lacking admin rights.
func (s *Session) NotAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notAdmin
}
