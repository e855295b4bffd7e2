// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/sec"
	"github.com/taibuivan/anirate/internal/users/identity"
)

/*
TestService_LoginFlow walks a link from request to an authenticated caller.
*/
func TestService_LoginFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.RequestLoginLink(ctx, "  Me@Example.com "))

	mail := f.outbox.last(t)
	assert.Equal(t, "me@example.com", mail.email)
	assert.True(t, strings.HasPrefix(mail.link, redirectURL+"?token="))
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), mail.expiresAt, time.Minute)

	// Only the digest is stored.
	token := tokenFrom(t, mail.link)
	assert.True(t, f.links.has(sec.HashToken(token)))
	assert.False(t, f.links.has(token))

	credentials, err := f.service.SignIn(ctx, token, identity.ClientMeta{IPAddress: "10.0.0.1", UserAgent: "cli"})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", credentials.Email)
	assert.NotEmpty(t, credentials.AccessToken)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), credentials.ExpiresAt, time.Minute)

	account := f.store.account("me@example.com")
	require.NotNil(t, account)
	assert.Equal(t, account.ID, credentials.UserID)
	assert.NotNil(t, account.LastSignInAt)

	caller, err := f.service.Authenticate(ctx, credentials.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, credentials.UserID, caller.UserID)
	assert.Equal(t, "me@example.com", caller.Email)

	// A link works once.
	_, err = f.service.SignIn(ctx, token, identity.ClientMeta{})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestService_RequestLoginLink_Failures covers input and collaborator errors.
*/
func TestService_RequestLoginLink_Failures(t *testing.T) {
	tests := []struct {
		name  string
		email string
		setup func(*fixture)
		code  string
	}{
		{"empty", "", nil, apperr.CodeValidation},
		{"malformed", "not-an-email", nil, apperr.CodeValidation},
		{"display_name", "mallory <admin@example.com>", nil, apperr.CodeValidation},
		{"link_store_down", "me@example.com", func(f *fixture) {
			f.links.err = apperr.Upstream("Login link store", errors.New("refused"))
		}, apperr.CodeUpstream},
		{"mailer_down", "me@example.com", func(f *fixture) {
			f.outbox.err = errors.New("relay refused")
		}, apperr.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			err := f.service.RequestLoginLink(context.Background(), tt.email)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
			assert.Zero(t, f.outbox.count())
		})
	}
}

/*
TestService_SignIn_Rejects covers tokens that must never open a session.
*/
func TestService_SignIn_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.SignIn(ctx, "", identity.ClientMeta{})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.SignIn(ctx, "never-issued", identity.ClientMeta{})
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestService_NotConfigured ensures a missing signing key is reported before any I/O.
*/
func TestService_NotConfigured(t *testing.T) {
	f := newFixtureWith(nil)
	ctx := context.Background()

	err := f.service.RequestLoginLink(ctx, "me@example.com")
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration))
	assert.Zero(t, f.outbox.count())

	_, err = f.service.SignIn(ctx, "token", identity.ClientMeta{})
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration))

	_, err = f.service.Authenticate(ctx, "token")
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration))

	_, err = f.service.RequireAdmin(ctx, "token")
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration))

	_, err = f.service.CheckAdmin(ctx, "token")
	assert.True(t, apperr.HasCode(err, apperr.CodeConfiguration))
}

/*
TestService_Authenticate_Rejects ensures the session behind a valid token is checked.
*/
func TestService_Authenticate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*identity.Session)
	}{
		{"revoked", func(s *identity.Session) { s.IsRevoked = true }},
		{"expired", func(s *identity.Session) { s.ExpiresAt = time.Now().Add(-time.Minute) }},
		{"other_account", func(s *identity.Session) { s.UserID = uuid.NewString() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			credentials := f.signIn(t, "me@example.com")

			caller, err := f.service.Authenticate(context.Background(), credentials.AccessToken)
			require.NoError(t, err)
			f.store.mutateSession(caller.SessionID, tt.mutate)

			_, err = f.service.Authenticate(context.Background(), credentials.AccessToken)
			assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
		})
	}

	t.Run("garbage_token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Authenticate(context.Background(), "not.a.jwt")
		assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
	})
}

/*
TestService_AdminChecks separates 403 from 401 and never guesses on store failure.
*/
func TestService_AdminChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.admin(t, "admin@example.com")
	member := f.signIn(t, "member@example.com")

	caller, err := f.service.RequireAdmin(ctx, admin.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, caller.UserID)

	_, err = f.service.RequireAdmin(ctx, member.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = f.service.RequireAdmin(ctx, "not.a.jwt")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	isAdmin, err := f.service.CheckAdmin(ctx, admin.AccessToken)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = f.service.CheckAdmin(ctx, member.AccessToken)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	f.store.adminErr = apperr.Upstream("Identity store", errors.New("down"))
	_, err = f.service.CheckAdmin(ctx, admin.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUpstream))
	_, err = f.service.RequireAdmin(ctx, admin.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUpstream))
}

/*
TestService_Sessions covers listing, revoking and signing out.
*/
func TestService_Sessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.signIn(t, "me@example.com")
	second := f.signIn(t, "me@example.com")
	other := f.signIn(t, "other@example.com")

	caller, err := f.service.Authenticate(ctx, first.AccessToken)
	require.NoError(t, err)

	sessions, err := f.service.ListSessions(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	err = f.service.RevokeSession(ctx, caller, "not-a-uuid")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	stranger, err := f.service.Authenticate(ctx, other.AccessToken)
	require.NoError(t, err)
	err = f.service.RevokeSession(ctx, caller, stranger.SessionID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	// Revoking the second device leaves the first signed in.
	secondCaller, err := f.service.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	require.NoError(t, f.service.RevokeSession(ctx, caller, secondCaller.SessionID))

	_, err = f.service.Authenticate(ctx, second.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	sessions, err = f.service.ListSessions(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, f.service.SignOut(ctx, caller))
	_, err = f.service.Authenticate(ctx, first.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}

/*
TestService_EnsureAdmins seeds the allow-list idempotently.
*/
func TestService_EnsureAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	emails := []string{"Admin@Example.com", "", " admin@example.com "}
	require.NoError(t, f.service.EnsureAdmins(ctx, emails))
	require.NoError(t, f.service.EnsureAdmins(ctx, emails))

	account := f.store.account("admin@example.com")
	require.NotNil(t, account)
	assert.Nil(t, account.LastSignInAt)
	assert.Len(t, f.store.accounts, 1)

	credentials := f.signIn(t, "admin@example.com")
	assert.Equal(t, account.ID, credentials.UserID)

	isAdmin, err := f.service.CheckAdmin(ctx, credentials.AccessToken)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

/*
TestSession_Active checks the two ways a session stops authenticating.
*/
func TestSession_Active(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		session identity.Session
		want    bool
	}{
		{"live", identity.Session{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", identity.Session{ExpiresAt: now.Add(-time.Second)}, false},
		{"revoked", identity.Session{ExpiresAt: now.Add(time.Hour), IsRevoked: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Active(now))
		})
	}
}
