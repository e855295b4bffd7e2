// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/internal/platform/sec"
	"github.com/taibuivan/anirate/internal/users/identity"
)

const redirectURL = "http://localhost:5173/login"

// signingKey is shared across tests; RSA generation dominates otherwise.
var signingKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

// # Fakes

// memoryStore is an in-memory [identity.Store].
type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]*identity.Account
	sessions map[string]*identity.Session
	admins   map[string]bool
	adminErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: make(map[string]*identity.Account),
		sessions: make(map[string]*identity.Session),
		admins:   make(map[string]bool),
	}
}

func (m *memoryStore) EnsureAccount(_ context.Context, email string, signedInAt *time.Time) (*identity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	if !ok {
		account = &identity.Account{ID: uuid.NewString(), Email: email, CreatedAt: time.Now()}
		m.accounts[email] = account
	}
	if signedInAt != nil {
		at := *signedInAt
		account.LastSignInAt = &at
	}
	copied := *account
	return &copied, nil
}

func (m *memoryStore) CreateSession(_ context.Context, session *identity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *memoryStore) FindSession(_ context.Context, id string) (*identity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Session")
	}
	copied := *session
	return &copied, nil
}

func (m *memoryStore) ListActiveSessions(_ context.Context, userID string, now time.Time) ([]identity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]identity.Session, 0)
	for _, session := range m.sessions {
		if session.UserID == userID && session.Active(now) {
			sessions = append(sessions, *session)
		}
	}
	slices.SortFunc(sessions, func(a, b identity.Session) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return sessions, nil
}

func (m *memoryStore) RevokeSession(_ context.Context, id, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || session.UserID != userID || session.IsRevoked {
		return apperr.NotFound("Session")
	}
	session.IsRevoked = true
	session.RevokedAt = &at
	return nil
}

func (m *memoryStore) IsAdmin(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adminErr != nil {
		return false, m.adminErr
	}
	return m.admins[userID], nil
}

func (m *memoryStore) GrantAdmin(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[userID] = true
	return nil
}

func (m *memoryStore) account(email string) *identity.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[email]
}

func (m *memoryStore) mutateSession(id string, mutate func(*identity.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mutate(m.sessions[id])
}

// memoryLinks is an in-memory [identity.LinkStore].
type memoryLinks struct {
	mu    sync.Mutex
	links map[string]string
	err   error
}

func newMemoryLinks() *memoryLinks {
	return &memoryLinks{links: make(map[string]string)}
}

func (m *memoryLinks) SaveLink(_ context.Context, tokenHash, email string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.links[tokenHash] = email
	return nil
}

func (m *memoryLinks) ConsumeLink(_ context.Context, tokenHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.links[tokenHash]
	if !ok {
		return "", apperr.NotFound("Login link")
	}
	delete(m.links, tokenHash)
	return email, nil
}

func (m *memoryLinks) has(tokenHash string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.links[tokenHash]
	return ok
}

// sentMail is one captured login link.
type sentMail struct {
	email     string
	link      string
	expiresAt time.Time
}

// outbox is a [identity.Mailer] that records instead of sending.
type outbox struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (o *outbox) SendLoginLink(_ context.Context, email, link string, expiresAt time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, sentMail{email: email, link: link, expiresAt: expiresAt})
	return nil
}

func (o *outbox) last(t *testing.T) sentMail {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.sent)
	return o.sent[len(o.sent)-1]
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

// # Fixture

type fixture struct {
	service *identity.Service
	store   *memoryStore
	links   *memoryLinks
	outbox  *outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key := signingKey()
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)
	return newFixtureWith(tokens)
}

func newFixtureWith(tokens identity.TokenIssuer) *fixture {
	f := &fixture{store: newMemoryStore(), links: newMemoryLinks(), outbox: &outbox{}}
	f.service = identity.NewService(f.store, f.links, tokens, f.outbox, redirectURL, discardLogger())
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tokenFrom extracts the raw login token from a mailed link.
func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	token := parsed.Query().Get(identity.FieldToken)
	require.NotEmpty(t, token)
	return token
}

// signIn runs the whole passwordless flow for email.
func (f *fixture) signIn(t *testing.T, email string) *identity.Credentials {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.service.RequestLoginLink(ctx, email))
	credentials, err := f.service.SignIn(ctx, tokenFrom(t, f.outbox.last(t).link), identity.ClientMeta{
		IPAddress: "10.0.0.1",
		UserAgent: "test",
	})
	require.NoError(t, err)
	return credentials
}

// admin seeds email as an admin and signs it in.
func (f *fixture) admin(t *testing.T, email string) *identity.Credentials {
	t.Helper()
	require.NoError(t, f.service.EnsureAdmins(context.Background(), []string{email}))
	return f.signIn(t, email)
}
