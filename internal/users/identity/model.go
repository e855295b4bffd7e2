// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"strings"
	"time"
)

// # Field Identifiers

const (
	FieldEmail     = "email"
	FieldToken     = "token"
	FieldSessionID = "id"
)

// # Domain Entities

// Account is a person who has signed in at least once, or was seeded as an admin.
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Session is the server-side record behind an access token.
//
// A token is only honoured while its session is active, so revoking the
// session signs the device out before the token itself expires.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	IsRevoked bool       `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return !s.IsRevoked && now.Before(s.ExpiresAt)
}

// Credentials is what a redeemed login link yields to the client.
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

// ClientMeta describes the device redeeming a login link.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
