// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/anirate/internal/library"
)

/*
TestRefresh_Outcomes covers admin, non-admin, and failed checks.
*/
func TestRefresh_Outcomes(t *testing.T) {
	offline := errors.New("offline")

	tests := []struct {
		name          string
		api           *fakeAPI
		wantAdmin     bool
		wantNotAdmin  bool
		wantSignedIn  bool
		wantLogoutHit int
		wantErr       error
	}{
		{"admin", &fakeAPI{isAdmin: true}, true, false, true, 0, nil},
		{"non-admin is signed out", &fakeAPI{isAdmin: false}, false, true, false, 1, nil},
		{"failed check never grants admin", &fakeAPI{isAdmin: true, checkErr: offline}, false, false, true, 0, offline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := library.NewSession(tt.api)
			session.Restore("access", "me@example.com")

			got, err := session.Refresh(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, library.ErrAdminCheckFailed)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantAdmin, got)
			assert.Equal(t, tt.wantAdmin, session.IsAdmin())
			assert.Equal(t, tt.wantNotAdmin, session.NotAdmin())
			assert.Equal(t, tt.wantSignedIn, session.IsAuthenticated())
			assert.Equal(t, tt.wantLogoutHit, tt.api.logouts)
		})
	}
}

/*
TestRefresh_SignedOut skips the server entirely.
*/
func TestRefresh_SignedOut(t *testing.T) {
	session := library.NewSession(&fakeAPI{isAdmin: true})
	isAdmin, err := session.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, isAdmin)
	assert.False(t, session.IsAdmin())
}

/*
TestVerify_AdoptsTokenAndChecksAdmin redeems a link and refreshes the flag.
*/
func TestVerify_AdoptsTokenAndChecksAdmin(t *testing.T) {
	session := library.NewSession(&fakeAPI{isAdmin: true})

	credentials, err := session.Verify(context.Background(), "link-token")
	require.NoError(t, err)

	assert.Equal(t, "access", credentials.AccessToken)
	assert.Equal(t, "access", session.Token())
	assert.Equal(t, "me@example.com", session.Email())
	assert.True(t, session.IsAdmin())
}

/*
TestVerify_ReportsFailedAdminCheck keeps the credentials but surfaces the check failure.
*/
func TestVerify_ReportsFailedAdminCheck(t *testing.T) {
	session := library.NewSession(&fakeAPI{isAdmin: true, checkErr: errors.New("503")})

	credentials, err := session.Verify(context.Background(), "link-token")

	assert.ErrorIs(t, err, library.ErrAdminCheckFailed)
	require.NotNil(t, credentials)
	assert.Equal(t, "access", session.Token())
	assert.False(t, session.IsAdmin())
	assert.False(t, session.NotAdmin())
}

/*
TestSignOut clears every flag.
*/
func TestSignOut(t *testing.T) {
	api := &fakeAPI{isAdmin: false}
	session := library.NewSession(api)
	session.Restore("access", "me@example.com")
	_, err := session.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, session.NotAdmin())

	session.ClearNotAdmin()
	assert.False(t, session.NotAdmin())

	session.Restore("again", "me@example.com")
	require.NoError(t, session.SignOut(context.Background()))
	assert.False(t, session.IsAuthenticated())
	assert.Equal(t, 2, api.logouts)
}
