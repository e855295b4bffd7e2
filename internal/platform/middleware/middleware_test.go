// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/internal/platform/ctxutil"
	"github.com/taibuivan/anirate/internal/platform/middleware"
	"github.com/taibuivan/anirate/internal/platform/sec"
)

type fakeAuthenticator struct {
	identity *sec.Identity
	err      error
	bearer   string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, bearer string) (*sec.Identity, error) {
	f.bearer = bearer
	return f.identity, f.err
}

/*
TestRequestID_GeneratesAndPreserves checks that a missing ID is generated and a provided one is echoed.
*/
func TestRequestID_GeneratesAndPreserves(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc", seen)
}

/*
TestPanicRecovery_Returns500 ensures a panicking handler yields the JSON error envelope.
*/
func TestPanicRecovery_Returns500(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apperr.CodeInternal)
}

/*
TestRequireIdentity covers the missing, rejected, and accepted credential paths.
*/
func TestRequireIdentity(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		auth       *fakeAuthenticator
		wantStatus int
	}{
		{"missing header", "", &fakeAuthenticator{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &fakeAuthenticator{}, http.StatusUnauthorized},
		{"rejected token", "Bearer bad", &fakeAuthenticator{err: apperr.Unauthorized("Invalid token")}, http.StatusUnauthorized},
		{"valid token", "Bearer good", &fakeAuthenticator{identity: &sec.Identity{UserID: "u1"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var caller *sec.Identity
			handler := middleware.RequireIdentity(tt.auth)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				caller = ctxutil.GetIdentity(request.Context())
				writer.WriteHeader(http.StatusOK)
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, caller)
				assert.Equal(t, "u1", caller.UserID)
				assert.Equal(t, "good", tt.auth.bearer)
			}
		})
	}
}

/*
TestCORS_DevelopmentReflectsOrigin verifies that any origin is accepted in development.
*/
func TestCORS_DevelopmentReflectsOrigin(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middleware.CORS(devConfig{dev: true}, nil))
	router.Get("/api/list", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/list", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestCORS_ProductionRejectsUnknownOrigin verifies that only configured origins are reflected.
*/
func TestCORS_ProductionRejectsUnknownOrigin(t *testing.T) {
	handler := middleware.CORS(devConfig{}, []string{"https://anirate.app"})(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://evil.example")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestRealIP checks header precedence.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "1.1.1.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "3.3.3.3")
	assert.Equal(t, "3.3.3.3", middleware.RealIP(request))
}

type devConfig struct{ dev bool }

func (c devConfig) IsDevelopment() bool { return c.dev }
