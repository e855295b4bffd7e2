// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/anirate/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/anirate/internal/platform/request"
	"github.com/taibuivan/anirate/internal/platform/respond"
	"github.com/taibuivan/anirate/internal/platform/sec"
)

// Authenticator resolves a bearer credential into a verified caller.
//
// Defining it here decouples the middleware from the identity service,
// so tests can inject a fake.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*sec.Identity, error)
}

// RequireIdentity rejects requests without a valid bearer credential.
//
// # Flow
//  1. Extract 'Authorization: Bearer <token>' (401 when absent or malformed).
//  2. Resolve it through the [Authenticator]; its error is returned as-is.
//  3. Inject the [*sec.Identity] into the request context.
func RequireIdentity(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			bearer, err := requestutil.BearerToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			identity, err := authenticator.Authenticate(request.Context(), bearer)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
