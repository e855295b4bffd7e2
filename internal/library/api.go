// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library holds the client-side state of an Anirate front-end.

Nothing here is global: a [Library] (list state) and a [Session] (auth state)
are explicit objects built around an injectable [API], so front-ends and
tests can swap the transport.
*/
package library

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/anime"
	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/constants"
)

// API is the server surface the client depends on.
type API interface {
	List(ctx context.Context, status catalog.Status) (*anime.Result, error)
	Rate(ctx context.Context, token string, annictID int64, tag *rating.Tag) error
	CheckAdmin(ctx context.Context, token string) (bool, error)
	RequestLogin(ctx context.Context, email string) error
	Verify(ctx context.Context, loginToken string) (*Credentials, error)
	Logout(ctx context.Context, token string) error
}

// Credentials is the result of redeeming a login link.
type Credentials struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

// # Errors

// APIError is a non-2xx answer decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anirate: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsUnauthenticated reports a missing or invalid credential: the UI should invite a login.
func (e *APIError) IsUnauthenticated() bool { return e.Status == http.StatusUnauthorized }

// IsForbidden reports a valid identity without the privilege: the UI must not invite a login.
func (e *APIError) IsForbidden() bool { return e.Status == http.StatusForbidden }

// # HTTP Client

var _ API = (*HTTPClient)(nil)

// HTTPClient implements [API] over the JSON HTTP surface.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client rooted at baseURL (e.g. "http://localhost:8080").
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// List implements [API].
func (c *HTTPClient) List(ctx context.Context, status catalog.Status) (*anime.Result, error) {
	var result anime.Result
	path := "/api/list?" + url.Values{"status": {string(status)}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Rate implements [API].
func (c *HTTPClient) Rate(ctx context.Context, token string, annictID int64, tag *rating.Tag) error {
	body := struct {
		AnnictID int64       `json:"annictId"`
		Rating   *rating.Tag `json:"rating"`
	}{AnnictID: annictID, Rating: tag}
	return c.do(ctx, http.MethodPost, "/api/rate", token, body, nil)
}

// CheckAdmin implements [API].
func (c *HTTPClient) CheckAdmin(ctx context.Context, token string) (bool, error) {
	var result struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/check-admin", token, nil, &result); err != nil {
		return false, err
	}
	return result.IsAdmin, nil
}

// RequestLogin implements [API].
func (c *HTTPClient) RequestLogin(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email}, nil)
}

// Verify implements [API].
func (c *HTTPClient) Verify(ctx context.Context, loginToken string) (*Credentials, error) {
	var credentials Credentials
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", "", map[string]string{"token": loginToken}, &credentials); err != nil {
		return nil, err
	}
	return &credentials, nil
}

// Logout implements [API].
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// do sends one request and decodes either the payload or the error envelope.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, payload, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("anirate: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("anirate: build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("anirate: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		apiError := &APIError{Status: response.StatusCode, Code: apperr.CodeInternal, Message: response.Status}
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.NewDecoder(response.Body).Decode(&envelope) == nil {
			if envelope.Code != "" {
				apiError.Code = envelope.Code
			}
			if envelope.Error != "" {
				apiError.Message = envelope.Error
			}
		}
		return apiError
	}

	if target == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("anirate: decode %s: %w", path, err)
	}
	return nil
}
