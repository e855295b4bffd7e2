// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package annict implements [catalog.Source] on top of the Annict REST API (v1).

Only the "my works" listing is used:

	GET /v1/me/works?filter_status=watched&sort_season=desc&per_page=50&page=1

The declared total arrives in the X-Total-Count response header. Every page
request carries its own deadline so a stalled upstream surfaces as a timeout
instead of hanging the whole list request.
*/
package annict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/constants"
	"github.com/taibuivan/anirate/internal/platform/ctxutil"
	"github.com/taibuivan/anirate/internal/platform/metrics"
)

// collaborator is the client-facing name used in error messages.
const collaborator = "Catalog"

// worksPath is the endpoint listing the token owner's works.
const worksPath = "/v1/me/works"

var _ catalog.Source = (*Client)(nil)

// Config holds the settings of an Annict client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is an Annict REST API client.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a client. An empty token is accepted; calls then fail with
// a configuration error before any network I/O.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
	}
}

// worksResponse is the subset of the Annict payload we read.
type worksResponse struct {
	Works []catalog.Work `json:"works"`
}

// ListWorks fetches one page of works for the given status.
func (c *Client) ListWorks(ctx context.Context, status catalog.Status, page, perPage int) (*catalog.Page, error) {

	// 1. Credentials are checked before any I/O
	if c.token == "" || c.baseURL == "" {
		metrics.CatalogErrors.WithLabelValues("configuration").Inc()
		return nil, apperr.Configuration("Catalog source is not configured")
	}

	// 2. Per-page deadline
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("filter_status", string(status))
	query.Set("sort_season", "desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("access_token", c.token)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+worksPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, apperr.Upstream(collaborator, fmt.Errorf("annict: build request: %w", err))
	}
	request.Header.Set("Accept", "application/json")

	// 3. Execute
	startTime := time.Now()
	response, err := c.httpClient.Do(request)
	metrics.CatalogRequestDuration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		metrics.CatalogErrors.WithLabelValues("upstream").Inc()
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, apperr.Upstream(collaborator, fmt.Errorf("annict: unexpected status %d: %s", response.StatusCode, strings.TrimSpace(string(body))))
	}

	// 4. Decode
	var payload worksResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, classify(ctx, fmt.Errorf("annict: decode works: %w", err))
	}

	total := parseTotal(response.Header.Get(constants.HeaderTotalCount))
	metrics.CatalogPagesFetched.WithLabelValues(string(status)).Inc()

	ctxutil.GetLogger(ctx).DebugContext(ctx, "catalog_page_fetched",
		slog.String("status", string(status)),
		slog.Int("page", page),
		slog.Int("works", len(payload.Works)),
		slog.Int("total", total),
	)

	works := payload.Works
	if works == nil {
		works = []catalog.Work{}
	}

	return &catalog.Page{Works: works, Total: total}, nil
}

// classify maps transport errors onto the error taxonomy.
func classify(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		metrics.CatalogErrors.WithLabelValues("timeout").Inc()
		return apperr.UpstreamTimeout(collaborator, err)
	}

	metrics.CatalogErrors.WithLabelValues("upstream").Inc()
	return apperr.Upstream(collaborator, err)
}

// parseTotal reads X-Total-Count. Missing or malformed values mean "unknown" (0).
func parseTotal(raw string) int {
	if raw == "" {
		return 0
	}
	total, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || total < 0 {
		return 0
	}
	return total
}
