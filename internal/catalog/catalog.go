// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog defines the read-only view of the external anime catalog.

The catalog owns every entry: Anirate never writes to it. Concrete clients
(see package annict) implement [Source]; [Breaker] wraps any Source with a
circuit breaker.
*/
package catalog

import (
	"context"

	"github.com/taibuivan/anirate/internal/platform/validate"
)

// # Watch Status

// Status is the watch-status filter understood by the catalog.
type Status string

const (
	StatusWatched  Status = "watched"
	StatusWatching Status = "watching"
)

// DefaultStatus is used when the caller omits the status.
const DefaultStatus = StatusWatched

// ParseStatus validates a raw status value. An empty value maps to [DefaultStatus].
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return DefaultStatus, nil
	}

	validator := &validate.Validator{}
	validator.OneOf("status", raw, string(StatusWatched), string(StatusWatching))
	if err := validator.Err(); err != nil {
		return "", err
	}

	return Status(raw), nil
}

// # Entries

// Images holds the thumbnail references of a work.
type Images struct {
	RecommendedURL string `json:"recommended_url"`
}

// Work is a single catalog entry.
//
// Season fields may both be empty, meaning the season is unknown.
// ReleasedOn is opaque and never parsed.
type Work struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	SeasonName     string `json:"season_name"`
	SeasonNameText string `json:"season_name_text"`
	ReleasedOn     string `json:"released_on"`
	Images         Images `json:"images"`
}

// SeasonLabel resolves the season shown to users: the human label, else the short code.
func (w Work) SeasonLabel() string {
	if w.SeasonNameText != "" {
		return w.SeasonNameText
	}
	return w.SeasonName
}

// Page is one page of catalog results.
type Page struct {
	Works []Work

	// Total is the declared total across all pages, or 0 when the source did not report one.
	Total int
}

// # Interface

// Source lists the caller's tracked works, one page at a time.
//
// Pages are 1-based. Implementations must return a configuration error
// before any network I/O when they lack credentials.
type Source interface {
	ListWorks(ctx context.Context, status Status, page, perPage int) (*Page, error)
}
