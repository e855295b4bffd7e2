// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rating owns the admin-curated rating tags and the command that writes them.

Reads go through [Store.ListRatings] (consumed by the anime aggregation);
writes go through [Service.Rate], gated by administrator identity.
*/
package rating

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/anirate/internal/platform/ctxutil"
	"github.com/taibuivan/anirate/internal/platform/metrics"
	"github.com/taibuivan/anirate/internal/platform/sec"
)

// AdminGuard resolves a bearer credential into an administrator identity.
//
// It answers 401 for an invalid credential, 403 for a valid non-admin identity,
// and a configuration error when the identity gateway is not set up.
type AdminGuard interface {
	RequireAdmin(ctx context.Context, bearer string) (*sec.Identity, error)
}

// # Service Layer

// Service handles rating writes.
type Service struct {
	store  Store
	guard  AdminGuard
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new [Service].
func NewService(store Store, guard AdminGuard, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}
}

/*
Rate attaches or clears the rating of one catalog entry.

Description: The caller must already be validated as an administrator by the
[AdminGuard]; nothing is written otherwise. The upsert carries a fresh
timestamp and becomes visible to the next list call.

Parameters:
  - ctx: context.Context
  - bearer: string (Raw bearer credential, already checked for presence)
  - command: Command (Validated input)

Returns:
  - *Record: The stored state
  - error: Unauthorized, Forbidden, Configuration or Upstream errors
*/
func (service *Service) Rate(ctx context.Context, bearer string, command Command) (*Record, error) {
	identity, err := service.guard.RequireAdmin(ctx, bearer)
	if err != nil {
		return nil, err
	}

	record := Record{
		AnnictID:  command.AnnictID,
		Rating:    command.Rating,
		UpdatedAt: service.now().UTC(),
	}

	if err := service.store.UpsertRating(ctx, record); err != nil {
		return nil, err
	}

	label := "none"
	if record.Rating != nil {
		label = string(*record.Rating)
	}
	metrics.RatingUpserts.WithLabelValues(label).Inc()

	ctxutil.GetLogger(ctx).InfoContext(ctx, "rating_upserted",
		slog.Int64("annict_id", record.AnnictID),
		slog.String("rating", label),
		slog.String("user_id", identity.UserID),
	)

	return &record, nil
}
