// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package anime aggregates the caller's catalog with the stored ratings.

The read path is:

 1. Walk the catalog source page by page (sequential, 50 per page, at most 100 pages).
 2. Load every stored rating in one query.
 3. Left-join in memory by catalog id, preserving catalog order.

Any failure fails the whole call: no partial list is ever returned.
*/
package anime

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/ctxutil"
	"github.com/taibuivan/anirate/internal/platform/metrics"
	"github.com/taibuivan/anirate/pkg/pointer"
	"github.com/taibuivan/anirate/pkg/slice"
)

const (
	// PageSize is the number of entries requested per catalog page.
	PageSize = 50

	// MaxPages bounds the catalog walk; lists beyond PageSize*MaxPages entries are truncated.
	MaxPages = 100
)

// RatingLister is the read side of the rating store.
type RatingLister interface {
	ListRatings(ctx context.Context) ([]rating.Record, error)
}

// # Service Layer

// Service is the aggregation read path.
type Service struct {
	source  catalog.Source
	ratings RatingLister
	logger  *slog.Logger
}

// NewService constructs a new [Service].
func NewService(source catalog.Source, ratings RatingLister, logger *slog.Logger) *Service {
	return &Service{
		source:  source,
		ratings: ratings,
		logger:  logger,
	}
}

/*
List returns every tracked entry for a status, decorated with its rating.

Description: The walk continues while the last page was full and the
declared total (when reported) has not been reached. The order is the
catalog's native order (most recent season first).

Parameters:
  - ctx: context.Context
  - status: catalog.Status

Returns:
  - *Result: Merged list and truncation flag
  - error: Configuration, Upstream or UpstreamTimeout errors
*/
func (service *Service) List(ctx context.Context, status catalog.Status) (*Result, error) {
	works, truncated, err := service.fetchAll(ctx, status)
	if err != nil {
		return nil, err
	}

	records, err := service.ratings.ListRatings(ctx)
	if err != nil {
		return nil, asUpstream("Rating store", err)
	}

	ratingsByID := slice.Index(records, func(record rating.Record) int64 { return record.AnnictID })

	animes := slice.Map(works, func(work catalog.Work) Anime {
		entry := fromWork(work)
		if record, ok := ratingsByID[work.ID]; ok && record.Rating != nil && record.Rating.Valid() {
			entry.Rating = pointer.Clone(record.Rating)
		}
		return entry
	})

	return &Result{Animes: animes, Truncated: truncated}, nil
}

// fetchAll walks the catalog sequentially.
func (service *Service) fetchAll(ctx context.Context, status catalog.Status) ([]catalog.Work, bool, error) {
	works := make([]catalog.Work, 0, PageSize)

	for page := 1; page <= MaxPages; page++ {
		result, err := service.source.ListWorks(ctx, status, page, PageSize)
		if err != nil {
			return nil, false, asUpstream("Catalog", err)
		}

		works = append(works, result.Works...)

		hasMore := len(result.Works) == PageSize && (result.Total == 0 || len(works) < result.Total)
		if !hasMore {
			return works, false, nil
		}
	}

	// The ceiling was reached while the catalog still reported more entries.
	metrics.CatalogTruncatedLists.WithLabelValues(string(status)).Inc()
	ctxutil.GetLogger(ctx).WarnContext(ctx, "catalog_list_truncated",
		slog.String("status", string(status)),
		slog.Int("pages", MaxPages),
		slog.Int("entries", len(works)),
	)

	return works, true, nil
}

// asUpstream keeps taxonomy errors as they are and classifies the rest.
func asUpstream(collaborator string, err error) error {
	if apperr.IsAppError(err) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.UpstreamTimeout(collaborator, err)
	}

	return apperr.Upstream(collaborator, err)
}
