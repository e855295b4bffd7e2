// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/anime"
	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/sec"
)

// # Fakes

// pagedSource serves works in pages of the requested size.
type pagedSource struct {
	works    []catalog.Work
	total    int
	endless  bool
	err      error
	failPage int
	calls    int
	statuses []catalog.Status
}

func (s *pagedSource) ListWorks(_ context.Context, status catalog.Status, page, perPage int) (*catalog.Page, error) {
	s.calls++
	s.statuses = append(s.statuses, status)
	if s.err != nil && (s.failPage == 0 || s.failPage == page) {
		return nil, s.err
	}

	if s.endless {
		works := make([]catalog.Work, perPage)
		for i := range works {
			works[i] = catalog.Work{ID: int64((page-1)*perPage + i + 1)}
		}
		return &catalog.Page{Works: works}, nil
	}

	start := (page - 1) * perPage
	if start > len(s.works) {
		start = len(s.works)
	}
	end := min(start+perPage, len(s.works))
	return &catalog.Page{Works: s.works[start:end], Total: s.total}, nil
}

type ratingStore struct {
	mu      sync.Mutex
	records map[int64]rating.Record
	err     error
	calls   int
}

func newRatingStore(seed map[int64]rating.Tag) *ratingStore {
	store := &ratingStore{records: make(map[int64]rating.Record)}
	for id, tag := range seed {
		store.records[id] = rating.Record{AnnictID: id, Rating: &tag}
	}
	return store
}

func (s *ratingStore) ListRatings(context.Context) ([]rating.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	records := make([]rating.Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, record)
	}
	return records, nil
}

func (s *ratingStore) UpsertRating(_ context.Context, record rating.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.AnnictID] = record
	return nil
}

type adminGuard struct{}

func (adminGuard) RequireAdmin(context.Context, string) (*sec.Identity, error) {
	return &sec.Identity{UserID: "admin"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeWorks(n int) []catalog.Work {
	works := make([]catalog.Work, n)
	for i := range works {
		works[i] = catalog.Work{ID: int64(i + 1), Title: fmt.Sprintf("Work %d", i+1)}
	}
	return works
}

// # Tests

/*
TestList_MergesRatingsInCatalogOrder is the three-entry scenario: Z, A, M with Z rated favorite.
*/
func TestList_MergesRatingsInCatalogOrder(t *testing.T) {
	source := &pagedSource{works: []catalog.Work{
		{ID: 1, Title: "Z"},
		{ID: 2, Title: "A"},
		{ID: 3, Title: "M"},
	}}
	store := newRatingStore(map[int64]rating.Tag{1: rating.TagFavorite})
	service := anime.NewService(source, store, discardLogger())

	result, err := service.List(context.Background(), catalog.StatusWatched)
	require.NoError(t, err)
	require.Len(t, result.Animes, 3)

	assert.Equal(t, []int64{1, 2, 3}, []int64{result.Animes[0].ID, result.Animes[1].ID, result.Animes[2].ID})
	require.NotNil(t, result.Animes[0].Rating)
	assert.Equal(t, rating.TagFavorite, *result.Animes[0].Rating)
	assert.Nil(t, result.Animes[1].Rating)
	assert.Nil(t, result.Animes[2].Rating)
	assert.False(t, result.Truncated)
	assert.Equal(t, 1, store.calls)
}

/*
TestList_Pagination covers the loop termination rules.
*/
func TestList_Pagination(t *testing.T) {
	tests := []struct {
		name          string
		source        *pagedSource
		wantCalls     int
		wantLen       int
		wantTruncated bool
	}{
		{"short first page", &pagedSource{works: makeWorks(10)}, 1, 10, false},
		{"exact multiple without total needs an empty probe", &pagedSource{works: makeWorks(100)}, 3, 100, false},
		{"exact multiple with total stops on count", &pagedSource{works: makeWorks(100), total: 100}, 2, 100, false},
		{"partial last page", &pagedSource{works: makeWorks(120), total: 120}, 3, 120, false},
		{"endless upstream stops at the ceiling", &pagedSource{endless: true}, anime.MaxPages, anime.MaxPages * anime.PageSize, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := anime.NewService(tt.source, newRatingStore(nil), discardLogger())

			result, err := service.List(context.Background(), catalog.StatusWatching)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, tt.source.calls)
			assert.Len(t, result.Animes, tt.wantLen)
			assert.Equal(t, tt.wantTruncated, result.Truncated)
			for _, status := range tt.source.statuses {
				assert.Equal(t, catalog.StatusWatching, status)
			}
		})
	}
}

/*
TestList_Failures ensures no partial result escapes and errors keep their kind.
*/
func TestList_Failures(t *testing.T) {
	tests := []struct {
		name       string
		source     *pagedSource
		storeErr   error
		wantCode   string
		wantLookup bool
	}{
		{
			name:     "configuration",
			source:   &pagedSource{err: apperr.Configuration("Catalog source is not configured")},
			wantCode: apperr.CodeConfiguration,
		},
		{
			name:     "second page fails",
			source:   &pagedSource{works: makeWorks(80), err: errors.New("reset"), failPage: 2},
			wantCode: apperr.CodeUpstream,
		},
		{
			name:     "catalog deadline",
			source:   &pagedSource{err: context.DeadlineExceeded},
			wantCode: apperr.CodeUpstreamTimeout,
		},
		{
			name:       "rating store down",
			source:     &pagedSource{works: makeWorks(3)},
			storeErr:   errors.New("connection refused"),
			wantCode:   apperr.CodeUpstream,
			wantLookup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newRatingStore(nil)
			store.err = tt.storeErr
			service := anime.NewService(tt.source, store, discardLogger())

			result, err := service.List(context.Background(), catalog.StatusWatched)
			assert.Nil(t, result)
			assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)

			if tt.wantLookup {
				assert.Equal(t, 1, store.calls)
			} else {
				assert.Zero(t, store.calls)
			}
		})
	}
}

/*
TestList_RateRoundTrip checks that a rating written through the command is visible to the next list.
*/
func TestList_RateRoundTrip(t *testing.T) {
	source := &pagedSource{works: makeWorks(3)}
	store := newRatingStore(nil)
	lister := anime.NewService(source, store, discardLogger())
	rater := rating.NewService(store, adminGuard{}, discardLogger())

	favorite := rating.TagFavorite
	_, err := rater.Rate(context.Background(), "token", rating.Command{AnnictID: 2, Rating: &favorite})
	require.NoError(t, err)

	result, err := lister.List(context.Background(), catalog.StatusWatched)
	require.NoError(t, err)
	require.NotNil(t, result.Animes[1].Rating)
	assert.Equal(t, rating.TagFavorite, *result.Animes[1].Rating)

	_, err = rater.Rate(context.Background(), "token", rating.Command{AnnictID: 2})
	require.NoError(t, err)

	result, err = lister.List(context.Background(), catalog.StatusWatched)
	require.NoError(t, err)
	assert.Nil(t, result.Animes[1].Rating)
}

/*
TestList_RatingsAreNullOrValid guards the closed set against stray stored values.
*/
func TestList_RatingsAreNullOrValid(t *testing.T) {
	store := newRatingStore(map[int64]rating.Tag{1: rating.TagRecommended, 2: rating.Tag("legacy")})
	service := anime.NewService(&pagedSource{works: makeWorks(3)}, store, discardLogger())

	result, err := service.List(context.Background(), catalog.StatusWatched)
	require.NoError(t, err)

	for _, entry := range result.Animes {
		if entry.Rating != nil {
			assert.True(t, entry.Rating.Valid())
		}
	}
	assert.Nil(t, result.Animes[1].Rating)
}
