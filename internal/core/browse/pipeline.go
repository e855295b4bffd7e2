// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package browse derives the visible page of an aggregated anime list.

The pipeline is pure and runs in one pass:

	filter (rating, season) -> sort (recent | title) -> reverse -> paginate

Season options are computed from the unfiltered list so that switching
filters never hides a season that has data.
*/
package browse

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taibuivan/anirate/internal/core/anime"
	"github.com/taibuivan/anirate/pkg/pagination"
	"github.com/taibuivan/anirate/pkg/slice"
)

// PageSize is the number of entries shown per page.
const PageSize = 50

// View is one derived page.
type View struct {
	Animes  []anime.Anime   `json:"animes"`
	Seasons []string        `json:"seasons"`
	Meta    pagination.Meta `json:"meta"`
}

// Derive runs the whole pipeline. The input slice is never modified.
func Derive(animes []anime.Anime, state State) View {
	visible := Sort(Filter(animes, state.Rating, state.Season), state.Sort, state.Reverse)
	page, meta := Paginate(visible, state.Page)

	return View{
		Animes:  page,
		Seasons: Seasons(animes),
		Meta:    meta,
	}
}

// # Stages

// Filter keeps the entries matching both the rating filter and the season filter.
func Filter(animes []anime.Anime, rating RatingFilter, season string) []anime.Anime {
	return slice.Filter(animes, func(entry anime.Anime) bool {
		return matchesRating(entry, rating) && matchesSeason(entry, season)
	})
}

func matchesRating(entry anime.Anime, filter RatingFilter) bool {
	switch filter {
	case FilterFavorite, FilterRecommended:
		return entry.Rating != nil && string(*entry.Rating) == string(filter)
	case FilterUnrated:
		return entry.Rating == nil
	default:
		return true
	}
}

func matchesSeason(entry anime.Anime, season string) bool {
	if season == "" || season == SeasonAll {
		return true
	}
	return entry.SeasonLabel() == season
}

// Sort returns a sorted copy. Reverse is applied after sorting, so with
// [SortRecent] it simply reverses the native order.
func Sort(animes []anime.Anime, key SortKey, reverse bool) []anime.Anime {
	sorted := slices.Clone(animes)

	if key == SortTitle {
		// A collator is not safe for concurrent use.
		collator := collate.New(language.Japanese)
		slices.SortStableFunc(sorted, func(a, b anime.Anime) int {
			return collator.CompareString(a.Title, b.Title)
		})
	}

	if reverse {
		slices.Reverse(sorted)
	}

	return sorted
}

// Seasons lists the distinct non-empty season labels, sorted descending.
func Seasons(animes []anime.Anime) []string {
	labels := slice.Distinct(
		slice.Map(animes, anime.Anime.SeasonLabel),
		func(label string) bool { return label != "" },
	)

	slices.Sort(labels)
	slices.Reverse(labels)

	return labels
}

// Paginate cuts the requested page out of the list, clamping the page number.
func Paginate(animes []anime.Anime, page int) ([]anime.Anime, pagination.Meta) {
	meta := pagination.NewMeta(page, PageSize, len(animes))
	start, end := meta.Window()
	return slices.Clone(animes[start:end]), meta
}
