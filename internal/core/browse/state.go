// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browse

import (
	"net/url"
	"strconv"

	"github.com/taibuivan/anirate/internal/platform/validate"
	"github.com/taibuivan/anirate/pkg/pagination"
)

// # Presentation Options

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	// SortRecent keeps the catalog's native order (most recent season first).
	SortRecent SortKey = "recent"
	// SortTitle orders by title with Japanese collation.
	SortTitle SortKey = "title"
)

// RatingFilter selects entries by rating tag.
type RatingFilter string

const (
	FilterAll         RatingFilter = "all"
	FilterFavorite    RatingFilter = "favorite"
	FilterRecommended RatingFilter = "recommended"
	FilterUnrated     RatingFilter = "unrated"
)

// SeasonAll disables the season filter.
const SeasonAll = "all"

// Query parameter names.
const (
	ParamSort    = "sort"
	ParamReverse = "reverse"
	ParamRating  = "rating"
	ParamSeason  = "season"
	ParamPage    = "page"
)

// # State

// State is the presentation state of one list view.
//
// Changing the sort key, the direction, or a filter through the setters
// sends the view back to page 1. Only [State.SetPage] moves between pages.
type State struct {
	Sort    SortKey
	Reverse bool
	Rating  RatingFilter
	Season  string
	Page    int
}

// NewState returns the default view: native order, no filters, first page.
func NewState() State {
	return State{
		Sort:   SortRecent,
		Rating: FilterAll,
		Season: SeasonAll,
		Page:   pagination.DefaultPage,
	}
}

// SetSort changes the sort key.
func (s *State) SetSort(key SortKey) {
	if s.Sort != key {
		s.Sort = key
		s.Page = pagination.DefaultPage
	}
}

// SetReverse changes the direction flag.
func (s *State) SetReverse(reverse bool) {
	if s.Reverse != reverse {
		s.Reverse = reverse
		s.Page = pagination.DefaultPage
	}
}

// SetRatingFilter changes the rating filter.
func (s *State) SetRatingFilter(filter RatingFilter) {
	if s.Rating != filter {
		s.Rating = filter
		s.Page = pagination.DefaultPage
	}
}

// SetSeason changes the season filter.
func (s *State) SetSeason(season string) {
	if season == "" {
		season = SeasonAll
	}
	if s.Season != season {
		s.Season = season
		s.Page = pagination.DefaultPage
	}
}

// SetPage moves to another page. The value is clamped when the view is derived.
func (s *State) SetPage(page int) {
	s.Page = page
}

// ParseState reads a [State] from query parameters. Absent values keep their defaults.
func ParseState(query url.Values) (State, error) {
	state := NewState()
	validator := &validate.Validator{}

	if raw := query.Get(ParamSort); raw != "" {
		validator.OneOf(ParamSort, raw, string(SortRecent), string(SortTitle))
		state.Sort = SortKey(raw)
	}

	if raw := query.Get(ParamReverse); raw != "" {
		reverse, err := strconv.ParseBool(raw)
		validator.Custom(ParamReverse, err != nil, "Must be a boolean")
		state.Reverse = reverse
	}

	if raw := query.Get(ParamRating); raw != "" {
		validator.OneOf(ParamRating, raw,
			string(FilterAll), string(FilterFavorite), string(FilterRecommended), string(FilterUnrated))
		state.Rating = RatingFilter(raw)
	}

	if raw := query.Get(ParamSeason); raw != "" {
		state.Season = raw
	}

	if raw := query.Get(ParamPage); raw != "" {
		page, err := strconv.Atoi(raw)
		validator.Custom(ParamPage, err != nil, "Must be an integer")
		state.Page = page
	}

	if err := validator.Err(); err != nil {
		return State{}, err
	}

	return state, nil
}
