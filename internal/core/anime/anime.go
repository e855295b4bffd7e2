// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/rating"
)

// # Domain Entities

// Anime is a catalog entry decorated with its optional rating.
//
// Rating always serializes, as null when the entry has no tag.
type Anime struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	SeasonName     string         `json:"season_name"`
	SeasonNameText string         `json:"season_name_text"`
	ReleasedOn     string         `json:"released_on"`
	Images         catalog.Images `json:"images"`
	Rating         *rating.Tag    `json:"rating"`
}

// SeasonLabel resolves the season shown to users: the human label, else the short code.
func (a Anime) SeasonLabel() string {
	if a.SeasonNameText != "" {
		return a.SeasonNameText
	}
	return a.SeasonName
}

// Result is the outcome of a full list aggregation.
type Result struct {
	Animes []Anime `json:"animes"`

	// Truncated reports that the page ceiling stopped the walk before the catalog was exhausted.
	Truncated bool `json:"truncated"`
}

// fromWork builds an undecorated [Anime] from a catalog entry.
func fromWork(work catalog.Work) Anime {
	return Anime{
		ID:             work.ID,
		Title:          work.Title,
		SeasonName:     work.SeasonName,
		SeasonNameText: work.SeasonNameText,
		ReleasedOn:     work.ReleasedOn,
		Images:         work.Images,
	}
}
