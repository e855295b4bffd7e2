// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"time"

	"github.com/taibuivan/anirate/internal/platform/validate"
)

// # Domain Enums

// Tag is the personal rating attached to a catalog entry.
type Tag string

const (
	TagFavorite    Tag = "favorite"
	TagRecommended Tag = "recommended"
)

// Valid reports whether the tag belongs to the closed enumeration.
func (t Tag) Valid() bool {
	return t == TagFavorite || t == TagRecommended
}

// # Domain Entities

// Record is the stored rating of one catalog entry.
//
// At most one Record exists per AnnictID. A nil Rating means the tag was
// cleared; the row itself survives.
type Record struct {
	AnnictID  int64     `json:"annict_id"`
	Rating    *Tag      `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Commands

// Field names used in validation errors.
const (
	FieldAnnictID = "annictId"
	FieldRating   = "rating"
)

// Input is the raw JSON body of a rate request.
//
// Rating is a plain string pointer so that out-of-range values reach validation
// instead of failing the decode.
type Input struct {
	AnnictID *int64  `json:"annictId"`
	Rating   *string `json:"rating"`
}

// Command is a validated rate request.
type Command struct {
	AnnictID int64
	Rating   *Tag
}

// Command validates the input. A missing or null rating clears the tag;
// any string outside the enumeration (including "") is rejected.
func (input Input) Command() (Command, error) {
	validator := &validate.Validator{}
	validator.Positive(FieldAnnictID, input.AnnictID)

	if input.Rating != nil {
		validator.OneOf(FieldRating, *input.Rating, string(TagFavorite), string(TagRecommended))
	}

	if err := validator.Err(); err != nil {
		return Command{}, err
	}

	command := Command{AnnictID: *input.AnnictID}
	if input.Rating != nil {
		tag := Tag(*input.Rating)
		command.Rating = &tag
	}

	return command, nil
}
