// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import "context"

// # Rating Data Access

// Store defines the data access contract for rating records.
type Store interface {

	/*
		ListRatings returns every stored rating, cleared ones included.

		It is never filtered by id: callers join in memory.
	*/
	ListRatings(context context.Context) ([]Record, error)

	/*
		UpsertRating creates or replaces the record keyed by AnnictID.

		The write is atomic per key. Concurrent writers race and the last one wins.
	*/
	UpsertRating(context context.Context, record Record) error
}
