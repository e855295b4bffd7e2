// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/anirate/internal/platform/database/schema"
	"github.com/taibuivan/anirate/internal/platform/dberr"
	"github.com/taibuivan/anirate/pkg/pointer"
)

// collaborator is the client-facing name of the store in error messages.
const collaborator = "Rating store"

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements [Store] on the anime.rating table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new [PostgresStore].
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListRatings implements [Store].
func (store *PostgresStore) ListRatings(context context.Context) ([]Record, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s`,
		schema.AnimeRating.AnnictID, schema.AnimeRating.Rating, schema.AnimeRating.UpdatedAt,
		schema.AnimeRating.Table,
	)

	rows, err := store.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, collaborator, "list_ratings")
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var record Record
		var tag *string
		if err := rows.Scan(&record.AnnictID, &tag, &record.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, collaborator, "scan_rating")
		}
		record.Rating = pointer.Map(tag, func(value string) Tag { return Tag(value) })
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, collaborator, "iterate_ratings")
	}

	return records, nil
}

// UpsertRating implements [Store].
func (store *PostgresStore) UpsertRating(context context.Context, record Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		schema.AnimeRating.Table,
		schema.AnimeRating.AnnictID, schema.AnimeRating.Rating, schema.AnimeRating.UpdatedAt,
		schema.AnimeRating.AnnictID,
		schema.AnimeRating.Rating, schema.AnimeRating.Rating,
		schema.AnimeRating.UpdatedAt, schema.AnimeRating.UpdatedAt,
	)

	tag := pointer.Map(record.Rating, func(value Tag) string { return string(value) })

	if _, err := store.db.Exec(context, query, record.AnnictID, tag, record.UpdatedAt); err != nil {
		return dberr.Wrap(err, collaborator, "upsert_rating")
	}

	return nil
}
