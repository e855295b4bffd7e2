// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/anirate/data/migrations"
	"github.com/taibuivan/anirate/internal/platform/migration"
)

/*
TestDatabaseURL verifies the scheme rewrite golang-migrate needs for the pgx5 driver.
*/
func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"postgres", "postgres://app:secret@db:5432/anirate", "pgx5://app:secret@db:5432/anirate"},
		{"postgresql", "postgresql://db/anirate?sslmode=disable", "pgx5://db/anirate?sslmode=disable"},
		{"already_pgx5", "pgx5://db/anirate", "pgx5://db/anirate"},
		{"keyword_dsn", "host=db dbname=anirate", "host=db dbname=anirate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.DatabaseURL(tt.dsn))
		})
	}
}

/*
TestLatest walks the version chain of a migration source.
*/
func TestLatest(t *testing.T) {
	tests := []struct {
		name    string
		source  fs.FS
		want    uint
		wantErr bool
	}{
		{"single", fstest.MapFS{
			"000001_init.up.sql":   {Data: []byte("SELECT 1;")},
			"000001_init.down.sql": {Data: []byte("SELECT 1;")},
		}, 1, false},
		{"gapped_versions", fstest.MapFS{
			"000001_init.up.sql":      {Data: []byte("SELECT 1;")},
			"000003_sessions.up.sql":  {Data: []byte("SELECT 1;")},
			"000010_rating_at.up.sql": {Data: []byte("SELECT 1;")},
			"README.md":               {Data: []byte("notes")},
		}, 10, false},
		{"empty", fstest.MapFS{
			"README.md": {Data: []byte("notes")},
		}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migration.Latest(tt.source)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestEmbeddedMigrations checks that the binary carries a complete, reversible schema.
*/
func TestEmbeddedMigrations(t *testing.T) {
	latest, err := migration.Latest(migrations.FS)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, latest, uint(1))

	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}
