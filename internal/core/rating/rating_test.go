// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating_test

import (
	"context"
	"sync"

	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/internal/platform/apperr"
	"github.com/taibuivan/anirate/internal/platform/sec"
)

// memoryStore is an in-memory [rating.Store] keyed like the real table.
type memoryStore struct {
	mu      sync.Mutex
	records map[int64]rating.Record
	writes  int
	err     error
}

func newMemoryStore(seed ...rating.Record) *memoryStore {
	store := &memoryStore{records: make(map[int64]rating.Record)}
	for _, record := range seed {
		store.records[record.AnnictID] = record
	}
	return store
}

func (m *memoryStore) ListRatings(context.Context) ([]rating.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	records := make([]rating.Record, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record)
	}
	return records, nil
}

func (m *memoryStore) UpsertRating(_ context.Context, record rating.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.records[record.AnnictID] = record
	return nil
}

func (m *memoryStore) get(id int64) (rating.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	return record, ok
}

// fakeGuard admits tokens listed in admins, rejects tokens in members with 403,
// and treats anything else as an invalid credential.
type fakeGuard struct {
	admins       map[string]bool
	members      map[string]bool
	unconfigured bool
}

func (g *fakeGuard) RequireAdmin(_ context.Context, bearer string) (*sec.Identity, error) {
	if g.unconfigured {
		return nil, apperr.Configuration("Identity gateway is not configured")
	}
	if g.admins[bearer] {
		return &sec.Identity{UserID: "admin-" + bearer}, nil
	}
	if g.members[bearer] {
		return nil, apperr.Forbidden("Admin access required")
	}
	return nil, apperr.Unauthorized("Invalid token")
}

func newGuard() *fakeGuard {
	return &fakeGuard{
		admins:  map[string]bool{"admin-token": true},
		members: map[string]bool{"member-token": true},
	}
}

func tagPtr(tag rating.Tag) *rating.Tag { return &tag }
