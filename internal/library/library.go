// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/anime"
	"github.com/taibuivan/anirate/internal/core/browse"
	"github.com/taibuivan/anirate/internal/core/rating"
	"github.com/taibuivan/anirate/pkg/pointer"
)

// LoadState tells an empty list apart from a failed fetch.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateFailed
)

// ErrNotSignedIn is returned by rating actions without a session token.
var ErrNotSignedIn = errors.New("library: not signed in")

// Library is the in-memory list of one view plus its presentation state.
type Library struct {
	api API

	mu        sync.RWMutex
	animes    []anime.Anime
	truncated bool
	state     LoadState
	err       error
	view      browse.State
}

// New creates an idle library.
func New(api API) *Library {
	return &Library{api: api, view: browse.NewState()}
}

// Fetch replaces the list with the server's authoritative copy.
//
// On failure the previous list is dropped and the library enters [StateFailed].
func (l *Library) Fetch(ctx context.Context, status catalog.Status) error {
	l.mu.Lock()
	l.state = StateLoading
	l.err = nil
	l.mu.Unlock()

	result, err := l.api.List(ctx, status)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.animes = nil
		l.truncated = false
		l.state = StateFailed
		l.err = err
		return err
	}

	// The API may keep its result; patches must only touch the library's copy.
	l.animes = slices.Clone(result.Animes)
	l.truncated = result.Truncated
	l.state = StateLoaded
	return nil
}

// Rate submits a rating and, once the server accepted it, patches the local copy.
// The full list is not re-fetched.
func (l *Library) Rate(ctx context.Context, token string, annictID int64, tag *rating.Tag) error {
	if token == "" {
		return ErrNotSignedIn
	}
	if err := l.api.Rate(ctx, token, annictID, tag); err != nil {
		return err
	}
	l.ApplyPatch(annictID, tag)
	return nil
}

// ApplyPatch sets the rating of one entry in the in-memory list.
// It reports whether the entry was present.
func (l *Library) ApplyPatch(annictID int64, tag *rating.Tag) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.animes {
		if l.animes[i].ID != annictID {
			continue
		}
		l.animes[i].Rating = pointer.Clone(tag)
		return true
	}
	return false
}

// State returns the load state and the error of the last fetch, if any.
func (l *Library) State() (LoadState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, l.err
}

// Truncated reports whether the last fetch hit the catalog page ceiling.
func (l *Library) Truncated() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.truncated
}

// Animes returns a copy of the in-memory list.
func (l *Library) Animes() []anime.Anime {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]anime.Anime(nil), l.animes...)
}

// Update mutates the presentation state; its setters handle the page reset.
func (l *Library) Update(change func(*browse.State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	change(&l.view)
}

// View derives the visible page from the current list and presentation state.
func (l *Library) View() browse.View {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return browse.Derive(l.animes, l.view)
}
