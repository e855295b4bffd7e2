// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package browse

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/core/anime"
	"github.com/taibuivan/anirate/internal/platform/respond"
)

// Lister is the aggregation read path the view is derived from.
type Lister interface {
	List(ctx context.Context, status catalog.Status) (*anime.Result, error)
}

// # Handler Implementation

// Handler serves server-side derived views for thin clients.
type Handler struct {
	lister Lister
}

// NewHandler constructs a new browse [Handler].
func NewHandler(lister Lister) *Handler {
	return &Handler{lister: lister}
}

// RegisterRoutes mounts the view endpoint.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/list/view", handler.view)
}

// viewResponse extends a [View] with the aggregation's truncation flag.
type viewResponse struct {
	View
	Truncated bool `json:"truncated"`
}

/*
GET /api/list/view.

Request:
  - status: string (watched, watching)
  - sort: string (recent, title)
  - reverse: bool
  - rating: string (all, favorite, recommended, unrated)
  - season: string (all or an exact season label)
  - page: int (clamped)

Response:
  - 200: {animes, seasons, meta, truncated}
*/
func (handler *Handler) view(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	status, err := catalog.ParseStatus(query.Get("status"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := ParseState(query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.lister.List(request.Context(), status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, viewResponse{
		View:      Derive(result.Animes, state),
		Truncated: result.Truncated,
	})
}
