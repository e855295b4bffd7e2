// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package anime

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/anirate/internal/catalog"
	"github.com/taibuivan/anirate/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes the aggregated list over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new anime [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the list endpoint.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/list", handler.list)
}

/*
GET /api/list.

Request:
  - status: string (watched, watching; default watched)

Response:
  - 200: {animes: Anime[], truncated: bool}
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	status, err := catalog.ParseStatus(request.URL.Query().Get("status"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.List(request.Context(), status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
