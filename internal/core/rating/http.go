// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/anirate/internal/platform/request"
	"github.com/taibuivan/anirate/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes the rating command over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new rating [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the rating endpoints. Other methods fall through to the router's 405.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/rate", handler.rate)
}

// rateResponse is the success body of POST /api/rate.
type rateResponse struct {
	Success bool `json:"success"`
}

/*
POST /api/rate.

Description: Attaches or clears a rating tag. Checks run in order and
short-circuit: body (400), bearer presence (401), identity configuration (500),
credential (401), admin membership (403).

Request:
  - annictId: int (positive)
  - rating: "favorite" | "recommended" | null

Response:
  - 200: {success: true}
*/
func (handler *Handler) rate(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	command, err := input.Command()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bearer, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.service.Rate(request.Context(), bearer, command); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, rateResponse{Success: true})
}
