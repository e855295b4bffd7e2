// Copyright (c) 2026 Anirate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/anirate/internal/platform/middleware"
	requestutil "github.com/taibuivan/anirate/internal/platform/request"
	"github.com/taibuivan/anirate/internal/platform/respond"
)

// # Definitions & Constructors

// Handler exposes the identity gateway over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new identity [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the identity endpoints.
//
// # Endpoints
//   - GET    /check-admin         : {isAdmin} for the bearer.
//   - POST   /auth/login          : Mails a login link.
//   - POST   /auth/verify         : Redeems a login link into credentials.
//   - GET    /auth/sessions       : Lists the caller's active sessions.
//   - DELETE /auth/sessions/{id}  : Revokes one of the caller's sessions.
//   - POST   /auth/logout         : Revokes the caller's current session.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/check-admin", handler.checkAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler.requestLogin)
		r.Post("/verify", handler.verify)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity(handler.service))
			r.Get("/sessions", handler.listSessions)
			r.Delete("/sessions/{id}", handler.revokeSession)
			r.Post("/logout", handler.logout)
		})
	})
}

// # Request Payloads

type loginRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type checkAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

type loginResponse struct {
	Sent bool `json:"sent"`
}

type sessionsResponse struct {
	Sessions []Session `json:"sessions"`
}

/*
GET /api/check-admin.

Description: Reports admin membership of the bearer. A missing or invalid
credential is a 401, never {isAdmin: false}.

Response:
  - 200: {isAdmin: bool}
  - 401: Missing or invalid credential
  - 500: Identity gateway not configured, or the store failed
*/
func (handler *Handler) checkAdmin(writer http.ResponseWriter, request *http.Request) {
	bearer, err := requestutil.BearerToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	admin, err := handler.service.CheckAdmin(request.Context(), bearer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, checkAdminResponse{IsAdmin: admin})
}

/*
POST /api/auth/login.

Request:
  - email: string

Response:
  - 202: {sent: true}
  - 400: Malformed email
*/
func (handler *Handler) requestLogin(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RequestLoginLink(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, loginResponse{Sent: true})
}

/*
POST /api/auth/verify.

Request:
  - token: string (From the login link)

Response:
  - 200: Credentials
  - 401: Link invalid, expired, or already used
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	var input verifyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	credentials, err := handler.service.SignIn(request.Context(), input.Token, ClientMeta{
		IPAddress: middleware.RealIP(request),
		UserAgent: request.UserAgent(),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, credentials)
}

// GET /api/auth/sessions.
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.service.ListSessions(request.Context(), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessionsResponse{Sessions: sessions})
}

// DELETE /api/auth/sessions/{id}.
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokeSession(request.Context(), identity, requestutil.Param(request, FieldSessionID)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// POST /api/auth/logout.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SignOut(request.Context(), identity); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
