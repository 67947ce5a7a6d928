// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

// Package web exposes the JSON API consumed by the GYSD dashboard.
//
// The handlers translate auth sentinel errors into HTTP statuses; the auth
// core itself knows nothing about routing or screens.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emales/gysd/internal/auth"
	"github.com/emales/gysd/internal/observability"
	"github.com/emales/gysd/internal/session"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "gysd_session"

// Server holds the API dependencies.
type Server struct {
	auth         *auth.Service
	sessions     *session.Manager
	maxAge       time.Duration
	cookieSecure bool
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// New creates the API server. metrics may be nil (e.g., in tests).
func New(authSvc *auth.Service, sessions *session.Manager, maxAge time.Duration, cookieSecure bool, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAge <= 0 {
		maxAge = session.DefaultMaxAge
	}
	return &Server{
		auth:         authSvc,
		sessions:     sessions,
		maxAge:       maxAge,
		cookieSecure: cookieSecure,
		metrics:      metrics,
		logger:       logger,
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireSession)
			r.Get("/me", s.handleMe)
			r.Post("/me/password", s.handleChangePassword)
		})
	})

	return r
}

// setSessionCookie writes the session cookie for a freshly issued token.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge / time.Second),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie on the client.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write errors mean the client went away
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body. msg must be safe to show a client.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
