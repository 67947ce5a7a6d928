// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package web

import (
	"context"
	"net/http"

	"github.com/emales/gysd/internal/session"
)

type contextKey struct{ name string }

var sessionContextKey = &contextKey{"session"}

// SessionFromContext returns the session attached by RequireSession, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionContextKey).(*session.Session)
	return s
}

// RequireSession gates protected routes behind a valid, unexpired session.
//
// Expiry is enforced here: IsExpired is only a predicate, so an expired
// session is explicitly ended before the request is rejected. Surviving
// sessions get a Refresh, giving the sliding-window behavior of the
// dashboard (every protected-page entry extends the session).
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		sess := s.sessions.Lookup(cookie.Value)
		if sess == nil || !sess.IsAuthenticated() {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if sess.IsExpired(s.maxAge) {
			s.sessions.End(cookie.Value)
			s.clearSessionCookie(w)
			respondError(w, http.StatusUnauthorized, "session expired")
			return
		}

		sess.Refresh()
		// Re-issue the cookie so the browser's copy slides with the
		// server-side window instead of expiring on the login schedule.
		s.setSessionCookie(w, cookie.Value)

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
