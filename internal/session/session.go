// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

// Package session manages per-client authentication state.
//
// Each client holds an opaque token (cookie value); the Manager maps the
// token's hash to a Session. Sessions are ephemeral: they live in process
// memory and vanish on restart. Nothing here is process-global state -
// concurrent clients only ever see their own Session.
package session

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/emales/gysd/internal/auth"
)

// DefaultMaxAge is the default maximum session duration.
const DefaultMaxAge = 24 * time.Hour

// Session holds the authentication state for one client.
//
// The user snapshot is a cached view captured at login; changes to the
// underlying user row are invisible until the next login. Mutations are
// serialized by a per-session mutex so concurrent requests on the same
// session stay safe.
type Session struct {
	// ID identifies the session in logs. It is not a secret; the client
	// token never appears in logs or in the manager's map keys.
	ID ulid.ULID

	mu            sync.Mutex
	authenticated bool
	user          auth.UserSnapshot
	loginTime     time.Time
	scratch       map[string]any

	now func() time.Time
}

// newSession creates an anonymous session using the given clock.
func newSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		ID:  ulid.Make(),
		now: now,
	}
}

// Login marks the session authenticated with the given user snapshot and
// records the login time. Any prior state is overwritten unconditionally.
func (s *Session) Login(user auth.UserSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = true
	s.user = user
	s.loginTime = s.now()
	s.scratch = nil
}

// Logout wipes the session completely: identity fields, login time, and any
// scratch state that piggybacked on the session.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authenticated = false
	s.user = auth.UserSnapshot{}
	s.loginTime = time.Time{}
	s.scratch = nil
}

// IsAuthenticated reports whether the session holds a logged-in user.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// CurrentUser returns the snapshot captured at login. The second return is
// false for anonymous sessions.
func (s *Session) CurrentUser() (auth.UserSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return auth.UserSnapshot{}, false
	}
	return s.user, true
}

// Duration returns the time elapsed since login. The second return is false
// for anonymous sessions.
func (s *Session) Duration() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated || s.loginTime.IsZero() {
		return 0, false
	}
	return s.now().Sub(s.loginTime), true
}

// IsExpired reports whether the session has outlived maxAge. Anonymous
// sessions and sessions with a missing login time count as expired.
//
// This is a pure predicate: expiry is not enforced here. A caller that
// observes an expired session is expected to invoke Logout.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated || s.loginTime.IsZero() {
		return true
	}
	return s.now().Sub(s.loginTime) > maxAge
}

// Refresh resets the login time to now, extending the session under a
// sliding-window expiry. No-op on anonymous sessions.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return
	}
	s.loginTime = s.now()
}

// Set stores a scratch value on the session while authenticated. Scratch
// state is for per-screen data that rides along with the session and is
// wiped on Logout.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return
	}
	if s.scratch == nil {
		s.scratch = make(map[string]any)
	}
	s.scratch[key] = value
}

// Value returns a scratch value previously stored with Set.
func (s *Session) Value(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.scratch[key]
	return v, ok
}

// ClearExceptAuth wipes scratch state while preserving the authenticated
// identity and login time.
func (s *Session) ClearExceptAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scratch = nil
}
