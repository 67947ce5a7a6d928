// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/samber/oops"
)

// TokenBytes is the length of the random session token. 32 bytes = 64 hex chars.
const TokenBytes = 32

// Manager owns the map of live sessions, keyed by the SHA-256 hash of the
// client token. Holding only the hash keeps tokens out of process memory
// dumps and logs.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time
}

// NewManager creates a session manager using the real clock.
func NewManager() *Manager {
	return NewManagerWithClock(time.Now)
}

// NewManagerWithClock creates a session manager with an injectable clock
// for deterministic tests.
func NewManagerWithClock(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		now:      now,
	}
}

// Begin creates a fresh anonymous session and returns the client token
// identifying it. The token is the only copy; the manager stores its hash.
func (m *Manager) Begin() (string, *Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}

	s := newSession(m.now)

	m.mu.Lock()
	m.sessions[hashToken(token)] = s
	m.mu.Unlock()

	return token, s, nil
}

// Lookup returns the session for a client token, or nil if the token is
// unknown.
func (m *Manager) Lookup(token string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[hashToken(token)]
}

// End removes the session for a client token, wiping its state first.
// Unknown tokens are a no-op.
func (m *Manager) End(token string) {
	key := hashToken(token)

	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if ok {
		s.Logout()
	}
}

// PruneExpired logs out and removes every session that has outlived maxAge,
// returning the number removed. Callers run this periodically; expiry is
// never enforced implicitly.
func (m *Manager) PruneExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pruned int
	for key, s := range m.sessions {
		if s.IsExpired(maxAge) {
			s.Logout()
			delete(m.sessions, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateToken creates a secure random session token.
func generateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(b), nil
}

// hashToken computes the SHA-256 hash of a session token.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
