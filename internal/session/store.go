// Package session implements the session boundary: short-lived bearer
// tokens carrying exactly one authenticated role, plus the failed-attempt
// throttle for PIN verification.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/duetlabs/duet/internal/credential"
)

// Session is one authenticated caller. The role is fixed at issue time;
// there is no escalation path.
type Session struct {
	Token    string
	Role     credential.Role
	IssuedAt time.Time
}

// Store holds active sessions in memory. The service is a single process
// and every session dies on PIN rotation anyway, so no external store is
// involved.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
	now      func() time.Time
}

// NewStore creates a session store with the given time-to-live.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Issue creates a session for role and returns its bearer token.
func (s *Store) Issue(role credential.Role) Session {
	sess := Session{
		Token:    uuid.NewString(),
		Role:     role,
		IssuedAt: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Resolve returns the live session for token. Expired sessions are removed
// on the way out.
func (s *Store) Resolve(token string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if s.now().Sub(sess.IssuedAt) > s.ttl {
		s.Revoke(token)
		return Session{}, false
	}
	return sess, true
}

// Revoke destroys a single session (logout).
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// RevokeRole destroys every session held by role. Called after a successful
// PIN rotation so no session of the rotated role silently stays valid.
func (s *Store) RevokeRole(role credential.Role) {
	s.mu.Lock()
	for token, sess := range s.sessions {
		if sess.Role == role {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}

// Count returns the number of stored sessions, including any not yet swept.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
