// Package session holds the process-scoped login state: the bearer token and
// the user id. It is created empty at start-up, written by the login screen
// and read by every gateway call. Nothing is persisted.
package session

import (
	"sync"

	"github.com/powervision/estoque/internal/domain"
)

// Store is the in-memory session. The zero value is an empty, usable store.
type Store struct {
	mu   sync.RWMutex
	sess domain.Session
}

// New creates an empty session store.
func New() *Store {
	return &Store{}
}

// Get returns a snapshot of the current session.
func (s *Store) Get() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess
}

// Token returns the current bearer token ("" when not logged in).
// Requests read it once when they are built, so replacing the token never
// affects calls already in flight.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.AuthToken
}

// UserID returns the current user id ("" when unknown).
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.UserID
}

// SetToken replaces the bearer token.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.AuthToken = token
}

// SetUserID replaces the user id.
func (s *Store) SetUserID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.UserID = id
}
