package tokenstore

import (
	"go.uber.org/atomic"
)

// Store holds the current upstream credential. The relay's preprocessor
// reads it on every in-scope request and the auth control handler replaces
// it when an operator confirms a login, so access is lock-free atomic.
type Store struct {
	token atomic.String
}

// New returns an empty store (no credential known yet).
func New() *Store {
	return &Store{}
}

// Set replaces the current credential.
func (s *Store) Set(token string) {
	s.token.Store(token)
}

// Get returns the current credential, "" when none is known.
func (s *Store) Get() string {
	return s.token.Load()
}

// Clear forgets the current credential.
func (s *Store) Clear() {
	s.token.Store("")
}
