// Package session holds the authenticated clinician's bearer token and
// identity. A single Session instance is passed explicitly into the API
// client, record repository and sync engine instead of being kept in
// package-level state.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Session struct {
	mu       sync.RWMutex
	token    string
	email    string
	name     string
	onExpire func()
}

func New() *Session {
	return &Session{}
}

// OnExpire registers a hook invoked once whenever the session is torn down
// via Expire (typically a redirect to the login prompt).
func (s *Session) OnExpire(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = f
}

// Set stores a freshly issued token and the identity it belongs to.
func (s *Session) Set(token, email, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.email = email
	s.name = name
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Valid reports whether a token is present and, when it parses as a JWT,
// whether its exp claim has not passed. The token is not signature-checked
// here; the server remains the authority and replies 401 to a stale token.
func (s *Session) Valid() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// Opaque token: presence is all we can check locally.
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

// Clear drops the token and identity without firing the expiry hook.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.email = ""
	s.name = ""
}

// Expire tears the session down and fires the registered expiry hook.
// Called on any 401 from the server.
func (s *Session) Expire() {
	s.mu.Lock()
	s.token = ""
	s.email = ""
	s.name = ""
	hook := s.onExpire
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}
