package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.IdentityValidator = (*StubValidator)(nil)
	_ ports.CredentialChecker = (*StubCredentialChecker)(nil)
)

// MemorySessionStore is an in-memory session store for unit tests.
// Safe for concurrent use so it can back concurrency tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StubValidator returns a fixed user or error, counting calls.
type StubValidator struct {
	ValidateFunc func(ctx context.Context, data domainauth.SessionData) (domainauth.User, error)

	mu    sync.Mutex
	calls int
}

func (v *StubValidator) Validate(ctx context.Context, data domainauth.SessionData) (domainauth.User, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	if v.ValidateFunc != nil {
		return v.ValidateFunc(ctx, data)
	}
	return data.ToUser()
}

// Calls reports how many times Validate was invoked.
func (v *StubValidator) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

// StubCredentialChecker returns a fixed user for a known email/password pair.
type StubCredentialChecker struct {
	Email    string
	Password string
	User     domainauth.User
}

func (c *StubCredentialChecker) Check(_ context.Context, email, password string) (domainauth.User, error) {
	if email == c.Email && password == c.Password {
		return c.User, nil
	}
	return domainauth.User{}, ports.ErrInvalidCredentials
}
