package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
)

// Contract errors shared by port implementations.
var (
	// ErrSessionNotFound is returned by SessionStore when no session exists
	// for the given ID. Absence is "logged out", not a failure.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInvalid is returned by IdentityValidator for every rejection
	// outcome. The caller-visible behavior is identical to "session expired".
	ErrSessionInvalid = errors.New("session invalid")

	// ErrInvalidCredentials is returned by CredentialChecker for every login
	// failure mode.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// IdentityValidator confirms a stored session against the authoritative
// identity tables and returns the refreshed identity. A rejection for any
// reason (row missing, account unusable, role drift, transport failure) is
// reported as ErrSessionInvalid by implementations; callers treat all
// rejections uniformly.
type IdentityValidator interface {
	Validate(ctx context.Context, data domainauth.SessionData) (domainauth.User, error)
}

// CredentialChecker verifies login credentials against the identity tables.
// Implementations return ErrInvalidCredentials for every failure mode so the
// login surface cannot be used to enumerate accounts.
type CredentialChecker interface {
	Check(ctx context.Context, email, password string) (domainauth.User, error)
}
