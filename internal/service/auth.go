package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	domainauth "github.com/medicare-dental/clinic-portal/internal/domain/auth"
	"github.com/medicare-dental/clinic-portal/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Sessions  ports.SessionStore
	Validator ports.IdentityValidator
	Logger    *slog.Logger
	// SessionTTL is the lifetime of a newly created session. Zero means the
	// default of 8h.
	SessionTTL time.Duration
}

// AuthService owns the session lifecycle: it creates sessions at login,
// revalidates them against the identity tables on demand, and tears them
// down at logout. It is the single writer to the session store.
type AuthService struct {
	sessions   ports.SessionStore
	validator  ports.IdentityValidator
	logger     *slog.Logger
	sessionTTL time.Duration

	// validations coalesces concurrent revalidations of the same session
	// into one identity lookup.
	validations singleflight.Group
}

var errSessionExpired = errors.New("session expired")

const defaultSessionTTL = 8 * time.Hour

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		sessions:   opts.Sessions,
		validator:  opts.Validator,
		logger:     logger,
		sessionTTL: ttl,
	}
}

// Login creates and persists a session for an already-verified user. It does
// not re-run identity validation: its caller just performed the credential
// check, and the session becomes usable synchronously.
func (s *AuthService) Login(ctx context.Context, user domainauth.User) (domainauth.Session, error) {
	if !user.Role.Valid() {
		return domainauth.Session{}, fmt.Errorf("login: unknown role code %d", int(user.Role))
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		Data:      domainauth.EncodeUser(user),
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Logout removes a session. A missing or empty session ID is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, enforcing expiry.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// ValidateSession re-confirms a stored session against the identity tables
// and refreshes the stored name/email/role on success. It returns the
// refreshed user, or nil when the session is absent or rejected; rejection
// clears the session. The call is idempotent, and concurrent calls for the
// same session share a single identity lookup.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*domainauth.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	v, err, _ := s.validations.Do(sessionID, func() (any, error) {
		return s.validateSessionOnce(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	user, ok := v.(*domainauth.User)
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) validateSessionOnce(ctx context.Context, sessionID string) (*domainauth.User, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		// Absent and unreadable sessions both mean "logged out"; an
		// unreadable store is still worth a log line.
		if !errors.Is(err, ports.ErrSessionNotFound) {
			s.logger.WarnContext(ctx, "session read failed during validation", "error", err)
		}
		return nil, nil
	}

	user, err := s.validator.Validate(ctx, session.Data)
	if err != nil {
		if !errors.Is(err, ports.ErrSessionInvalid) {
			s.logger.WarnContext(ctx, "session validation failed", "error", err)
		}
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			s.logger.WarnContext(ctx, "failed to clear rejected session", "error", deleteErr)
		}
		return nil, nil
	}

	// Refresh the stored fields with the authoritative identity; the session
	// keeps its ID and expiry.
	session.Data = domainauth.EncodeUser(user)
	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		s.logger.WarnContext(ctx, "failed to refresh validated session", "error", saveErr)
	}

	return &user, nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// UUIDs are URL-safe and have good entropy.
	return uuid.New().String()
}
