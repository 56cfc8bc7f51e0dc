package config

import "time"

// SessionConfig controls server-side session behavior.
type SessionConfig struct {
	// TTL is the lifetime of a session from login.
	TTL time.Duration `env:"TTL" envDefault:"8h"`

	// KeyPrefix namespaces session keys in the shared Redis instance.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"session:"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Session configuration.
	Session SessionConfig `envPrefix:"SESSION_"`

	// LookupTimeout bounds a single identity-table lookup during session
	// validation.
	LookupTimeout time.Duration `env:"AUTH_LOOKUP_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Session.TTL <= 0 {
		a.Session.TTL = 8 * time.Hour
	}
	if a.Session.KeyPrefix == "" {
		a.Session.KeyPrefix = "session:"
	}
	if a.LookupTimeout <= 0 {
		a.LookupTimeout = 5 * time.Second
	}
}
