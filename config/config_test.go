package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, ":8080")
	}
	if cfg.Postgres.Host != "localhost" {
		t.Errorf("Postgres.Host = %q, want %q", cfg.Postgres.Host, "localhost")
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if !cfg.Postgres.RunMigrationsOnStart {
		t.Error("Postgres.RunMigrationsOnStart = false, want true")
	}
	if cfg.Redis.URI != "localhost:6379" {
		t.Errorf("Redis.URI = %q, want %q", cfg.Redis.URI, "localhost:6379")
	}
	if cfg.Auth.Session.TTL != 8*time.Hour {
		t.Errorf("Auth.Session.TTL = %v, want 8h", cfg.Auth.Session.TTL)
	}
	if cfg.Auth.Session.KeyPrefix != "session:" {
		t.Errorf("Auth.Session.KeyPrefix = %q, want %q", cfg.Auth.Session.KeyPrefix, "session:")
	}
	if cfg.Auth.LookupTimeout != 5*time.Second {
		t.Errorf("Auth.LookupTimeout = %v, want 5s", cfg.Auth.LookupTimeout)
	}
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_USE_SENTINEL", "true")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, ":9090")
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q, want %q", cfg.Postgres.Host, "db.internal")
	}
	if cfg.Auth.Session.TTL != 30*time.Minute {
		t.Errorf("Auth.Session.TTL = %v, want 30m", cfg.Auth.Session.TTL)
	}
	if !cfg.Redis.UseSentinel {
		t.Error("Redis.UseSentinel = false, want true")
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Error("IsDev = false, want true when APP_ENV=development")
	}
}

func TestAuthConfig_SanitizeGuardrails(t *testing.T) {
	a := AuthConfig{}
	a.Sanitize()

	if a.Session.TTL != 8*time.Hour {
		t.Errorf("Session.TTL = %v, want 8h", a.Session.TTL)
	}
	if a.Session.KeyPrefix != "session:" {
		t.Errorf("Session.KeyPrefix = %q, want %q", a.Session.KeyPrefix, "session:")
	}
	if a.LookupTimeout != 5*time.Second {
		t.Errorf("LookupTimeout = %v, want 5s", a.LookupTimeout)
	}
}
