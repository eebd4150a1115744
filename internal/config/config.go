// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backends selectable with OSTAFF_BACKEND.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env           string `env:"OSTAFF_ENV" envDefault:"development"`
	ServerHost    string `env:"OSTAFF_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OSTAFF_SERVER_PORT" envDefault:"8080"`
	DBPath        string `env:"OSTAFF_DB_PATH" envDefault:"./data/ostaff.db"`
	SessionSecret string `env:"OSTAFF_SESSION_SECRET,required"`
	LogLevel      string `env:"OSTAFF_LOG_LEVEL" envDefault:"info"`

	// Backend selects where submissions, jobs and profiles live.
	Backend string `env:"OSTAFF_BACKEND" envDefault:"local"`

	// Hosted backend. The anon key is the public credential; the service
	// key is privileged and is only used server-side.
	SupabaseURL        string `env:"OSTAFF_SUPABASE_URL"`
	SupabaseAnonKey    string `env:"OSTAFF_SUPABASE_ANON_KEY"`
	SupabaseServiceKey string `env:"OSTAFF_SUPABASE_SERVICE_KEY"`
	StorageBucket      string `env:"OSTAFF_STORAGE_BUCKET" envDefault:"applications"`

	UploadsDir   string        `env:"OSTAFF_UPLOADS_DIR" envDefault:"./data/uploads"`
	MaxUploadMB  int           `env:"OSTAFF_MAX_UPLOAD_MB" envDefault:"25"`
	SignedURLTTL time.Duration `env:"OSTAFF_SIGNED_URL_TTL" envDefault:"60s"`

	// AdminSessionMaxMinutes bounds an admin session's absolute age; 0 disables.
	AdminSessionMaxMinutes int `env:"OSTAFF_ADMIN_SESSION_MAX_MINUTES" envDefault:"0"`

	RedisURL    string        `env:"OSTAFF_REDIS_URL"`
	CachePrefix string        `env:"OSTAFF_CACHE_PREFIX" envDefault:"ostaff:"`
	CacheTTL    time.Duration `env:"OSTAFF_CACHE_TTL" envDefault:"5m"`

	TelegramToken  string `env:"OSTAFF_TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"OSTAFF_TELEGRAM_CHAT_ID"`

	// Local provisioning of one admin user and its profile row.
	AdminEmail    string `env:"OSTAFF_ADMIN_EMAIL"`
	AdminPassword string `env:"OSTAFF_ADMIN_PASSWORD"`

	TrustedOrigins []string `env:"OSTAFF_TRUSTED_ORIGINS" envSeparator:","`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseSupabase reports whether the hosted backend is selected.
func (c Config) UseSupabase() bool {
	return c.Backend == BackendSupabase
}

// TelegramEnabled reports whether lead notifications are configured.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// MaxUploadBytes is the per-file upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AdminSessionMaxAge is the admin session bound, zero when unbounded.
func (c Config) AdminSessionMaxAge() time.Duration {
	return time.Duration(c.AdminSessionMaxMinutes) * time.Minute
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("OSTAFF_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return cfg, nil
}

// Validate checks cross-field rules.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("OSTAFF_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}
	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("OSTAFF_SESSION_SECRET is a known default value and must not be used")
		}
	}

	switch c.Backend {
	case BackendLocal:
	case BackendSupabase:
		var missing []string
		if c.SupabaseURL == "" {
			missing = append(missing, "OSTAFF_SUPABASE_URL")
		}
		if c.SupabaseAnonKey == "" {
			missing = append(missing, "OSTAFF_SUPABASE_ANON_KEY")
		}
		if c.SupabaseServiceKey == "" {
			missing = append(missing, "OSTAFF_SUPABASE_SERVICE_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("supabase backend requires %s", strings.Join(missing, ", "))
		}
		if c.SupabaseAnonKey == c.SupabaseServiceKey {
			return errors.New("OSTAFF_SUPABASE_SERVICE_KEY must differ from the anon key")
		}
	default:
		return fmt.Errorf("OSTAFF_BACKEND must be %q or %q, got %q", BackendLocal, BackendSupabase, c.Backend)
	}

	if c.AdminSessionMaxMinutes < 0 {
		return errors.New("OSTAFF_ADMIN_SESSION_MAX_MINUTES must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("OSTAFF_MAX_UPLOAD_MB must be positive")
	}
	if c.SignedURLTTL <= 0 {
		return errors.New("OSTAFF_SIGNED_URL_TTL must be positive")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
