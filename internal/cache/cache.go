// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the byte-level cache used for public read paths,
// backed either by process memory or by Redis.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is implemented by Memory and Redis. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl uses the cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key that starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Error is a cache sentinel error.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrCacheMiss   Error = "cache miss"
	ErrCacheClosed Error = "cache closed"
)

// Config selects and tunes the backend.
type Config struct {
	// RedisURL selects Redis when set, e.g. redis://localhost:6379/0.
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	// CleanupInterval drives expiry sweeps of the memory cache.
	CleanupInterval time.Duration
}

// New returns a Redis cache when cfg.RedisURL is set and reachable,
// otherwise a memory cache. A Redis failure is logged and degrades to
// memory rather than failing startup.
func New(cfg Config, logger *slog.Logger) Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.RedisURL != "" {
		rc, err := NewRedis(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			logger.Info("cache backend", "type", "redis", "prefix", cfg.Prefix)
			return rc
		}
		logger.Warn("redis unavailable, using memory cache", "error", err)
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	logger.Info("cache backend", "type", "memory")
	return NewMemory(cfg.DefaultTTL, cfg.CleanupInterval)
}
