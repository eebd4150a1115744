// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Typed stores JSON-encoded values of T under string keys.
type Typed[T any] struct {
	c   Cache
	ttl time.Duration
}

// NewTyped wraps c. ttl applies to every Set; zero uses the cache default.
func NewTyped[T any](c Cache, ttl time.Duration) *Typed[T] {
	return &Typed[T]{c: c, ttl: ttl}
}

// Get reports false on a miss, a backend error or undecodable data.
func (t *Typed[T]) Get(ctx context.Context, key string) (T, bool) {
	var v T
	data, err := t.c.Get(ctx, key)
	if err != nil {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

func (t *Typed[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return t.c.Set(ctx, key, data, t.ttl)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// A failing cache write does not fail the call.
func (t *Typed[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := t.Get(ctx, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	_ = t.Set(ctx, key, v)
	return v, nil
}

func (t *Typed[T]) Delete(ctx context.Context, key string) error {
	return t.c.Delete(ctx, key)
}
