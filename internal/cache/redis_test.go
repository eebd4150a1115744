// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	url := os.Getenv("OSTAFF_TEST_REDIS_URL")
	if url == "" {
		t.Skip("OSTAFF_TEST_REDIS_URL not set")
	}
	r, err := NewRedis(RedisOptions{URL: url, Prefix: "ostaff-test:", DefaultTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() {
		_ = r.DeletePrefix(context.Background(), "")
		_ = r.Close()
	})
	return r
}

func TestRedis_Operations(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	if err := r.Set(ctx, "jobs:open", []byte("[]"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := r.Get(ctx, "jobs:open")
	if err != nil || string(got) != "[]" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := r.DeletePrefix(ctx, "jobs:"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if _, err := r.Get(ctx, "jobs:open"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("after DeletePrefix err = %v, want miss", err)
	}
}

func TestNewRedis_Errors(t *testing.T) {
	if _, err := NewRedis(RedisOptions{}); err == nil {
		t.Error("empty URL should fail")
	}
	if _, err := NewRedis(RedisOptions{URL: "not-a-url"}); err == nil {
		t.Error("invalid URL should fail")
	}
}
