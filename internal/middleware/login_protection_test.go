// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProtection(t *testing.T, maxAttempts int) (*LoginProtection, *fakeClock) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   time.Minute,
		AttemptWindow:     10 * time.Minute,
	})
	t.Cleanup(lp.Stop)
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	lp.now = clock.now
	return lp, clock
}

func TestNewLoginProtection_Defaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute || lp.attemptWindow != 15*time.Minute {
		t.Errorf("durations = %v / %v", lp.lockoutDuration, lp.attemptWindow)
	}
}

func TestLoginProtection_LocksAfterMaxAttempts(t *testing.T) {
	lp, clock := newTestProtection(t, 3)
	email := "Admin@Example.com"

	for i := 1; i < 3; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d attempts", i)
		}
	}
	if got := lp.GetRemainingAttempts(email); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}

	locked, d := lp.RecordFailedAttempt("admin@example.com")
	if !locked || d != time.Minute {
		t.Fatalf("locked = %v, d = %v", locked, d)
	}
	if locked, _ := lp.IsAccountLocked("  ADMIN@example.com "); !locked {
		t.Error("lock should ignore case and spaces")
	}

	clock.advance(time.Minute + time.Second)
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("lock should expire")
	}
}

func TestLoginProtection_BackoffDoubles(t *testing.T) {
	lp, clock := newTestProtection(t, 1)
	email := "admin@example.com"

	_, first := lp.RecordFailedAttempt(email)
	clock.advance(first + time.Second)
	_, second := lp.RecordFailedAttempt(email)

	if second != 2*first {
		t.Errorf("second lockout = %v, want %v", second, 2*first)
	}
}

func TestLoginProtection_WindowResets(t *testing.T) {
	lp, clock := newTestProtection(t, 3)
	email := "admin@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	clock.advance(11 * time.Minute)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining after window = %d, want 3", got)
	}
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("a fresh window should not lock on the first failure")
	}
}

func TestLoginProtection_SuccessClears(t *testing.T) {
	lp, _ := newTestProtection(t, 3)
	email := "admin@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining = %d, want 3", got)
	}
}

func TestLoginProtection_Cleanup(t *testing.T) {
	lp, clock := newTestProtection(t, 3)
	lp.RecordFailedAttempt("old@example.com")
	clock.advance(time.Hour)
	lp.RecordFailedAttempt("new@example.com")

	lp.cleanupStaleEntries()

	lp.attemptsMu.RLock()
	defer lp.attemptsMu.RUnlock()
	if _, ok := lp.failedAttempts["old@example.com"]; ok {
		t.Error("stale entry survived cleanup")
	}
	if _, ok := lp.failedAttempts["new@example.com"]; !ok {
		t.Error("recent entry was removed")
	}
}

func TestLoginProtection_MiddlewareLimitsPostsOnly(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1})
	defer lp.Stop()

	h := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(method string) int {
		r := httptest.NewRequest(method, "/login", nil)
		r.RemoteAddr = "198.51.100.4:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	if got := do(http.MethodPost); got != http.StatusOK {
		t.Fatalf("first POST = %d", got)
	}
	if got := do(http.MethodPost); got != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d, want 429", got)
	}
	if got := do(http.MethodGet); got != http.StatusOK {
		t.Fatalf("GET = %d, want 200", got)
	}
}
