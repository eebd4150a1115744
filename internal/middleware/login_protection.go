// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// maxLockout caps the doubling backoff.
	maxLockout = 24 * time.Hour
	// maxTrackedIPs bounds the per-IP limiter map between sweeps.
	maxTrackedIPs = 10000
	sweepInterval = 10 * time.Minute
)

// LoginProtection throttles admin sign-in: a token bucket per client IP in
// front of the login POST, and a per-account lockout that the login handler
// drives after each rejected password.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	// keyed by normalized email
	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig configures LoginProtection. Zero fields take the
// defaults of DefaultLoginProtectionConfig.
type LoginProtectionConfig struct {
	// IPRateLimit is login POSTs per second per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow locks the account.
	MaxFailedAttempts int
	// LockoutDuration is the first lockout; each further one doubles it.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig allows a burst of five sign-ins per IP, then
// one every two seconds, and locks an account for 15 minutes after five
// failures in 15 minutes.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	return c
}

// NewLoginProtection starts a background sweep of stale entries; call Stop
// when done.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	go lp.sweepLoop()
	return lp
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// backoff is the lockout length after the given number of earlier lockouts.
func (lp *LoginProtection) backoff(earlier int) time.Duration {
	d := lp.lockoutDuration
	for i := 0; i < earlier && d < maxLockout; i++ {
		d *= 2
	}
	return min(d, maxLockout)
}

// IsAccountLocked reports whether email is locked and for how much longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, ok := lp.failedAttempts[normalizeEmail(email)]
	lp.attemptsMu.RUnlock()
	if !ok {
		return false, 0
	}
	if left := attempt.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailedAttempt counts a rejected password for email. When the count
// reaches the limit the account is locked and the lock length is returned.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	key := normalizeEmail(email)
	now := lp.now()

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	attempt, ok := lp.failedAttempts[key]
	switch {
	case !ok:
		attempt = &loginAttempt{firstFailed: now}
		lp.failedAttempts[key] = attempt
	case now.Sub(attempt.firstFailed) > lp.attemptWindow:
		attempt.count = 0
		attempt.firstFailed = now
	}
	attempt.count++

	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	d := lp.backoff(attempt.lockouts)
	attempt.lockedUntil = now.Add(d)
	attempt.lockouts++
	attempt.count = 0
	slog.Warn("admin sign-in locked after failed attempts",
		"email", key, "lockouts", attempt.lockouts, "duration", d)
	return true, d
}

// RecordSuccessfulLogin forgets the failures of email.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.attemptsMu.Lock()
	delete(lp.failedAttempts, normalizeEmail(email))
	lp.attemptsMu.Unlock()
}

// GetRemainingAttempts is how many more failures email may have before it
// is locked.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.attemptsMu.RLock()
	attempt, ok := lp.failedAttempts[normalizeEmail(email)]
	lp.attemptsMu.RUnlock()

	if !ok || lp.now().Sub(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-attempt.count, 0)
}

// Stop ends the background sweep. It is safe to call more than once.
func (lp *LoginProtection) Stop() {
	lp.once.Do(func() { close(lp.stop) })
}

func (lp *LoginProtection) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

// cleanupStaleEntries drops accounts that are neither locked nor inside
// their attempt window.
func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(maxTrackedIPs) {
		slog.Info("cleared login IP rate limiters due to size")
	}

	now := lp.now()
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()
	for key, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, key)
		}
	}
}

// Middleware rate limits login POSTs per client IP. GETs of the form pass.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				ip := ClientIP(r)
				if !lp.ipLimiters.get(ip).Allow() {
					slog.Warn("login rate limit exceeded", "ip", ip)
					http.Error(w, "Too many login attempts, please wait and try again.", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
