// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the admin access gate,
// request protection and security headers.
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyAdmin holds the *auth.Session of a request that passed the gate.
const ContextKeyAdmin ContextKey = "admin_session"

// LoginPath is where denied and expired sessions are sent.
const LoginPath = "/login"

// AuthEventLogger records auth events in the audit log.
type AuthEventLogger interface {
	LogAuthEvent(ctx context.Context, level, message, userID, ipAddress string, metadata map[string]any) error
}

// SignOuter revokes a session at the identity provider.
type SignOuter interface {
	SignOut(ctx context.Context, sess *auth.Session) error
}

// LoginForgetter drops a session token from the sign-in ledger.
type LoginForgetter interface {
	ForgetLogin(ctx context.Context, token string) error
}

// AdminGuard runs the access gate for every admin request.
type AdminGuard struct {
	gate     *auth.Gate
	sm       *scs.SessionManager
	maxAge   time.Duration
	identity SignOuter
	ledger   LoginForgetter
	events   AuthEventLogger
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminGuard builds the guard. A zero maxAge leaves session age unbounded.
// identity, ledger and events may be nil.
func NewAdminGuard(gate *auth.Gate, sm *scs.SessionManager, maxAge time.Duration, identity SignOuter, ledger LoginForgetter, events AuthEventLogger, logger *slog.Logger) *AdminGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminGuard{
		gate:     gate,
		sm:       sm,
		maxAge:   maxAge,
		identity: identity,
		ledger:   ledger,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// RequireAdmin renders the protected handler only on a granted decision.
// Denied requests are redirected to the login page with 303 See Other. When
// the request went away before the check finished nothing is written.
func (g *AdminGuard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sess := session.CurrentAuth(ctx, g.sm)

		if sess.Exceeds(g.maxAge, g.now()) {
			g.logger.Info("admin session exceeded max lifetime", "user_id", sess.Subject)
			g.logEvent(r, model.EventLevelInfo, "Forced sign-out: session max lifetime exceeded", sess.Subject)
			g.expire(ctx, sess)
			http.Redirect(w, r, LoginPath+"?expired=1", http.StatusSeeOther)
			return
		}

		switch g.gate.Check(ctx, sess) {
		case auth.DecisionGranted:
			ctx = context.WithValue(ctx, ContextKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		case auth.DecisionDenied:
			if sess != nil {
				g.logger.Warn("admin access denied", "user_id", sess.Subject, "path", r.URL.Path)
				g.logEvent(r, model.EventLevelWarning, "Access denied: not an admin", sess.Subject)
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		default:
			// Pending: the client is gone, there is nobody to answer.
		}
	})
}

// expire signs sess out at the identity provider, then drops the local
// session whatever the provider answered.
func (g *AdminGuard) expire(ctx context.Context, sess *auth.Session) {
	if g.identity != nil {
		if err := g.identity.SignOut(ctx, sess); err != nil {
			g.logger.Warn("identity sign-out failed", "user_id", sess.Subject, "error", err)
		}
	}
	if token := g.sm.Token(ctx); g.ledger != nil && token != "" {
		if err := g.ledger.ForgetLogin(ctx, token); err != nil {
			g.logger.Warn("failed to forget login", "user_id", sess.Subject, "error", err)
		}
	}
	if err := session.ClearAuth(ctx, g.sm); err != nil {
		g.logger.Error("failed to destroy session", "user_id", sess.Subject, "error", err)
	}
}

func (g *AdminGuard) logEvent(r *http.Request, level, message, userID string) {
	if g.events == nil {
		return
	}
	_ = g.events.LogAuthEvent(r.Context(), level, message, userID, ClientIP(r), AuditMetadata(r, map[string]any{
		"method": r.Method,
		"path":   r.URL.Path,
	}))
}

// AdminSession returns the session admitted by RequireAdmin, or nil.
func AdminSession(r *http.Request) *auth.Session {
	sess, _ := r.Context().Value(ContextKeyAdmin).(*auth.Session)
	return sess
}

// AdminUserID returns the admitted admin's subject, or "".
func AdminUserID(r *http.Request) string {
	if sess := AdminSession(r); sess != nil {
		return sess.Subject
	}
	return ""
}

// ClientIP returns the request's remote address without the port. RealIP
// must run first when the service sits behind a proxy.
func ClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
