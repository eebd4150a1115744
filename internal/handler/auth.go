// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/middleware"
	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/render"
	"github.com/olegiv/ostaff-go/internal/session"
)

// LoginLedger remembers when each session token signed in, so sessions
// older than the admin max lifetime can be revoked in the background.
type LoginLedger interface {
	RecordLogin(ctx context.Context, token, userID, accessToken string, signedInAt time.Time) error
	ForgetLogin(ctx context.Context, token string) error
}

// LoginForm is echoed back into the login page after a failed attempt.
type LoginForm struct {
	Email string
}

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	renderer   *render.Renderer
	sm         *scs.SessionManager
	provider   auth.Provider
	ledger     LoginLedger
	events     middleware.AuthEventLogger
	protection *middleware.LoginProtection
	logger     *slog.Logger
}

// NewAuthHandler creates the auth handler. ledger, events and protection
// may be nil.
func NewAuthHandler(renderer *render.Renderer, sm *scs.SessionManager, provider auth.Provider, ledger LoginLedger, events middleware.AuthEventLogger, protection *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		renderer:   renderer,
		sm:         sm,
		provider:   provider,
		ledger:     ledger,
		events:     events,
		protection: protection,
		logger:     logger,
	}
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if session.CurrentAuth(r.Context(), h.sm) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, LoginForm{}, nil)
}

// Login handles POST /login. Provider errors are shown to the user as
// returned.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	form := LoginForm{Email: email}
	ip := middleware.ClientIP(r)

	if email == "" || password == "" {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, form, map[string]string{
			"form": "Email and password are required.",
		})
		return
	}

	if h.protection != nil {
		if locked, remaining := h.protection.IsAccountLocked(email); locked {
			h.logEvent(r, model.EventLevelWarning, "Login attempt on locked account", "", map[string]any{"email": email})
			h.renderLogin(w, r, http.StatusTooManyRequests, form, map[string]string{
				"form": fmt.Sprintf("Too many failed attempts. Try again in %s.", remaining.Round(time.Second)),
			})
			return
		}
	}

	sess, err := h.provider.SignIn(ctx, email, password)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
			if h.protection != nil {
				if locked, d := h.protection.RecordFailedAttempt(email); locked {
					h.logger.Warn("account locked after failed logins", "email", email, "duration", d)
				}
			}
		}
		h.logger.Warn("login failed", "email", email, "ip", ip, "error", err)
		h.logEvent(r, model.EventLevelWarning, "Login failed", "", map[string]any{"email": email, "reason": err.Error()})
		h.renderLogin(w, r, status, form, map[string]string{"form": err.Error()})
		return
	}

	if h.protection != nil {
		h.protection.RecordSuccessfulLogin(email)
	}

	token, err := session.PutAuth(ctx, h.sm, sess)
	if err != nil {
		logAndInternalError(w, "failed to store session", "error", err)
		return
	}
	if h.ledger != nil {
		if err := h.ledger.RecordLogin(ctx, token, sess.Subject, sess.AccessToken, sess.SignedInAt); err != nil {
			h.logger.Error("failed to record login", "user_id", sess.Subject, "error", err)
		}
	}

	h.logger.Info("user logged in", "user_id", sess.Subject, "email", sess.Email)
	h.logEvent(r, model.EventLevelInfo, "User logged in", sess.Subject, map[string]any{"email": sess.Email})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout. The local session is always destroyed, even
// when the identity provider cannot be reached.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := h.sm.Token(ctx)

	if sess := session.CurrentAuth(ctx, h.sm); sess != nil {
		if err := h.provider.SignOut(ctx, sess); err != nil {
			h.logger.Warn("identity sign-out failed", "user_id", sess.Subject, "error", err)
		}
		h.logEvent(r, model.EventLevelInfo, "User logged out", sess.Subject, nil)
	}
	if h.ledger != nil && token != "" {
		if err := h.ledger.ForgetLogin(ctx, token); err != nil {
			h.logger.Warn("failed to forget login", "error", err)
		}
	}
	if err := session.ClearAuth(ctx, h.sm); err != nil {
		h.logger.Error("failed to destroy session", "error", err)
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form LoginForm, errs map[string]string) {
	renderPage(w, r, h.renderer, status, "auth/login", render.TemplateData{
		Title:  "Sign in",
		Data:   r.URL.Query().Get("expired") == "1",
		Form:   form,
		Errors: errs,
	})
}

func (h *AuthHandler) logEvent(r *http.Request, level, message, userID string, md map[string]any) {
	if h.events == nil {
		return
	}
	_ = h.events.LogAuthEvent(r.Context(), level, message, userID, middleware.ClientIP(r), middleware.AuditMetadata(r, md))
}
