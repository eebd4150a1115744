// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager and stores the
// identity session in it.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ostaff-go/internal/auth"
)

const (
	authKey  = "auth"
	flashKey = "flash"
	flashTyp = "flash_type"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}
	return sm
}

// PutAuth stores sess under a fresh token and returns that token.
func PutAuth(ctx context.Context, sm *scs.SessionManager, sess *auth.Session) (string, error) {
	if err := sm.RenewToken(ctx); err != nil {
		return "", err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	sm.Put(ctx, authKey, data)
	return sm.Token(ctx), nil
}

// CurrentAuth returns the identity session, or nil when signed out.
func CurrentAuth(ctx context.Context, sm *scs.SessionManager) *auth.Session {
	data := sm.GetBytes(ctx, authKey)
	if len(data) == 0 {
		return nil
	}
	var sess auth.Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Subject == "" {
		return nil
	}
	return &sess
}

// ClearAuth destroys the whole server session.
func ClearAuth(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// SetFlash queues a one-shot message for the next rendered page.
func SetFlash(ctx context.Context, sm *scs.SessionManager, message, kind string) {
	sm.Put(ctx, flashKey, message)
	sm.Put(ctx, flashTyp, kind)
}

// PopFlash returns and clears the queued message.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, kind string) {
	return sm.PopString(ctx, flashKey), sm.PopString(ctx, flashTyp)
}
