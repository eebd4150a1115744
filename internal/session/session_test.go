// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/ostaff-go/internal/auth"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_DevMode(t *testing.T) {
	sm := New(setupTestDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name == "__Host-session" {
		t.Error("expected default cookie name in dev mode")
	}
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly || sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Error("expected HttpOnly, SameSite=Lax cookie")
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(setupTestDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-session" {
		t.Errorf("expected __Host-session cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestAuthRoundTrip(t *testing.T) {
	sm := New(setupTestDB(t), true)
	signedIn := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	var token string
	var cookie *http.Cookie
	login := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentAuth(r.Context(), sm) != nil {
			t.Error("fresh session should be signed out")
		}
		var err error
		token, err = PutAuth(r.Context(), sm, &auth.Session{Subject: "u-1", Email: "a@example.com", SignedInAt: signedIn})
		if err != nil {
			t.Errorf("PutAuth: %v", err)
		}
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.Cookie.Name {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != token || token == "" {
		t.Fatalf("session cookie %v does not carry token %q", cookie, token)
	}

	var got *auth.Session
	read := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CurrentAuth(r.Context(), sm)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	read.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.Subject != "u-1" || !got.SignedInAt.Equal(signedIn) {
		t.Fatalf("CurrentAuth = %+v", got)
	}

	// Revoking the token server-side signs the browser out.
	if err := sm.Store.Delete(token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	read.ServeHTTP(httptest.NewRecorder(), req)
	if got != nil {
		t.Errorf("revoked session still authenticated: %+v", got)
	}
}

func TestFlash(t *testing.T) {
	sm := New(setupTestDB(t), true)
	h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetFlash(r.Context(), sm, "Saved", "success")
		msg, kind := PopFlash(r.Context(), sm)
		if msg != "Saved" || kind != "success" {
			t.Errorf("PopFlash = %q, %q", msg, kind)
		}
		if msg, _ := PopFlash(r.Context(), sm); msg != "" {
			t.Errorf("flash not cleared: %q", msg)
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
