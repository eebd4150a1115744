// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ostaff-go/internal/model"
)

func TestAuth_LoginPage(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.get("/login", nil)
	assertStatus(t, w.Code, http.StatusOK)
	assert.NotContains(t, w.Body.String(), "session expired")

	w = env.get("/login?expired=1", nil)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), "Your session expired")
}

func TestAuth_AdminLogin(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.postForm("/login", url.Values{"email": {testAdminEmail}, "password": {testAdminPassword}}, nil)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
	cookies := w.Result().Cookies()

	w = env.get("/admin", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), testAdminEmail)

	// The sign-in is recorded for the max-lifetime sweep.
	logins, err := env.backend.ExpiredLogins(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, logins, 1)

	events, err := env.events.ListEvents(context.Background(), model.EventCategoryAuth, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "User logged in", events[0].Message)

	// Visiting the login page while signed in goes straight to the dashboard.
	w = env.get("/login", cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
}

func TestAuth_LoginEventRecordsUserAgent(t *testing.T) {
	env := newTestEnv(t, 0)

	form := url.Values{"email": {testAdminEmail}, "password": {testAdminPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	w := env.serve(req, nil)
	assertStatus(t, w.Code, http.StatusSeeOther)

	events, err := env.events.ListEvents(context.Background(), model.EventCategoryAuth, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "User logged in", events[0].Message)
	assert.Contains(t, events[0].Metadata, `"browser":"Chrome"`)
	assert.Contains(t, events[0].Metadata, `"os":"Windows"`)
	assert.Contains(t, events[0].Metadata, `"device":"desktop"`)
}

func TestAuth_WrongPassword(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.postForm("/login", url.Values{"email": {testAdminEmail}, "password": {"wrong"}}, nil)
	assertStatus(t, w.Code, http.StatusUnauthorized)
	assert.Contains(t, w.Body.String(), "invalid login credentials")
	assert.Contains(t, w.Body.String(), testAdminEmail)
	assert.Empty(t, w.Result().Cookies())
}

func TestAuth_MissingFields(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.postForm("/login", url.Values{"email": {testAdminEmail}}, nil)
	assertStatus(t, w.Code, http.StatusUnprocessableEntity)
}

func TestAuth_LockoutAfterFailures(t *testing.T) {
	env := newTestEnv(t, 0)

	for range 3 {
		w := env.postForm("/login", url.Values{"email": {testAdminEmail}, "password": {"wrong"}}, nil)
		assertStatus(t, w.Code, http.StatusUnauthorized)
	}

	// Even the right password is refused while locked.
	w := env.postForm("/login", url.Values{"email": {testAdminEmail}, "password": {testAdminPassword}}, nil)
	assertStatus(t, w.Code, http.StatusTooManyRequests)
	assert.Contains(t, w.Body.String(), "Too many failed attempts")
}

func TestAuth_NonAdminIsDenied(t *testing.T) {
	env := newTestEnv(t, 0)

	cookies := env.login(testUserEmail, testUserPassword)

	w := env.get("/admin", cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	events, err := env.events.ListEvents(context.Background(), model.EventCategoryAuth, 10)
	require.NoError(t, err)
	var denied bool
	for _, e := range events {
		if e.Message == "Access denied: not an admin" {
			denied = true
		}
	}
	assert.True(t, denied, "denied access should be logged")
}

func TestAuth_AnonymousIsRedirected(t *testing.T) {
	env := newTestEnv(t, 0)

	for _, path := range []string{"/admin", "/admin/messages", "/admin/applications", "/admin/jobs", "/admin/events"} {
		w := env.get(path, nil)
		assertStatus(t, w.Code, http.StatusSeeOther)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestAuth_Logout(t *testing.T) {
	env := newTestEnv(t, 0)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.postForm("/logout", nil, cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	logins, err := env.backend.ExpiredLogins(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, logins)

	// The old cookie no longer opens the dashboard.
	w = env.get("/admin", cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
}

func TestAuth_LogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t, 0)

	w := env.postForm("/logout", nil, nil)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
