// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/cache"
	"github.com/olegiv/ostaff-go/internal/middleware"
	"github.com/olegiv/ostaff-go/internal/objectstore"
	"github.com/olegiv/ostaff-go/internal/render"
	"github.com/olegiv/ostaff-go/internal/service"
	"github.com/olegiv/ostaff-go/internal/store"
	"github.com/olegiv/ostaff-go/internal/testutil"
	"github.com/olegiv/ostaff-go/internal/version"
	"github.com/olegiv/ostaff-go/web"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct-horse-battery"
	testUserEmail     = "staff@example.com"
	testUserPassword  = "another-long-password"
)

// testEnv wires the handlers against a migrated SQLite database, a local
// object store and an in-memory session store.
type testEnv struct {
	t       *testing.T
	db      *sql.DB
	backend *store.Backend
	objects *objectstore.Local
	events  *service.EventService
	board   *service.JobBoard
	router  http.Handler
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	logger := testutil.DiscardLogger()
	backend := store.NewBackend(db)

	sm := scs.New()
	templates, err := web.TemplatesFS()
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	require.NoError(t, err)

	objects, err := objectstore.NewLocal(t.TempDir(), []byte("test-signing-secret"))
	require.NoError(t, err)

	jobCache := cache.NewMemory(time.Minute, time.Minute)
	t.Cleanup(func() { _ = jobCache.Close() })
	board := service.NewJobBoard(backend, jobCache, time.Minute, logger)
	events := service.NewEventService(db)

	submissions := service.NewSubmissions(backend, backend, nil, logger)
	applications := service.NewApplications(backend, objects, nil, logger, maxUpload)
	admin := service.NewAdmin(backend, objects, board, time.Minute, logger)

	gate := auth.NewGate(backend, logger)
	provider := auth.NewLocalProvider(backend, logger)
	guard := middleware.NewAdminGuard(gate, sm, 0, provider, backend, events, logger)
	protection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{MaxFailedAttempts: 3})
	t.Cleanup(protection.Stop)

	public := NewPublicHandler(renderer, submissions, applications, board, logger)
	relay := NewRelayHandler(submissions, logger)
	authH := NewAuthHandler(renderer, sm, provider, backend, events, protection, logger)
	adminH := NewAdminHandler(renderer, admin, events, logger)
	health := NewHealthHandler(db, sm, gate, "", version.Info{Version: "v0.0.0-test"})

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get("/", public.Home)
	r.Get("/candidates", public.Candidates)
	r.Post("/candidates", public.SubmitCandidate)
	r.Get("/companies", public.Companies)
	r.Post("/companies", public.SubmitCompany)
	r.Get("/staffing-request", public.StaffingRequest)
	r.Post("/staffing-request", public.SubmitStaffingRequest)
	r.Get("/jobs", public.Jobs)
	r.Get("/jobs/{slug}", public.Job)
	r.Get("/apply", public.Apply)
	r.Post("/apply", public.SubmitApplication)
	r.Handle("/files/*", objects.Handler())
	r.Get("/health", health.Health)
	r.Get("/robots.txt", Robots(false))
	r.Post("/api/contact", relay.Contact)
	r.Get("/login", authH.LoginForm)
	r.Post("/login", authH.Login)
	r.Post("/logout", authH.Logout)
	r.Route("/admin", func(r chi.Router) {
		r.Use(guard.RequireAdmin)
		r.Get("/", adminH.Dashboard)
		r.Get("/messages", adminH.Messages)
		r.Post("/messages/{id}/status", adminH.SetMessageStatus)
		r.Get("/applications", adminH.Applications)
		r.Post("/applications/{id}/status", adminH.SetApplicationStatus)
		r.Get("/applications/{id}/cv", adminH.CVDocument)
		r.Get("/applications/{id}/other", adminH.OtherDocument)
		r.Get("/jobs", adminH.Jobs)
		r.Get("/jobs/new", adminH.NewJob)
		r.Get("/jobs/{id}/edit", adminH.EditJob)
		r.Post("/jobs", adminH.SaveJob)
		r.Post("/jobs/{id}/publish", adminH.SetJobPublished)
		r.Post("/jobs/{id}/delete", adminH.DeleteJob)
		r.Get("/events", adminH.Events)
	})

	ctx := context.Background()
	require.NoError(t, store.SeedAdmin(ctx, db, testAdminEmail, testAdminPassword))
	_, err = store.SeedUser(ctx, db, testUserEmail, testUserPassword, false)
	require.NoError(t, err)

	return &testEnv{
		t:       t,
		db:      db,
		backend: backend,
		objects: objects,
		events:  events,
		board:   board,
		router:  r,
	}
}

func (e *testEnv) serve(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return e.serve(httptest.NewRequest(http.MethodGet, path, nil), cookies)
}

func (e *testEnv) postForm(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req, cookies)
}

func (e *testEnv) postJSONAccept(path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return e.serve(req, cookies)
}

// login signs in through the login form and returns the session cookie.
func (e *testEnv) login(email, password string) []*http.Cookie {
	e.t.Helper()
	w := e.postForm("/login", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(e.t, http.StatusSeeOther, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(e.t, cookies)
	return cookies
}

type upload struct {
	field, name string
	body        []byte
}

func multipartBody(t *testing.T, fields url.Values, files ...upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
