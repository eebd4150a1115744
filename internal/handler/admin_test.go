// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
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

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func seedMessage(t *testing.T, env *testEnv, fromType model.FromType) model.Message {
	t.Helper()
	msg, err := env.backend.InsertMessage(context.Background(), model.Message{
		FromType: fromType,
		FullName: "Test Sender",
		Email:    "sender@example.com",
		Subject:  "Hello",
		Body:     "Body text",
		Status:   model.MessageNew,
	})
	require.NoError(t, err)
	return msg
}

func TestAdmin_DashboardCounts(t *testing.T) {
	env := newTestEnv(t, 0)
	seedMessage(t, env, model.FromCandidate)
	seedMessage(t, env, model.FromCandidate)
	seedMessage(t, env, model.FromCompany)
	seedJob(t, env, "Open Role", "open-role", true, nil)
	seedJob(t, env, "Draft Role", "draft-role", false, nil)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.get("/admin", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, "<strong>2</strong> new · Candidate messages")
	assert.Contains(t, body, "<strong>1</strong> open of 2 jobs")
}

func TestAdmin_MessagesByType(t *testing.T) {
	env := newTestEnv(t, 0)
	seedMessage(t, env, model.FromStaffingRequest)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.get("/admin/messages?type=staffing_request", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), "Test Sender")

	w = env.get("/admin/messages?type=candidate", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.NotContains(t, w.Body.String(), "Test Sender")

	w = env.get("/admin/messages?type=bogus", cookies)
	assertStatus(t, w.Code, http.StatusBadRequest)
}

func TestAdmin_SetMessageStatus(t *testing.T) {
	env := newTestEnv(t, 0)
	msg := seedMessage(t, env, model.FromCompany)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.postForm("/admin/messages/"+msg.ID+"/status?type=company", url.Values{"status": {"read"}}, cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, "/admin/messages?type=company", w.Header().Get("Location"))

	// Repeating the transition succeeds and changes nothing.
	w = env.postJSONAccept("/admin/messages/"+msg.ID+"/status", url.Values{"status": {"read"}}, cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Equal(t, true, decodeJSON(t, w)["success"])

	msgs, err := env.backend.ListMessages(context.Background(), model.FromCompany)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.MessageRead, msgs[0].Status)
}

func TestAdmin_SetMessageStatusErrors(t *testing.T) {
	env := newTestEnv(t, 0)
	msg := seedMessage(t, env, model.FromCompany)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.postJSONAccept("/admin/messages/"+msg.ID+"/status", url.Values{"status": {"spam"}}, cookies)
	assertStatus(t, w.Code, http.StatusUnprocessableEntity)
	body := decodeJSON(t, w)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "Unknown status")

	w = env.postJSONAccept("/admin/messages/does-not-exist/status", url.Values{"status": {"read"}}, cookies)
	assertStatus(t, w.Code, http.StatusNotFound)

	msgs, err := env.backend.ListMessages(context.Background(), model.FromCompany)
	require.NoError(t, err)
	assert.Equal(t, model.MessageNew, msgs[0].Status)
}

func submitTestApplication(t *testing.T, env *testEnv, withOther bool) model.Application {
	t.Helper()
	files := []upload{{field: "cv", name: "cv.pdf", body: []byte("cv bytes")}}
	if withOther {
		files = append(files, upload{field: "other", name: "references.pdf", body: []byte("refs")})
	}
	w := postApplication(t, env, files...)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	apps, err := env.backend.ListApplications(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, apps)
	return apps[0]
}

func TestAdmin_ApplicationsAndDocuments(t *testing.T) {
	env := newTestEnv(t, 0)
	app := submitTestApplication(t, env, false)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.get("/admin/applications", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), "/admin/applications/"+app.ID+"/cv")

	w = env.get("/admin/applications/"+app.ID+"/cv", cookies)
	assertStatus(t, w.Code, http.StatusFound)
	link := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(link, "/files/"), link)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	// The link downloads the document without a session.
	dl := env.get(link, nil)
	assertStatus(t, dl.Code, http.StatusOK)
	assert.Equal(t, "cv bytes", dl.Body.String())

	// Every request signs a fresh link.
	w2 := env.get("/admin/applications/"+app.ID+"/cv", cookies)
	assert.NotEqual(t, link, w2.Header().Get("Location"))

	// No second document was uploaded.
	w = env.get("/admin/applications/"+app.ID+"/other", cookies)
	assertStatus(t, w.Code, http.StatusNotFound)

	w = env.get("/admin/applications/unknown/cv", cookies)
	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestAdmin_DocumentURLAsJSON(t *testing.T) {
	env := newTestEnv(t, 0)
	app := submitTestApplication(t, env, true)
	cookies := env.login(testAdminEmail, testAdminPassword)

	req := httptest.NewRequest(http.MethodGet, "/admin/applications/"+app.ID+"/other", nil)
	req.Header.Set("Accept", "application/json")
	w := env.serve(req, cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, decodeJSON(t, w)["url"], "/files/"+app.ID+"/other/")
}

func TestAdmin_SetApplicationStatus(t *testing.T) {
	env := newTestEnv(t, 0)
	app := submitTestApplication(t, env, false)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.postForm("/admin/applications/"+app.ID+"/status", url.Values{"status": {"reviewed"}}, cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)

	got, err := env.backend.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatus("reviewed"), got.Status)

	events, err := env.events.ListEvents(context.Background(), model.EventCategoryApplication, 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "Application status changed", events[0].Message)
}

func jobFormValues(title, slug string) url.Values {
	return url.Values{
		"title":           {title},
		"slug":            {slug},
		"location":        {"Hamburg"},
		"employment_type": {"Full-time"},
		"salary_min":      {"30000"},
		"salary_max":      {"40000"},
		"posted_at":       {time.Now().Add(-time.Hour).UTC().Format("2006-01-02T15:04")},
		"description_md":  {"Drive **forklifts**."},
		"published":       {"true"},
	}
}

func TestAdmin_SaveJobUpsertsBySlug(t *testing.T) {
	env := newTestEnv(t, 0)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.postForm("/admin/jobs", jobFormValues("Forklift Driver (m/f/d)", ""), cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.Equal(t, "/admin/jobs", w.Header().Get("Location"))

	job, err := env.backend.GetJobBySlug(context.Background(), "forklift-driver-m-f-d")
	require.NoError(t, err)
	assert.True(t, job.Published)

	// Saving the same slug again updates the row.
	form := jobFormValues("Forklift Driver, night shift", "forklift-driver-m-f-d")
	w = env.postJSONAccept("/admin/jobs", form, cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Equal(t, job.ID, decodeJSON(t, w)["id"])

	jobs, err := env.backend.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Forklift Driver, night shift", jobs[0].Title)

	// The public listing sees the change.
	pub := env.get("/jobs", nil)
	assert.Contains(t, pub.Body.String(), "Forklift Driver, night shift")
}

func TestAdmin_SaveJobValidation(t *testing.T) {
	env := newTestEnv(t, 0)
	cookies := env.login(testAdminEmail, testAdminPassword)

	form := jobFormValues("", "")
	w := env.postForm("/admin/jobs", form, cookies)
	assertStatus(t, w.Code, http.StatusUnprocessableEntity)
	assert.Contains(t, w.Body.String(), model.MsgRequired)

	form = jobFormValues("Role", "")
	form.Set("salary_min", "50000")
	form.Set("salary_max", "10000")
	w = env.postJSONAccept("/admin/jobs", form, cookies)
	assertStatus(t, w.Code, http.StatusUnprocessableEntity)
	assert.Contains(t, decodeJSON(t, w)["error"], "salary_max")

	jobs, err := env.backend.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestAdmin_EditJobForm(t *testing.T) {
	env := newTestEnv(t, 0)
	job := seedJob(t, env, "Welder", "welder", true, nil)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.get("/admin/jobs/"+job.ID+"/edit", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), `value="welder"`)

	w = env.get("/admin/jobs/new", cookies)
	assertStatus(t, w.Code, http.StatusOK)

	w = env.get("/admin/jobs/missing/edit", cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
}

func TestAdmin_PublishAndDeleteJob(t *testing.T) {
	env := newTestEnv(t, 0)
	job := seedJob(t, env, "Welder", "welder", true, nil)
	cookies := env.login(testAdminEmail, testAdminPassword)

	// Warm the public cache, then unpublish.
	assert.Contains(t, env.get("/jobs", nil).Body.String(), "Welder")

	w := env.postForm("/admin/jobs/"+job.ID+"/publish", url.Values{"published": {"false"}}, cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
	assert.NotContains(t, env.get("/jobs", nil).Body.String(), "Welder")
	assertStatus(t, env.get("/jobs/welder", nil).Code, http.StatusNotFound)

	w = env.postJSONAccept("/admin/jobs/"+job.ID+"/publish", url.Values{"published": {"true"}}, cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Equal(t, true, decodeJSON(t, w)["published"])

	w = env.postForm("/admin/jobs/"+job.ID+"/delete", nil, cookies)
	assertStatus(t, w.Code, http.StatusSeeOther)
	_, err := env.backend.GetJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	w = env.postJSONAccept("/admin/jobs/"+job.ID+"/delete", nil, cookies)
	assertStatus(t, w.Code, http.StatusNotFound)
}

func TestAdmin_EventsPage(t *testing.T) {
	env := newTestEnv(t, 0)
	cookies := env.login(testAdminEmail, testAdminPassword)

	w := env.get("/admin/events", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.Contains(t, w.Body.String(), "User logged in")

	w = env.get("/admin/events?category=job", cookies)
	assertStatus(t, w.Code, http.StatusOK)
	assert.NotContains(t, w.Body.String(), "User logged in")
}
