// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ostaff-go/internal/middleware"
	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/render"
	"github.com/olegiv/ostaff-go/internal/service"
)

// eventPageSize is the number of audit events shown per page.
const eventPageSize = 200

// eventCategories are the filters offered on the events page.
var eventCategories = []string{
	model.EventCategoryAuth,
	model.EventCategoryMessage,
	model.EventCategoryApplication,
	model.EventCategoryJob,
	model.EventCategorySystem,
	model.EventCategoryCache,
}

// AdminEvents reads and writes the audit log from the dashboard.
type AdminEvents interface {
	LogAdminAction(ctx context.Context, category, message, userID, ipAddress string, metadata map[string]any) error
	ListEvents(ctx context.Context, category string, limit int) ([]model.Event, error)
}

// AdminHandler serves the admin dashboard. Every route sits behind the
// access gate.
type AdminHandler struct {
	renderer *render.Renderer
	admin    *service.Admin
	events   AdminEvents
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminHandler creates the admin handler. events may be nil.
func NewAdminHandler(renderer *render.Renderer, admin *service.Admin, events AdminEvents, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		renderer: renderer,
		admin:    admin,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *AdminHandler) page(w http.ResponseWriter, r *http.Request, status int, name, title string, data render.TemplateData) {
	data.Title = title
	if sess := middleware.AdminSession(r); sess != nil {
		data.AdminEmail = sess.Email
	}
	renderPage(w, r, h.renderer, status, name, data)
}

// succeed answers a mutation: JSON for API callers, flash and redirect
// otherwise.
func (h *AdminHandler) succeed(w http.ResponseWriter, r *http.Request, redirect, message string, data map[string]any) {
	if wantsJSON(r) {
		writeJSONSuccess(w, data)
		return
	}
	flashSuccess(w, r, h.renderer, redirect, message)
}

// fail answers a failed mutation with the error text.
func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, redirect string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("admin operation failed", "path", r.URL.Path, "error", err)
	}
	if wantsJSON(r) {
		writeJSONError(w, status, err.Error())
		return
	}
	flashError(w, r, h.renderer, redirect, err.Error())
}

func (h *AdminHandler) audit(r *http.Request, category, message string, md map[string]any) {
	if h.events == nil {
		return
	}
	_ = h.events.LogAdminAction(r.Context(), category, message, middleware.AdminUserID(r), middleware.ClientIP(r), md)
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.admin.Dashboard(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load dashboard", "error", err)
		return
	}
	h.page(w, r, http.StatusOK, "admin/dashboard", "Dashboard", render.TemplateData{Data: d})
}

// Messages handles GET /admin/messages?type=. The type defaults to
// candidate messages.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	fromType := model.FromCandidate
	if v := r.URL.Query().Get("type"); v != "" {
		ft, err := model.ParseFromType(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fromType = ft
	}

	msgs, err := h.admin.ListMessages(r.Context(), fromType)
	if err != nil {
		logAndInternalError(w, "failed to list messages", "type", fromType, "error", err)
		return
	}
	h.page(w, r, http.StatusOK, "admin/messages", fromType.Label(), render.TemplateData{
		Data: struct {
			Type     model.FromType
			Messages []model.Message
		}{fromType, msgs},
	})
}

// SetMessageStatus handles POST /admin/messages/{id}/status.
func (h *AdminHandler) SetMessageStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	redirect := "/admin/messages"
	if ft, err := model.ParseFromType(r.URL.Query().Get("type")); err == nil {
		redirect += "?type=" + string(ft)
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	status := model.MessageStatus(r.PostFormValue("status"))

	if err := h.admin.SetMessageStatus(r.Context(), id, status); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	h.audit(r, model.EventCategoryMessage, "Message status changed", map[string]any{"id": id, "status": status})
	h.succeed(w, r, redirect, "Message marked as "+string(status)+".", map[string]any{"id": id, "status": status})
}

// Applications handles GET /admin/applications.
func (h *AdminHandler) Applications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.admin.ListApplications(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list applications", "error", err)
		return
	}
	h.page(w, r, http.StatusOK, "admin/applications", "Applications", render.TemplateData{Data: apps})
}

// SetApplicationStatus handles POST /admin/applications/{id}/status.
func (h *AdminHandler) SetApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	const redirect = "/admin/applications"
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	status := model.ApplicationStatus(r.PostFormValue("status"))

	if err := h.admin.SetApplicationStatus(r.Context(), id, status); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	h.audit(r, model.EventCategoryApplication, "Application status changed", map[string]any{"id": id, "status": status})
	h.succeed(w, r, redirect, "Application marked as "+string(status)+".", map[string]any{"id": id, "status": status})
}

// CVDocument handles GET /admin/applications/{id}/cv.
func (h *AdminHandler) CVDocument(w http.ResponseWriter, r *http.Request) {
	h.document(w, r, service.DocumentCV)
}

// OtherDocument handles GET /admin/applications/{id}/other.
func (h *AdminHandler) OtherDocument(w http.ResponseWriter, r *http.Request) {
	h.document(w, r, service.DocumentOther)
}

// document redirects to a freshly signed link. Links are never cached or
// rendered into pages.
func (h *AdminHandler) document(w http.ResponseWriter, r *http.Request, doc service.Document) {
	id := chi.URLParam(r, "id")
	url, err := h.admin.DocumentURL(r.Context(), id, doc)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		logAndHTTPError(w, "Could not create a download link", http.StatusBadGateway,
			"failed to sign document url", "id", id, "document", doc, "error", err)
		return
	}
	h.audit(r, model.EventCategoryApplication, "Document link issued", map[string]any{"id": id, "document": doc})

	if wantsJSON(r) {
		writeJSONSuccess(w, map[string]any{"url": url})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, url, http.StatusFound)
}

// Jobs handles GET /admin/jobs.
func (h *AdminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.admin.ListJobs(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list jobs", "error", err)
		return
	}
	h.page(w, r, http.StatusOK, "admin/jobs", "Jobs", render.TemplateData{
		Data: struct {
			Jobs []model.Job
			Now  time.Time
		}{jobs, h.now()},
	})
}

// NewJob handles GET /admin/jobs/new.
func (h *AdminHandler) NewJob(w http.ResponseWriter, r *http.Request) {
	form := model.JobForm{PostedAt: h.now().UTC().Format("2006-01-02T15:04")}
	h.page(w, r, http.StatusOK, "admin/job_form", "New job", render.TemplateData{Data: "", Form: form})
}

// EditJob handles GET /admin/jobs/{id}/edit.
func (h *AdminHandler) EditJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.admin.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			flashError(w, r, h.renderer, "/admin/jobs", "Job not found.")
			return
		}
		logAndInternalError(w, "failed to load job", "id", id, "error", err)
		return
	}
	h.page(w, r, http.StatusOK, "admin/job_form", "Edit job", render.TemplateData{
		Data: job.ID,
		Form: model.JobFormFrom(job),
	})
}

// SaveJob handles POST /admin/jobs. The job is upserted by its slug.
func (h *AdminHandler) SaveJob(w http.ResponseWriter, r *http.Request) {
	const redirect = "/admin/jobs"
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	form := model.JobForm{
		Title:          r.PostFormValue("title"),
		Slug:           r.PostFormValue("slug"),
		Location:       r.PostFormValue("location"),
		EmploymentType: r.PostFormValue("employment_type"),
		DescriptionMD:  r.PostFormValue("description_md"),
		SalaryMin:      r.PostFormValue("salary_min"),
		SalaryMax:      r.PostFormValue("salary_max"),
		Published:      formChecked(r, "published"),
		PostedAt:       r.PostFormValue("posted_at"),
		ExpiresAt:      r.PostFormValue("expires_at"),
	}

	job, err := h.admin.SaveJob(r.Context(), form)
	if err != nil {
		if wantsJSON(r) {
			h.fail(w, r, redirect, err)
			return
		}
		status := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("failed to save job", "slug", form.ResolvedSlug(), "error", err)
		}
		h.page(w, r, status, "admin/job_form", "Edit job", render.TemplateData{
			Form:   form,
			Errors: formErrors(err),
		})
		return
	}

	h.audit(r, model.EventCategoryJob, "Job saved", map[string]any{"id": job.ID, "slug": job.Slug})
	h.succeed(w, r, redirect, "Job \""+job.Title+"\" saved.", map[string]any{"id": job.ID, "slug": job.Slug})
}

// SetJobPublished handles POST /admin/jobs/{id}/publish.
func (h *AdminHandler) SetJobPublished(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	const redirect = "/admin/jobs"
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	published := formChecked(r, "published")

	if err := h.admin.SetJobPublished(r.Context(), id, published); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	msg := "Job unpublished."
	if published {
		msg = "Job published."
	}
	h.audit(r, model.EventCategoryJob, msg, map[string]any{"id": id})
	h.succeed(w, r, redirect, msg, map[string]any{"id": id, "published": published})
}

// DeleteJob handles POST /admin/jobs/{id}/delete.
func (h *AdminHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	const redirect = "/admin/jobs"

	if err := h.admin.DeleteJob(r.Context(), id); err != nil {
		h.fail(w, r, redirect, err)
		return
	}
	h.audit(r, model.EventCategoryJob, "Job deleted", map[string]any{"id": id})
	h.succeed(w, r, redirect, "Job deleted.", map[string]any{"id": id})
}

// Events handles GET /admin/events?category=.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	var events []model.Event
	if h.events != nil {
		var err error
		events, err = h.events.ListEvents(r.Context(), category, eventPageSize)
		if err != nil {
			logAndInternalError(w, "failed to list events", "error", err)
			return
		}
	}
	h.page(w, r, http.StatusOK, "admin/events", "Event log", render.TemplateData{
		Data: struct {
			Category   string
			Categories []string
			Events     []model.Event
		}{category, eventCategories, events},
	})
}
