// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/render"
	"github.com/olegiv/ostaff-go/internal/service"
)

// homeJobLimit caps the openings teased on the start page.
const homeJobLimit = 5

// Thank-you messages shown after a successful submission.
const (
	msgCandidateSent = "Thank you, we received your message and will get back to you soon."
	msgCompanySent   = "Thank you, our team will contact you shortly."
	msgRequestSent   = "Thank you, we received your staffing request."
	msgApplySent     = "Thank you, your application was received."
)

// PublicHandler serves the public pages and forms.
type PublicHandler struct {
	renderer     *render.Renderer
	submissions  *service.Submissions
	applications *service.Applications
	board        *service.JobBoard
	logger       *slog.Logger
}

// NewPublicHandler creates the public handler.
func NewPublicHandler(renderer *render.Renderer, submissions *service.Submissions, applications *service.Applications, board *service.JobBoard, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{
		renderer:     renderer,
		submissions:  submissions,
		applications: applications,
		board:        board,
		logger:       logger,
	}
}

// Home handles GET /.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.board.OpenJobs(r.Context())
	if err != nil {
		h.logger.Warn("failed to load open jobs for home page", "error", err)
	}
	if len(jobs) > homeJobLimit {
		jobs = jobs[:homeJobLimit]
	}
	renderPage(w, r, h.renderer, http.StatusOK, "public/home", render.TemplateData{
		Title: "Staffing",
		Data:  jobs,
	})
}

// Candidates handles GET /candidates.
func (h *PublicHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	h.renderCandidates(w, r, http.StatusOK, model.CandidateForm{}, nil)
}

// SubmitCandidate handles POST /candidates.
func (h *PublicHandler) SubmitCandidate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := model.CandidateForm{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
		Consent: formChecked(r, model.FieldConsent),
	}

	if _, err := h.submissions.SubmitCandidate(r.Context(), form); err != nil {
		h.renderCandidates(w, r, errorStatus(err), form, formErrors(err))
		return
	}
	flashSuccess(w, r, h.renderer, "/candidates", msgCandidateSent)
}

func (h *PublicHandler) renderCandidates(w http.ResponseWriter, r *http.Request, status int, form model.CandidateForm, errs map[string]string) {
	renderPage(w, r, h.renderer, status, "public/candidates", render.TemplateData{
		Title:  "For candidates",
		Form:   form,
		Errors: errs,
	})
}

// Companies handles GET /companies.
func (h *PublicHandler) Companies(w http.ResponseWriter, r *http.Request) {
	h.renderCompanies(w, r, http.StatusOK, model.CompanyForm{}, nil)
}

// SubmitCompany handles POST /companies.
func (h *PublicHandler) SubmitCompany(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := model.CompanyForm{
		CompanyName: r.PostFormValue("company_name"),
		NameTitle:   r.PostFormValue("name_title"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		Subject:     r.PostFormValue("subject"),
		Message:     r.PostFormValue("message"),
		Consent:     formChecked(r, model.FieldConsent),
	}

	if _, err := h.submissions.SubmitCompany(r.Context(), form); err != nil {
		h.renderCompanies(w, r, errorStatus(err), form, formErrors(err))
		return
	}
	flashSuccess(w, r, h.renderer, "/companies", msgCompanySent)
}

func (h *PublicHandler) renderCompanies(w http.ResponseWriter, r *http.Request, status int, form model.CompanyForm, errs map[string]string) {
	renderPage(w, r, h.renderer, status, "public/companies", render.TemplateData{
		Title:  "For companies",
		Form:   form,
		Errors: errs,
	})
}

// StaffingRequest handles GET /staffing-request.
func (h *PublicHandler) StaffingRequest(w http.ResponseWriter, r *http.Request) {
	h.renderStaffingRequest(w, r, http.StatusOK, model.StaffingRequestForm{}, nil)
}

// SubmitStaffingRequest handles POST /staffing-request.
func (h *PublicHandler) SubmitStaffingRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	form := model.StaffingRequestForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Company:   r.PostFormValue("company"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
		NeedType:  r.PostFormValue("need_type"),
		Headcount: r.PostFormValue("headcount"),
		StartDate: r.PostFormValue("start_date"),
		Message:   r.PostFormValue("message"),
		Consent:   formChecked(r, model.FieldConsent),
	}

	if _, err := h.submissions.SubmitStaffingRequest(r.Context(), form); err != nil {
		h.renderStaffingRequest(w, r, errorStatus(err), form, formErrors(err))
		return
	}
	flashSuccess(w, r, h.renderer, "/staffing-request", msgRequestSent)
}

func (h *PublicHandler) renderStaffingRequest(w http.ResponseWriter, r *http.Request, status int, form model.StaffingRequestForm, errs map[string]string) {
	renderPage(w, r, h.renderer, status, "public/staffing_request", render.TemplateData{
		Title:  "Request staff",
		Data:   model.StaffingNeedTypes(),
		Form:   form,
		Errors: errs,
	})
}

// Jobs handles GET /jobs.
func (h *PublicHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.board.OpenJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list open jobs", "error", err)
		renderError(w, r, h.renderer, http.StatusBadGateway, "Jobs unavailable", "The job list could not be loaded. Please try again later.")
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "public/jobs", render.TemplateData{
		Title: "Open jobs",
		Data:  jobs,
	})
}

// Job handles GET /jobs/{slug}. Drafts and expired jobs are not found.
func (h *PublicHandler) Job(w http.ResponseWriter, r *http.Request) {
	job, err := h.board.JobBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			renderError(w, r, h.renderer, http.StatusNotFound, "Job not found", "This job is no longer available.")
			return
		}
		h.logger.Error("failed to load job", "slug", chi.URLParam(r, "slug"), "error", err)
		renderError(w, r, h.renderer, http.StatusBadGateway, "Job unavailable", "The job could not be loaded. Please try again later.")
		return
	}
	renderPage(w, r, h.renderer, http.StatusOK, "public/job", render.TemplateData{
		Title: job.Title,
		Data: struct {
			Job         model.Job
			Description template.HTML
		}{job, h.board.RenderDescription(job)},
	})
}

// Apply handles GET /apply. ?job=slug prefills the role with that job's title.
func (h *PublicHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var form model.ApplicationForm
	if slug := strings.TrimSpace(r.URL.Query().Get("job")); slug != "" {
		if job, err := h.board.JobBySlug(r.Context(), slug); err == nil {
			form.RoleApplied = job.Title
		}
	}
	h.renderApply(w, r, http.StatusOK, form, nil)
}

// SubmitApplication handles POST /apply.
func (h *PublicHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.applications.MaxBytes()
	// Room for both documents plus the text fields; anything larger cannot
	// be a valid application.
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxBytes+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderApply(w, r, http.StatusRequestEntityTooLarge, model.ApplicationForm{}, map[string]string{
				"form": "The uploaded files are too large.",
			})
			return
		}
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := model.ApplicationForm{
		FirstName:   r.PostFormValue("first_name"),
		LastName:    r.PostFormValue("last_name"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		City:        r.PostFormValue("city"),
		RoleApplied: r.PostFormValue("role_applied"),
		CoverLetter: r.PostFormValue("cover_letter"),
		Consent:     formChecked(r, model.FieldConsent),
	}

	var err error
	var closeCV, closeOther func()
	if form.CV, closeCV, err = formAttachment(r, "cv"); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer closeCV()
	if form.Other, closeOther, err = formAttachment(r, "other"); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer closeOther()

	if _, err := h.applications.Submit(r.Context(), form); err != nil {
		h.renderApply(w, r, applicationErrorStatus(err), form, applicationErrors(err))
		return
	}
	flashSuccess(w, r, h.renderer, "/apply", msgApplySent)
}

func (h *PublicHandler) renderApply(w http.ResponseWriter, r *http.Request, status int, form model.ApplicationForm, errs map[string]string) {
	jobs, err := h.board.OpenJobs(r.Context())
	if err != nil {
		h.logger.Warn("failed to load open jobs for apply page", "error", err)
	}
	renderPage(w, r, h.renderer, status, "public/apply", render.TemplateData{
		Title: "Apply",
		Data: struct {
			Jobs        []model.Job
			MaxUploadMB int64
		}{jobs, h.applications.MaxBytes() >> 20},
		Form:   form,
		Errors: errs,
	})
}

// formAttachment reads an optional file field. The returned close func is
// never nil.
func formAttachment(r *http.Request, field string) (*model.Attachment, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &model.Attachment{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

// formErrors turns a submission error into template field errors. Anything
// other than a validation error is shown as-is at the top of the form.
func formErrors(err error) map[string]string {
	if ve, ok := model.AsValidationError(err); ok {
		return ve.Fields
	}
	return map[string]string{"form": err.Error()}
}

func applicationErrors(err error) map[string]string {
	var tooLarge *service.FileTooLargeError
	if errors.As(err, &tooLarge) {
		return map[string]string{tooLarge.Field: tooLarge.Error()}
	}
	return formErrors(err)
}

func applicationErrorStatus(err error) int {
	var tooLarge *service.FileTooLargeError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return errorStatus(err)
}
