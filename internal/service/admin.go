// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
)

// DefaultSignedURLTTL is the lifetime of a document download link.
const DefaultSignedURLTTL = 60 * time.Second

// Document selects one of an application's files.
type Document string

const (
	DocumentCV    Document = "cv"
	DocumentOther Document = "other"
)

// Dashboard holds the counters on the admin landing page.
type Dashboard struct {
	NewMessages     map[model.FromType]int
	NewApplications int
	OpenJobs        int
	TotalJobs       int
}

// Admin implements the operations behind the admin dashboard. Callers must
// have passed the access gate. Each mutation changes exactly one row.
type Admin struct {
	store     Store
	objects   ObjectStore
	board     *JobBoard
	signedTTL time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewAdmin returns the admin service. board may be nil when no public
// listing cache needs invalidating.
func NewAdmin(store Store, objects ObjectStore, board *JobBoard, signedTTL time.Duration, logger *slog.Logger) *Admin {
	if signedTTL <= 0 {
		signedTTL = DefaultSignedURLTTL
	}
	return &Admin{
		store:     store,
		objects:   objects,
		board:     board,
		signedTTL: signedTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard computes the landing page counters.
func (a *Admin) Dashboard(ctx context.Context) (Dashboard, error) {
	d := Dashboard{NewMessages: make(map[model.FromType]int)}
	for _, ft := range model.FromTypes() {
		msgs, err := a.store.ListMessages(ctx, ft)
		if err != nil {
			return d, err
		}
		for _, m := range msgs {
			if m.Status == model.MessageNew {
				d.NewMessages[ft]++
			}
		}
	}
	apps, err := a.store.ListApplications(ctx)
	if err != nil {
		return d, err
	}
	for _, app := range apps {
		if app.Status == model.ApplicationNew {
			d.NewApplications++
		}
	}
	jobs, err := a.store.ListJobs(ctx)
	if err != nil {
		return d, err
	}
	d.TotalJobs = len(jobs)
	d.OpenJobs = len(model.FilterOpen(jobs, a.now()))
	return d, nil
}

// ListMessages returns one inbox view, newest first.
func (a *Admin) ListMessages(ctx context.Context, fromType model.FromType) ([]model.Message, error) {
	if !fromType.Valid() {
		return nil, invalidField("type", "Unknown message type.")
	}
	return a.store.ListMessages(ctx, fromType)
}

// SetMessageStatus moves a message to status. Repeating a transition is
// not an error.
func (a *Admin) SetMessageStatus(ctx context.Context, id string, status model.MessageStatus) error {
	if !status.Valid() {
		return invalidField("status", "Unknown status.")
	}
	return a.store.SetMessageStatus(ctx, id, status)
}

// ListApplications returns all applications, newest first.
func (a *Admin) ListApplications(ctx context.Context) ([]model.Application, error) {
	return a.store.ListApplications(ctx)
}

// GetApplication returns one application.
func (a *Admin) GetApplication(ctx context.Context, id string) (model.Application, error) {
	return a.store.GetApplication(ctx, id)
}

// SetApplicationStatus moves an application to status.
func (a *Admin) SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	if !status.Valid() {
		return invalidField("status", "Unknown status.")
	}
	return a.store.SetApplicationStatus(ctx, id, status)
}

// DocumentURL issues a fresh short-lived link to an application's
// document. It never derives a URL from the stored key itself.
func (a *Admin) DocumentURL(ctx context.Context, applicationID string, doc Document) (string, error) {
	app, err := a.store.GetApplication(ctx, applicationID)
	if err != nil {
		return "", err
	}
	var key *string
	switch doc {
	case DocumentCV:
		key = app.CVPath
	case DocumentOther:
		key = app.OtherPath
	default:
		return "", invalidField("document", "Unknown document.")
	}
	if key == nil || *key == "" {
		return "", model.ErrNotFound
	}
	return a.objects.SignedURL(ctx, *key, a.signedTTL)
}

// ListJobs returns every job, drafts and expired ones included.
func (a *Admin) ListJobs(ctx context.Context) ([]model.Job, error) {
	return a.store.ListJobs(ctx)
}

// GetJob returns a job for editing.
func (a *Admin) GetJob(ctx context.Context, id string) (model.Job, error) {
	return a.store.GetJob(ctx, id)
}

// SaveJob upserts the job keyed by its slug, derived from the title when
// blank. Title and posting date are checked before the store is called.
func (a *Admin) SaveJob(ctx context.Context, f model.JobForm) (model.Job, error) {
	if err := f.Validate(); err != nil {
		return model.Job{}, err
	}
	job, err := a.store.UpsertJob(ctx, f.Job())
	if err != nil {
		return model.Job{}, err
	}
	a.jobsChanged(ctx)
	return job, nil
}

// SetJobPublished toggles public visibility.
func (a *Admin) SetJobPublished(ctx context.Context, id string, published bool) error {
	if err := a.store.SetJobPublished(ctx, id, published); err != nil {
		return err
	}
	a.jobsChanged(ctx)
	return nil
}

// DeleteJob removes a job.
func (a *Admin) DeleteJob(ctx context.Context, id string) error {
	if err := a.store.DeleteJob(ctx, id); err != nil {
		return err
	}
	a.jobsChanged(ctx)
	return nil
}

func (a *Admin) jobsChanged(ctx context.Context) {
	if a.board != nil {
		a.board.Invalidate(ctx)
	}
}

func invalidField(field, msg string) error {
	ve := model.NewValidationError()
	ve.Add(field, msg)
	return ve
}
