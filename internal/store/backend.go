// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/util"
)

// Backend serves the domain stores from SQLite, converting between rows and
// model types. Identifiers and creation timestamps are assigned here.
type Backend struct {
	queries *Queries
	now     func() time.Time
}

// NewBackend returns a Backend over db.
func NewBackend(db DBTX) *Backend {
	return &Backend{
		queries: New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func requireOneRow(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// InsertMessage stores a new inbox row and returns it with id and created_at.
func (b *Backend) InsertMessage(ctx context.Context, m model.Message) (model.Message, error) {
	row, err := b.queries.CreateContactMessage(ctx, CreateContactMessageParams{
		ID:              uuid.NewString(),
		FromType:        string(m.FromType),
		FullName:        m.FullName,
		CompanyName:     util.NullStringFromPtr(m.CompanyName),
		Email:           m.Email,
		Phone:           util.NullStringFromPtr(m.Phone),
		Subject:         m.Subject,
		Message:         m.Body,
		Status:          string(model.MessageNew),
		GdprConsent:     m.GDPRConsent,
		GdprConsentedAt: util.NullTimeFromPtr(m.GDPRConsentedAt),
		CreatedAt:       b.now(),
	})
	if err != nil {
		return model.Message{}, fmt.Errorf("inserting message: %w", err)
	}
	return messageFromRow(row), nil
}

// ListMessages returns the inbox view for one subtype, newest first.
func (b *Backend) ListMessages(ctx context.Context, fromType model.FromType) ([]model.Message, error) {
	rows, err := b.queries.ListContactMessagesByType(ctx, string(fromType))
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	out := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, messageFromRow(r))
	}
	return out, nil
}

// SetMessageStatus updates the status of exactly one message.
func (b *Backend) SetMessageStatus(ctx context.Context, id string, status model.MessageStatus) error {
	return requireOneRow(b.queries.UpdateContactMessageStatus(ctx, UpdateContactMessageStatusParams{
		Status: string(status),
		ID:     id,
	}))
}

// InsertApplication stores a new application without file references.
func (b *Backend) InsertApplication(ctx context.Context, a model.Application) (model.Application, error) {
	row, err := b.queries.CreateApplication(ctx, CreateApplicationParams{
		ID:              uuid.NewString(),
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		FullName:        a.FullName,
		Email:           a.Email,
		Phone:           a.Phone,
		City:            util.NullStringFromPtr(a.City),
		RoleApplied:     util.NullStringFromPtr(a.RoleApplied),
		CoverLetter:     util.NullStringFromPtr(a.CoverLetter),
		Status:          string(model.ApplicationNew),
		GdprConsent:     a.GDPRConsent,
		GdprConsentedAt: util.NullTimeFromPtr(a.GDPRConsentedAt),
		CreatedAt:       b.now(),
	})
	if err != nil {
		return model.Application{}, fmt.Errorf("inserting application: %w", err)
	}
	return applicationFromRow(row), nil
}

// AttachApplicationFiles writes object keys and original names to an application.
func (b *Backend) AttachApplicationFiles(ctx context.Context, id string, files model.ApplicationFiles) error {
	return requireOneRow(b.queries.AttachApplicationFiles(ctx, AttachApplicationFilesParams{
		CvPath:    util.NullStringFromPtr(files.CVPath),
		CvName:    util.NullStringFromPtr(files.CVName),
		OtherPath: util.NullStringFromPtr(files.OtherPath),
		OtherName: util.NullStringFromPtr(files.OtherName),
		ID:        id,
	}))
}

// ListApplications returns all applications, newest first.
func (b *Backend) ListApplications(ctx context.Context) ([]model.Application, error) {
	rows, err := b.queries.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	out := make([]model.Application, 0, len(rows))
	for _, r := range rows {
		out = append(out, applicationFromRow(r))
	}
	return out, nil
}

// GetApplication returns one application.
func (b *Backend) GetApplication(ctx context.Context, id string) (model.Application, error) {
	row, err := b.queries.GetApplication(ctx, id)
	if err != nil {
		return model.Application{}, notFound(err)
	}
	return applicationFromRow(row), nil
}

// SetApplicationStatus updates the status of exactly one application.
func (b *Backend) SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	return requireOneRow(b.queries.UpdateApplicationStatus(ctx, UpdateApplicationStatusParams{
		Status: string(status),
		ID:     id,
	}))
}

// UpsertJob inserts or replaces the job with the same slug.
func (b *Backend) UpsertJob(ctx context.Context, j model.Job) (model.Job, error) {
	now := b.now()
	row, err := b.queries.UpsertJobBySlug(ctx, UpsertJobBySlugParams{
		ID:             uuid.NewString(),
		Title:          j.Title,
		Location:       util.NullStringFromPtr(j.Location),
		EmploymentType: util.NullStringFromPtr(j.EmploymentType),
		DescriptionMd:  util.NullStringFromPtr(j.DescriptionMD),
		SalaryMin:      util.NullFloat64FromPtr(j.SalaryMin),
		SalaryMax:      util.NullFloat64FromPtr(j.SalaryMax),
		Slug:           j.Slug,
		Published:      j.Published,
		PostedAt:       j.PostedAt.UTC(),
		ExpiresAt:      utcNullTime(j.ExpiresAt),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return model.Job{}, fmt.Errorf("upserting job: %w", err)
	}
	return jobFromRow(row), nil
}

// ListJobs returns every job for the admin surface.
func (b *Backend) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := b.queries.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobsFromRows(rows), nil
}

// ListOpenJobs returns jobs publicly visible at now.
func (b *Backend) ListOpenJobs(ctx context.Context, now time.Time) ([]model.Job, error) {
	rows, err := b.queries.ListOpenJobs(ctx, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("listing open jobs: %w", err)
	}
	return model.FilterOpen(jobsFromRows(rows), now), nil
}

// GetJob returns a job by id.
func (b *Backend) GetJob(ctx context.Context, id string) (model.Job, error) {
	row, err := b.queries.GetJobByID(ctx, id)
	if err != nil {
		return model.Job{}, notFound(err)
	}
	return jobFromRow(row), nil
}

// GetJobBySlug returns a job by slug regardless of visibility.
func (b *Backend) GetJobBySlug(ctx context.Context, slug string) (model.Job, error) {
	row, err := b.queries.GetJobBySlug(ctx, slug)
	if err != nil {
		return model.Job{}, notFound(err)
	}
	return jobFromRow(row), nil
}

// SetJobPublished updates the published flag of exactly one job.
func (b *Backend) SetJobPublished(ctx context.Context, id string, published bool) error {
	return requireOneRow(b.queries.SetJobPublished(ctx, SetJobPublishedParams{
		Published: published,
		UpdatedAt: b.now(),
		ID:        id,
	}))
}

// DeleteJob removes one job.
func (b *Backend) DeleteJob(ctx context.Context, id string) error {
	return requireOneRow(b.queries.DeleteJob(ctx, id))
}

// AdminFlag looks up at most one profile. A missing row is reported as
// found=false without error.
func (b *Backend) AdminFlag(ctx context.Context, userID string) (isAdmin, found bool, err error) {
	flags, err := b.queries.GetAdminFlag(ctx, userID)
	if err != nil {
		return false, false, fmt.Errorf("fetching profile: %w", err)
	}
	if len(flags) == 0 {
		return false, false, nil
	}
	return flags[0], true, nil
}

// UserByEmail returns the identity user with the given email.
func (b *Backend) UserByEmail(ctx context.Context, email string) (model.User, error) {
	row, err := b.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return model.User{}, notFound(err)
	}
	return model.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		LastLoginAt:  util.PtrFromNullTime(row.LastLoginAt),
	}, nil
}

// TouchLastLogin records a successful sign-in.
func (b *Backend) TouchLastLogin(ctx context.Context, userID string) error {
	return b.queries.UpdateUserLastLogin(ctx, sql.NullTime{Time: b.now(), Valid: true}, userID)
}

// UpdatePasswordHash replaces a user's stored hash.
func (b *Backend) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return b.queries.UpdateUserPassword(ctx, hash, userID)
}

func utcNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func messageFromRow(r ContactMessage) model.Message {
	return model.Message{
		ID:              r.ID,
		FromType:        model.FromType(r.FromType),
		FullName:        r.FullName,
		CompanyName:     util.PtrFromNullString(r.CompanyName),
		Email:           r.Email,
		Phone:           util.PtrFromNullString(r.Phone),
		Subject:         r.Subject,
		Body:            r.Message,
		Status:          model.MessageStatus(r.Status),
		GDPRConsent:     r.GdprConsent,
		GDPRConsentedAt: util.PtrFromNullTime(r.GdprConsentedAt),
		CreatedAt:       r.CreatedAt,
	}
}

func applicationFromRow(r Application) model.Application {
	return model.Application{
		ID:              r.ID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		FullName:        r.FullName,
		Email:           r.Email,
		Phone:           r.Phone,
		City:            util.PtrFromNullString(r.City),
		RoleApplied:     util.PtrFromNullString(r.RoleApplied),
		CoverLetter:     util.PtrFromNullString(r.CoverLetter),
		CVPath:          util.PtrFromNullString(r.CvPath),
		CVName:          util.PtrFromNullString(r.CvName),
		OtherPath:       util.PtrFromNullString(r.OtherPath),
		OtherName:       util.PtrFromNullString(r.OtherName),
		Status:          model.ApplicationStatus(r.Status),
		GDPRConsent:     r.GdprConsent,
		GDPRConsentedAt: util.PtrFromNullTime(r.GdprConsentedAt),
		CreatedAt:       r.CreatedAt,
	}
}

func jobFromRow(r Job) model.Job {
	return model.Job{
		ID:             r.ID,
		Title:          r.Title,
		Location:       util.PtrFromNullString(r.Location),
		EmploymentType: util.PtrFromNullString(r.EmploymentType),
		DescriptionMD:  util.PtrFromNullString(r.DescriptionMd),
		SalaryMin:      util.PtrFromNullFloat64(r.SalaryMin),
		SalaryMax:      util.PtrFromNullFloat64(r.SalaryMax),
		Slug:           r.Slug.String,
		Published:      r.Published,
		PostedAt:       r.PostedAt,
		ExpiresAt:      util.PtrFromNullTime(r.ExpiresAt),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func jobsFromRows(rows []Job) []model.Job {
	out := make([]model.Job, 0, len(rows))
	for _, r := range rows {
		out = append(out, jobFromRow(r))
	}
	return out
}

// RecordLogin adds a session token to the sign-in ledger, with the
// identity provider's access token so a forced sign-out can revoke it.
func (b *Backend) RecordLogin(ctx context.Context, token, userID, accessToken string, signedInAt time.Time) error {
	return b.queries.RecordSessionLogin(ctx, SessionLogin{
		Token:       token,
		UserID:      userID,
		AccessToken: accessToken,
		SignedInAt:  signedInAt.UTC(),
	})
}

// ExpiredLogins returns ledger entries signed in before cutoff.
func (b *Backend) ExpiredLogins(ctx context.Context, cutoff time.Time) ([]SessionLogin, error) {
	return b.queries.ListSessionLoginsBefore(ctx, cutoff.UTC())
}

// ForgetLogin removes a token from the sign-in ledger.
func (b *Backend) ForgetLogin(ctx context.Context, token string) error {
	return b.queries.DeleteSessionLogin(ctx, token)
}
