// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package supabase adapts a hosted Supabase project to the store, object
// storage and identity interfaces. Two clients are used: one with the
// public anon key for what a visitor may do, one with the service key for
// the relay and the admin dashboard.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	supa "github.com/nedpals/supabase-go"

	"github.com/olegiv/ostaff-go/internal/model"
)

// Table names in the hosted schema.
const (
	tableMessages     = "contact_messages"
	tableApplications = "applications"
	tableJobs         = "jobs"
	tableProfiles     = "user_profiles"
)

// NewClient returns a client for the project at url authenticated with key.
func NewClient(url, key string) *supa.Client {
	return supa.CreateClient(url, key)
}

// Store implements the message, application, job and profile stores over
// PostgREST. Rows carry the same JSON names as the model types.
type Store struct {
	client *supa.Client
	now    func() time.Time
}

// NewStore wraps client.
func NewStore(client *supa.Client) *Store {
	return &Store{client: client, now: func() time.Time { return time.Now().UTC() }}
}

// one returns the single row of rows or model.ErrNotFound.
func one[T any](rows []T) (T, error) {
	var zero T
	if len(rows) == 0 {
		return zero, model.ErrNotFound
	}
	return rows[0], nil
}

// InsertMessage writes a new inbox row. The id and timestamp are assigned
// here so the row is known even when the anon role may not read it back.
func (s *Store) InsertMessage(ctx context.Context, m model.Message) (model.Message, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = s.now()

	var rows []model.Message
	if err := s.client.DB.From(tableMessages).Insert(m).ExecuteWithContext(ctx, &rows); err != nil {
		return model.Message{}, err
	}
	if len(rows) > 0 {
		return rows[0], nil
	}
	return m, nil
}

// ListMessages returns one subtype, newest first.
func (s *Store) ListMessages(ctx context.Context, fromType model.FromType) ([]model.Message, error) {
	var rows []model.Message
	if err := s.client.DB.From(tableMessages).Select("*").Eq("from_type", string(fromType)).ExecuteWithContext(ctx, &rows); err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// SetMessageStatus updates exactly one row.
func (s *Store) SetMessageStatus(ctx context.Context, id string, status model.MessageStatus) error {
	var rows []model.Message
	if err := s.client.DB.From(tableMessages).Update(map[string]any{"status": status}).Eq("id", id).ExecuteWithContext(ctx, &rows); err != nil {
		return err
	}
	_, err := one(rows)
	return err
}

// InsertApplication writes the application without file references.
func (s *Store) InsertApplication(ctx context.Context, a model.Application) (model.Application, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = s.now()

	var rows []model.Application
	if err := s.client.DB.From(tableApplications).Insert(a).ExecuteWithContext(ctx, &rows); err != nil {
		return model.Application{}, err
	}
	if len(rows) > 0 {
		return rows[0], nil
	}
	return a, nil
}

// AttachApplicationFiles records the uploaded object keys.
func (s *Store) AttachApplicationFiles(ctx context.Context, id string, files model.ApplicationFiles) error {
	var rows []model.Application
	err := s.client.DB.From(tableApplications).Update(map[string]any{
		"cv_path":    files.CVPath,
		"cv_name":    files.CVName,
		"other_path": files.OtherPath,
		"other_name": files.OtherName,
	}).Eq("id", id).ExecuteWithContext(ctx, &rows)
	if err != nil {
		return err
	}
	_, err = one(rows)
	return err
}

// ListApplications returns every application, newest first.
func (s *Store) ListApplications(ctx context.Context) ([]model.Application, error) {
	var rows []model.Application
	if err := s.client.DB.From(tableApplications).Select("*").ExecuteWithContext(ctx, &rows); err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// GetApplication returns one application.
func (s *Store) GetApplication(ctx context.Context, id string) (model.Application, error) {
	var rows []model.Application
	if err := s.client.DB.From(tableApplications).Select("*").Eq("id", id).ExecuteWithContext(ctx, &rows); err != nil {
		return model.Application{}, err
	}
	return one(rows)
}

// SetApplicationStatus updates exactly one row.
func (s *Store) SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	var rows []model.Application
	if err := s.client.DB.From(tableApplications).Update(map[string]any{"status": status}).Eq("id", id).ExecuteWithContext(ctx, &rows); err != nil {
		return err
	}
	_, err := one(rows)
	return err
}

// jobFields are the columns written by an upsert.
func jobFields(j model.Job, now time.Time) map[string]any {
	return map[string]any{
		"title":           j.Title,
		"slug":            j.Slug,
		"location":        j.Location,
		"employment_type": j.EmploymentType,
		"description_md":  j.DescriptionMD,
		"salary_min":      j.SalaryMin,
		"salary_max":      j.SalaryMax,
		"published":       j.Published,
		"posted_at":       j.PostedAt.UTC(),
		"expires_at":      j.ExpiresAt,
		"updated_at":      now,
	}
}

// UpsertJob updates the job with the same slug, or inserts a new one.
func (s *Store) UpsertJob(ctx context.Context, j model.Job) (model.Job, error) {
	if j.Slug == "" {
		return model.Job{}, errors.New("job slug is empty")
	}
	now := s.now()

	var existing []model.Job
	if err := s.client.DB.From(tableJobs).Select("id").Eq("slug", j.Slug).ExecuteWithContext(ctx, &existing); err != nil {
		return model.Job{}, err
	}

	var rows []model.Job
	fields := jobFields(j, now)
	if len(existing) > 0 {
		if err := s.client.DB.From(tableJobs).Update(fields).Eq("id", existing[0].ID).ExecuteWithContext(ctx, &rows); err != nil {
			return model.Job{}, err
		}
	} else {
		fields["id"] = uuid.NewString()
		fields["created_at"] = now
		if err := s.client.DB.From(tableJobs).Insert(fields).ExecuteWithContext(ctx, &rows); err != nil {
			return model.Job{}, err
		}
	}
	job, err := one(rows)
	if err != nil {
		return model.Job{}, fmt.Errorf("upsert of job %q returned no row", j.Slug)
	}
	return job, nil
}

func sortJobs(jobs []model.Job) {
	sort.SliceStable(jobs, func(i, k int) bool {
		if !jobs[i].PostedAt.Equal(jobs[k].PostedAt) {
			return jobs[i].PostedAt.After(jobs[k].PostedAt)
		}
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
}

// ListJobs returns every job, newest posting first.
func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	var rows []model.Job
	if err := s.client.DB.From(tableJobs).Select("*").ExecuteWithContext(ctx, &rows); err != nil {
		return nil, err
	}
	sortJobs(rows)
	return rows, nil
}

// ListOpenJobs returns published jobs that have not expired at now.
func (s *Store) ListOpenJobs(ctx context.Context, now time.Time) ([]model.Job, error) {
	var rows []model.Job
	if err := s.client.DB.From(tableJobs).Select("*").Eq("published", "true").ExecuteWithContext(ctx, &rows); err != nil {
		return nil, err
	}
	open := model.FilterOpen(rows, now)
	sortJobs(open)
	return open, nil
}

// GetJob returns one job by id.
func (s *Store) GetJob(ctx context.Context, id string) (model.Job, error) {
	var rows []model.Job
	if err := s.client.DB.From(tableJobs).Select("*").Eq("id", id).ExecuteWithContext(ctx, &rows); err != nil {
		return model.Job{}, err
	}
	return one(rows)
}

// GetJobBySlug returns one job by slug.
func (s *Store) GetJobBySlug(ctx context.Context, slug string) (model.Job, error) {
	var rows []model.Job
	if err := s.client.DB.From(tableJobs).Select("*").Eq("slug", slug).ExecuteWithContext(ctx, &rows); err != nil {
		return model.Job{}, err
	}
	return one(rows)
}

// SetJobPublished updates exactly one job.
func (s *Store) SetJobPublished(ctx context.Context, id string, published bool) error {
	var rows []model.Job
	err := s.client.DB.From(tableJobs).Update(map[string]any{
		"published":  published,
		"updated_at": s.now(),
	}).Eq("id", id).ExecuteWithContext(ctx, &rows)
	if err != nil {
		return err
	}
	_, err = one(rows)
	return err
}

// DeleteJob removes exactly one job. A delete answers 204 without the
// removed rows, so the job is looked up first to report a missing id.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	var rows []model.Job
	if err := s.client.DB.From(tableJobs).Select("id").Eq("id", id).ExecuteWithContext(ctx, &rows); err != nil {
		return err
	}
	if _, err := one(rows); err != nil {
		return err
	}
	return s.client.DB.From(tableJobs).Delete().Eq("id", id).ExecuteWithContext(ctx, nil)
}

type profileRow struct {
	IsAdmin bool `json:"is_admin"`
}

// AdminFlag reads is_admin from at most one profile row, keyed by the
// identity provider's user id.
func (s *Store) AdminFlag(ctx context.Context, userID string) (isAdmin, found bool, err error) {
	var rows []profileRow
	if err := s.client.DB.From(tableProfiles).Select("is_admin").Limit(1).Eq("user_id", userID).ExecuteWithContext(ctx, &rows); err != nil {
		return false, false, err
	}
	if len(rows) == 0 {
		return false, false, nil
	}
	return rows[0].IsAdmin, true, nil
}

// Ping runs a cheap filtered read to confirm the REST API answers with the
// client's key.
func (s *Store) Ping(ctx context.Context) error {
	var rows []model.Job
	return s.client.DB.From(tableJobs).Select("id").Eq("slug", "-").ExecuteWithContext(ctx, &rows)
}
