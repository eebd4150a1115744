// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const jobColumns = `id, title, location, employment_type, description_md, salary_min, salary_max, slug, published, posted_at, expires_at, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (Job, error) {
	var i Job
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Location,
		&i.EmploymentType,
		&i.DescriptionMd,
		&i.SalaryMin,
		&i.SalaryMax,
		&i.Slug,
		&i.Published,
		&i.PostedAt,
		&i.ExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectJobs(rows *sql.Rows) ([]Job, error) {
	defer func() { _ = rows.Close() }()

	var items []Job
	for rows.Next() {
		i, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertJobBySlug = `-- name: UpsertJobBySlug :one
INSERT INTO jobs (
    id, title, location, employment_type, description_md, salary_min, salary_max, slug, published, posted_at, expires_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (slug) DO UPDATE SET
    title = excluded.title,
    location = excluded.location,
    employment_type = excluded.employment_type,
    description_md = excluded.description_md,
    salary_min = excluded.salary_min,
    salary_max = excluded.salary_max,
    published = excluded.published,
    posted_at = excluded.posted_at,
    expires_at = excluded.expires_at,
    updated_at = excluded.updated_at
RETURNING ` + jobColumns

// UpsertJobBySlugParams are the columns written by a job upsert. ID and
// CreatedAt only apply when the slug is new.
type UpsertJobBySlugParams struct {
	ID             string
	Title          string
	Location       sql.NullString
	EmploymentType sql.NullString
	DescriptionMd  sql.NullString
	SalaryMin      sql.NullFloat64
	SalaryMax      sql.NullFloat64
	Slug           string
	Published      bool
	PostedAt       time.Time
	ExpiresAt      sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (q *Queries) UpsertJobBySlug(ctx context.Context, arg UpsertJobBySlugParams) (Job, error) {
	row := q.db.QueryRowContext(ctx, upsertJobBySlug,
		arg.ID,
		arg.Title,
		arg.Location,
		arg.EmploymentType,
		arg.DescriptionMd,
		arg.SalaryMin,
		arg.SalaryMax,
		arg.Slug,
		arg.Published,
		arg.PostedAt,
		arg.ExpiresAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanJob(row)
}

const listJobs = `-- name: ListJobs :many
SELECT ` + jobColumns + ` FROM jobs
ORDER BY posted_at DESC, created_at DESC`

func (q *Queries) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := q.db.QueryContext(ctx, listJobs)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

const listOpenJobs = `-- name: ListOpenJobs :many
SELECT ` + jobColumns + ` FROM jobs
WHERE published = 1 AND (expires_at IS NULL OR expires_at > ?)
ORDER BY posted_at DESC, created_at DESC`

func (q *Queries) ListOpenJobs(ctx context.Context, now time.Time) ([]Job, error) {
	rows, err := q.db.QueryContext(ctx, listOpenJobs, now)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

const getJobByID = `-- name: GetJobByID :one
SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

func (q *Queries) GetJobByID(ctx context.Context, id string) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, getJobByID, id))
}

const getJobBySlug = `-- name: GetJobBySlug :one
SELECT ` + jobColumns + ` FROM jobs WHERE slug = ?`

func (q *Queries) GetJobBySlug(ctx context.Context, slug string) (Job, error) {
	return scanJob(q.db.QueryRowContext(ctx, getJobBySlug, slug))
}

const setJobPublished = `-- name: SetJobPublished :execrows
UPDATE jobs SET published = ?, updated_at = ? WHERE id = ?`

// SetJobPublishedParams identify the job and its new visibility flag.
type SetJobPublishedParams struct {
	Published bool
	UpdatedAt time.Time
	ID        string
}

func (q *Queries) SetJobPublished(ctx context.Context, arg SetJobPublishedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setJobPublished, arg.Published, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteJob = `-- name: DeleteJob :execrows
DELETE FROM jobs WHERE id = ?`

func (q *Queries) DeleteJob(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteJob, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
