// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const applicationColumns = `id, first_name, last_name, full_name, email, phone, city, role_applied, cover_letter, cv_path, cv_name, other_path, other_name, status, gdpr_consent, gdpr_consented_at, created_at`

func scanApplication(row interface{ Scan(...any) error }) (Application, error) {
	var i Application
	err := row.Scan(
		&i.ID,
		&i.FirstName,
		&i.LastName,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.City,
		&i.RoleApplied,
		&i.CoverLetter,
		&i.CvPath,
		&i.CvName,
		&i.OtherPath,
		&i.OtherName,
		&i.Status,
		&i.GdprConsent,
		&i.GdprConsentedAt,
		&i.CreatedAt,
	)
	return i, err
}

const createApplication = `-- name: CreateApplication :one
INSERT INTO applications (
    id, first_name, last_name, full_name, email, phone, city, role_applied, cover_letter, status, gdpr_consent, gdpr_consented_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + applicationColumns

// CreateApplicationParams are the columns of a new application. File
// references are written later by AttachApplicationFiles.
type CreateApplicationParams struct {
	ID              string
	FirstName       string
	LastName        string
	FullName        string
	Email           string
	Phone           string
	City            sql.NullString
	RoleApplied     sql.NullString
	CoverLetter     sql.NullString
	Status          string
	GdprConsent     bool
	GdprConsentedAt sql.NullTime
	CreatedAt       time.Time
}

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (Application, error) {
	row := q.db.QueryRowContext(ctx, createApplication,
		arg.ID,
		arg.FirstName,
		arg.LastName,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.City,
		arg.RoleApplied,
		arg.CoverLetter,
		arg.Status,
		arg.GdprConsent,
		arg.GdprConsentedAt,
		arg.CreatedAt,
	)
	return scanApplication(row)
}

const attachApplicationFiles = `-- name: AttachApplicationFiles :execrows
UPDATE applications
SET cv_path = ?, cv_name = ?, other_path = ?, other_name = ?
WHERE id = ?`

// AttachApplicationFilesParams carry the object keys and original names.
type AttachApplicationFilesParams struct {
	CvPath    sql.NullString
	CvName    sql.NullString
	OtherPath sql.NullString
	OtherName sql.NullString
	ID        string
}

func (q *Queries) AttachApplicationFiles(ctx context.Context, arg AttachApplicationFilesParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, attachApplicationFiles,
		arg.CvPath,
		arg.CvName,
		arg.OtherPath,
		arg.OtherName,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listApplications = `-- name: ListApplications :many
SELECT ` + applicationColumns + ` FROM applications
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListApplications(ctx context.Context) ([]Application, error) {
	rows, err := q.db.QueryContext(ctx, listApplications)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Application
	for rows.Next() {
		i, err := scanApplication(rows)
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

const getApplication = `-- name: GetApplication :one
SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

func (q *Queries) GetApplication(ctx context.Context, id string) (Application, error) {
	return scanApplication(q.db.QueryRowContext(ctx, getApplication, id))
}

const updateApplicationStatus = `-- name: UpdateApplicationStatus :execrows
UPDATE applications SET status = ? WHERE id = ?`

// UpdateApplicationStatusParams identify the row and its new status.
type UpdateApplicationStatusParams struct {
	Status string
	ID     string
}

func (q *Queries) UpdateApplicationStatus(ctx context.Context, arg UpdateApplicationStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateApplicationStatus, arg.Status, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
