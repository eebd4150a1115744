// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const contactMessageColumns = `id, from_type, full_name, company_name, email, phone, subject, message, status, gdpr_consent, gdpr_consented_at, created_at`

func scanContactMessage(row interface{ Scan(...any) error }) (ContactMessage, error) {
	var i ContactMessage
	err := row.Scan(
		&i.ID,
		&i.FromType,
		&i.FullName,
		&i.CompanyName,
		&i.Email,
		&i.Phone,
		&i.Subject,
		&i.Message,
		&i.Status,
		&i.GdprConsent,
		&i.GdprConsentedAt,
		&i.CreatedAt,
	)
	return i, err
}

const createContactMessage = `-- name: CreateContactMessage :one
INSERT INTO contact_messages (
    id, from_type, full_name, company_name, email, phone, subject, message, status, gdpr_consent, gdpr_consented_at, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + contactMessageColumns

// CreateContactMessageParams are the columns of a new inbox row.
type CreateContactMessageParams struct {
	ID              string
	FromType        string
	FullName        string
	CompanyName     sql.NullString
	Email           string
	Phone           sql.NullString
	Subject         string
	Message         string
	Status          string
	GdprConsent     bool
	GdprConsentedAt sql.NullTime
	CreatedAt       time.Time
}

func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, createContactMessage,
		arg.ID,
		arg.FromType,
		arg.FullName,
		arg.CompanyName,
		arg.Email,
		arg.Phone,
		arg.Subject,
		arg.Message,
		arg.Status,
		arg.GdprConsent,
		arg.GdprConsentedAt,
		arg.CreatedAt,
	)
	return scanContactMessage(row)
}

const listContactMessagesByType = `-- name: ListContactMessagesByType :many
SELECT ` + contactMessageColumns + ` FROM contact_messages
WHERE from_type = ?
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListContactMessagesByType(ctx context.Context, fromType string) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessagesByType, fromType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ContactMessage
	for rows.Next() {
		i, err := scanContactMessage(rows)
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

const getContactMessage = `-- name: GetContactMessage :one
SELECT ` + contactMessageColumns + ` FROM contact_messages WHERE id = ?`

func (q *Queries) GetContactMessage(ctx context.Context, id string) (ContactMessage, error) {
	return scanContactMessage(q.db.QueryRowContext(ctx, getContactMessage, id))
}

const updateContactMessageStatus = `-- name: UpdateContactMessageStatus :execrows
UPDATE contact_messages SET status = ? WHERE id = ?`

// UpdateContactMessageStatusParams identify the row and its new status.
type UpdateContactMessageStatusParams struct {
	Status string
	ID     string
}

func (q *Queries) UpdateContactMessageStatus(ctx context.Context, arg UpdateContactMessageStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateContactMessageStatus, arg.Status, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
