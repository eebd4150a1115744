// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, email, password_hash, created_at, last_login_at`

// CreateUserParams are the columns of a new identity user.
type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.ID, arg.Email, arg.PasswordHash, arg.CreatedAt)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.PasswordHash, &i.CreatedAt, &i.LastLoginAt)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, password_hash, created_at, last_login_at FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.PasswordHash, &i.CreatedAt, &i.LastLoginAt)
	return i, err
}

const updateUserLastLogin = `-- name: UpdateUserLastLogin :exec
UPDATE users SET last_login_at = ? WHERE id = ?`

func (q *Queries) UpdateUserLastLogin(ctx context.Context, lastLoginAt sql.NullTime, id string) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, lastLoginAt, id)
	return err
}

const updateUserPassword = `-- name: UpdateUserPassword :exec
UPDATE users SET password_hash = ? WHERE id = ?`

func (q *Queries) UpdateUserPassword(ctx context.Context, passwordHash, id string) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, passwordHash, id)
	return err
}

const getAdminFlag = `-- name: GetAdminFlag :many
SELECT is_admin FROM user_profiles WHERE user_id = ? LIMIT 1`

// GetAdminFlag returns the is_admin column of at most one profile row. An
// empty slice means no profile exists.
func (q *Queries) GetAdminFlag(ctx context.Context, userID string) ([]bool, error) {
	rows, err := q.db.QueryContext(ctx, getAdminFlag, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []bool
	for rows.Next() {
		var isAdmin bool
		if err := rows.Scan(&isAdmin); err != nil {
			return nil, err
		}
		items = append(items, isAdmin)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertUserProfile = `-- name: UpsertUserProfile :exec
INSERT INTO user_profiles (user_id, is_admin, created_at) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET is_admin = excluded.is_admin`

func (q *Queries) UpsertUserProfile(ctx context.Context, userID string, isAdmin bool, createdAt time.Time) error {
	_, err := q.db.ExecContext(ctx, upsertUserProfile, userID, isAdmin, createdAt)
	return err
}
