// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const recordSessionLogin = `-- name: RecordSessionLogin :exec
INSERT INTO session_logins (token, user_id, access_token, signed_in_at) VALUES (?, ?, ?, ?)
ON CONFLICT (token) DO UPDATE SET user_id = excluded.user_id, access_token = excluded.access_token,
    signed_in_at = excluded.signed_in_at`

func (q *Queries) RecordSessionLogin(ctx context.Context, arg SessionLogin) error {
	_, err := q.db.ExecContext(ctx, recordSessionLogin, arg.Token, arg.UserID, arg.AccessToken, arg.SignedInAt)
	return err
}

const listSessionLoginsBefore = `-- name: ListSessionLoginsBefore :many
SELECT token, user_id, access_token, signed_in_at FROM session_logins WHERE signed_in_at < ?`

func (q *Queries) ListSessionLoginsBefore(ctx context.Context, cutoff time.Time) ([]SessionLogin, error) {
	rows, err := q.db.QueryContext(ctx, listSessionLoginsBefore, cutoff)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []SessionLogin
	for rows.Next() {
		var i SessionLogin
		if err := rows.Scan(&i.Token, &i.UserID, &i.AccessToken, &i.SignedInAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSessionLogin = `-- name: DeleteSessionLogin :exec
DELETE FROM session_logins WHERE token = ?`

func (q *Queries) DeleteSessionLogin(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, deleteSessionLogin, token)
	return err
}
