// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
)

// UserStore is the identity table used by LocalProvider.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (model.User, error)
	TouchLastLogin(ctx context.Context, userID string) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// LocalProvider authenticates against the local users table.
type LocalProvider struct {
	users  UserStore
	logger *slog.Logger
	now    func() time.Time

	// dummyHash keeps unknown-email sign-ins as slow as wrong-password ones.
	dummyHash string
}

// NewLocalProvider returns a provider over users.
func NewLocalProvider(users UserStore, logger *slog.Logger) *LocalProvider {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, _ := HashPassword("ostaff-dummy-password")
	return &LocalProvider{
		users:     users,
		logger:    logger,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// SignIn performs the password grant.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := p.users.UserByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		_, _ = CheckPassword(password, p.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		p.logger.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if NeedsRehash(user.PasswordHash) {
		if hash, err := HashPassword(password); err == nil {
			if err := p.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				p.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
			}
		}
	}
	if err := p.users.TouchLastLogin(ctx, user.ID); err != nil {
		p.logger.Warn("recording last login failed", "user_id", user.ID, "error", err)
	}

	return &Session{
		Subject:    user.ID,
		Email:      user.Email,
		SignedInAt: p.now().UTC(),
	}, nil
}

// SignOut has nothing to revoke locally; the server session is destroyed by
// the caller.
func (p *LocalProvider) SignOut(context.Context, *Session) error {
	return nil
}
