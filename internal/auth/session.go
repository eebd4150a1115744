// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth holds the identity session, the identity providers that
// establish it and the access gate that guards the admin dashboard.
package auth

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidCredentials is returned by a provider when the email and
// password do not match a known user.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// CredentialsError is a credentials rejection worded by the identity
// provider. It matches ErrInvalidCredentials and prints the provider's text.
type CredentialsError struct {
	Message string
}

func (e *CredentialsError) Error() string { return e.Message }

// Is reports whether target is ErrInvalidCredentials.
func (e *CredentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

// Session is an established identity session. Subject is the identity
// provider's user id and the key into user_profiles.
type Session struct {
	Subject      string    `json:"sub"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	SignedInAt   time.Time `json:"signed_in_at"`
}

// Exceeds reports whether the session is older than maxAge at now.
// A non-positive maxAge never expires.
func (s *Session) Exceeds(maxAge time.Duration, now time.Time) bool {
	if s == nil || maxAge <= 0 {
		return false
	}
	return now.Sub(s.SignedInAt) > maxAge
}

// Provider performs the password grant and session invalidation against an
// identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, sess *Session) error
}

// ProfileStore fetches the admin flag of at most one profile row. A missing
// row is reported with found=false and a nil error.
type ProfileStore interface {
	AdminFlag(ctx context.Context, userID string) (isAdmin, found bool, err error)
}
