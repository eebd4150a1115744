// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ostaff-go/internal/auth"
)

// SeedAdmin makes sure an identity user with an admin profile exists for
// email. An existing user keeps its password; only the profile is promoted.
// Nothing happens when email is empty.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	queries := New(db)
	now := time.Now().UTC()

	user, err := queries.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		slog.Info("admin user already exists, ensuring profile", "email", email)
	case errors.Is(err, sql.ErrNoRows):
		if password == "" {
			return fmt.Errorf("admin password required to create %s", email)
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		user, err = queries.CreateUser(ctx, CreateUserParams{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("creating admin user: %w", err)
		}
		slog.Info("created admin user", "id", user.ID, "email", user.Email)
	default:
		return fmt.Errorf("checking for admin user: %w", err)
	}

	if err := queries.UpsertUserProfile(ctx, user.ID, true, now); err != nil {
		return fmt.Errorf("creating admin profile: %w", err)
	}
	return nil
}

// SeedUser creates an identity user with a profile row. It is used by tests
// and the CLI to provision non-admin accounts.
func SeedUser(ctx context.Context, db *sql.DB, email, password string, isAdmin bool) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}
	now := time.Now().UTC()
	queries := New(db)
	user, err := queries.CreateUser(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	})
	if err != nil {
		return User{}, fmt.Errorf("creating user: %w", err)
	}
	if err := queries.UpsertUserProfile(ctx, user.ID, isAdmin, now); err != nil {
		return User{}, fmt.Errorf("creating profile: %w", err)
	}
	return user, nil
}
