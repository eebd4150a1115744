// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"log/slog"
)

// Decision is the outcome of an access check.
type Decision int

const (
	// DecisionPending means no result is available: the check is still
	// running or its caller went away before it finished.
	DecisionPending Decision = iota
	DecisionGranted
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	default:
		return "pending"
	}
}

// Gate decides whether a session may use the admin dashboard.
type Gate struct {
	profiles ProfileStore
	logger   *slog.Logger
}

// NewGate returns a Gate reading admin flags from profiles.
func NewGate(profiles ProfileStore, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{profiles: profiles, logger: logger}
}

// Check grants access only when a session exists and its profile row has
// is_admin set. A missing row, a false flag and a lookup error all deny.
// The decision is not cached; every call performs the lookup again.
//
// If ctx is cancelled while the lookup runs, the result is discarded and
// DecisionPending is returned so the caller applies nothing.
func (g *Gate) Check(ctx context.Context, sess *Session) Decision {
	if sess == nil || sess.Subject == "" {
		return DecisionDenied
	}

	isAdmin, found, err := g.profiles.AdminFlag(ctx, sess.Subject)
	if ctx.Err() != nil {
		return DecisionPending
	}
	if err != nil {
		g.logger.Warn("admin profile lookup failed", "user_id", sess.Subject, "error", err)
		return DecisionDenied
	}
	if found && isAdmin {
		return DecisionGranted
	}
	return DecisionDenied
}
