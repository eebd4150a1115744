// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: the forced sign-out
// of admin sessions past their maximum lifetime and audit log retention.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/store"
)

// LoginLedger lists and forgets recorded sign-ins.
type LoginLedger interface {
	ExpiredLogins(ctx context.Context, cutoff time.Time) ([]store.SessionLogin, error)
	ForgetLogin(ctx context.Context, token string) error
}

// SessionRevoker deletes a server session by token. scs stores satisfy it.
type SessionRevoker interface {
	Delete(token string) error
}

// SignOuter revokes a session at the identity provider. auth.Provider
// satisfies it.
type SignOuter interface {
	SignOut(ctx context.Context, sess *auth.Session) error
}

// Events records sign-outs and prunes the audit log.
type Events interface {
	LogAuthEvent(ctx context.Context, level, message, userID, ipAddress string, metadata map[string]any) error
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Options enable the jobs. A zero MaxSessionAge disables the sweep; a zero
// EventRetention disables pruning.
type Options struct {
	MaxSessionAge  time.Duration
	SweepSchedule  string
	EventRetention time.Duration
}

// Scheduler owns a cron instance and the maintenance jobs.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	opts     Options
	ledger   LoginLedger
	sessions SessionRevoker
	identity SignOuter
	events   Events
	now      func() time.Time
}

// New creates a new scheduler instance. identity and events may be nil.
func New(logger *slog.Logger, opts Options, ledger LoginLedger, sessions SessionRevoker, identity SignOuter, events Events) *Scheduler {
	if opts.SweepSchedule == "" {
		opts.SweepSchedule = "@every 1m"
	}
	return &Scheduler{
		cron:     cron.New(),
		logger:   logger,
		opts:     opts,
		ledger:   ledger,
		sessions: sessions,
		identity: identity,
		events:   events,
		now:      time.Now,
	}
}

// Start registers the enabled jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.opts.MaxSessionAge > 0 && s.ledger != nil && s.sessions != nil {
		if _, err := s.cron.AddFunc(s.opts.SweepSchedule, func() {
			if _, err := s.SweepSessions(context.Background()); err != nil {
				s.logger.Error("session sweep failed", "error", err)
			}
		}); err != nil {
			return err
		}
	}
	if s.opts.EventRetention > 0 && s.events != nil {
		if _, err := s.cron.AddFunc("@daily", func() {
			n, err := s.events.DeleteOldEvents(context.Background(), s.opts.EventRetention)
			if err != nil {
				s.logger.Error("event retention failed", "error", err)
				return
			}
			if n > 0 {
				s.logger.Info("pruned old events", "count", n)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// SweepSessions signs out every session signed in longer than MaxSessionAge
// ago, first at the identity provider and then locally, and returns how
// many were revoked. A provider failure does not keep the local session.
func (s *Scheduler) SweepSessions(ctx context.Context) (int, error) {
	if s.opts.MaxSessionAge <= 0 {
		return 0, nil
	}
	expired, err := s.ledger.ExpiredLogins(ctx, s.now().Add(-s.opts.MaxSessionAge))
	if err != nil {
		return 0, err
	}

	revoked := 0
	for _, login := range expired {
		s.signOut(ctx, login)
		if err := s.sessions.Delete(login.Token); err != nil {
			s.logger.Warn("session revoke failed", "user_id", login.UserID, "error", err)
			continue
		}
		if err := s.ledger.ForgetLogin(ctx, login.Token); err != nil {
			s.logger.Warn("ledger cleanup failed", "user_id", login.UserID, "error", err)
		}
		revoked++
		if s.events != nil {
			_ = s.events.LogAuthEvent(ctx, model.EventLevelInfo, "Session exceeded maximum lifetime, signed out",
				login.UserID, "", map[string]any{"signed_in_at": login.SignedInAt.Format(time.RFC3339)})
		}
	}
	if revoked > 0 {
		s.logger.Info("forced sign-out", "count", revoked)
	}
	return revoked, nil
}

func (s *Scheduler) signOut(ctx context.Context, login store.SessionLogin) {
	if s.identity == nil || login.AccessToken == "" {
		return
	}
	sess := &auth.Session{Subject: login.UserID, AccessToken: login.AccessToken, SignedInAt: login.SignedInAt}
	if err := s.identity.SignOut(ctx, sess); err != nil {
		s.logger.Warn("identity sign-out failed", "user_id", login.UserID, "error", err)
	}
}
