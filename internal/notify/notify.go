// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify tells staff about new leads and applications.
// Notifications are best effort and never affect a submission's outcome.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
)

// Notifier announces new inbox rows and applications.
type Notifier interface {
	MessageReceived(ctx context.Context, m model.Message) error
	ApplicationReceived(ctx context.Context, a model.Application) error
}

// Noop discards every notification.
type Noop struct{}

func (Noop) MessageReceived(context.Context, model.Message) error         { return nil }
func (Noop) ApplicationReceived(context.Context, model.Application) error { return nil }

// Async delivers notifications on background goroutines, detached from the
// request context and bounded by a timeout. Failures are only logged.
type Async struct {
	next    Notifier
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsync wraps next.
func NewAsync(next Notifier, logger *slog.Logger) *Async {
	return &Async{next: next, logger: logger, timeout: 10 * time.Second}
}

func (a *Async) MessageReceived(ctx context.Context, m model.Message) error {
	a.run(ctx, "message", func(ctx context.Context) error { return a.next.MessageReceived(ctx, m) })
	return nil
}

func (a *Async) ApplicationReceived(ctx context.Context, app model.Application) error {
	a.run(ctx, "application", func(ctx context.Context) error { return a.next.ApplicationReceived(ctx, app) })
	return nil
}

func (a *Async) run(parent context.Context, kind string, fn func(context.Context) error) {
	ctx := context.WithoutCancel(parent)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			a.logger.Warn("notification failed", "kind", kind, "error", err)
		}
	}()
}

// Wait blocks until all pending notifications finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
