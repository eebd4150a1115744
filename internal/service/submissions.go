// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/notify"
)

// messageForm is implemented by every form that ends up in the inbox.
type messageForm interface {
	Validate() error
	ToMessage(now time.Time) model.Message
}

// Submissions validates public lead forms and writes them to the inbox.
// Validation runs before any store call; a rejected form touches nothing.
type Submissions struct {
	public     MessageStore
	privileged MessageStore
	notifier   notify.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewSubmissions wires the public store used by browser forms and the
// privileged store used by the relay endpoint.
func NewSubmissions(public, privileged MessageStore, notifier notify.Notifier, logger *slog.Logger) *Submissions {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Submissions{
		public:     public,
		privileged: privileged,
		notifier:   notifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SubmitCandidate stores a candidate message.
func (s *Submissions) SubmitCandidate(ctx context.Context, f model.CandidateForm) (model.Message, error) {
	return s.submit(ctx, s.public, f)
}

// SubmitCompany stores a company message.
func (s *Submissions) SubmitCompany(ctx context.Context, f model.CompanyForm) (model.Message, error) {
	return s.submit(ctx, s.public, f)
}

// SubmitStaffingRequest stores a staffing request.
func (s *Submissions) SubmitStaffingRequest(ctx context.Context, f model.StaffingRequestForm) (model.Message, error) {
	return s.submit(ctx, s.public, f)
}

// SubmitRelay stores a company contact received on the relay endpoint,
// using the privileged store.
func (s *Submissions) SubmitRelay(ctx context.Context, f model.RelayContact) (model.Message, error) {
	return s.submit(ctx, s.privileged, f)
}

// submit returns store errors unwrapped so their text reaches the user.
func (s *Submissions) submit(ctx context.Context, store MessageStore, f messageForm) (model.Message, error) {
	if err := f.Validate(); err != nil {
		return model.Message{}, err
	}
	msg, err := store.InsertMessage(ctx, f.ToMessage(s.now()))
	if err != nil {
		s.logger.Error("message insert failed", "error", err)
		return model.Message{}, err
	}
	s.logger.Info("message received", "id", msg.ID, "from_type", msg.FromType)
	_ = s.notifier.MessageReceived(ctx, msg)
	return msg, nil
}
