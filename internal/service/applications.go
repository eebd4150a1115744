// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/notify"
	"github.com/olegiv/ostaff-go/internal/util"
)

// DefaultMaxUploadBytes is the per-file limit for application documents.
const DefaultMaxUploadBytes int64 = 25 << 20

// FileTooLargeError reports a document over the upload limit.
type FileTooLargeError struct {
	Field string
	Name  string
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s is larger than the %d MB limit", e.Name, e.Limit>>20)
}

// PartialApplicationError means the application row was stored but a later
// step failed. The row stays without (some) file references; nothing is
// rolled back.
type PartialApplicationError struct {
	ApplicationID string
	Err           error
}

func (e *PartialApplicationError) Error() string { return e.Err.Error() }
func (e *PartialApplicationError) Unwrap() error { return e.Err }

// Applications handles the job application form.
type Applications struct {
	store    ApplicationStore
	objects  ObjectStore
	notifier notify.Notifier
	logger   *slog.Logger
	maxBytes int64
	now      func() time.Time
}

// NewApplications returns the service. maxBytes <= 0 uses the default.
func NewApplications(store ApplicationStore, objects ObjectStore, notifier notify.Notifier, logger *slog.Logger, maxBytes int64) *Applications {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Applications{
		store:    store,
		objects:  objects,
		notifier: notifier,
		logger:   logger,
		maxBytes: maxBytes,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// MaxBytes is the per-file upload limit.
func (s *Applications) MaxBytes() int64 { return s.maxBytes }

// Submit validates the form, inserts the row, uploads the documents under
// the new row's id and finally records their keys on the row. The steps
// run strictly in that order. Failures after the insert are returned as
// *PartialApplicationError.
func (s *Applications) Submit(ctx context.Context, f model.ApplicationForm) (model.Application, error) {
	if err := f.Validate(); err != nil {
		return model.Application{}, err
	}

	now := s.now()
	app, err := s.store.InsertApplication(ctx, f.Application(now))
	if err != nil {
		s.logger.Error("application insert failed", "error", err)
		return model.Application{}, err
	}

	partial := func(err error) (model.Application, error) {
		s.logger.Warn("application stored without documents", "id", app.ID, "error", err)
		return app, &PartialApplicationError{ApplicationID: app.ID, Err: err}
	}

	// Both limits are checked before the first upload.
	if err := s.checkSize("cv", f.CV); err != nil {
		return partial(err)
	}
	if err := s.checkSize("other", f.Other); err != nil {
		return partial(err)
	}

	var files model.ApplicationFiles
	stamp := now.UnixMilli()

	cvKey := DocumentKey(app.ID, "cv", stamp, f.CV.Name)
	if err := s.upload(ctx, cvKey, f.CV); err != nil {
		return partial(err)
	}
	files.CVPath, files.CVName = &cvKey, util.OptionalString(f.CV.Name)

	if f.Other != nil && f.Other.Size > 0 {
		otherKey := DocumentKey(app.ID, "other", stamp, f.Other.Name)
		if err := s.upload(ctx, otherKey, f.Other); err != nil {
			return partial(err)
		}
		files.OtherPath, files.OtherName = &otherKey, util.OptionalString(f.Other.Name)
	}

	if err := s.store.AttachApplicationFiles(ctx, app.ID, files); err != nil {
		return partial(err)
	}
	app.CVPath, app.CVName = files.CVPath, files.CVName
	app.OtherPath, app.OtherName = files.OtherPath, files.OtherName

	s.logger.Info("application received", "id", app.ID)
	_ = s.notifier.ApplicationReceived(ctx, app)
	return app, nil
}

func (s *Applications) checkSize(field string, a *model.Attachment) error {
	if a == nil || a.Size <= s.maxBytes {
		return nil
	}
	return &FileTooLargeError{Field: field, Name: a.Name, Limit: s.maxBytes}
}

func (s *Applications) upload(ctx context.Context, key string, a *model.Attachment) error {
	if a.Body == nil {
		return errors.New("missing file body")
	}
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	if err := s.objects.Put(ctx, key, a.Body, a.Size, ct); err != nil {
		return fmt.Errorf("uploading %s: %w", a.Name, err)
	}
	return nil
}

// DocumentKey builds the object key {applicationID}/{kind}/{millis}-{name}.
func DocumentKey(applicationID, kind string, millis int64, filename string) string {
	return fmt.Sprintf("%s/%s/%d-%s", applicationID, kind, millis, util.StorageFileName(filename))
}
