// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the submission, admin and job board logic. It talks
// to persistence only through the small interfaces below, which both the
// SQLite and the hosted backend implement.
package service

import (
	"context"
	"io"
	"time"

	"github.com/olegiv/ostaff-go/internal/model"
)

// MessageStore is the contact_messages table.
type MessageStore interface {
	InsertMessage(ctx context.Context, m model.Message) (model.Message, error)
	ListMessages(ctx context.Context, fromType model.FromType) ([]model.Message, error)
	SetMessageStatus(ctx context.Context, id string, status model.MessageStatus) error
}

// ApplicationStore is the applications table.
type ApplicationStore interface {
	InsertApplication(ctx context.Context, a model.Application) (model.Application, error)
	AttachApplicationFiles(ctx context.Context, id string, files model.ApplicationFiles) error
	ListApplications(ctx context.Context) ([]model.Application, error)
	GetApplication(ctx context.Context, id string) (model.Application, error)
	SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus) error
}

// JobStore is the jobs table.
type JobStore interface {
	UpsertJob(ctx context.Context, j model.Job) (model.Job, error)
	ListJobs(ctx context.Context) ([]model.Job, error)
	ListOpenJobs(ctx context.Context, now time.Time) ([]model.Job, error)
	GetJob(ctx context.Context, id string) (model.Job, error)
	GetJobBySlug(ctx context.Context, slug string) (model.Job, error)
	SetJobPublished(ctx context.Context, id string, published bool) error
	DeleteJob(ctx context.Context, id string) error
}

// Store bundles every table a backend serves.
type Store interface {
	MessageStore
	ApplicationStore
	JobStore
}

// ObjectStore is the private bucket for application documents.
type ObjectStore interface {
	// Put must fail rather than overwrite an existing key.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// SignedURL returns a URL granting read access to key for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
