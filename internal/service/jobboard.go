// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/ostaff-go/internal/cache"
	"github.com/olegiv/ostaff-go/internal/model"
	"github.com/olegiv/ostaff-go/internal/util"
)

const openJobsKey = "jobs:open"

// descriptionPolicy strips unsafe markup from rendered job descriptions.
var descriptionPolicy = bluemonday.UGCPolicy()

// JobBoard serves the public job listing.
type JobBoard struct {
	jobs   JobStore
	cache  *cache.Typed[[]model.Job]
	md     goldmark.Markdown
	logger *slog.Logger
	now    func() time.Time
}

// NewJobBoard caches the open-jobs query in c for ttl.
func NewJobBoard(jobs JobStore, c cache.Cache, ttl time.Duration, logger *slog.Logger) *JobBoard {
	return &JobBoard{
		jobs:   jobs,
		cache:  cache.NewTyped[[]model.Job](c, ttl),
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger: logger,
		now:    time.Now,
	}
}

// OpenJobs returns the currently visible jobs. Cached rows are filtered
// again on every read so an expiry is honoured before the entry ages out.
func (b *JobBoard) OpenJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := b.cache.GetOrLoad(ctx, openJobsKey, func(ctx context.Context) ([]model.Job, error) {
		return b.jobs.ListOpenJobs(ctx, b.now())
	})
	if err != nil {
		return nil, err
	}
	return model.FilterOpen(jobs, b.now()), nil
}

// JobBySlug returns an open job. Drafts and expired jobs are not found.
func (b *JobBoard) JobBySlug(ctx context.Context, slug string) (model.Job, error) {
	if !util.IsValidSlug(slug) {
		return model.Job{}, model.ErrNotFound
	}
	job, err := b.jobs.GetJobBySlug(ctx, slug)
	if err != nil {
		return model.Job{}, err
	}
	if !job.IsOpen(b.now()) {
		return model.Job{}, model.ErrNotFound
	}
	return job, nil
}

// Invalidate drops the cached listing after a job mutation.
func (b *JobBoard) Invalidate(ctx context.Context) {
	if err := b.cache.Delete(ctx, openJobsKey); err != nil {
		b.logger.Warn("job cache invalidation failed", "error", err)
	}
}

// RenderDescription converts the markdown description to sanitised HTML.
func (b *JobBoard) RenderDescription(j model.Job) template.HTML {
	src := util.StringValue(j.DescriptionMD)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := b.md.Convert([]byte(src), &buf); err != nil {
		b.logger.Warn("markdown render failed", "job", j.Slug, "error", err)
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped
	}
	return template.HTML(descriptionPolicy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitised by bluemonday
}
