// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Job is a job posting.
type Job struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Location       *string    `json:"location"`
	EmploymentType *string    `json:"employment_type"`
	DescriptionMD  *string    `json:"description_md"`
	SalaryMin      *float64   `json:"salary_min"`
	SalaryMax      *float64   `json:"salary_max"`
	Slug           string     `json:"slug"`
	Published      bool       `json:"published"`
	PostedAt       time.Time  `json:"posted_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsOpen reports whether the job is publicly visible at now: published and
// either without expiry or expiring strictly after now. PostedAt plays no part.
func (j Job) IsOpen(now time.Time) bool {
	if !j.Published {
		return false
	}
	return j.ExpiresAt == nil || j.ExpiresAt.After(now)
}

// FilterOpen returns the jobs open at now, preserving order.
func FilterOpen(jobs []Job, now time.Time) []Job {
	open := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.IsOpen(now) {
			open = append(open, j)
		}
	}
	return open
}
