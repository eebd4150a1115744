// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"io"
	"time"
)

// ApplicationStatus is the recruiting state of a job application.
type ApplicationStatus string

// Application statuses.
const (
	ApplicationNew       ApplicationStatus = "new"
	ApplicationReviewed  ApplicationStatus = "reviewed"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationHired     ApplicationStatus = "hired"
)

// ApplicationStatuses lists every application status in pipeline order.
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationNew,
		ApplicationReviewed,
		ApplicationInterview,
		ApplicationRejected,
		ApplicationHired,
	}
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// ParseApplicationStatus parses an application status value.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

// Application is a submitted job application. CVPath and OtherPath are
// object-store keys in a private bucket, never URLs.
type Application struct {
	ID              string            `json:"id"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	FullName        string            `json:"full_name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	City            *string           `json:"city"`
	RoleApplied     *string           `json:"role_applied"`
	CoverLetter     *string           `json:"cover_letter"`
	CVPath          *string           `json:"cv_path"`
	CVName          *string           `json:"cv_name"`
	OtherPath       *string           `json:"other_path"`
	OtherName       *string           `json:"other_name"`
	Status          ApplicationStatus `json:"status"`
	GDPRConsent     bool              `json:"gdpr_consent"`
	GDPRConsentedAt *time.Time        `json:"gdpr_consented_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

// HasCV reports whether a CV object is attached.
func (a Application) HasCV() bool {
	return a.CVPath != nil && *a.CVPath != ""
}

// HasOther reports whether an additional document is attached.
func (a Application) HasOther() bool {
	return a.OtherPath != nil && *a.OtherPath != ""
}

// ApplicationFiles are the object references written back after upload.
type ApplicationFiles struct {
	CVPath    *string
	CVName    *string
	OtherPath *string
	OtherName *string
}

// Attachment is an uploaded file as received from the browser.
type Attachment struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}
