// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// ContactMessage is a contact_messages row.
type ContactMessage struct {
	ID              string
	FromType        string
	FullName        string
	CompanyName     sql.NullString
	Email           string
	Phone           sql.NullString
	Subject         string
	Message         string
	Status          string
	GdprConsent     bool
	GdprConsentedAt sql.NullTime
	CreatedAt       time.Time
}

// Application is an applications row.
type Application struct {
	ID              string
	FirstName       string
	LastName        string
	FullName        string
	Email           string
	Phone           string
	City            sql.NullString
	RoleApplied     sql.NullString
	CoverLetter     sql.NullString
	CvPath          sql.NullString
	CvName          sql.NullString
	OtherPath       sql.NullString
	OtherName       sql.NullString
	Status          string
	GdprConsent     bool
	GdprConsentedAt sql.NullTime
	CreatedAt       time.Time
}

// Job is a jobs row.
type Job struct {
	ID             string
	Title          string
	Location       sql.NullString
	EmploymentType sql.NullString
	DescriptionMd  sql.NullString
	SalaryMin      sql.NullFloat64
	SalaryMax      sql.NullFloat64
	Slug           sql.NullString
	Published      bool
	PostedAt       time.Time
	ExpiresAt      sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserProfile is a user_profiles row.
type UserProfile struct {
	UserID    string
	IsAdmin   bool
	CreatedAt time.Time
}

// User is a users row.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Event is an events row.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullString
	Metadata  string
	IpAddress string
	CreatedAt time.Time
}

// SessionLogin is a session_logins row.
type SessionLogin struct {
	Token       string
	UserID      string
	AccessToken string
	SignedInAt  time.Time
}
