// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth        = "auth"
	EventCategoryMessage     = "message"
	EventCategoryApplication = "application"
	EventCategoryJob         = "job"
	EventCategorySystem      = "system"
	EventCategoryCache       = "cache"
)

// Event is an audit log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    *string
	Metadata  string // JSON object
	IPAddress string
	CreatedAt time.Time
}
