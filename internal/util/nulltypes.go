// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"strings"
	"time"
)

// NullStringFromPtr converts an optional string into sql.NullString.
// Blank strings are stored as NULL.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr == nil || strings.TrimSpace(*ptr) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *ptr, Valid: true}
}

// PtrFromNullString is the inverse of NullStringFromPtr.
func PtrFromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullFloat64FromPtr converts an optional number into sql.NullFloat64.
func NullFloat64FromPtr(ptr *float64) sql.NullFloat64 {
	if ptr == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *ptr, Valid: true}
}

// PtrFromNullFloat64 is the inverse of NullFloat64FromPtr.
func PtrFromNullFloat64(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// NullTimeFromPtr converts an optional time into sql.NullTime.
func NullTimeFromPtr(ptr *time.Time) sql.NullTime {
	if ptr == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *ptr, Valid: true}
}

// PtrFromNullTime is the inverse of NullTimeFromPtr.
func PtrFromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// OptionalString returns nil for blank input and a pointer to the trimmed
// value otherwise.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
