// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// FromType discriminates the logical subtype of an inbox message.
type FromType string

// Message subtypes sharing the contact_messages table.
const (
	FromCandidate       FromType = "candidate"
	FromCompany         FromType = "company"
	FromStaffingRequest FromType = "staffing_request"
)

// FromTypes lists every subtype in display order.
func FromTypes() []FromType {
	return []FromType{FromCandidate, FromCompany, FromStaffingRequest}
}

// Valid reports whether t is a known subtype.
func (t FromType) Valid() bool {
	switch t {
	case FromCandidate, FromCompany, FromStaffingRequest:
		return true
	}
	return false
}

// Label returns the admin-facing name of the subtype.
func (t FromType) Label() string {
	switch t {
	case FromCandidate:
		return "Candidate messages"
	case FromCompany:
		return "Company messages"
	case FromStaffingRequest:
		return "Staffing requests"
	}
	return string(t)
}

// ParseFromType parses a discriminator value.
func ParseFromType(s string) (FromType, error) {
	t := FromType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown message type %q", s)
	}
	return t, nil
}

// MessageStatus is the lifecycle state of an inbox message.
type MessageStatus string

// Message statuses. Only admins move a message out of MessageNew.
const (
	MessageNew      MessageStatus = "new"
	MessageRead     MessageStatus = "read"
	MessageArchived MessageStatus = "archived"
)

// MessageStatuses lists every message status.
func MessageStatuses() []MessageStatus {
	return []MessageStatus{MessageNew, MessageRead, MessageArchived}
}

// Valid reports whether s is a known status.
func (s MessageStatus) Valid() bool {
	switch s {
	case MessageNew, MessageRead, MessageArchived:
		return true
	}
	return false
}

// ParseMessageStatus parses a message status value.
func ParseMessageStatus(s string) (MessageStatus, error) {
	st := MessageStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown message status %q", s)
	}
	return st, nil
}

// Message is one row of the unified inbox.
type Message struct {
	ID              string        `json:"id"`
	FromType        FromType      `json:"from_type"`
	FullName        string        `json:"full_name"`
	CompanyName     *string       `json:"company_name"`
	Email           string        `json:"email"`
	Phone           *string       `json:"phone"`
	Subject         string        `json:"subject"`
	Body            string        `json:"message"`
	Status          MessageStatus `json:"status"`
	GDPRConsent     bool          `json:"gdpr_consent"`
	GDPRConsentedAt *time.Time    `json:"gdpr_consented_at"`
	CreatedAt       time.Time     `json:"created_at"`
}
