// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestParseFromType(t *testing.T) {
	for _, ft := range FromTypes() {
		got, err := ParseFromType(string(ft))
		if err != nil || got != ft {
			t.Errorf("ParseFromType(%q) = %q, %v", ft, got, err)
		}
	}
	if _, err := ParseFromType("vendor"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseStatuses(t *testing.T) {
	for _, s := range MessageStatuses() {
		if _, err := ParseMessageStatus(string(s)); err != nil {
			t.Errorf("ParseMessageStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseMessageStatus("deleted"); err == nil {
		t.Error("expected error for unknown message status")
	}

	for _, s := range ApplicationStatuses() {
		if _, err := ParseApplicationStatus(string(s)); err != nil {
			t.Errorf("ParseApplicationStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseApplicationStatus("read"); err == nil {
		t.Error("message status must not be an application status")
	}
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	if ve.OrNil() != nil {
		t.Fatal("empty error should be nil")
	}

	ve.Add("email", "first")
	ve.Add("email", "second")
	ve.Add("name", MsgRequired)

	if ve.Fields["email"] != "first" {
		t.Errorf("first message should win, got %q", ve.Fields["email"])
	}
	want := "validation failed: email: first; name: " + MsgRequired
	if ve.Error() != want {
		t.Errorf("Error() = %q, want %q", ve.Error(), want)
	}

	wrapped := fmt.Errorf("submit: %w", ve.OrNil())
	got, ok := AsValidationError(wrapped)
	if !ok || got != ve {
		t.Error("AsValidationError should unwrap")
	}
	if _, ok := AsValidationError(errors.New("x")); ok {
		t.Error("plain error is not a validation error")
	}
}
