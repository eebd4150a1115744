// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProfiles struct {
	rows  map[string]bool
	err   error
	calls int
	// hook runs inside AdminFlag, before it returns.
	hook func()
}

func (f *fakeProfiles) AdminFlag(_ context.Context, userID string) (bool, bool, error) {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return false, false, f.err
	}
	isAdmin, ok := f.rows[userID]
	return isAdmin, ok, nil
}

func TestGate_Check(t *testing.T) {
	profiles := map[string]bool{"admin": true, "staff": false}

	tests := []struct {
		name      string
		sess      *Session
		err       error
		want      Decision
		wantCalls int
	}{
		{"no session", nil, nil, DecisionDenied, 0},
		{"empty subject", &Session{}, nil, DecisionDenied, 0},
		{"no profile row", &Session{Subject: "ghost"}, nil, DecisionDenied, 1},
		{"not admin", &Session{Subject: "staff"}, nil, DecisionDenied, 1},
		{"admin", &Session{Subject: "admin"}, nil, DecisionGranted, 1},
		{"lookup error", &Session{Subject: "admin"}, errors.New("boom"), DecisionDenied, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeProfiles{rows: profiles, err: tt.err}
			g := NewGate(f, nil)
			if got := g.Check(context.Background(), tt.sess); got != tt.want {
				t.Errorf("Check = %v, want %v", got, tt.want)
			}
			if f.calls != tt.wantCalls {
				t.Errorf("profile lookups = %d, want %d", f.calls, tt.wantCalls)
			}
		})
	}
}

func TestGate_NoSessionIgnoresProfiles(t *testing.T) {
	f := &fakeProfiles{rows: map[string]bool{"": true}}
	if got := NewGate(f, nil).Check(context.Background(), nil); got != DecisionDenied {
		t.Fatalf("Check(nil) = %v, want denied", got)
	}
}

func TestGate_CancelledDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeProfiles{rows: map[string]bool{"admin": true}, hook: cancel}

	if got := NewGate(f, nil).Check(ctx, &Session{Subject: "admin"}); got != DecisionPending {
		t.Fatalf("Check after cancel = %v, want pending", got)
	}
}

func TestGate_NotCached(t *testing.T) {
	f := &fakeProfiles{rows: map[string]bool{"u": true}}
	g := NewGate(f, nil)
	sess := &Session{Subject: "u"}

	if g.Check(context.Background(), sess) != DecisionGranted {
		t.Fatal("expected granted")
	}
	f.rows["u"] = false
	if g.Check(context.Background(), sess) != DecisionDenied {
		t.Fatal("revoked flag should deny on the next check")
	}
	if f.calls != 2 {
		t.Errorf("calls = %d, want 2", f.calls)
	}
}

func TestSession_Exceeds(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s := &Session{SignedInAt: start}

	if s.Exceeds(0, start.Add(48*time.Hour)) {
		t.Error("zero bound must never expire")
	}
	if s.Exceeds(30*time.Minute, start.Add(29*time.Minute)) {
		t.Error("29m session should be within 30m bound")
	}
	if !s.Exceeds(30*time.Minute, start.Add(31*time.Minute)) {
		t.Error("31m session should exceed 30m bound")
	}
	var nilSess *Session
	if nilSess.Exceeds(time.Minute, start) {
		t.Error("nil session cannot exceed")
	}
}

func TestCredentialsError(t *testing.T) {
	var err error = &CredentialsError{Message: "invalid_grant: Invalid login credentials"}

	if !errors.Is(err, ErrInvalidCredentials) {
		t.Error("CredentialsError should match ErrInvalidCredentials")
	}
	if got := err.Error(); got != "invalid_grant: Invalid login credentials" {
		t.Errorf("Error() = %q, want the provider's text", got)
	}
	if errors.Is(errors.New("invalid login credentials"), ErrInvalidCredentials) {
		t.Error("an unrelated error must not match")
	}
}
