// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestJob_IsOpen(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	ancient := now.AddDate(-5, 0, 0)

	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"published no expiry", Job{Published: true, PostedAt: now}, true},
		{"published no expiry old posting", Job{Published: true, PostedAt: ancient}, true},
		{"published future expiry", Job{Published: true, ExpiresAt: &future}, true},
		{"published past expiry", Job{Published: true, ExpiresAt: &past}, false},
		{"published expiring now", Job{Published: true, ExpiresAt: &now}, false},
		{"unpublished", Job{Published: false}, false},
		{"unpublished future expiry", Job{Published: false, ExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.IsOpen(now); got != tt.want {
				t.Errorf("IsOpen() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterOpen(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	jobs := []Job{
		{ID: "a", Published: true},
		{ID: "b", Published: true, ExpiresAt: &past},
		{ID: "c", Published: false},
		{ID: "d", Published: true},
	}

	open := FilterOpen(jobs, now)
	if len(open) != 2 || open[0].ID != "a" || open[1].ID != "d" {
		t.Errorf("FilterOpen = %+v", open)
	}
}
