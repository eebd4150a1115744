// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/ostaff-go/internal/robots"
)

// Robots returns the GET /robots.txt handler. Staging deployments pass
// disallowAll to block every crawler.
func Robots(disallowAll bool) http.HandlerFunc {
	body := []byte(robots.Build(robots.Config{DisallowAll: disallowAll}))
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	}
}
