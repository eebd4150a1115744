// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"maps"
	"net/http"

	"github.com/mileusna/useragent"
)

// AuditMetadata returns md extended with the browser, OS and device class
// of the request's User-Agent. md itself is not modified.
func AuditMetadata(r *http.Request, md map[string]any) map[string]any {
	out := make(map[string]any, len(md)+3)
	maps.Copy(out, md)

	raw := r.UserAgent()
	if raw == "" {
		return out
	}
	ua := useragent.Parse(raw)

	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}
	out["browser"] = browser
	out["os"] = os
	out["device"] = deviceClass(ua)
	return out
}

func deviceClass(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	default:
		return "desktop"
	}
}
