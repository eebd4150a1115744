// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package robots builds the crawler access policy served at /robots.txt.
package robots

import (
	"strings"
)

// Config holds configuration for robots.txt generation.
type Config struct {
	DisallowAll   bool     // Block all crawlers (for staging sites)
	DisallowPaths []string // Paths to disallow besides the defaults
}

// defaultDisallow keeps crawlers out of the dashboard, the auth pages, the
// signed document links and the relay.
var defaultDisallow = []string{
	"/admin",
	"/login",
	"/logout",
	"/files",
	"/api",
}

// Build generates the robots.txt content.
func Build(cfg Config) string {
	var sb strings.Builder

	sb.WriteString("User-agent: *\n")

	if cfg.DisallowAll {
		sb.WriteString("Disallow: /\n")
		return sb.String()
	}

	paths := append(append([]string{}, defaultDisallow...), cfg.DisallowPaths...)
	for _, path := range paths {
		sb.WriteString("Disallow: ")
		sb.WriteString(path)
		sb.WriteString("\n")
	}
	sb.WriteString("Allow: /\n")
	return sb.String()
}
