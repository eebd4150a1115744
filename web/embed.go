// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var Templates embed.FS

//go:embed all:static
var Static embed.FS

// TemplatesFS is Templates rooted at the templates directory.
func TemplatesFS() (fs.FS, error) {
	return fs.Sub(Templates, "templates")
}

// StaticFS is Static rooted at the static directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(Static, "static")
}
