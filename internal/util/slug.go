// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared across packages: job slugs,
// storage-safe file names, path containment and nullable column conversion.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlphanumeric matches every run of characters that may not appear in a slug.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// stripDiacritics removes combining marks after canonical decomposition.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// Slugify derives a URL slug from a title.
//
// The result is lowercase ASCII: diacritics are stripped, remaining non-ASCII
// letters are transliterated, every run of non-alphanumerics becomes a single
// hyphen and leading or trailing hyphens are trimmed. The same input always
// yields the same slug.
func Slugify(s string) string {
	result := stripDiacritics(s)
	result = unidecode.Unidecode(result)
	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// IsValidSlug reports whether s already has the shape Slugify produces.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
