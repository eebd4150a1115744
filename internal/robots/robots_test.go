// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package robots

import (
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	out := Build(Config{DisallowPaths: []string{"/private"}})

	for _, want := range []string{
		"User-agent: *\n",
		"Disallow: /admin\n",
		"Disallow: /files\n",
		"Disallow: /api\n",
		"Disallow: /private\n",
		"Allow: /\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, out)
		}
	}
}

func TestBuild_DisallowAll(t *testing.T) {
	out := Build(Config{DisallowAll: true})

	if out != "User-agent: *\nDisallow: /\n" {
		t.Errorf("robots.txt = %q", out)
	}
}

func TestBuild_DefaultsNotMutated(t *testing.T) {
	_ = Build(Config{DisallowPaths: []string{"/x"}})
	for _, p := range defaultDisallow {
		if p == "/x" {
			t.Fatal("defaultDisallow was modified")
		}
	}
}
