// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries build information injected via ldflags.
package version

import "fmt"

// Info describes the running build.
type Info struct {
	Version   string // e.g. "v1.2.3"
	GitCommit string // short hash
	BuildTime string // RFC3339
}

// String renders the -version line.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}
	if i.GitCommit == "" {
		return "ostaff " + v
	}
	return fmt.Sprintf("ostaff %s (commit: %s, built: %s)", v, i.GitCommit, i.BuildTime)
}

// Short is the version alone, "dev" when unset.
func (i Info) Short() string {
	if i.Version == "" {
		return "dev"
	}
	return i.Version
}
