// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/session"
	"github.com/olegiv/ostaff-go/internal/version"
)

const (
	// minFreeUploadSpace is the free space below which uploads count as degraded.
	minFreeUploadSpace = 100 << 20
	checkTimeout       = 3 * time.Second
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// namedCheck is one named health check.
type namedCheck struct {
	name string
	run  func(ctx context.Context) Check
}

// HealthHandler reports whether the service can take submissions: the
// local database, free space for uploads and, when added, remote backends.
type HealthHandler struct {
	db        *sql.DB
	sm        *scs.SessionManager
	gate      *auth.Gate
	version   version.Info
	startTime time.Time
	checks    []namedCheck
}

// NewHealthHandler creates a new health handler. sm and gate may be nil, in
// which case every caller gets the public answer. An empty uploadsDir means
// documents go to remote storage and no disk check runs.
func NewHealthHandler(db *sql.DB, sm *scs.SessionManager, gate *auth.Gate, uploadsDir string, info version.Info) *HealthHandler {
	h := &HealthHandler{
		db:        db,
		sm:        sm,
		gate:      gate,
		version:   info,
		startTime: time.Now(),
	}
	h.checks = append(h.checks, namedCheck{"database", h.checkDatabase})
	h.checks = append(h.checks, namedCheck{"disk", func(context.Context) Check { return checkDiskSpace(uploadsDir) }})
	return h
}

// AddCheck registers a remote dependency. A returned error marks it unhealthy.
func (h *HealthHandler) AddCheck(name string, ping func(ctx context.Context) error) {
	h.checks = append(h.checks, namedCheck{name, func(ctx context.Context) Check {
		start := time.Now()
		if err := ping(ctx); err != nil {
			return Check{Status: statusUnhealthy, Message: err.Error(), Latency: time.Since(start).String()}
		}
		return Check{Status: statusHealthy, Latency: time.Since(start).String()}
	}})
}

// HealthStatusPublic is the minimal health response for anonymous callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// HealthStatus is the detailed response shown to admins.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. Any check that is not healthy answers 503.
// Details are shown only to sessions the admin gate grants.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := make(map[string]Check, len(h.checks))
	overall := statusHealthy
	for _, p := range h.checks {
		c := p.run(ctx)
		checks[p.name] = c
		if c.Status != statusHealthy {
			overall = statusDegraded
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if overall != statusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if !h.isAdmin(r) {
		_ = json.NewEncoder(w).Encode(HealthStatusPublic{Status: overall})
		return
	}

	status := HealthStatus{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version.Short(),
		Checks:    checks,
	}
	if r.URL.Query().Get("verbose") == "true" {
		status.System = systemInfo()
	}
	_ = json.NewEncoder(w).Encode(status)
}

// isAdmin runs the access gate for the caller. SCS panics when the session
// is not loaded into the context, which counts as anonymous.
func (h *HealthHandler) isAdmin(r *http.Request) (ok bool) {
	if h.sm == nil || h.gate == nil {
		return false
	}
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	sess := session.CurrentAuth(r.Context(), h.sm)
	return h.gate.Check(r.Context(), sess) == auth.DecisionGranted
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Message: "Connected", Latency: latency}
}

// checkDiskSpace checks available space where uploads are written.
func checkDiskSpace(dir string) Check {
	if dir == "" {
		return Check{Status: statusHealthy, Message: "Uploads go to remote storage"}
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return Check{Status: statusHealthy, Message: "Uploads directory does not exist yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return Check{Status: statusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < minFreeUploadSpace {
		return Check{Status: statusDegraded, Message: "Low disk space: " + formatBytes(available) + " available"}
	}
	return Check{Status: statusHealthy, Message: formatBytes(available) + " available"}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     formatBytes(m.Alloc),
		MemSys:       formatBytes(m.Sys),
	}
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
