// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend selects the data, storage and identity implementations
// for the configured deployment.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/config"
	"github.com/olegiv/ostaff-go/internal/objectstore"
	"github.com/olegiv/ostaff-go/internal/service"
	"github.com/olegiv/ostaff-go/internal/store"
	"github.com/olegiv/ostaff-go/internal/supabase"
)

// Clients are the backend-facing dependencies of the services.
//
// Public carries visitor privileges and is used for the site forms.
// Privileged bypasses row-level policies and is used by the relay, job
// applications and the admin dashboard. In local mode both are the same
// SQLite backend.
type Clients struct {
	Public     service.Store
	Privileged service.Store
	Objects    service.ObjectStore
	Identity   auth.Provider
	Profiles   auth.ProfileStore

	// Files serves signed document links. It is nil when documents are
	// served by the hosted storage API.
	Files http.Handler

	// HealthCheck checks the remote backend for the health endpoint. It is nil
	// in local mode, where the database check covers everything.
	HealthCheck func(ctx context.Context) error
}

// Open builds the clients for cfg. db is always the local database; it
// holds sessions and the event log in both modes.
func Open(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Clients, error) {
	if cfg.UseSupabase() {
		return openSupabase(cfg, logger), nil
	}
	return openLocal(cfg, db, logger)
}

func openLocal(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Clients, error) {
	b := store.NewBackend(db)
	objects, err := objectstore.NewLocal(cfg.UploadsDir, []byte(cfg.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("opening uploads store: %w", err)
	}
	logger.Info("using local backend", "db", cfg.DBPath, "uploads", cfg.UploadsDir)
	return &Clients{
		Public:     b,
		Privileged: b,
		Objects:    objects,
		Identity:   auth.NewLocalProvider(b, logger),
		Profiles:   b,
		Files:      objects.Handler(),
	}, nil
}

func openSupabase(cfg *config.Config, logger *slog.Logger) *Clients {
	anonClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	serviceClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey)

	privileged := supabase.NewStore(serviceClient)
	logger.Info("using supabase backend", "url", cfg.SupabaseURL, "bucket", cfg.StorageBucket)
	return &Clients{
		Public:      supabase.NewStore(anonClient),
		Privileged:  privileged,
		Objects:     supabase.NewStorage(serviceClient, cfg.SupabaseURL, cfg.StorageBucket),
		Identity:    supabase.NewIdentity(anonClient),
		Profiles:    privileged,
		HealthCheck: privileged.Ping,
	}
}
