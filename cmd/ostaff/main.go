// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ostaff-go/internal/auth"
	"github.com/olegiv/ostaff-go/internal/backend"
	"github.com/olegiv/ostaff-go/internal/cache"
	"github.com/olegiv/ostaff-go/internal/config"
	"github.com/olegiv/ostaff-go/internal/handler"
	"github.com/olegiv/ostaff-go/internal/logging"
	"github.com/olegiv/ostaff-go/internal/middleware"
	"github.com/olegiv/ostaff-go/internal/notify"
	"github.com/olegiv/ostaff-go/internal/render"
	"github.com/olegiv/ostaff-go/internal/scheduler"
	"github.com/olegiv/ostaff-go/internal/service"
	"github.com/olegiv/ostaff-go/internal/session"
	"github.com/olegiv/ostaff-go/internal/store"
	"github.com/olegiv/ostaff-go/internal/version"
	"github.com/olegiv/ostaff-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// eventRetention is how long audit events are kept.
const eventRetention = 90 * 24 * time.Hour

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oStaff - staffing agency site and admin dashboard\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_SESSION_SECRET              Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_DB_PATH                     SQLite database path (default: ./data/ostaff.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_SERVER_PORT                 Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_ENV                         Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_BACKEND                     local|supabase (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_SUPABASE_URL                Hosted project URL (supabase backend)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_SUPABASE_ANON_KEY           Public anon key (supabase backend)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_SUPABASE_SERVICE_KEY        Privileged service key, server-side only\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_ADMIN_SESSION_MAX_MINUTES   Force admin sign-out after N minutes (default: 0, off)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_REDIS_URL                   Redis URL for the job board cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OSTAFF_TELEGRAM_TOKEN              Bot token for lead notifications (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("ostaff %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsDevelopment())
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also go to the event log.
	logger = slog.New(logging.NewEventLogHandler(logger.Handler(), db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if !cfg.UseSupabase() {
		if err := store.SeedAdmin(ctx, db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	clients, err := backend.Open(cfg, db, logger)
	if err != nil {
		return err
	}

	jobCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() { _ = jobCache.Close() }()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("initializing telegram: %w", err)
		}
		notifier = tg
		slog.Info("telegram notifications enabled")
	}
	asyncNotifier := notify.NewAsync(notifier, logger)
	defer asyncNotifier.Wait()

	events := service.NewEventService(db)
	board := service.NewJobBoard(clients.Public, jobCache, cfg.CacheTTL, logger)
	submissions := service.NewSubmissions(clients.Public, clients.Privileged, asyncNotifier, logger)
	applications := service.NewApplications(clients.Privileged, clients.Objects, asyncNotifier, logger, cfg.MaxUploadBytes())
	admin := service.NewAdmin(clients.Privileged, clients.Objects, board, cfg.SignedURLTTL, logger)

	sm := session.New(db, cfg.IsDevelopment())

	templates, err := web.TemplatesFS()
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Sign-in times live in the local database in both modes.
	ledger := store.NewBackend(db)

	gate := auth.NewGate(clients.Profiles, logger)
	guard := middleware.NewAdminGuard(gate, sm, cfg.AdminSessionMaxAge(), clients.Identity, ledger, events, logger)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	sched := scheduler.New(logger, scheduler.Options{
		MaxSessionAge:  cfg.AdminSessionMaxAge(),
		EventRetention: eventRetention,
	}, ledger, sm.Store, clients.Identity, events)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	publicHandler := handler.NewPublicHandler(renderer, submissions, applications, board, logger)
	relayHandler := handler.NewRelayHandler(submissions, logger)
	authHandler := handler.NewAuthHandler(renderer, sm, clients.Identity, ledger, events, loginProtection, logger)
	adminHandler := handler.NewAdminHandler(renderer, admin, events, logger)

	uploadsDir := ""
	if !cfg.UseSupabase() {
		uploadsDir = cfg.UploadsDir
	}
	healthHandler := handler.NewHealthHandler(db, sm, gate, uploadsDir, versionInfo)
	if clients.HealthCheck != nil {
		healthHandler.AddCheck("backend", clients.HealthCheck)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sm.LoadAndSave)

	// The relay is called cross-origin by the static site and carries no
	// session, so it is exempt from CSRF.
	r.Use(middleware.SkipCSRF("/api/contact"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.TrustedOrigins)))
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	staticFS, err := web.StaticFS()
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	if clients.Files != nil {
		r.Handle("/files/*", clients.Files)
	}
	r.Get("/health", healthHandler.Health)
	r.Get("/robots.txt", handler.Robots(cfg.IsDevelopment()))
	r.Post("/api/contact", relayHandler.Contact)

	r.Get("/", publicHandler.Home)
	r.Get("/jobs", publicHandler.Jobs)
	r.Get("/jobs/{slug}", publicHandler.Job)
	r.Get("/candidates", publicHandler.Candidates)
	r.Get("/companies", publicHandler.Companies)
	r.Get("/staffing-request", publicHandler.StaffingRequest)
	r.Get("/apply", publicHandler.Apply)
	r.Group(func(r chi.Router) {
		r.Use(middleware.FormRateLimit(0.2, 5))
		r.Post("/candidates", publicHandler.SubmitCandidate)
		r.Post("/companies", publicHandler.SubmitCompany)
		r.Post("/staffing-request", publicHandler.SubmitStaffingRequest)
		r.Post("/apply", publicHandler.SubmitApplication)
	})

	r.Get(middleware.LoginPath, authHandler.LoginForm)
	r.With(loginProtection.Middleware()).Post(middleware.LoginPath, authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(guard.RequireAdmin)
		r.Get("/", adminHandler.Dashboard)
		r.Get("/messages", adminHandler.Messages)
		r.Post("/messages/{id}/status", adminHandler.SetMessageStatus)
		r.Get("/applications", adminHandler.Applications)
		r.Post("/applications/{id}/status", adminHandler.SetApplicationStatus)
		r.Get("/applications/{id}/cv", adminHandler.CVDocument)
		r.Get("/applications/{id}/other", adminHandler.OtherDocument)
		r.Get("/jobs", adminHandler.Jobs)
		r.Get("/jobs/new", adminHandler.NewJob)
		r.Get("/jobs/{id}/edit", adminHandler.EditJob)
		r.Post("/jobs", adminHandler.SaveJob)
		r.Post("/jobs/{id}/publish", adminHandler.SetJobPublished)
		r.Post("/jobs/{id}/delete", adminHandler.DeleteJob)
		r.Get("/events", adminHandler.Events)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       60 * time.Second, // multipart uploads
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "backend", cfg.Backend, "version", versionInfo.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
