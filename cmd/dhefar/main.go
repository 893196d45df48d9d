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

	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/config"
	"github.com/olegiv/dhefar-go/internal/handler"
	"github.com/olegiv/dhefar-go/internal/handler/api"
	"github.com/olegiv/dhefar-go/internal/logging"
	"github.com/olegiv/dhefar-go/internal/middleware"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/scheduler"
	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/storage"
	"github.com/olegiv/dhefar-go/internal/store"
	"github.com/olegiv/dhefar-go/internal/version"
)

// limiterPruneSize is the number of tracked clients above which the public
// rate limiter forgets everyone.
const limiterPruneSize = 10000

func main() {
	showVersion := flag.Bool("version", false, "Show version information and exit")
	flag.BoolVar(showVersion, "v", false, "Show version information and exit (shorthand)")
	showHelp := flag.Bool("help", false, "Show help message and exit")
	flag.BoolVar(showHelp, "h", false, "Show help message and exit (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "dhefar - Dhefar Fund website backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: dhefar [options]\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_SESSION_SECRET      Session signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_DB_DRIVER           sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_DB_PATH             SQLite database path (default: ./data/dhefar.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_DB_DSN              MySQL DSN (required for mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_ENV                 development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_STORAGE             local|s3 (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_UPLOADS_DIR         Local uploads directory (default: ./public/uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DHEFAR_RECAPTCHA_SECRET_KEY  reCAPTCHA secret copied into settings at start-up\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	db, dialect, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations", "dialect", dialect)
	if err := store.MigrateDialect(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	queries := store.NewWithDialect(db, dialect)

	// Upgrade logger to also write WARN and ERROR logs to the event log
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, queries)))
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.SeedSettings(ctx, queries); err != nil {
		return fmt.Errorf("seeding settings: %w", err)
	}
	if err := store.ApplySettingOverrides(ctx, queries, map[string]string{
		model.SettingRecaptchaSiteKey:   cfg.RecaptchaSiteKey,
		model.SettingRecaptchaSecretKey: cfg.RecaptchaSecretKey,
	}); err != nil {
		return fmt.Errorf("applying setting overrides: %w", err)
	}
	if cfg.DoSeed && cfg.AdminEmail != "" {
		if _, err := store.SeedAdmin(ctx, queries, store.AdminSeed{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Name:     cfg.AdminName,
		}); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	uploads, uploadsDir, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}

	sessionManager := session.New([]byte(cfg.SessionSecret), cfg.CookieSecure)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	publicLimiter := middleware.NewGlobalRateLimiter(10, 20)

	apiHandler := api.NewHandler(api.Config{
		DB:              db,
		Queries:         queries,
		Sessions:        sessionManager,
		Storage:         uploads,
		Captcha:         captcha.NewHTTPVerifier(cfg.RecaptchaVerifyURL),
		LoginProtection: loginProtection,
		PublicLimiter:   publicLimiter,
		CSRF:            middleware.CSRF(middleware.NewCSRFConfig([]byte(cfg.SessionSecret), cfg.TrustedOrigins, cfg.IsDevelopment())),
	})
	healthHandler := handler.NewHealthHandler(db, uploadsDir)

	// Scheduled maintenance
	retention := time.Duration(cfg.EventRetentionDays) * 24 * time.Hour
	sched := scheduler.New(service.NewEventService(queries), retention, slog.Default())
	if err := sched.AddJob("rate limiter prune", "@every 10m", func(context.Context) error {
		publicLimiter.Prune(limiterPruneSize)
		loginProtection.Prune(limiterPruneSize)
		return nil
	}); err != nil {
		return fmt.Errorf("scheduling limiter prune: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(middleware.Timeouts{Default: 30 * time.Second, Upload: 75 * time.Second}))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(middleware.AccessGate(sessionManager))

	r.Mount("/api", apiHandler.Routes())

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	if uploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))
	}
	r.Handle("/*", http.FileServer(http.Dir(cfg.PublicDir)))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       90 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second, // covers the upload deadline
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openDatabase connects to the configured database.
func openDatabase(cfg *config.Config) (*sql.DB, store.Dialect, error) {
	if cfg.DBDriver == config.DBDriverMySQL {
		slog.Info("initializing database", "driver", "mysql")
		db, err := store.NewMySQL(cfg.DBDSN)
		if err != nil {
			return nil, "", fmt.Errorf("initializing database: %w", err)
		}
		return db, store.DialectMySQL, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, "", fmt.Errorf("creating data directory: %w", err)
	}
	slog.Info("initializing database", "driver", "sqlite", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, "", fmt.Errorf("initializing database: %w", err)
	}
	return db, store.DialectSQLite, nil
}

// openStorage returns the upload storage and, for local storage, the
// directory served under /uploads/.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, string, error) {
	if cfg.UseS3() {
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("initializing s3 storage: %w", err)
		}
		slog.Info("upload storage ready", "backend", "s3", "bucket", cfg.S3Bucket)
		return s3, "", nil
	}

	local, err := storage.NewLocal(cfg.UploadsDir)
	if err != nil {
		return nil, "", fmt.Errorf("initializing upload storage: %w", err)
	}
	slog.Info("upload storage ready", "backend", "local", "dir", cfg.UploadsDir)
	return local, cfg.UploadsDir, nil
}
