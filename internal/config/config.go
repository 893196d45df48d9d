// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Supported database drivers.
const (
	DBDriverSQLite = "sqlite"
	DBDriverMySQL  = "mysql"
)

// Supported upload storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// DefaultRecaptchaVerifyURL is Google's server-side verification endpoint.
const DefaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// knownWeakSecrets contains example secrets that must never sign sessions.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your-secret-key-change-in-production",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver      string `env:"DHEFAR_DB_DRIVER" envDefault:"sqlite"`
	DBPath        string `env:"DHEFAR_DB_PATH" envDefault:"./data/dhefar.db"`
	DBDSN         string `env:"DHEFAR_DB_DSN"`
	SessionSecret string `env:"DHEFAR_SESSION_SECRET,required"`
	CookieSecure  bool   `env:"DHEFAR_COOKIE_SECURE" envDefault:"false"`
	ServerHost    string `env:"DHEFAR_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"DHEFAR_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"DHEFAR_ENV" envDefault:"development"`
	LogLevel      string `env:"DHEFAR_LOG_LEVEL" envDefault:"info"`
	PublicDir     string `env:"DHEFAR_PUBLIC_DIR" envDefault:"./public"`
	UploadsDir    string `env:"DHEFAR_UPLOADS_DIR" envDefault:"./public/uploads"`

	// Hosts (host:port) of a separately served admin client allowed to
	// send cross-origin mutations.
	TrustedOrigins []string `env:"DHEFAR_TRUSTED_ORIGINS" envSeparator:","`

	// Upload storage
	Storage           string `env:"DHEFAR_STORAGE" envDefault:"local"`
	S3Bucket          string `env:"DHEFAR_S3_BUCKET"`
	S3Region          string `env:"DHEFAR_S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID     string `env:"DHEFAR_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"DHEFAR_S3_SECRET_ACCESS_KEY"`
	S3PublicURL       string `env:"DHEFAR_S3_PUBLIC_URL"` // Base URL objects are served from

	// reCAPTCHA. Keys set here are copied into site settings at start-up.
	RecaptchaVerifyURL string `env:"DHEFAR_RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	RecaptchaSiteKey   string `env:"DHEFAR_RECAPTCHA_SITE_KEY"`
	RecaptchaSecretKey string `env:"DHEFAR_RECAPTCHA_SECRET_KEY"`

	EventRetentionDays int `env:"DHEFAR_EVENT_RETENTION_DAYS" envDefault:"30"`

	// Seeding configuration
	DoSeed        bool   `env:"DHEFAR_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"DHEFAR_ADMIN_EMAIL"`
	AdminPassword string `env:"DHEFAR_ADMIN_PASSWORD"`
	AdminName     string `env:"DHEFAR_ADMIN_NAME" envDefault:"Administrator"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseS3 returns true if uploads go to S3 instead of the local uploads directory.
func (c Config) UseS3() bool {
	return c.Storage == StorageS3
}

// MinSessionSecretLength is the minimum required length for the session secret.
// HS256 keys shorter than the hash output weaken the signature.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !cfg.CookieSecure && !cfg.IsDevelopment() {
		slog.Warn("DHEFAR_COOKIE_SECURE is false outside development; " +
			"session cookies will also be sent over plain HTTP")
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("DHEFAR_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("DHEFAR_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("DHEFAR_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch c.DBDriver {
	case DBDriverSQLite:
	case DBDriverMySQL:
		if c.DBDSN == "" {
			return errors.New("DHEFAR_DB_DSN is required when DHEFAR_DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported DHEFAR_DB_DRIVER %q (use sqlite or mysql)", c.DBDriver)
	}

	switch c.Storage {
	case StorageLocal:
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("DHEFAR_S3_BUCKET is required when DHEFAR_STORAGE=s3")
		}
	default:
		return fmt.Errorf("unsupported DHEFAR_STORAGE %q (use local or s3)", c.Storage)
	}

	if c.DoSeed && (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("DHEFAR_ADMIN_EMAIL and DHEFAR_ADMIN_PASSWORD must be set together")
	}

	if c.EventRetentionDays < 1 {
		c.EventRetentionDays = 1
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
