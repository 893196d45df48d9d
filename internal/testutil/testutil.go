// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/dhefar-go/internal/auth"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary migrated database on the mattn/go-sqlite3
// driver. The database is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "dhefar-test.db")
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := store.SeedSettings(context.Background(), store.New(db)); err != nil {
		t.Fatalf("SeedSettings: %v", err)
	}
	return db
}

// SetSetting stores a setting value directly.
func SetSetting(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	err := store.New(db).UpsertSetting(context.Background(), store.UpsertSettingParams{
		Key: key, Value: value, UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertSetting(%s): %v", key, err)
	}
}

// CreateUser inserts a user with a bcrypt password.
func CreateUser(t *testing.T, db *sql.DB, email, password, role string) store.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return insertUser(t, db, email, hash, model.PasswordSchemeBcrypt, role)
}

// CreateLegacyUser inserts a user whose password is stored unhashed.
func CreateLegacyUser(t *testing.T, db *sql.DB, email, password, role string) store.User {
	t.Helper()
	return insertUser(t, db, email, password, model.PasswordSchemeLegacy, role)
}

func insertUser(t *testing.T, db *sql.DB, email, stored string, scheme model.PasswordScheme, role string) store.User {
	t.Helper()
	now := time.Now().UTC()
	u, err := store.New(db).CreateUser(context.Background(), store.CreateUserParams{
		Email:          email,
		PasswordHash:   stored,
		PasswordScheme: string(scheme),
		Name:           "Test " + role,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}
