// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/dhefar-go/internal/auth"
	"github.com/olegiv/dhefar-go/internal/model"
)

// AdminSeed holds the credentials of the initial administrator.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// SeedSettings stores the default value of every known setting that has
// no stored value yet. Existing values are never overwritten.
func SeedSettings(ctx context.Context, q *Queries) error {
	now := time.Now().UTC()
	for _, def := range model.SettingDefs {
		if err := q.InsertSettingIfMissing(ctx, UpsertSettingParams{
			Key:       def.Key,
			Value:     def.Default,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("seeding setting %s: %w", def.Key, err)
		}
	}
	return nil
}

// ApplySettingOverrides writes non-empty values over stored settings.
// Used at startup to bootstrap settings such as reCAPTCHA keys from the environment.
func ApplySettingOverrides(ctx context.Context, q *Queries, values map[string]string) error {
	now := time.Now().UTC()
	for key, value := range values {
		if value == "" {
			continue
		}
		def, ok := model.LookupSetting(key)
		if !ok {
			return fmt.Errorf("unknown setting %q", key)
		}
		normalized, err := def.Normalize(value)
		if err != nil {
			return err
		}
		if err := q.UpsertSetting(ctx, UpsertSettingParams{Key: key, Value: normalized, UpdatedAt: now}); err != nil {
			return fmt.Errorf("writing setting %s: %w", key, err)
		}
	}
	return nil
}

// SeedAdmin creates the initial administrator when no user exists.
// It reports whether a user was created.
func SeedAdmin(ctx context.Context, q *Queries, seed AdminSeed) (bool, error) {
	count, err := q.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("users already exist, skipping admin seed")
		return false, nil
	}

	passwordHash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:          seed.Email,
		PasswordHash:   passwordHash,
		PasswordScheme: string(model.PasswordSchemeBcrypt),
		Name:           seed.Name,
		Role:           model.RoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return false, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return true, nil
}
