// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/store"
)

// SettingsService reads and writes site settings. Values are always read
// from the database so changes apply to the next request.
type SettingsService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(q *store.Queries) *SettingsService {
	return &SettingsService{queries: q, now: time.Now}
}

// Get returns the stored value of key, or its default when unset.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	def, ok := model.LookupSetting(key)
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	row, err := s.queries.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return def.Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return row.Value, nil
}

// RegistrationOpen reports whether public registration is allowed.
func (s *SettingsService) RegistrationOpen(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, model.SettingRegistrationOpen)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// RecaptchaSecret returns the configured reCAPTCHA secret, empty when captcha is off.
func (s *SettingsService) RecaptchaSecret(ctx context.Context) (string, error) {
	return s.Get(ctx, model.SettingRecaptchaSecretKey)
}

// Public returns every setting that may leave the server, with defaults
// filled in and the derived recaptcha_enabled flag.
func (s *SettingsService) Public(ctx context.Context) (map[string]string, error) {
	rows, err := s.queries.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	stored := make(map[string]string, len(rows))
	for _, r := range rows {
		stored[r.Key] = r.Value
	}

	out := make(map[string]string, len(model.SettingDefs)+1)
	for _, def := range model.SettingDefs {
		if def.Kind == model.SettingSecret {
			continue
		}
		v, ok := stored[def.Key]
		if !ok {
			v = def.Default
		}
		out[def.Key] = v
	}
	out[model.SettingRecaptchaEnabled] = strconv.FormatBool(stored[model.SettingRecaptchaSecretKey] != "")
	return out, nil
}

// Update validates and stores values. Unknown keys, secret keys and the
// derived recaptcha_enabled flag are rejected before anything is written.
func (s *SettingsService) Update(ctx context.Context, values map[string]string) error {
	verr := &ValidationError{}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		def, ok := model.LookupSetting(key)
		switch {
		case !ok:
			verr.Add(key, fmt.Sprintf("unknown setting %q", key))
		case def.Kind == model.SettingSecret:
			verr.Add(key, fmt.Sprintf("%s cannot be changed through the API", key))
		default:
			v, err := def.Normalize(value)
			if err != nil {
				verr.Add(key, err.Error())
				continue
			}
			normalized[key] = v
		}
	}
	if err := verr.Err(); err != nil {
		return err
	}

	now := s.now().UTC()
	for key, value := range normalized {
		if err := s.queries.UpsertSetting(ctx, store.UpsertSettingParams{
			Key:       key,
			Value:     value,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("writing setting %s: %w", key, err)
		}
	}
	return nil
}
