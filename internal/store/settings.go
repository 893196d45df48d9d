// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Setting is a key/value site setting.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// GetSetting returns a single setting.
func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	var s Setting
	err := q.db.QueryRowContext(ctx,
		`SELECT setting_key, setting_value, updated_at FROM site_settings WHERE setting_key = ?`, key,
	).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	return s, err
}

// ListSettings returns every stored setting ordered by key.
func (q *Queries) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT setting_key, setting_value, updated_at FROM site_settings ORDER BY setting_key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// UpsertSettingParams holds a setting write.
type UpsertSettingParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// UpsertSetting inserts or replaces a setting value.
func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	query := `INSERT INTO site_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at`
	if q.dialect == DialectMySQL {
		query = `INSERT INTO site_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = VALUES(updated_at)`
	}
	_, err := q.db.ExecContext(ctx, query, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

// InsertSettingIfMissing stores a default without overwriting an existing value.
func (q *Queries) InsertSettingIfMissing(ctx context.Context, arg UpsertSettingParams) error {
	query := `INSERT OR IGNORE INTO site_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)`
	if q.dialect == DialectMySQL {
		query = `INSERT IGNORE INTO site_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)`
	}
	_, err := q.db.ExecContext(ctx, query, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}
