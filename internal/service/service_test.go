// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/store"
	"github.com/olegiv/dhefar-go/internal/testutil"
)

// fakeVerifier records calls and answers with a fixed result.
type fakeVerifier struct {
	success bool
	err     error
	calls   int
	secret  string
	token   string
}

func (f *fakeVerifier) Verify(_ context.Context, secret, token, _ string) (*captcha.Result, error) {
	f.calls++
	f.secret = secret
	f.token = token
	if f.err != nil {
		return nil, f.err
	}
	return &captcha.Result{Success: f.success}, nil
}

var errNetwork = errors.New("network down")

type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	settings *SettingsService
	verifier *fakeVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.TestDB(t)
	q := store.New(db)
	return &testEnv{
		db:       db,
		queries:  q,
		settings: NewSettingsService(q),
		verifier: &fakeVerifier{success: true},
	}
}
