// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/dhefar-go/internal/auth"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/testutil"
)

func newAuthService(env *testEnv) *AuthService {
	return NewAuthService(env.queries, env.settings, env.verifier)
}

func TestRegister_ClosedForPublic(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "a@x.com", Password: "secret1", Name: "A", Role: model.RoleAdmin,
	})
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	n, _ := env.queries.CountUsers(context.Background())
	assert.Zero(t, n)
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	env := newTestEnv(t)
	testutil.SetSetting(t, env.db, model.SettingRegistrationOpen, "true")
	svc := newAuthService(env)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret1", Name: "A", Role: model.RoleGuest})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, first.Role)
	assert.Empty(t, first.PasswordHash)

	second, err := svc.Register(ctx, RegisterInput{Email: "b@x.com", Password: "secret1", Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, second.Role)

	guest, err := svc.Register(ctx, RegisterInput{Email: "c@x.com", Password: "secret1", Name: "C", Role: model.RoleGuest})
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuest, guest.Role)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret1", Name: "Again"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_ConcurrentFirstUsersGetOneAdmin(t *testing.T) {
	env := newTestEnv(t)
	testutil.SetSetting(t, env.db, model.SettingRegistrationOpen, "true")
	svc := newAuthService(env)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, RegisterInput{
				Email: fmt.Sprintf("founder%d@x.com", i), Password: "secret1", Name: "F",
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "registration %d", i)
	}
	total, err := env.queries.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), total)
	admins, err := env.queries.CountUsersByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)
}

func TestRegister_PublicCannotRequestPrivilegedRole(t *testing.T) {
	env := newTestEnv(t)
	testutil.SetSetting(t, env.db, model.SettingRegistrationOpen, "true")
	testutil.CreateUser(t, env.db, "admin@x.com", "secret1", model.RoleAdmin)
	svc := newAuthService(env)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email: "sneaky@x.com", Password: "secret1", Name: "S", Role: model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, u.Role)
}

func TestRegister_FromAdmin(t *testing.T) {
	env := newTestEnv(t)
	testutil.SetSetting(t, env.db, model.SettingRecaptchaSecretKey, "shh")
	testutil.CreateUser(t, env.db, "admin@x.com", "secret1", model.RoleAdmin)
	svc := newAuthService(env)

	// Registration is closed and captcha is configured, but admins bypass both.
	u, err := svc.Register(context.Background(), RegisterInput{
		Email: "editor@x.com", Password: "secret1", Name: "E", Role: model.RoleEditor, FromAdmin: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, u.Role)
	assert.Zero(t, env.verifier.calls)
}

func TestRegister_Captcha(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		token    string
		verifier *fakeVerifier
		wantErr  error
		wantCall bool
	}{
		{"no secret skips captcha", "", "", &fakeVerifier{success: false}, nil, false},
		{"secret requires token", "shh", "", &fakeVerifier{success: true}, ErrCaptchaRequired, false},
		{"rejected token", "shh", "tok", &fakeVerifier{success: false}, ErrCaptchaFailed, true},
		{"accepted token", "shh", "tok", &fakeVerifier{success: true}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.verifier = tt.verifier
			testutil.SetSetting(t, env.db, model.SettingRegistrationOpen, "true")
			if tt.secret != "" {
				testutil.SetSetting(t, env.db, model.SettingRecaptchaSecretKey, tt.secret)
			}
			svc := newAuthService(env)

			_, err := svc.Register(context.Background(), RegisterInput{
				Email: "a@x.com", Password: "secret1", Name: "A", RecaptchaToken: tt.token,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCall, tt.verifier.calls > 0)
			if tt.wantCall {
				assert.Equal(t, tt.secret, tt.verifier.secret)
			}
		})
	}
}

func TestRegister_CaptchaTransportError(t *testing.T) {
	env := newTestEnv(t)
	env.verifier = &fakeVerifier{err: errNetwork}
	testutil.SetSetting(t, env.db, model.SettingRegistrationOpen, "true")
	testutil.SetSetting(t, env.db, model.SettingRecaptchaSecretKey, "shh")

	_, err := newAuthService(env).Register(context.Background(), RegisterInput{
		Email: "a@x.com", Password: "secret1", Name: "A", RecaptchaToken: "tok",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNetwork))
	assert.False(t, errors.Is(err, ErrCaptchaFailed))
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	testutil.SetSetting(t, env.db, model.SettingRegistrationOpen, "true")
	svc := newAuthService(env)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing email", RegisterInput{Password: "secret1", Name: "A"}, "email"},
		{"bad email", RegisterInput{Email: "nope", Password: "secret1", Name: "A"}, "email"},
		{"missing name", RegisterInput{Email: "a@x.com", Password: "secret1"}, "name"},
		{"short password", RegisterInput{Email: "a@x.com", Password: "12345", Name: "A"}, "password"},
		{"unknown role", RegisterInput{Email: "a@x.com", Password: "secret1", Name: "A", Role: "owner"}, "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "a@x.com", "secret1", model.RoleAdmin)
	svc := newAuthService(env)
	ctx := context.Background()

	u, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Empty(t, u.PasswordHash)

	_, err = svc.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_LegacyPasswordIsUpgraded(t *testing.T) {
	env := newTestEnv(t)
	legacy := testutil.CreateLegacyUser(t, env.db, "old@x.com", "plain-pass", model.RoleMember)
	svc := newAuthService(env)
	ctx := context.Background()

	_, err := svc.Login(ctx, "old@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.Login(ctx, "old@x.com", "plain-pass")
	require.NoError(t, err)
	assert.Equal(t, string(model.PasswordSchemeBcrypt), u.PasswordScheme)

	stored, err := env.queries.GetUserByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.PasswordSchemeBcrypt), stored.PasswordScheme)
	assert.NotEqual(t, "plain-pass", stored.PasswordHash)
	ok, _, err := auth.StoredPassword{Scheme: model.PasswordSchemeBcrypt, Value: stored.PasswordHash}.Verify("plain-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	// The upgraded hash keeps working.
	_, err = svc.Login(ctx, "old@x.com", "plain-pass")
	assert.NoError(t, err)
}
