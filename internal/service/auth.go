// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/auth"
	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/store"
)

// AuthService handles login and registration.
type AuthService struct {
	queries *store.Queries
	captcha captchaGate
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(q *store.Queries, settings *SettingsService, verifier captcha.Verifier) *AuthService {
	return &AuthService{
		queries: q,
		captcha: captchaGate{settings: settings, verifier: verifier},
		now:     time.Now,
	}
}

// Login checks credentials and returns the user. A matching legacy
// password is rehashed with bcrypt before returning.
func (s *AuthService) Login(ctx context.Context, email, password string) (store.User, error) {
	email = normalizeEmail(email)
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, fmt.Errorf("loading user: %w", err)
	}

	stored := auth.StoredPassword{Scheme: model.PasswordScheme(user.PasswordScheme), Value: user.PasswordHash}
	ok, needsUpgrade, err := stored.Verify(password)
	if err != nil {
		return store.User{}, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return store.User{}, ErrInvalidCredentials
	}

	if needsUpgrade {
		if err := s.upgradePassword(ctx, user.ID, password); err != nil {
			// The login itself is valid; the next login retries the upgrade.
			slog.ErrorContext(ctx, "failed to upgrade legacy password",
				"category", model.EventCategoryAuth, "user_id", user.ID, "error", err)
		} else {
			user.PasswordScheme = string(model.PasswordSchemeBcrypt)
			slog.InfoContext(ctx, "legacy password upgraded to bcrypt", "user_id", user.ID)
		}
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) upgradePassword(ctx context.Context, userID int64, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		ID:             userID,
		PasswordHash:   hash,
		PasswordScheme: string(model.PasswordSchemeBcrypt),
		UpdatedAt:      s.now().UTC(),
	})
}

// RegisterInput is a registration request. FromAdmin must come from a
// verified admin session, never from the request body.
type RegisterInput struct {
	Email          string
	Password       string
	Name           string
	Role           string
	RecaptchaToken string
	RemoteIP       string
	FromAdmin      bool
}

// Register creates a user. Public callers need open registration and,
// when configured, a valid captcha. The first user is always an admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	if !in.FromAdmin {
		open, err := s.captcha.settings.RegistrationOpen(ctx)
		if err != nil {
			return store.User{}, err
		}
		if !open {
			return store.User{}, ErrRegistrationClosed
		}
		if err := s.captcha.check(ctx, in.RecaptchaToken, in.RemoteIP); err != nil {
			return store.User{}, err
		}
	}

	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)

	verr := &ValidationError{}
	validateEmail(verr, in.Email)
	if in.Name == "" {
		verr.Add("name", "name is required")
	}
	validatePassword(verr, in.Password)
	if in.Role != "" && !model.IsValidRole(in.Role) {
		verr.Add("role", "role must be one of admin, editor, member, guest")
	}
	if err := verr.Err(); err != nil {
		return store.User{}, err
	}

	if _, err := s.queries.GetUserByEmail(ctx, in.Email); err == nil {
		return store.User{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, fmt.Errorf("checking email: %w", err)
	}

	role := s.resolveRole(ctx, in)

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, err
	}

	now := s.now().UTC()
	// RegisterUser promotes the row to admin when the table is empty.
	user, err := s.queries.RegisterUser(ctx, store.CreateUserParams{
		Email:          in.Email,
		PasswordHash:   hash,
		PasswordScheme: string(model.PasswordSchemeBcrypt),
		Name:           in.Name,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return store.User{}, ErrEmailTaken
	}
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.InfoContext(ctx, "user registered",
		"category", model.EventCategoryUser, "user_id", user.ID, "role", user.Role, "by_admin", in.FromAdmin)
	user.PasswordHash = ""
	return user, nil
}

// resolveRole picks the role of a registration that is not the first one.
func (s *AuthService) resolveRole(ctx context.Context, in RegisterInput) string {
	switch {
	case in.Role == "":
		return model.RoleMember
	case in.FromAdmin || model.IsSelfServiceRole(in.Role):
		return in.Role
	default:
		slog.WarnContext(ctx, "public registration requested a privileged role",
			"category", model.EventCategoryAuth, "requested_role", in.Role, "remote_ip", in.RemoteIP)
		return model.RoleMember
	}
}

// normalizeEmail trims surrounding whitespace. Case is kept because
// existing accounts were stored as typed.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validateEmail(verr *ValidationError, email string) {
	if email == "" {
		verr.Add("email", "email is required")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.Add("email", "email is invalid")
	}
}

func validatePassword(verr *ValidationError, password string) {
	if len([]rune(password)) < model.MinPasswordLength {
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", model.MinPasswordLength))
	}
}
