// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/auth"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/store"
)

// UserService implements admin user management.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, q *store.Queries) *UserService {
	return &UserService{db: db, queries: q, now: time.Now}
}

// UserPatch lists the editable user fields. Nil fields are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Role     *string
	Avatar   *string
	Password *string
}

// Update applies patch to the user. Demoting the last admin fails with ErrLastAdmin.
func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (store.User, error) {
	// Hash outside the transaction so the write lock is not held during bcrypt.
	var newHash string
	if patch.Password != nil && len([]rune(*patch.Password)) >= model.MinPasswordLength {
		h, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return store.User{}, err
		}
		newHash = h
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.User{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := s.queries.WithTx(tx)

	user, err := q.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("loading user: %w", err)
	}

	verr := &ValidationError{}
	params := store.UpdateUserParams{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Avatar: user.Avatar,
	}
	if patch.Name != nil {
		params.Name = strings.TrimSpace(*patch.Name)
		if params.Name == "" {
			verr.Add("name", "name is required")
		}
	}
	if patch.Email != nil {
		params.Email = normalizeEmail(*patch.Email)
		validateEmail(verr, params.Email)
	}
	if patch.Role != nil {
		params.Role = strings.TrimSpace(*patch.Role)
		if !model.IsValidRole(params.Role) {
			verr.Add("role", "role must be one of admin, editor, member, guest")
		}
	}
	if patch.Avatar != nil {
		params.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	if patch.Password != nil {
		validatePassword(verr, *patch.Password)
	}
	if err := verr.Err(); err != nil {
		return store.User{}, err
	}

	if user.Role == model.RoleAdmin && params.Role != model.RoleAdmin {
		if err := ensureOtherAdmin(ctx, q); err != nil {
			return store.User{}, err
		}
	}

	params.UpdatedAt = s.now().UTC()
	updated, err := q.UpdateUser(ctx, params)
	if errors.Is(err, store.ErrDuplicate) {
		return store.User{}, ErrEmailTaken
	}
	if err != nil {
		return store.User{}, fmt.Errorf("updating user: %w", err)
	}

	if newHash != "" {
		if err := q.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
			ID:             id,
			PasswordHash:   newHash,
			PasswordScheme: string(model.PasswordSchemeBcrypt),
			UpdatedAt:      params.UpdatedAt,
		}); err != nil {
			return store.User{}, fmt.Errorf("updating password: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return store.User{}, fmt.Errorf("committing user update: %w", err)
	}

	slog.InfoContext(ctx, "user updated", "category", model.EventCategoryUser, "user_id", id, "role", updated.Role)
	updated.PasswordHash = ""
	return updated, nil
}

// Delete removes a user. Admins cannot delete themselves and the last
// admin cannot be removed.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfDelete
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := s.queries.WithTx(tx)

	user, err := q.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user.Role == model.RoleAdmin {
		if err := ensureOtherAdmin(ctx, q); err != nil {
			return err
		}
	}

	if err := q.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user delete: %w", err)
	}

	slog.InfoContext(ctx, "user deleted", "category", model.EventCategoryUser, "user_id", id, "actor_id", actorID)
	return nil
}

func ensureOtherAdmin(ctx context.Context, q *store.Queries) error {
	admins, err := q.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if admins <= 1 {
		return ErrLastAdmin
	}
	return nil
}
