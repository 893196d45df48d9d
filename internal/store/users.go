// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
)

// User is a row of the users table.
type User struct {
	ID             int64
	Email          string
	PasswordHash   string
	PasswordScheme string
	Name           string
	Role           string
	Avatar         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const userColumns = `id, email, password_hash, password_scheme, name, role, avatar, created_at, updated_at`

func scanUser(row scanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.PasswordScheme, &u.Name, &u.Role, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUserParams holds the values for a new user.
type CreateUserParams struct {
	Email          string
	PasswordHash   string
	PasswordScheme string
	Name           string
	Role           string
	Avatar         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateUser inserts a user and returns the stored row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, password_scheme, name, role, avatar, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Email, arg.PasswordHash, arg.PasswordScheme, arg.Name, arg.Role, arg.Avatar, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return User{}, wrapUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// RegisterUser inserts a user and returns the stored row. The row gets the
// admin role when the users table is empty and arg.Role otherwise. The
// check runs inside the insert, so concurrent first registrations cannot
// both see an empty table.
func (q *Queries) RegisterUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, password_scheme, name, role, avatar, created_at, updated_at)
		SELECT ?, ?, ?, ?, CASE WHEN existing.n = 0 THEN ? ELSE ? END, ?, ?, ?
		FROM (SELECT COUNT(*) AS n FROM users) AS existing`,
		arg.Email, arg.PasswordHash, arg.PasswordScheme, arg.Name, model.RoleAdmin, arg.Role, arg.Avatar, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return User{}, wrapUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// ListUsers returns all users, newest first.
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountUsersByRole returns the number of users with role.
func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	return n, err
}

// UpdateUserParams holds the editable profile fields of a user.
type UpdateUserParams struct {
	ID        int64
	Email     string
	Name      string
	Role      string
	Avatar    string
	UpdatedAt time.Time
}

// UpdateUser updates a user's profile and returns the stored row.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET email = ?, name = ?, role = ?, avatar = ?, updated_at = ? WHERE id = ?`,
		arg.Email, arg.Name, arg.Role, arg.Avatar, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return User{}, wrapUnique(err)
	}
	return q.GetUserByID(ctx, arg.ID)
}

// UpdateUserPasswordParams holds a new stored password.
type UpdateUserPasswordParams struct {
	ID             int64
	PasswordHash   string
	PasswordScheme string
	UpdatedAt      time.Time
}

// UpdateUserPassword replaces a user's stored password.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password_scheme = ?, updated_at = ? WHERE id = ?`,
		arg.PasswordHash, arg.PasswordScheme, arg.UpdatedAt, arg.ID,
	)
	return err
}

// DeleteUser removes a user.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}
