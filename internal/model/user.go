// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain constants and enumerations shared by the
// store, services and HTTP handlers.
package model

// User roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleMember = "member"
	RoleGuest  = "guest"
)

// Roles lists every assignable role, most privileged first.
var Roles = []string{RoleAdmin, RoleEditor, RoleMember, RoleGuest}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSelfServiceRole reports whether a visitor may request role when
// registering through the public form.
func IsSelfServiceRole(role string) bool {
	return role == RoleMember || role == RoleGuest
}

// PasswordScheme tags how a stored password value must be compared.
type PasswordScheme string

// Password storage schemes.
const (
	// PasswordSchemeBcrypt stores a bcrypt hash.
	PasswordSchemeBcrypt PasswordScheme = "bcrypt"
	// PasswordSchemeLegacy stores the password as entered. Rows with this
	// scheme are upgraded to bcrypt on the first successful login.
	PasswordSchemeLegacy PasswordScheme = "legacy"
)

// Valid reports whether s is a known scheme.
func (s PasswordScheme) Valid() bool {
	return s == PasswordSchemeBcrypt || s == PasswordSchemeLegacy
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6
