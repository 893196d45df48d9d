// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides password hashing and verification for stored user
// credentials.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/dhefar-go/internal/model"
)

// BcryptCost is the work factor used for new hashes.
const BcryptCost = 10

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// StoredPassword is a password value as persisted, tagged with its scheme.
type StoredPassword struct {
	Scheme model.PasswordScheme
	Value  string
}

// Verify compares password against the stored value.
// needsUpgrade is true when the password matched a legacy value and should
// be re-stored as bcrypt.
func (p StoredPassword) Verify(password string) (ok, needsUpgrade bool, err error) {
	switch p.Scheme {
	case model.PasswordSchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(p.Value), []byte(password))
		if err == nil {
			return true, false, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("comparing password hash: %w", err)
	case model.PasswordSchemeLegacy:
		if p.Value == "" {
			return false, false, nil
		}
		match := subtle.ConstantTimeCompare([]byte(p.Value), []byte(password)) == 1
		return match, match, nil
	default:
		return false, false, fmt.Errorf("unknown password scheme %q", p.Scheme)
	}
}
