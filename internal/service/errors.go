// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors returned by services. Callers match them with errors.Is.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrRegistrationClosed  = errors.New("registration is closed")
	ErrCaptchaRequired     = errors.New("captcha is required")
	ErrCaptchaFailed       = errors.New("captcha verification failed")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file is too large")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrLastAdmin           = errors.New("cannot remove the last admin")
	ErrSelfDelete          = errors.New("cannot delete your own account")
)

// ValidationError collects per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// Add records a message for field, keeping the first one.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e when any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}
