// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside its base directory.
var ErrPathEscape = errors.New("path escapes base directory")

// ValidatePathWithinBase returns ErrPathEscape unless targetPath is basePath
// or lies below it.
func ValidatePathWithinBase(basePath, targetPath string) error {
	base, err := filepath.Abs(basePath)
	if err != nil {
		return fmt.Errorf("resolving base %q: %w", basePath, err)
	}
	target, err := filepath.Abs(targetPath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", targetPath, err)
	}

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrPathEscape
	}
	return nil
}

// SafeJoinPath joins components onto basePath and rejects results that
// leave it, such as an upload folder of "../..".
func SafeJoinPath(basePath string, components ...string) (string, error) {
	full := filepath.Join(append([]string{basePath}, components...)...)
	if err := ValidatePathWithinBase(basePath, full); err != nil {
		return "", err
	}
	return full, nil
}
