// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegiv/dhefar-go/internal/util"
)

// URLPrefix is the public path under which local uploads are served.
const URLPrefix = "/uploads/"

// Local stores files below a directory on disk.
type Local struct {
	dir string
}

// NewLocal returns a Local storage rooted at dir. The directory is created
// if missing.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the root directory.
func (l *Local) Dir() string {
	return l.dir
}

// Save writes the file to <dir>/<folder>/<name>.
func (l *Local) Save(_ context.Context, folder, name string, r io.Reader, _ string) (string, error) {
	target, err := util.SafeJoinPath(l.dir, folder, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("closing file: %w", err)
	}

	return URLPrefix + folder + "/" + name, nil
}

// Delete removes a file by its /uploads/ URL. A missing file is not an error.
func (l *Local) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || rel == "" {
		return ErrForeignURL
	}
	target, err := util.SafeJoinPath(l.dir, filepath.FromSlash(rel))
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}
