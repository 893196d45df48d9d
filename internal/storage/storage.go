// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage persists uploaded files on the local disk or in S3.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrForeignURL is returned by Delete for URLs the backend did not produce.
var ErrForeignURL = errors.New("url does not belong to this storage")

// Storage stores uploaded files and returns their public URLs.
type Storage interface {
	// Save writes r as folder/name and returns the public URL.
	Save(ctx context.Context, folder, name string, r io.Reader, contentType string) (string, error)
	// Delete removes the file behind a URL previously returned by Save.
	Delete(ctx context.Context, url string) error
}
