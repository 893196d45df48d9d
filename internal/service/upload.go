// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder for DecodeConfig
	_ "image/jpeg" // JPEG decoder for DecodeConfig
	_ "image/png"  // PNG decoder for DecodeConfig
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // WebP decoder for DecodeConfig

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/storage"
)

// UploadResult describes a stored file.
type UploadResult struct {
	URL      string
	FileName string
	Size     int64
	Width    int
	Height   int
}

// UploadService validates and stores uploaded files.
type UploadService struct {
	storage storage.Storage
	now     func() time.Time
}

// NewUploadService creates a new UploadService.
func NewUploadService(st storage.Storage) *UploadService {
	return &UploadService{storage: st, now: time.Now}
}

// Save stores file in folder. An empty folder means news. Only images and
// PDFs up to model.MaxUploadSize are accepted. Images must decode as the
// format their extension names.
func (s *UploadService) Save(ctx context.Context, folder string, file multipart.File, header *multipart.FileHeader) (UploadResult, error) {
	if folder == "" {
		folder = model.DefaultUploadFolder
	}
	if !model.IsValidUploadFolder(folder) {
		return UploadResult{}, Invalid("folder", fmt.Sprintf("folder %q is not allowed", folder))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := model.UploadContentType(ext)
	if !ok {
		return UploadResult{}, ErrUnsupportedFileType
	}
	if header.Size > model.MaxUploadSize {
		return UploadResult{}, ErrFileTooLarge
	}

	var width, height int
	if model.IsImageType(contentType) {
		cfg, format, err := image.DecodeConfig(file)
		if err != nil {
			return UploadResult{}, fmt.Errorf("%w: not a valid image", ErrUnsupportedFileType)
		}
		if "image/"+format != contentType {
			return UploadResult{}, fmt.Errorf("%w: %s content in a %s file", ErrUnsupportedFileType, format, ext)
		}
		width, height = cfg.Width, cfg.Height
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return UploadResult{}, fmt.Errorf("rewinding upload: %w", err)
		}
	}

	name := s.fileName(ext)
	url, err := s.storage.Save(ctx, folder, name, file, contentType)
	if err != nil {
		return UploadResult{}, fmt.Errorf("storing upload: %w", err)
	}

	slog.InfoContext(ctx, "file uploaded",
		"category", model.EventCategoryUpload, "url", url, "size", header.Size, "content_type", contentType)

	return UploadResult{
		URL:      url,
		FileName: name,
		Size:     header.Size,
		Width:    width,
		Height:   height,
	}, nil
}

// fileName returns <unix-ms>-<6 random chars><ext>.
func (s *UploadService) fileName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strconv.FormatInt(s.now().UnixMilli(), 10) + "-" + suffix + ext
}
