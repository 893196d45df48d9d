// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "strings"

// Upload folders
const (
	UploadFolderNews    = "news"
	UploadFolderGallery = "gallery"
	UploadFolderBoard   = "board"
	UploadFolderReports = "reports"
	UploadFolderBanks   = "banks"
)

// DefaultUploadFolder is used when the form does not name a folder.
const DefaultUploadFolder = UploadFolderNews

// MaxUploadSize is the largest accepted file (10 MB).
const MaxUploadSize = 10 << 20

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

var uploadFolders = map[string]bool{
	UploadFolderNews:    true,
	UploadFolderGallery: true,
	UploadFolderBoard:   true,
	UploadFolderReports: true,
	UploadFolderBanks:   true,
}

// uploadTypes maps allowed extensions to the content type they are served with.
var uploadTypes = map[string]string{
	".jpg":  MimeTypeJPEG,
	".jpeg": MimeTypeJPEG,
	".png":  MimeTypePNG,
	".gif":  MimeTypeGIF,
	".webp": MimeTypeWebP,
	".pdf":  MimeTypePDF,
}

// IsValidUploadFolder reports whether folder is an allowed upload destination.
func IsValidUploadFolder(folder string) bool {
	return uploadFolders[folder]
}

// UploadContentType returns the content type for an allowed extension.
// The extension is matched case-insensitively.
func UploadContentType(ext string) (string, bool) {
	ct, ok := uploadTypes[strings.ToLower(ext)]
	return ct, ok
}

// IsImageType returns true if the content type is a raster image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
