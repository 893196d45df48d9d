// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// IsValidEventLevel reports whether level is one of the stored levels.
func IsValidEventLevel(level string) bool {
	switch level {
	case EventLevelInfo, EventLevelWarning, EventLevelError:
		return true
	}
	return false
}

// Event categories
const (
	EventCategoryAuth     = "auth"
	EventCategoryContent  = "content"
	EventCategoryUser     = "user"
	EventCategorySettings = "settings"
	EventCategoryUpload   = "upload"
	EventCategoryContact  = "contact"
	EventCategorySystem   = "system"
)
