// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// News post statuses
const (
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
)

// PostStatusAll is the list filter that matches every status. Admin only.
const PostStatusAll = "all"

// DefaultNewsCategory is assigned when a post is created without a category.
const DefaultNewsCategory = "فعاليات"

// News listing limits
const (
	DefaultNewsLimit = 50
	MaxNewsLimit     = 200
)

// IsValidPostStatus reports whether status can be stored on a post.
func IsValidPostStatus(status string) bool {
	return status == PostStatusPublish || status == PostStatusDraft
}
