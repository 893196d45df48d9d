// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared across packages: slugs,
// client address resolution, safe paths and nullable values.
package util

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a string to a URL-friendly slug. Letters and digits of
// any script are kept, so Arabic titles stay readable. Latin accents are
// dropped, whitespace runs become a single hyphen and
// everything else is removed.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isLatinMark)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = strings.ToLower(result)

	var b strings.Builder
	lastHyphen := true
	for _, r := range result {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

// isLatinMark matches the Combining Diacritical Marks block. Arabic
// hamza and harakat live elsewhere and survive normalization.
func isLatinMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// NewsSlug returns the default slug for a post: the slugified title
// followed by the creation time in Unix milliseconds.
func NewsSlug(title string, now time.Time) string {
	base := Slugify(title)
	if base == "" {
		base = "news"
	}
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsValidSlug checks if a string is a valid slug: letters, digits and
// single inner hyphens.
func IsValidSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	if strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if r == '-' {
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
