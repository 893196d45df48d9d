// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"with special characters", "Hello, World!", "hello-world"},
		{"with numbers", "Page 123", "page-123"},
		{"with accents", "Café résumé", "cafe-resume"},
		{"with multiple spaces", "Hello   World", "hello-world"},
		{"with hyphens", "Hello - World", "hello-world"},
		{"with leading/trailing spaces", "  Hello World  ", "hello-world"},
		{"all special characters", "!@#$%^&*()", ""},
		{"german umlauts", "Über München", "uber-munchen"},
		{"arabic title", "حفل الزواج الجماعي", "حفل-الزواج-الجماعي"},
		{"arabic hamza kept", "أخبار الصندوق", "أخبار-الصندوق"},
		{"arabic with digits", "تقرير 2024", "تقرير-2024"},
		{"empty string", "", ""},
		{"mixed case", "HeLLo WoRLd", "hello-world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewsSlug(t *testing.T) {
	now := time.UnixMilli(1735732800123)

	got := NewsSlug("فعالية جديدة", now)
	if got != "فعالية-جديدة-1735732800123" {
		t.Errorf("NewsSlug = %q", got)
	}

	got = NewsSlug("!!!", now)
	if got != "news-1735732800123" {
		t.Errorf("NewsSlug for empty base = %q", got)
	}

	if !strings.HasSuffix(NewsSlug("x", now.Add(time.Millisecond)), "124") {
		t.Error("NewsSlug should change with time")
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug  string
		valid bool
	}{
		{"hello-world", true},
		{"hello", true},
		{"page-123", true},
		{"حفل-الزواج", true},
		{"", false},
		{"-hello", false},
		{"hello-", false},
		{"hello--world", false},
		{"Hello", false},
		{"hello world", false},
		{"hello_world", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.valid {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.valid)
		}
	}
}
