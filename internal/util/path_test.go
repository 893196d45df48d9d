// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinBase(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{"same dir", base, false},
		{"child", filepath.Join(base, "news", "a.jpg"), false},
		{"parent", filepath.Join(base, ".."), true},
		{"sibling prefix", base + "-malicious", true},
		{"dotdot file name", filepath.Join(base, "..data"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinBase(base, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "gallery", "photo.png")
	if err != nil {
		t.Fatalf("SafeJoinPath: %v", err)
	}
	if got != filepath.Join(base, "gallery", "photo.png") {
		t.Errorf("got %q", got)
	}

	if _, err := SafeJoinPath(base, "..", "..", "etc", "passwd"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("err = %v, want ErrPathEscape", err)
	}
}
