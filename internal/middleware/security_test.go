// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveWithSecurityHeaders(cfg SecurityHeadersConfig, path string) *httptest.ResponseRecorder {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestSecurityHeadersHSTS(t *testing.T) {
	tests := []struct {
		name  string
		isDev bool
		want  string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithSecurityHeaders(DefaultSecurityHeadersConfig(tt.isDev), "/")
			if got := rec.Header().Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecurityHeadersPerPath(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)

	tests := []struct {
		path        string
		wantCSP     string
		wantNoStore bool
	}{
		{"/", cfg.PageCSP, false},
		{"/news/42", cfg.PageCSP, false},
		{"/api/news", apiCSP, true},
		{"/api/auth/session", apiCSP, true},
		{"/uploads/gallery/1700000000000-abc123.png", uploadCSP, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serveWithSecurityHeaders(cfg, tt.path)
			if got := rec.Header().Get("Content-Security-Policy"); got != tt.wantCSP {
				t.Errorf("Content-Security-Policy = %q, want %q", got, tt.wantCSP)
			}
			noStore := rec.Header().Get("Cache-Control") == "no-store"
			if noStore != tt.wantNoStore {
				t.Errorf("no-store = %v, want %v", noStore, tt.wantNoStore)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
			}
		})
	}
}

func TestSecurityHeadersAllPresent(t *testing.T) {
	rec := serveWithSecurityHeaders(DefaultSecurityHeadersConfig(false), "/")

	for _, header := range []string{
		"Content-Security-Policy",
		"Strict-Transport-Security",
		"X-Frame-Options",
		"X-Content-Type-Options",
		"Referrer-Policy",
		"Permissions-Policy",
	} {
		if rec.Header().Get(header) == "" {
			t.Errorf("missing header %s", header)
		}
	}
}

func TestBuildCSPOrder(t *testing.T) {
	got := buildCSP(map[string]string{
		"img-src":         "'self' data:",
		"default-src":     "'self'",
		"worker-src":      "'none'",
		"manifest-src":    "'self'",
		"frame-ancestors": "'none'",
	})
	want := "default-src 'self'; img-src 'self' data:; frame-ancestors 'none'; manifest-src 'self'; worker-src 'none'"
	if got != want {
		t.Errorf("buildCSP() = %q, want %q", got, want)
	}
}

func TestPageCSPAllowsRecaptcha(t *testing.T) {
	for _, isDev := range []bool{true, false} {
		csp := DefaultSecurityHeadersConfig(isDev).PageCSP
		if !strings.Contains(csp, "https://www.google.com/recaptcha/") {
			t.Errorf("isDev=%v: CSP does not allow reCAPTCHA: %s", isDev, csp)
		}
		if strings.Contains(csp, "'unsafe-eval'") != isDev {
			t.Errorf("isDev=%v: unexpected unsafe-eval setting: %s", isDev, csp)
		}
	}
}
