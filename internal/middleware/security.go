// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Content-Security-Policy values for responses that are not HTML pages.
const (
	// apiCSP applies to JSON responses, which never render.
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// uploadCSP applies to user uploaded images and PDFs.
	uploadCSP = "default-src 'none'; img-src 'self'; style-src 'unsafe-inline'; object-src 'self'"
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	// IsDevelopment disables HSTS.
	IsDevelopment bool

	// PageCSP is the policy for the client bundle and other pages.
	PageCSP string

	// HSTSMaxAge is in seconds. Zero disables HSTS.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	FrameOptions      string
	ReferrerPolicy    string
	PermissionsPolicy string
}

// DefaultSecurityHeadersConfig returns the policy used by the site.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	cfg := SecurityHeadersConfig{
		IsDevelopment:         isDev,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubDomains: !isDev,
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}

	// reCAPTCHA loads its script from google.com and gstatic.com and renders in a frame.
	directives := map[string]string{
		"default-src": "'self'",
		"script-src":  "'self' 'unsafe-inline' https://www.google.com/recaptcha/ https://www.gstatic.com/recaptcha/",
		"style-src":   "'self' 'unsafe-inline' https://fonts.googleapis.com",
		"img-src":     "'self' data: blob: https:",
		"font-src":    "'self' data: https://fonts.gstatic.com",
		"connect-src": "'self' https://www.google.com/recaptcha/",
		"frame-src":   "'self' https://www.google.com/recaptcha/ https://recaptcha.google.com/recaptcha/",
		"object-src":  "'none'",
		"base-uri":    "'self'",
		"form-action": "'self'",
	}
	if isDev {
		// Dev servers inject scripts with eval and connect over websockets
		directives["script-src"] += " 'unsafe-eval'"
		directives["connect-src"] += " ws://localhost:*"
	}
	cfg.PageCSP = buildCSP(directives)

	cfg.PermissionsPolicy = buildPermissionsPolicy(map[string]string{
		"camera":          "()",
		"geolocation":     "()",
		"microphone":      "()",
		"payment":         "()",
		"usb":             "()",
		"browsing-topics": "()",
	})

	return cfg
}

// cspOrder keeps generated policies stable.
var cspOrder = []string{
	"default-src", "script-src", "style-src", "img-src", "font-src",
	"connect-src", "frame-src", "object-src", "base-uri", "form-action",
	"frame-ancestors",
}

// buildCSP joins directives in cspOrder, then any others sorted by name.
func buildCSP(directives map[string]string) string {
	parts := make([]string, 0, len(directives))
	seen := make(map[string]bool, len(cspOrder))
	for _, key := range cspOrder {
		seen[key] = true
		if value, ok := directives[key]; ok {
			parts = append(parts, key+" "+value)
		}
	}

	var extra []string
	for key := range directives {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		parts = append(parts, key+" "+directives[key])
	}

	return strings.Join(parts, "; ")
}

func buildPermissionsPolicy(policies map[string]string) string {
	parts := make([]string, 0, len(policies))
	for key, value := range policies {
		parts = append(parts, key+"="+value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

// cspFor picks the policy for a request path. API responses are also
// marked uncacheable since they carry session dependent data.
func (cfg SecurityHeadersConfig) cspFor(path string) (csp string, noStore bool) {
	switch {
	case strings.HasPrefix(path, "/api/"):
		return apiCSP, true
	case strings.HasPrefix(path, "/uploads/"):
		return uploadCSP, false
	default:
		return cfg.PageCSP, false
	}
}

// SecurityHeaders adds security headers to every response.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	var hsts string
	if !cfg.IsDevelopment && cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubDomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			csp, noStore := cfg.cspFor(r.URL.Path)
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if noStore {
				h.Set("Cache-Control", "no-store")
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if cfg.FrameOptions != "" {
				h.Set("X-Frame-Options", cfg.FrameOptions)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			if cfg.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			}
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}
