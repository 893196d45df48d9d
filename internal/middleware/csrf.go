// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"filippo.io/csrf/gorilla"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/util"
)

// devClientOrigins are the hosts the admin client dev server runs on.
var devClientOrigins = []string{
	"localhost:3000",
	"127.0.0.1:3000",
	"localhost:8080",
	"127.0.0.1:8080",
}

// CSRFConfig configures cross-origin protection of mutating requests.
// Checks rely on Sec-Fetch-Site and Origin headers, so no token has to be
// round-tripped by the client.
type CSRFConfig struct {
	AuthKey []byte

	// TrustedOrigins are host:port values allowed to send cross-origin
	// POST, PUT and DELETE requests.
	TrustedOrigins []string

	// ErrorHandler replaces the default JSON 403 response.
	ErrorHandler http.Handler
}

// NewCSRFConfig builds the config from the configured origins. Development
// adds the local client dev servers.
func NewCSRFConfig(authKey []byte, trusted []string, isDev bool) CSRFConfig {
	origins := make([]string, 0, len(trusted)+len(devClientOrigins))
	add := func(o string) {
		if o != "" && !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}
	for _, o := range trusted {
		add(o)
	}
	if isDev {
		for _, o := range devClientOrigins {
			add(o)
		}
	}
	return CSRFConfig{AuthKey: authKey, TrustedOrigins: origins}
}

// CSRF rejects cross-origin mutations. Safe methods always pass.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = http.HandlerFunc(rejectCrossOrigin)
	}

	opts := []csrf.Option{csrf.ErrorHandler(errorHandler)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func rejectCrossOrigin(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.WarnContext(r.Context(), "cross-origin request rejected",
		"category", model.EventCategoryAuth,
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"remote_ip", util.ClientIP(r),
	)
	WriteAPIError(w, http.StatusForbidden, "csrf_failed", "Forbidden: cross-origin request rejected")
}
