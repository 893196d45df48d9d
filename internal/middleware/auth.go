// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/util"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoginPath is where unauthenticated admin page requests are sent.
const LoginPath = "/login"

// protectedGetPrefixes are API paths whose reads also require an admin session.
var protectedGetPrefixes = []string{
	"/api/users",
	"/api/contact",
	"/api/events",
	"/api/stats",
}

// access is the result of classifying a request path.
type access int

const (
	accessPublic access = iota
	accessAdminPage
	accessProtectedAPI
)

// classify decides whether a request needs an admin session.
func classify(method, path string) access {
	if hasPathPrefix(path, "/admin") {
		return accessAdminPage
	}
	if !hasPathPrefix(path, "/api") {
		return accessPublic
	}
	if hasPathPrefix(path, "/api/auth") {
		return accessPublic
	}
	if method == http.MethodPost && path == "/api/contact" {
		return accessPublic
	}
	if isSafeMethod(method) {
		for _, p := range protectedGetPrefixes {
			if hasPathPrefix(path, p) {
				return accessProtectedAPI
			}
		}
		return accessPublic
	}
	return accessProtectedAPI
}

// hasPathPrefix reports whether path is prefix or lies below it.
// "/administrators" does not match "/admin".
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// AccessGate creates the access-control middleware. A valid session is
// attached to the request context for every request that carries one.
// Admin pages and protected API calls additionally require the admin role:
// pages are redirected to the login page, API calls get a 401 JSON error.
func AccessGate(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := sm.Get(r)
			if ok {
				r = r.WithContext(session.WithClaims(r.Context(), claims))
			}

			kind := classify(r.Method, r.URL.Path)
			if kind == accessPublic || claims.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			slog.Warn("access denied",
				"category", model.EventCategoryAuth,
				"method", r.Method,
				"path", r.URL.Path,
				"has_session", ok,
				"remote_addr", util.ClientIP(r),
			)

			if kind == accessAdminPage {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: admin session required")
		})
	}
}

// GetSession retrieves the verified session from the request context.
// Returns nil if the request has no valid session.
func GetSession(r *http.Request) *session.Claims {
	return session.FromContext(r.Context())
}

// GetUserIDPtr returns a pointer to the session user's ID, or nil if there is none.
// Useful for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if c := GetSession(r); c != nil {
		id := c.UserID
		return &id
	}
	return nil
}

// IsAdmin reports whether the request carries an admin session.
func IsAdmin(r *http.Request) bool {
	return GetSession(r).IsAdmin()
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
