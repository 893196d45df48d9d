// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers of the site.
//
// Responses are plain JSON documents with camelCase fields. Errors are
// written as {"error": "<message>", "code": "<code>"}.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/middleware"
	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/storage"
	"github.com/olegiv/dhefar-go/internal/store"
)

// maxJSONBodySize caps JSON request bodies.
const maxJSONBodySize = 1 << 20

// Config holds the dependencies of the API handlers.
type Config struct {
	DB *sql.DB
	// Queries defaults to store.New(DB). Set it for non-SQLite dialects.
	Queries  *store.Queries
	Sessions *session.Manager
	Storage  storage.Storage
	Captcha  captcha.Verifier

	// Optional request guards. Nil values disable them.
	LoginProtection *middleware.LoginProtection
	PublicLimiter   *middleware.GlobalRateLimiter
	CSRF            func(http.Handler) http.Handler
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	sessions  *session.Manager
	login     *middleware.LoginProtection
	limiter   *middleware.GlobalRateLimiter
	csrf      func(http.Handler) http.Handler
	sanitizer *bluemonday.Policy

	auth     *service.AuthService
	users    *service.UserService
	gallery  *service.GalleryService
	settings *service.SettingsService
	contact  *service.ContactService
	events   *service.EventService
	uploads  *service.UploadService

	now func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	q := cfg.Queries
	if q == nil {
		q = store.New(cfg.DB)
	}
	settings := service.NewSettingsService(q)

	return &Handler{
		db:        cfg.DB,
		queries:   q,
		sessions:  cfg.Sessions,
		login:     cfg.LoginProtection,
		limiter:   cfg.PublicLimiter,
		csrf:      cfg.CSRF,
		sanitizer: bluemonday.UGCPolicy(),
		auth:      service.NewAuthService(q, settings, cfg.Captcha),
		users:     service.NewUserService(cfg.DB, q),
		gallery:   service.NewGalleryService(cfg.DB, q, cfg.Storage),
		settings:  settings,
		contact:   service.NewContactService(q, settings, cfg.Captcha),
		events:    service.NewEventService(q),
		uploads:   service.NewUploadService(cfg.Storage),
		now:       time.Now,
	}
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse acknowledges an operation that returns no record.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusBadRequest, code, message)
}

// writeDeleted acknowledges a delete.
func writeDeleted(w http.ResponseWriter, what string) {
	WriteJSON(w, http.StatusOK, MessageResponse{Message: what + " deleted"})
}

// errorStatus maps a service error to its HTTP status and code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, "email_taken"
	case errors.Is(err, service.ErrCaptchaRequired):
		return http.StatusBadRequest, "captcha_required"
	case errors.Is(err, service.ErrCaptchaFailed):
		return http.StatusBadRequest, "captcha_failed"
	case errors.Is(err, service.ErrUnsupportedFileType):
		return http.StatusBadRequest, "unsupported_file_type"
	case errors.Is(err, service.ErrFileTooLarge):
		return http.StatusBadRequest, "file_too_large"
	case errors.Is(err, service.ErrLastAdmin):
		return http.StatusBadRequest, "last_admin"
	case errors.Is(err, service.ErrSelfDelete):
		return http.StatusBadRequest, "self_delete"
	case errors.Is(err, service.ErrRegistrationClosed):
		return http.StatusForbidden, "registration_closed"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError translates err into an API error response. Unknown
// errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "api request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, status, code, "Internal server error")
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: code}
	if status == http.StatusNotFound {
		resp.Error = "Not found"
	}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	WriteJSON(w, status, resp)
}

// decodeJSON reads the request body into dst. Unknown fields are rejected.
// On failure a 400 response has been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		WriteBadRequest(w, "invalid_json", msg)
		return false
	}
	return true
}

// parseIDParam reads the {id} URL parameter. On failure a 400 response
// has been written and false is returned.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteBadRequest(w, "invalid_id", "Invalid ID")
		return 0, false
	}
	return id, true
}

// EntityFetcher is a function that fetches an entity by ID.
type EntityFetcher[T any] func(id int64) (T, error)

// requireEntityByID parses the {id} URL parameter and fetches the entity.
// Returns false when a response has already been written.
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, fetch EntityFetcher[T]) (T, bool) {
	var zero T

	id, ok := parseIDParam(w, r)
	if !ok {
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		writeServiceError(w, r, err)
		return zero, false
	}
	return entity, true
}
