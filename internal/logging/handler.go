// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that integrates with the Event Log system.
// It forwards logs at WARN level and above to the database-backed Event Log for auditing.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/middleware"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/store"
)

// writeTimeout bounds how long a single event insert may take.
const writeTimeout = 5 * time.Second

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the Event Log database.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level  // Minimum level to forward to Event Log (default: WARN)
	attrs   []slog.Attr // Attributes added with WithAttrs
	group   string
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and the Event Log.
func NewEventLogHandler(inner slog.Handler, q *store.Queries) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, q, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, q *store.Queries, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: q,
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always forward to the inner handler first
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithGroup(name)
	if name != "" {
		if c.group != "" {
			c.group += "." + name
		} else {
			c.group = name
		}
	}
	return c
}

func (h *EventLogHandler) clone() *EventLogHandler {
	return &EventLogHandler{
		inner:   h.inner,
		queries: h.queries,
		level:   h.level,
		attrs:   append([]slog.Attr(nil), h.attrs...),
		group:   h.group,
	}
}

// writeToEventLog writes a log record to the Event Log database.
// Failures are dropped: logging them would recurse into this handler.
func (h *EventLogHandler) writeToEventLog(ctx context.Context, r slog.Record) {
	attrs := h.collectAttrs(r)

	var userID sql.NullInt64
	if claims := session.FromContext(ctx); claims != nil {
		userID = sql.NullInt64{Int64: claims.UserID, Valid: true}
	}

	meta := make(map[string]string, len(attrs)+1)
	for _, a := range attrs {
		if a.Key == "category" {
			continue
		}
		meta[a.Key] = a.Value.String()
	}
	if path := middleware.GetRequestPath(ctx); path != "" {
		if _, ok := meta["path"]; !ok {
			meta["path"] = path
		}
	}
	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	createdAt := r.Time
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	// Detached from the request so the event survives a cancelled request.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	_ = h.queries.CreateEvent(writeCtx, store.CreateEventParams{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  extractCategory(r.Message, attrs),
		Message:   r.Message,
		UserID:    userID,
		Metadata:  metadata,
		CreatedAt: createdAt.UTC(),
	})
}

// collectAttrs returns the handler attributes followed by the record's.
func (h *EventLogHandler) collectAttrs(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" && a.Key != "category" {
			a.Key = h.group + "." + a.Key
		}
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

// slogLevelToEventLevel converts a slog.Level to an Event Log level.
func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// extractCategory returns the "category" attribute, or infers one from
// the message when the attribute is absent.
func extractCategory(msg string, attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "category" {
			if c := a.Value.String(); c != "" {
				return c
			}
		}
	}

	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "captcha") || strings.Contains(msg, "registration"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "upload"):
		return model.EventCategoryUpload
	case strings.Contains(msg, "contact"):
		return model.EventCategoryContact
	case strings.Contains(msg, "news") || strings.Contains(msg, "album") || strings.Contains(msg, "report") ||
		strings.Contains(msg, "board") || strings.Contains(msg, "bank") || strings.Contains(msg, "content"):
		return model.EventCategoryContent
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	case strings.Contains(msg, "setting"):
		return model.EventCategorySettings
	default:
		return model.EventCategorySystem
	}
}
