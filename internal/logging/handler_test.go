// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olegiv/dhefar-go/internal/middleware"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/store"
)

// testQueries creates a temporary migrated database.
func testQueries(t *testing.T) *store.Queries {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "logging-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return store.New(db)
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, q *store.Queries) []store.Event {
	t.Helper()
	events, err := q.ListEvents(context.Background(), store.ListEventsParams{Limit: 50})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("database connection failed") }, model.EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("disk almost full") }, model.EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("server started") }, ""},
		{"debug", func(l *slog.Logger) { l.Debug("cache miss") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := testQueries(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, q)))

			events := listEvents(t, q)
			if tt.wantLevel == "" {
				if len(events) != 0 {
					t.Fatalf("expected no events, got %d", len(events))
				}
				return
			}
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	q := testQueries(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, q, slog.LevelInfo))

	logger.Info("server started")

	events := listEvents(t, q)
	if len(events) != 1 || events[0].Level != model.EventLevelInfo {
		t.Fatalf("events = %+v, want one info event", events)
	}
}

func TestExtractCategory(t *testing.T) {
	tests := []struct {
		msg   string
		attrs []slog.Attr
		want  string
	}{
		{"login failed", nil, model.EventCategoryAuth},
		{"captcha verification failed", nil, model.EventCategoryAuth},
		{"upload rejected", nil, model.EventCategoryUpload},
		{"contact form spam", nil, model.EventCategoryContact},
		{"news slug collision", nil, model.EventCategoryContent},
		{"album photos replaced", nil, model.EventCategoryContent},
		{"user demoted", nil, model.EventCategoryUser},
		{"setting rejected", nil, model.EventCategorySettings},
		{"database connection failed", nil, model.EventCategorySystem},
		{"anything", []slog.Attr{slog.String("category", model.EventCategoryUpload)}, model.EventCategoryUpload},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := extractCategory(tt.msg, tt.attrs); got != tt.want {
				t.Errorf("extractCategory(%q) = %q, want %q", tt.msg, got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_MetadataAndContext(t *testing.T) {
	q := testQueries(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, q)).With("component", "api")

	ctx := session.WithClaims(context.Background(), &session.Claims{UserID: 9, Role: model.RoleAdmin})
	ctx = context.WithValue(ctx, middleware.ContextKeyRequestPath, "/api/news/3")

	logger.WarnContext(ctx, "news update rejected", "category", model.EventCategoryContent, "reason", `bad "quote"`)

	events := listEvents(t, q)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Category != model.EventCategoryContent {
		t.Errorf("Category = %q", e.Category)
	}
	if e.UserID != (sql.NullInt64{Int64: 9, Valid: true}) {
		t.Errorf("UserID = %+v, want 9", e.UserID)
	}
	for _, want := range []string{`"component":"api"`, `"path":"/api/news/3"`, `"reason":"bad \"quote\""`} {
		if !strings.Contains(e.Metadata, want) {
			t.Errorf("Metadata %s missing %s", e.Metadata, want)
		}
	}
	if strings.Contains(e.Metadata, `"category"`) {
		t.Errorf("Metadata should not repeat the category: %s", e.Metadata)
	}
}

func TestEventLogHandler_WithGroup(t *testing.T) {
	q := testQueries(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, q)).WithGroup("s3")

	logger.Error("upload failed", "bucket", "media")

	events := listEvents(t, q)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !strings.Contains(events[0].Metadata, `"s3.bucket":"media"`) {
		t.Errorf("Metadata = %s, want grouped key", events[0].Metadata)
	}
}

func TestEventLogHandler_NoAttrs(t *testing.T) {
	q := testQueries(t)
	slog.New(NewEventLogHandler(discardHandler{}, q)).Warn("plain warning")

	events := listEvents(t, q)
	if len(events) != 1 || events[0].Metadata != "{}" {
		t.Fatalf("events = %+v, want metadata {}", events)
	}
}

func TestSlogLevelToEventLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, model.EventLevelInfo},
		{slog.LevelInfo, model.EventLevelInfo},
		{slog.LevelWarn, model.EventLevelWarning},
		{slog.LevelError, model.EventLevelError},
		{slog.LevelError + 4, model.EventLevelError},
	}

	for _, tt := range tests {
		if got := slogLevelToEventLevel(tt.level); got != tt.want {
			t.Errorf("slogLevelToEventLevel(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
