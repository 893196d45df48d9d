// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the business rules of the site: login and
// registration, user management, settings, the gallery, uploads, contact
// messages and the event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/store"
)

// Event listing limits
const (
	DefaultEventLimit = 100
	MaxEventLimit     = 500
)

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(q *store.Queries) *EventService {
	return &EventService{queries: q, now: time.Now}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("logging event: %w", err)
	}
	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, metadata)
}

// ListEventsInput filters the event listing.
type ListEventsInput struct {
	Level    string
	Category string
	Limit    int
	Offset   int
}

// List returns recent events, newest first. An unknown level is a
// validation error. The limit is clamped to [1, MaxEventLimit] and
// defaults to DefaultEventLimit.
func (s *EventService) List(ctx context.Context, in ListEventsInput) ([]store.Event, error) {
	if in.Level != "" && !model.IsValidEventLevel(in.Level) {
		return nil, Invalid("level", fmt.Sprintf("unknown level %q", in.Level))
	}

	limit := in.Limit
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	limit = min(limit, MaxEventLimit)
	offset := max(in.Offset, 0)

	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Level:    in.Level,
		Category: in.Category,
		Limit:    int64(limit),
		Offset:   int64(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// DeleteOldEvents removes events older than the specified duration and
// returns how many were removed.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	n, err := s.queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old events: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "old events removed", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
