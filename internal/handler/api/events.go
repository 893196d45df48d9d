// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/store"
	"github.com/olegiv/dhefar-go/internal/util"
)

// EventResponse represents an audit log entry in API responses.
type EventResponse struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	UserID    *int64    `json:"userId"`
	Metadata  any       `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toEventResponse(e store.Event) EventResponse {
	resp := EventResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    util.Int64Ptr(e.UserID),
		CreatedAt: e.CreatedAt,
	}
	if e.Metadata != "" {
		if json.Valid([]byte(e.Metadata)) {
			resp.Metadata = json.RawMessage(e.Metadata)
		} else {
			resp.Metadata = e.Metadata
		}
	}
	return resp
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	events, err := h.events.List(r.Context(), service.ListEventsInput{
		Level:    q.Get("level"),
		Category: q.Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	WriteJSON(w, http.StatusOK, out)
}
