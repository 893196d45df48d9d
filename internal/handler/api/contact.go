// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/store"
	"github.com/olegiv/dhefar-go/internal/util"
)

// ContactMessageResponse represents a contact message in API responses.
type ContactMessageResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactRequest is the body of a public contact form submission.
type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// ContactIDsRequest selects contact messages by ID.
type ContactIDsRequest struct {
	IDs []int64 `json:"ids"`
}

func toContactMessageResponse(m store.ContactMessage) ContactMessageResponse {
	return ContactMessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// ListMessages handles GET /api/contact. ?unread=true limits the list to unread messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"

	messages, err := h.queries.ListContactMessages(r.Context(), unreadOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ContactMessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toContactMessageResponse(m))
	}
	WriteJSON(w, http.StatusOK, out)
}

// SubmitMessage handles POST /api/contact.
func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.contact.Submit(r.Context(), service.ContactInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Subject:        req.Subject,
		Message:        req.Message,
		RecaptchaToken: req.RecaptchaToken,
		RemoteIP:       util.ClientIP(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Message sent",
		"id":      msg.ID,
	})
}

// MarkMessagesRead handles PUT /api/contact. Without ids every unread
// message is marked read.
func (h *Handler) MarkMessagesRead(w http.ResponseWriter, r *http.Request) {
	var req ContactIDsRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var (
		n   int64
		err error
	)
	if len(req.IDs) == 0 {
		n, err = h.queries.MarkAllContactMessagesRead(r.Context())
	} else {
		n, err = h.queries.MarkContactMessagesRead(r.Context(), req.IDs)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// DeleteMessages handles DELETE /api/contact.
func (h *Handler) DeleteMessages(w http.ResponseWriter, r *http.Request) {
	var req ContactIDsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeServiceError(w, r, service.Invalid("ids", "ids is required"))
		return
	}

	n, err := h.queries.DeleteContactMessages(r.Context(), req.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"deleted": n,
		"message": "Messages deleted",
	})
}
