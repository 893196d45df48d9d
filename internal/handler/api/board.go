// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/store"
)

// BoardMemberResponse represents a board member in API responses.
type BoardMemberResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Image        string    `json:"image"`
	DisplayOrder int64     `json:"displayOrder"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BoardMemberRequest is the body of board member create and update calls.
// display_order is accepted as an alias of displayOrder.
type BoardMemberRequest struct {
	Name              *string `json:"name,omitempty"`
	Role              *string `json:"role,omitempty"`
	Image             *string `json:"image,omitempty"`
	DisplayOrder      *int64  `json:"displayOrder,omitempty"`
	DisplayOrderSnake *int64  `json:"display_order,omitempty"`
}

func (req BoardMemberRequest) displayOrder() *int64 {
	if req.DisplayOrder != nil {
		return req.DisplayOrder
	}
	return req.DisplayOrderSnake
}

func toBoardMemberResponse(m store.BoardMember) BoardMemberResponse {
	return BoardMemberResponse{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Image:        m.Image,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ListBoardMembers handles GET /api/board-members, ordered by display order.
func (h *Handler) ListBoardMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.queries.ListBoardMembers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]BoardMemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toBoardMemberResponse(m))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetBoardMember handles GET /api/board-members/{id}.
func (h *Handler) GetBoardMember(w http.ResponseWriter, r *http.Request) {
	member, ok := requireEntityByID(w, r, func(id int64) (store.BoardMember, error) {
		return h.queries.GetBoardMember(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toBoardMemberResponse(member))
}

// CreateBoardMember handles POST /api/board-members.
func (h *Handler) CreateBoardMember(w http.ResponseWriter, r *http.Request) {
	var req BoardMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := h.now().UTC()
	params := store.CreateBoardMemberParams{CreatedAt: now, UpdatedAt: now}
	if req.Name != nil {
		params.Name = strings.TrimSpace(*req.Name)
	}
	if params.Name == "" {
		writeServiceError(w, r, service.Invalid("name", "name is required"))
		return
	}
	if req.Role != nil {
		params.Role = strings.TrimSpace(*req.Role)
	}
	if req.Image != nil {
		params.Image = strings.TrimSpace(*req.Image)
	}
	if o := req.displayOrder(); o != nil {
		params.DisplayOrder = *o
	}

	member, err := h.queries.CreateBoardMember(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "board member created", "category", model.EventCategoryContent, "member_id", member.ID)
	WriteJSON(w, http.StatusCreated, toBoardMemberResponse(member))
}

// UpdateBoardMember handles PUT /api/board-members/{id}.
func (h *Handler) UpdateBoardMember(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, func(id int64) (store.BoardMember, error) {
		return h.queries.GetBoardMember(r.Context(), id)
	})
	if !ok {
		return
	}

	var req BoardMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdateBoardMemberParams{
		ID:           existing.ID,
		Name:         existing.Name,
		Role:         existing.Role,
		Image:        existing.Image,
		DisplayOrder: existing.DisplayOrder,
		UpdatedAt:    h.now().UTC(),
	}
	if req.Name != nil {
		params.Name = strings.TrimSpace(*req.Name)
		if params.Name == "" {
			writeServiceError(w, r, service.Invalid("name", "name is required"))
			return
		}
	}
	if req.Role != nil {
		params.Role = strings.TrimSpace(*req.Role)
	}
	if req.Image != nil {
		params.Image = strings.TrimSpace(*req.Image)
	}
	if o := req.displayOrder(); o != nil {
		params.DisplayOrder = *o
	}

	member, err := h.queries.UpdateBoardMember(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "board member updated", "category", model.EventCategoryContent, "member_id", member.ID)
	WriteJSON(w, http.StatusOK, toBoardMemberResponse(member))
}

// DeleteBoardMember handles DELETE /api/board-members/{id}.
func (h *Handler) DeleteBoardMember(w http.ResponseWriter, r *http.Request) {
	member, ok := requireEntityByID(w, r, func(id int64) (store.BoardMember, error) {
		return h.queries.GetBoardMember(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteBoardMember(r.Context(), member.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "board member deleted", "category", model.EventCategoryContent, "member_id", member.ID)
	writeDeleted(w, "Board member")
}
