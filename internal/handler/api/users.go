// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/store"
)

// UserResponse represents a user in API responses. It never carries the
// stored password.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateUserRequest lists the editable user fields.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Password *string `json:"password,omitempty"`
}

func toUserResponse(u store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// CreateUser handles POST /api/users: a registration made from the admin
// panel. The access gate only lets admins reach it.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.currentSession(r).IsAdmin())
}

// UpdateUser handles PUT /api/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Update(r.Context(), id, service.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Avatar:   req.Avatar,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var actorID int64
	if c := h.currentSession(r); c != nil {
		actorID = c.UserID
	}
	if err := h.users.Delete(r.Context(), actorID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDeleted(w, "User")
}
