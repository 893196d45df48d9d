// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/util"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register and POST /api/users.
// IsAdmin is accepted for client compatibility and ignored: admin
// registrations are recognised by the session only.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	RecaptchaToken string `json:"recaptchaToken"`
	IsAdmin        bool   `json:"isAdmin"`
}

// SessionUser is the identity carried by the session cookie.
type SessionUser struct {
	ID    int64  `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionResponse is the body of GET /api/auth/session.
type SessionResponse struct {
	User      *SessionUser `json:"user"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// currentSession returns the verified session of the request, if any.
func (h *Handler) currentSession(r *http.Request) *session.Claims {
	if c := session.FromContext(r.Context()); c != nil {
		return c
	}
	if h.sessions != nil {
		if c, ok := h.sessions.Get(r); ok {
			return c
		}
	}
	return nil
}

// sessionUserID returns the ID of the signed-in user, or nil.
func (h *Handler) sessionUserID(r *http.Request) *int64 {
	if c := h.currentSession(r); c != nil {
		id := c.UserID
		return &id
	}
	return nil
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeServiceError(w, r, service.Invalid("email", "email and password are required"))
		return
	}

	if h.login != nil {
		if remaining := h.login.LockedFor(req.Email); remaining > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Too many failed attempts. Try again in %s.", remaining.Round(time.Second)))
			return
		}
	}

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			attrs := []any{"category", model.EventCategoryAuth, "email", req.Email, "ip", util.ClientIP(r)}
			if h.login != nil {
				if lockout := h.login.Fail(req.Email); lockout == 0 {
					attrs = append(attrs, "remaining_attempts", h.login.RemainingAttempts(req.Email))
				}
			}
			slog.WarnContext(ctx, "failed login attempt", attrs...)
		}
		writeServiceError(w, r, err)
		return
	}

	if h.login != nil {
		h.login.Succeed(req.Email)
	}

	if _, err := h.sessions.Create(w, session.User{
		ID:    user.ID,
		Role:  user.Role,
		Name:  user.Name,
		Email: user.Email,
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "user logged in", "category", model.EventCategoryAuth, "user_id", user.ID)
	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.currentSession(r).IsAdmin())
}

// register creates a user. fromAdmin must come from a verified session.
func (h *Handler) register(w http.ResponseWriter, r *http.Request, fromAdmin bool) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:          req.Email,
		Password:       req.Password,
		Name:           req.Name,
		Role:           req.Role,
		RecaptchaToken: req.RecaptchaToken,
		RemoteIP:       util.ClientIP(r),
		FromAdmin:      fromAdmin,
	})
	if err != nil {
		if errors.Is(err, service.ErrCaptchaFailed) || errors.Is(err, service.ErrRegistrationClosed) {
			slog.WarnContext(r.Context(), "registration rejected",
				"category", model.EventCategoryAuth, "reason", err.Error(), "ip", util.ClientIP(r))
		}
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c := h.currentSession(r); c != nil {
		slog.InfoContext(r.Context(), "user logged out", "category", model.EventCategoryAuth, "user_id", c.UserID)
	}
	h.sessions.Delete(w)
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

// Session handles GET /api/auth/session. Clients use it to learn who is
// signed in; the answer always comes from the verified cookie.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	c := h.currentSession(r)
	if c == nil {
		WriteJSON(w, http.StatusOK, SessionResponse{})
		return
	}

	resp := SessionResponse{
		User: &SessionUser{ID: c.UserID, Role: c.Role, Name: c.Name, Email: c.Email},
	}
	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.Time
		resp.ExpiresAt = &exp
	}
	WriteJSON(w, http.StatusOK, resp)
}
