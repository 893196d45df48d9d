// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session issues and verifies the signed session cookie. Sessions are
// not stored server-side: the cookie carries HS256-signed claims.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/olegiv/dhefar-go/internal/model"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// DefaultLifetime is how long a session stays valid.
const DefaultLifetime = 7 * 24 * time.Hour

// Claims is the signed session payload.
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IsAdmin returns true if the session belongs to an admin.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == model.RoleAdmin
}

// User is the identity written into a new session.
type User struct {
	ID    int64
	Role  string
	Name  string
	Email string
}

// Manager creates, reads and clears session cookies.
type Manager struct {
	secret   []byte
	secure   bool
	lifetime time.Duration
	now      func() time.Time
}

// New creates a session manager signing with secret.
func New(secret []byte, secure bool) *Manager {
	return &Manager{
		secret:   secret,
		secure:   secure,
		lifetime: DefaultLifetime,
		now:      time.Now,
	}
}

// Create signs a session for u and sets it as the session cookie.
func (m *Manager) Create(w http.ResponseWriter, u User) (*Claims, error) {
	now := m.now()
	expires := now.Add(m.lifetime)

	claims := &Claims{
		UserID: u.ID,
		Role:   u.Role,
		Name:   u.Name,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := m.Sign(claims)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.lifetime.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return claims, nil
}

// Sign returns the signed token for claims.
func (m *Manager) Sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}
	return signed, nil
}

// Parse verifies a token's signature, algorithm and expiry.
func (m *Manager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Get reads and verifies the session cookie. It returns false when the
// cookie is absent, tampered with or expired.
func (m *Manager) Get(r *http.Request) (*Claims, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	claims, err := m.Parse(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Delete clears the session cookie.
func (m *Manager) Delete(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey struct{}

// WithClaims returns a copy of ctx carrying verified session claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the verified claims stored by WithClaims, or nil.
func FromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(contextKey{}).(*Claims)
	return c
}
