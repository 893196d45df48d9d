// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/middleware"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/session"
	"github.com/olegiv/dhefar-go/internal/storage"
	"github.com/olegiv/dhefar-go/internal/store"
	"github.com/olegiv/dhefar-go/internal/testutil"
)

var testSecret = []byte("test-session-secret-0123456789abcdef")

// fakeVerifier answers every captcha check with a fixed result.
type fakeVerifier struct {
	success bool
	calls   int
}

func (f *fakeVerifier) Verify(_ context.Context, _, _, _ string) (*captcha.Result, error) {
	f.calls++
	return &captcha.Result{Success: f.success}, nil
}

type testServer struct {
	t        *testing.T
	db       *sql.DB
	queries  *store.Queries
	sessions *session.Manager
	verifier *fakeVerifier
	uploads  string
	handler  *Handler
	router   http.Handler
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, func(*Config) {})
}

func newTestServerWith(t *testing.T, configure func(*Config)) *testServer {
	t.Helper()

	db := testutil.TestDB(t)
	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)

	sm := session.New(testSecret, false)
	verifier := &fakeVerifier{success: true}

	cfg := Config{DB: db, Sessions: sm, Storage: local, Captcha: verifier}
	configure(&cfg)
	h := NewHandler(cfg)

	r := chi.NewRouter()
	r.Use(middleware.AccessGate(sm))
	r.Mount("/api", h.Routes())

	return &testServer{
		t:        t,
		db:       db,
		queries:  store.New(db),
		sessions: sm,
		verifier: verifier,
		uploads:  dir,
		handler:  h,
		router:   r,
	}
}

// cookieFor returns a valid session cookie for u.
func (s *testServer) cookieFor(u store.User) *http.Cookie {
	s.t.Helper()
	token, err := s.sessions.Sign(&session.Claims{
		UserID: u.ID,
		Role:   u.Role,
		Name:   u.Name,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(s.t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

// admin creates an admin user and returns its session cookie.
func (s *testServer) admin() (store.User, *http.Cookie) {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.db, "admin@example.com", "secret123", model.RoleAdmin)
	return u, s.cookieFor(u)
}

// do sends a request through the full router. body is JSON-encoded unless
// it is nil or already an io.Reader.
func (s *testServer) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	requireStatus(t, w, status)
	resp := decodeBody[ErrorResponse](t, w)
	require.Equal(t, code, resp.Code)
	return resp
}

// sessionCookie returns the session cookie set on w, if any.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func createUser(t *testing.T, s *testServer, email, role string) store.User {
	t.Helper()
	return testutil.CreateUser(t, s.db, email, "secret123", role)
}
