// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func testUser() User {
	return User{ID: 7, Role: "admin", Name: "A", Email: "a@x.com"}
}

func TestCreate_SetsCookie(t *testing.T) {
	m := New(testSecret, true)
	w := httptest.NewRecorder()

	if _, err := m.Create(w, testUser()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("Name = %q, want %q", c.Name, CookieName)
	}
	if !c.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if !c.Secure {
		t.Error("cookie should be Secure when configured")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", c.SameSite)
	}
	if c.Path != "/" {
		t.Errorf("Path = %q, want /", c.Path)
	}
	if c.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d, want 7 days", c.MaxAge)
	}
}

func requestWithCookie(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestGet_RoundTrip(t *testing.T) {
	m := New(testSecret, false)
	w := httptest.NewRecorder()
	if _, err := m.Create(w, testUser()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	claims, ok := m.Get(requestWithCookie(w))
	if !ok {
		t.Fatal("Get returned no session")
	}
	if claims.UserID != 7 || claims.Role != "admin" || claims.Name != "A" || claims.Email != "a@x.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !claims.IsAdmin() {
		t.Error("IsAdmin() = false, want true")
	}
}

func TestGet_NoCookie(t *testing.T) {
	m := New(testSecret, false)
	if _, ok := m.Get(httptest.NewRequest(http.MethodGet, "/", nil)); ok {
		t.Fatal("Get should fail without a cookie")
	}
}

func TestGet_WrongSecret(t *testing.T) {
	issuer := New([]byte("another-secret-key-32-bytes-long!"), false)
	w := httptest.NewRecorder()
	if _, err := issuer.Create(w, testUser()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	m := New(testSecret, false)
	if _, ok := m.Get(requestWithCookie(w)); ok {
		t.Fatal("Get accepted a token signed with a different secret")
	}
}

func TestGet_Tampered(t *testing.T) {
	m := New(testSecret, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "eyJhbGciOiJIUzI1NiJ9.eyJyb2xlIjoiYWRtaW4ifQ.bad"})

	if _, ok := m.Get(r); ok {
		t.Fatal("Get accepted a tampered token")
	}
}

func TestGet_Expired(t *testing.T) {
	m := New(testSecret, false)
	m.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	w := httptest.NewRecorder()
	if _, err := m.Create(w, testUser()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	m.now = time.Now
	if _, ok := m.Get(requestWithCookie(w)); ok {
		t.Fatal("Get accepted an expired session")
	}
}

func TestGet_RejectsOtherAlgorithms(t *testing.T) {
	m := New(testSecret, false)
	claims := &Claims{
		UserID: 1,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	if _, ok := m.Get(r); ok {
		t.Fatal("Get accepted an HS512 token")
	}
}

func TestDelete_ExpiresCookie(t *testing.T) {
	m := New(testSecret, false)
	w := httptest.NewRecorder()
	m.Delete(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative", cookies[0].MaxAge)
	}
	if cookies[0].Value != "" {
		t.Errorf("Value = %q, want empty", cookies[0].Value)
	}
}

func TestContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(r.Context()) != nil {
		t.Fatal("expected no claims in a fresh context")
	}

	c := &Claims{UserID: 3, Role: "editor"}
	ctx := WithClaims(r.Context(), c)
	if got := FromContext(ctx); got != c {
		t.Fatalf("FromContext = %v, want %v", got, c)
	}
	if got := FromContext(ctx); got.IsAdmin() {
		t.Error("editor should not be admin")
	}

	var nilClaims *Claims
	if nilClaims.IsAdmin() {
		t.Error("nil claims should not be admin")
	}
}
