// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/dhefar-go/internal/model"
)

func (s *testServer) createNews(cookie *http.Cookie, req CreateNewsRequest) NewsResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/news", req, cookie)
	requireStatus(s.t, w, http.StatusCreated)
	return decodeBody[NewsResponse](s.t, w)
}

func TestCreateNews_Defaults(t *testing.T) {
	s := newTestServer(t)
	admin, cookie := s.admin()

	post := s.createNews(cookie, CreateNewsRequest{
		Title:   "Annual Gala",
		Content: `<p>Hello</p><script>alert(1)</script>`,
	})

	assert.NotZero(t, post.ID)
	assert.NotEmpty(t, post.Slug)
	assert.Equal(t, model.PostStatusPublish, post.Status)
	assert.Equal(t, model.DefaultNewsCategory, post.Category)
	assert.Equal(t, "<p>Hello</p>", post.Content)
	require.NotNil(t, post.AuthorID)
	assert.Equal(t, admin.ID, *post.AuthorID)
}

func TestCreateNews_Validation(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()
	s.createNews(cookie, CreateNewsRequest{Title: "First", Slug: "annual-gala"})

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing title", CreateNewsRequest{Content: "x"}, "title"},
		{"bad status", CreateNewsRequest{Title: "T", Status: "archived"}, "status"},
		{"duplicate slug", CreateNewsRequest{Title: "Second", Slug: "annual-gala"}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/news", tt.body, cookie)
			resp := requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")
			assert.Contains(t, resp.Fields, tt.field)
		})
	}

	w := s.do(http.MethodPost, "/api/news", `{"title":"T","views":3}`, cookie)
	requireErrorCode(t, w, http.StatusBadRequest, "invalid_json")
}

func TestListNews_Visibility(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()
	s.createNews(cookie, CreateNewsRequest{Title: "Public", Slug: "public"})
	draft := s.createNews(cookie, CreateNewsRequest{Title: "Hidden", Slug: "hidden", Status: model.PostStatusDraft})

	w := s.do(http.MethodGet, "/api/news", nil, nil)
	requireStatus(t, w, http.StatusOK)
	posts := decodeBody[[]NewsResponse](t, w)
	require.Len(t, posts, 1)
	assert.Equal(t, "public", posts[0].Slug)

	w = s.do(http.MethodGet, "/api/news?status=draft", nil, nil)
	requireErrorCode(t, w, http.StatusForbidden, "forbidden")

	w = s.do(http.MethodGet, "/api/news?status=all", nil, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decodeBody[[]NewsResponse](t, w), 2)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/news/%d", draft.ID), nil, nil)
	requireErrorCode(t, w, http.StatusNotFound, "not_found")

	w = s.do(http.MethodGet, fmt.Sprintf("/api/news/%d", draft.ID), nil, cookie)
	requireStatus(t, w, http.StatusOK)
}

func TestListNews_CategoryAndLimit(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()
	for i := range 3 {
		s.createNews(cookie, CreateNewsRequest{Title: "Event", Slug: fmt.Sprintf("event-%d", i), Category: "events"})
	}
	s.createNews(cookie, CreateNewsRequest{Title: "Notice", Slug: "notice", Category: "notices"})

	w := s.do(http.MethodGet, "/api/news?category=events&limit=2", nil, nil)
	requireStatus(t, w, http.StatusOK)
	posts := decodeBody[[]NewsResponse](t, w)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, "events", p.Category)
	}
}

func TestUpdateNews(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()
	post := s.createNews(cookie, CreateNewsRequest{Title: "Original", Slug: "original"})
	s.createNews(cookie, CreateNewsRequest{Title: "Other", Slug: "other"})

	path := fmt.Sprintf("/api/news/%d", post.ID)

	w := s.do(http.MethodPut, path, map[string]any{"title": "Renamed", "status": "draft"}, cookie)
	requireStatus(t, w, http.StatusOK)
	updated := decodeBody[NewsResponse](t, w)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "original", updated.Slug)
	assert.Equal(t, model.PostStatusDraft, updated.Status)

	w = s.do(http.MethodPut, path, map[string]any{"slug": "other"}, cookie)
	resp := requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")
	assert.Contains(t, resp.Fields, "slug")

	w = s.do(http.MethodPut, "/api/news/9999", map[string]any{"title": "x"}, cookie)
	requireErrorCode(t, w, http.StatusNotFound, "not_found")
}

func TestDeleteNews(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()
	post := s.createNews(cookie, CreateNewsRequest{Title: "Gone", Slug: "gone"})

	path := fmt.Sprintf("/api/news/%d", post.ID)
	w := s.do(http.MethodDelete, path, nil, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"message":"News post deleted"}`, w.Body.String())

	w = s.do(http.MethodDelete, path, nil, cookie)
	requireErrorCode(t, w, http.StatusNotFound, "not_found")

	w = s.do(http.MethodGet, "/api/news/abc", nil, cookie)
	requireErrorCode(t, w, http.StatusBadRequest, "invalid_id")
}

func TestNews_MutationsRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	_, adminCookie := s.admin()
	post := s.createNews(adminCookie, CreateNewsRequest{Title: "Keep", Slug: "keep"})

	editor := s.cookieFor(createUser(t, s, "editor@example.com", model.RoleEditor))
	path := fmt.Sprintf("/api/news/%d", post.ID)

	for _, cookie := range []*http.Cookie{nil, editor} {
		w := s.do(http.MethodPost, "/api/news", CreateNewsRequest{Title: "Nope"}, cookie)
		requireErrorCode(t, w, http.StatusUnauthorized, "unauthorized")
		w = s.do(http.MethodPut, path, map[string]any{"title": "Nope"}, cookie)
		requireErrorCode(t, w, http.StatusUnauthorized, "unauthorized")
		w = s.do(http.MethodDelete, path, nil, cookie)
		requireErrorCode(t, w, http.StatusUnauthorized, "unauthorized")
	}

	// Nothing changed.
	n, err := s.queries.CountPostsByStatus(context.Background(), model.PostStatusPublish)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err := s.queries.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep", got.Title)
}
