// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/store"
	"github.com/olegiv/dhefar-go/internal/util"
)

// NewsResponse represents a news post in API responses.
type NewsResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content"`
	Image      string    `json:"image"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	AuthorID   *int64    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateNewsRequest represents the request body for creating a post.
type CreateNewsRequest struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// UpdateNewsRequest lists the editable post fields.
type UpdateNewsRequest struct {
	Title    *string `json:"title,omitempty"`
	Slug     *string `json:"slug,omitempty"`
	Excerpt  *string `json:"excerpt,omitempty"`
	Content  *string `json:"content,omitempty"`
	Image    *string `json:"image,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
}

func toNewsResponse(p store.Post) NewsResponse {
	return NewsResponse{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		Image:      p.Image,
		Category:   p.Category,
		Status:     p.Status,
		AuthorID:   util.Int64Ptr(p.AuthorID),
		AuthorName: p.AuthorName,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// newsLimit parses the limit query parameter.
func newsLimit(raw string) int64 {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return model.DefaultNewsLimit
	}
	if n > model.MaxNewsLimit {
		return model.MaxNewsLimit
	}
	return int64(n)
}

// ListNews handles GET /api/news.
// Anonymous callers only see published posts; admins may ask for drafts
// or for status=all.
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := query.Get("status")
	if status == "" {
		status = model.PostStatusPublish
	}
	if status != model.PostStatusAll && !model.IsValidPostStatus(status) {
		writeServiceError(w, r, service.Invalid("status", "status must be publish, draft or all"))
		return
	}
	if status != model.PostStatusPublish && !h.currentSession(r).IsAdmin() {
		WriteError(w, http.StatusForbidden, "forbidden", "Admin session required to list unpublished news")
		return
	}
	if status == model.PostStatusAll {
		status = ""
	}

	posts, err := h.queries.ListPosts(r.Context(), store.ListPostsParams{
		Status:   status,
		Category: query.Get("category"),
		Limit:    newsLimit(query.Get("limit")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]NewsResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toNewsResponse(p))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetNews handles GET /api/news/{id}. Drafts are hidden from non-admins.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, func(id int64) (store.Post, error) {
		return h.queries.GetPost(r.Context(), id)
	})
	if !ok {
		return
	}
	if post.Status != model.PostStatusPublish && !h.currentSession(r).IsAdmin() {
		WriteNotFound(w, "Not found")
		return
	}
	WriteJSON(w, http.StatusOK, toNewsResponse(post))
}

// CreateNews handles POST /api/news.
func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateNewsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	now := h.now()
	verr := &service.ValidationError{}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		verr.Add("title", "title is required")
	}

	slug := util.NewsSlug(req.Title, now)
	if s := strings.TrimSpace(req.Slug); s != "" {
		slug = util.Slugify(s)
		if !util.IsValidSlug(slug) {
			verr.Add("slug", "slug must contain letters or digits")
		}
	}

	if req.Status == "" {
		req.Status = model.PostStatusPublish
	}
	if !model.IsValidPostStatus(req.Status) {
		verr.Add("status", "status must be publish or draft")
	}
	if err := verr.Err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if !h.checkSlugUnique(w, r, func() (int64, error) {
		return h.queries.CountPostsBySlug(ctx, slug)
	}) {
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.DefaultNewsCategory
	}

	var authorID sql.NullInt64
	if c := h.currentSession(r); c != nil {
		authorID = util.NullInt64FromValue(c.UserID)
	}

	post, err := h.queries.CreatePost(ctx, store.CreatePostParams{
		Title:     req.Title,
		Slug:      slug,
		Excerpt:   strings.TrimSpace(req.Excerpt),
		Content:   h.sanitizer.Sanitize(req.Content),
		Image:     strings.TrimSpace(req.Image),
		Category:  category,
		Status:    req.Status,
		AuthorID:  authorID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		writeServiceError(w, r, service.Invalid("slug", "slug already exists"))
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "news post created", "category", model.EventCategoryContent, "post_id", post.ID, "slug", post.Slug)
	WriteJSON(w, http.StatusCreated, toNewsResponse(post))
}

// UpdateNews handles PUT /api/news/{id}.
func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	existing, ok := requireEntityByID(w, r, func(id int64) (store.Post, error) {
		return h.queries.GetPost(ctx, id)
	})
	if !ok {
		return
	}

	var req UpdateNewsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdatePostParams{
		ID:       existing.ID,
		Title:    existing.Title,
		Slug:     existing.Slug,
		Excerpt:  existing.Excerpt,
		Content:  existing.Content,
		Image:    existing.Image,
		Category: existing.Category,
		Status:   existing.Status,
	}

	verr := &service.ValidationError{}
	if req.Title != nil {
		params.Title = strings.TrimSpace(*req.Title)
		if params.Title == "" {
			verr.Add("title", "title is required")
		}
	}
	if req.Slug != nil {
		params.Slug = util.Slugify(*req.Slug)
		if !util.IsValidSlug(params.Slug) {
			verr.Add("slug", "slug must contain letters or digits")
		}
	}
	if req.Excerpt != nil {
		params.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Content != nil {
		params.Content = h.sanitizer.Sanitize(*req.Content)
	}
	if req.Image != nil {
		params.Image = strings.TrimSpace(*req.Image)
	}
	if req.Category != nil {
		params.Category = strings.TrimSpace(*req.Category)
	}
	if req.Status != nil {
		params.Status = *req.Status
		if !model.IsValidPostStatus(params.Status) {
			verr.Add("status", "status must be publish or draft")
		}
	}
	if err := verr.Err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if params.Slug != existing.Slug {
		if !h.checkSlugUnique(w, r, func() (int64, error) {
			return h.queries.CountPostsBySlugExcludingID(ctx, params.Slug, existing.ID)
		}) {
			return
		}
	}

	params.UpdatedAt = h.now().UTC()
	post, err := h.queries.UpdatePost(ctx, params)
	if errors.Is(err, store.ErrDuplicate) {
		writeServiceError(w, r, service.Invalid("slug", "slug already exists"))
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "news post updated", "category", model.EventCategoryContent, "post_id", post.ID)
	WriteJSON(w, http.StatusOK, toNewsResponse(post))
}

// DeleteNews handles DELETE /api/news/{id}.
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := requireEntityByID(w, r, func(id int64) (store.Post, error) {
		return h.queries.GetPost(ctx, id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeletePost(ctx, post.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "news post deleted", "category", model.EventCategoryContent, "post_id", post.ID)
	writeDeleted(w, "News post")
}

// SlugExistsChecker is a function that checks if a slug exists (returns count and error).
type SlugExistsChecker func() (int64, error)

// checkSlugUnique reports whether the slug is free. When it is taken or
// the check fails, a response has already been written.
func (h *Handler) checkSlugUnique(w http.ResponseWriter, r *http.Request, slugExists SlugExistsChecker) bool {
	n, err := slugExists()
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}
	if n != 0 {
		writeServiceError(w, r, service.Invalid("slug", "slug already exists"))
		return false
	}
	return true
}
