// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/util"
)

// AlbumResponse represents an album and its photos in API responses.
type AlbumResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CoverImage  string          `json:"coverImage"`
	AuthorID    *int64          `json:"authorId"`
	CreatedAt   time.Time       `json:"createdAt"`
	Photos      []PhotoResponse `json:"photos"`
}

// PhotoResponse represents a photo in API responses.
type PhotoResponse struct {
	ID      int64  `json:"id"`
	AlbumID int64  `json:"albumId"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// CreateAlbumRequest represents the request body for creating an album.
type CreateAlbumRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CoverImage  string   `json:"coverImage"`
	Images      []string `json:"images"`
}

// UpdateAlbumRequest lists the editable album fields. Images, when sent,
// replaces every photo of the album.
type UpdateAlbumRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CoverImage  *string   `json:"coverImage,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

func toAlbumResponse(a service.AlbumWithPhotos) AlbumResponse {
	photos := make([]PhotoResponse, 0, len(a.Photos))
	for _, p := range a.Photos {
		photos = append(photos, PhotoResponse{ID: p.ID, AlbumID: p.AlbumID, URL: p.Url, Caption: p.Caption})
	}
	return AlbumResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		CoverImage:  a.CoverImage,
		AuthorID:    util.Int64Ptr(a.AuthorID),
		CreatedAt:   a.CreatedAt,
		Photos:      photos,
	}
}

// ListAlbums handles GET /api/gallery.
func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.gallery.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]AlbumResponse, 0, len(albums))
	for _, a := range albums {
		resp = append(resp, toAlbumResponse(a))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetAlbum handles GET /api/gallery/{id}.
func (h *Handler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	album, ok := requireEntityByID(w, r, func(id int64) (service.AlbumWithPhotos, error) {
		return h.gallery.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toAlbumResponse(album))
}

// CreateAlbum handles POST /api/gallery.
func (h *Handler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req CreateAlbumRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var authorID sql.NullInt64
	if c := h.currentSession(r); c != nil {
		authorID = util.NullInt64FromValue(c.UserID)
	}

	album, err := h.gallery.Create(r.Context(), service.AlbumInput{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Images:      req.Images,
		AuthorID:    authorID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toAlbumResponse(album))
}

// UpdateAlbum handles PUT /api/gallery/{id}.
func (h *Handler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAlbumRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	album, err := h.gallery.Update(r.Context(), id, service.AlbumPatch{
		Name:        req.Name,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Images:      req.Images,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toAlbumResponse(album))
}

// DeleteAlbum handles DELETE /api/gallery/{id}. Photos go with the album.
func (h *Handler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.gallery.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDeleted(w, "Album")
}

