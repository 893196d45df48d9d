// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/storage"
	"github.com/olegiv/dhefar-go/internal/store"
)

// AlbumWithPhotos is an album and its photos.
type AlbumWithPhotos struct {
	store.Album
	Photos []store.Photo
}

// AlbumInput holds the fields of a new album.
type AlbumInput struct {
	Name        string
	Description string
	CoverImage  string
	Images      []string
	AuthorID    sql.NullInt64
}

// AlbumPatch lists the editable album fields. A non-nil Images replaces
// every photo of the album.
type AlbumPatch struct {
	Name        *string
	Description *string
	CoverImage  *string
	Images      *[]string
}

// GalleryService manages albums and photos. Every write that touches both
// tables runs in one transaction. Deleting an album also removes its
// uploaded gallery files once nothing else refers to them.
type GalleryService struct {
	db      *sql.DB
	queries *store.Queries
	storage storage.Storage
	now     func() time.Time
}

// NewGalleryService creates a new GalleryService. st may be nil, in which
// case files are left in place.
func NewGalleryService(db *sql.DB, q *store.Queries, st storage.Storage) *GalleryService {
	return &GalleryService{db: db, queries: q, storage: st, now: time.Now}
}

// List returns all albums newest first, each with its photos.
func (s *GalleryService) List(ctx context.Context) ([]AlbumWithPhotos, error) {
	albums, err := s.queries.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	photos, err := s.queries.ListAllPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}

	byAlbum := make(map[int64][]store.Photo)
	for _, p := range photos {
		byAlbum[p.AlbumID] = append(byAlbum[p.AlbumID], p)
	}

	out := make([]AlbumWithPhotos, 0, len(albums))
	for _, a := range albums {
		ps := byAlbum[a.ID]
		if ps == nil {
			ps = []store.Photo{}
		}
		out = append(out, AlbumWithPhotos{Album: a, Photos: ps})
	}
	return out, nil
}

// Get returns one album with its photos.
func (s *GalleryService) Get(ctx context.Context, id int64) (AlbumWithPhotos, error) {
	return loadAlbum(ctx, s.queries, id)
}

// Create stores an album and its photos.
func (s *GalleryService) Create(ctx context.Context, in AlbumInput) (AlbumWithPhotos, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return AlbumWithPhotos{}, Invalid("name", "name is required")
	}
	images := cleanImages(in.Images)
	if in.CoverImage == "" && len(images) > 0 {
		in.CoverImage = images[0]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := s.queries.WithTx(tx)

	album, err := q.CreateAlbum(ctx, store.CreateAlbumParams{
		Name:        in.Name,
		Description: in.Description,
		CoverImage:  in.CoverImage,
		AuthorID:    in.AuthorID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("creating album: %w", err)
	}
	if err := insertPhotos(ctx, q, album.ID, images); err != nil {
		return AlbumWithPhotos{}, err
	}

	result, err := loadAlbum(ctx, q, album.ID)
	if err != nil {
		return AlbumWithPhotos{}, err
	}
	if err := tx.Commit(); err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("committing album: %w", err)
	}

	slog.InfoContext(ctx, "album created", "category", model.EventCategoryContent, "album_id", album.ID, "photos", len(images))
	return result, nil
}

// Update applies patch to an album.
func (s *GalleryService) Update(ctx context.Context, id int64, patch AlbumPatch) (AlbumWithPhotos, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := s.queries.WithTx(tx)

	album, err := q.GetAlbum(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return AlbumWithPhotos{}, ErrNotFound
	}
	if err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("loading album: %w", err)
	}

	params := store.UpdateAlbumParams{
		ID:          id,
		Name:        album.Name,
		Description: album.Description,
		CoverImage:  album.CoverImage,
	}
	if patch.Name != nil {
		params.Name = strings.TrimSpace(*patch.Name)
		if params.Name == "" {
			return AlbumWithPhotos{}, Invalid("name", "name is required")
		}
	}
	if patch.Description != nil {
		params.Description = *patch.Description
	}
	if patch.CoverImage != nil {
		params.CoverImage = *patch.CoverImage
	}
	if err := q.UpdateAlbum(ctx, params); err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("updating album: %w", err)
	}

	if patch.Images != nil {
		if err := q.DeletePhotosByAlbum(ctx, id); err != nil {
			return AlbumWithPhotos{}, fmt.Errorf("removing photos: %w", err)
		}
		if err := insertPhotos(ctx, q, id, cleanImages(*patch.Images)); err != nil {
			return AlbumWithPhotos{}, err
		}
	}

	result, err := loadAlbum(ctx, q, id)
	if err != nil {
		return AlbumWithPhotos{}, err
	}
	if err := tx.Commit(); err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("committing album: %w", err)
	}
	return result, nil
}

// Delete removes an album and all its photos.
func (s *GalleryService) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := s.queries.WithTx(tx)

	album, err := loadAlbum(ctx, q, id)
	if err != nil {
		return err
	}

	if err := q.DeletePhotosByAlbum(ctx, id); err != nil {
		return fmt.Errorf("removing photos: %w", err)
	}
	if err := q.DeleteAlbum(ctx, id); err != nil {
		return fmt.Errorf("deleting album: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing album delete: %w", err)
	}

	slog.InfoContext(ctx, "album deleted", "category", model.EventCategoryContent, "album_id", id)
	s.removeUnusedFiles(ctx, albumFiles(album))
	return nil
}

// albumFiles returns the distinct image URLs of an album, cover first.
func albumFiles(a AlbumWithPhotos) []string {
	urls := make([]string, 0, len(a.Photos)+1)
	seen := make(map[string]bool, len(a.Photos)+1)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	add(a.CoverImage)
	for _, p := range a.Photos {
		add(p.Url)
	}
	return urls
}

// removeUnusedFiles deletes uploaded gallery files that no remaining album
// uses. Failures are logged and do not undo the album delete.
func (s *GalleryService) removeUnusedFiles(ctx context.Context, urls []string) {
	if s.storage == nil {
		return
	}
	for _, url := range urls {
		if !strings.Contains(url, "/"+model.UploadFolderGallery+"/") {
			continue
		}
		n, err := s.queries.CountImageReferences(ctx, url)
		if err != nil {
			slog.WarnContext(ctx, "checking album file references failed",
				"category", model.EventCategoryUpload, "url", url, "error", err)
			continue
		}
		if n > 0 {
			continue
		}
		if err := s.storage.Delete(ctx, url); err != nil && !errors.Is(err, storage.ErrForeignURL) {
			slog.WarnContext(ctx, "removing album file failed",
				"category", model.EventCategoryUpload, "url", url, "error", err)
		}
	}
}

func loadAlbum(ctx context.Context, q *store.Queries, id int64) (AlbumWithPhotos, error) {
	album, err := q.GetAlbum(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return AlbumWithPhotos{}, ErrNotFound
	}
	if err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("loading album: %w", err)
	}
	photos, err := q.ListPhotosByAlbum(ctx, id)
	if err != nil {
		return AlbumWithPhotos{}, fmt.Errorf("loading photos: %w", err)
	}
	return AlbumWithPhotos{Album: album, Photos: photos}, nil
}

func insertPhotos(ctx context.Context, q *store.Queries, albumID int64, urls []string) error {
	for _, u := range urls {
		if _, err := q.CreatePhoto(ctx, store.CreatePhotoParams{AlbumID: albumID, Url: u}); err != nil {
			return fmt.Errorf("adding photo: %w", err)
		}
	}
	return nil
}

// cleanImages drops blank entries.
func cleanImages(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
