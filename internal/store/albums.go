// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Album is a gallery album.
type Album struct {
	ID          int64
	Name        string
	Description string
	CoverImage  string
	AuthorID    sql.NullInt64
	CreatedAt   time.Time
}

// Photo belongs to exactly one album.
type Photo struct {
	ID      int64
	AlbumID int64
	Url     string
	Caption string
}

const albumColumns = `id, name, description, cover_image, author_id, created_at`

func scanAlbum(row scanner) (Album, error) {
	var a Album
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.CoverImage, &a.AuthorID, &a.CreatedAt)
	return a, err
}

// CreateAlbumParams holds the values for a new album.
type CreateAlbumParams struct {
	Name        string
	Description string
	CoverImage  string
	AuthorID    sql.NullInt64
	CreatedAt   time.Time
}

// CreateAlbum inserts an album and returns the stored row.
func (q *Queries) CreateAlbum(ctx context.Context, arg CreateAlbumParams) (Album, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO albums (name, description, cover_image, author_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		arg.Name, arg.Description, arg.CoverImage, arg.AuthorID, arg.CreatedAt,
	)
	if err != nil {
		return Album{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Album{}, err
	}
	return q.GetAlbum(ctx, id)
}

// GetAlbum returns the album with the given id.
func (q *Queries) GetAlbum(ctx context.Context, id int64) (Album, error) {
	return scanAlbum(q.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
}

// ListAlbums returns all albums, newest first.
func (q *Queries) ListAlbums(ctx context.Context) ([]Album, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+albumColumns+` FROM albums ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Album{}
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// CountAlbums returns the number of albums.
func (q *Queries) CountAlbums(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&n)
	return n, err
}

// UpdateAlbumParams holds every editable field of an album.
type UpdateAlbumParams struct {
	ID          int64
	Name        string
	Description string
	CoverImage  string
}

// UpdateAlbum writes all editable fields.
func (q *Queries) UpdateAlbum(ctx context.Context, arg UpdateAlbumParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE albums SET name = ?, description = ?, cover_image = ? WHERE id = ?`,
		arg.Name, arg.Description, arg.CoverImage, arg.ID,
	)
	return err
}

// DeleteAlbum removes an album row. Photos must be removed first with
// DeletePhotosByAlbum in the same transaction.
func (q *Queries) DeleteAlbum(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	return err
}

// CreatePhotoParams holds the values for a new photo.
type CreatePhotoParams struct {
	AlbumID int64
	Url     string
	Caption string
}

// CreatePhoto inserts a photo.
func (q *Queries) CreatePhoto(ctx context.Context, arg CreatePhotoParams) (Photo, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO photos (album_id, url, caption) VALUES (?, ?, ?)`,
		arg.AlbumID, arg.Url, arg.Caption,
	)
	if err != nil {
		return Photo{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Photo{}, err
	}
	return Photo{ID: id, AlbumID: arg.AlbumID, Url: arg.Url, Caption: arg.Caption}, nil
}

func (q *Queries) listPhotos(ctx context.Context, query string, args ...any) ([]Photo, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.AlbumID, &p.Url, &p.Caption); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// ListPhotosByAlbum returns an album's photos in insertion order.
func (q *Queries) ListPhotosByAlbum(ctx context.Context, albumID int64) ([]Photo, error) {
	return q.listPhotos(ctx, `SELECT id, album_id, url, caption FROM photos WHERE album_id = ? ORDER BY id`, albumID)
}

// ListAllPhotos returns every photo grouped by album.
func (q *Queries) ListAllPhotos(ctx context.Context) ([]Photo, error) {
	return q.listPhotos(ctx, `SELECT id, album_id, url, caption FROM photos ORDER BY album_id, id`)
}

// CountPhotosByAlbum returns the number of photos referencing albumID.
func (q *Queries) CountPhotosByAlbum(ctx context.Context, albumID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos WHERE album_id = ?`, albumID).Scan(&n)
	return n, err
}

// CountPhotos returns the total number of photos.
func (q *Queries) CountPhotos(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM photos`).Scan(&n)
	return n, err
}

// DeletePhotosByAlbum removes every photo of an album.
func (q *Queries) DeletePhotosByAlbum(ctx context.Context, albumID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM photos WHERE album_id = ?`, albumID)
	return err
}

// CountImageReferences returns how many photos and album covers use url.
func (q *Queries) CountImageReferences(ctx context.Context, url string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM photos WHERE url = ?) + (SELECT COUNT(*) FROM albums WHERE cover_image = ?)`,
		url, url,
	).Scan(&n)
	return n, err
}
