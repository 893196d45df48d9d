// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Post is a news post joined with its author's name.
type Post struct {
	ID         int64
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	Image      string
	Category   string
	Status     string
	AuthorID   sql.NullInt64
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const postSelect = `SELECT p.id, p.title, p.slug, p.excerpt, p.content, p.image, p.category, p.status,
	p.author_id, COALESCE(u.name, ''), p.created_at, p.updated_at
	FROM posts p LEFT JOIN users u ON u.id = p.author_id`

func scanPost(row scanner) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Image, &p.Category, &p.Status,
		&p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePostParams holds the values for a new post.
type CreatePostParams struct {
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Image     string
	Category  string
	Status    string
	AuthorID  sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreatePost inserts a post and returns the stored row.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (title, slug, excerpt, content, image, category, status, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Excerpt, arg.Content, arg.Image, arg.Category, arg.Status, arg.AuthorID,
		arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return Post{}, wrapUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, err
	}
	return q.GetPost(ctx, id)
}

// GetPost returns the post with the given id.
func (q *Queries) GetPost(ctx context.Context, id int64) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
}

// ListPostsParams filters a post listing. Empty Status and Category match everything.
type ListPostsParams struct {
	Status   string
	Category string
	Limit    int64
}

// ListPosts returns posts newest first.
func (q *Queries) ListPosts(ctx context.Context, arg ListPostsParams) ([]Post, error) {
	var where []string
	var args []any
	if arg.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, arg.Status)
	}
	if arg.Category != "" {
		where = append(where, "p.category = ?")
		args = append(args, arg.Category)
	}

	query := postSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC LIMIT ?"
	args = append(args, arg.Limit)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CountPostsBySlug returns how many posts use slug.
func (q *Queries) CountPostsBySlug(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

// CountPostsBySlugExcludingID returns how many other posts use slug.
func (q *Queries) CountPostsBySlugExcludingID(ctx context.Context, slug string, id int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE slug = ? AND id <> ?`, slug, id).Scan(&n)
	return n, err
}

// CountPostsByStatus returns the number of posts with status.
func (q *Queries) CountPostsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = ?`, status).Scan(&n)
	return n, err
}

// UpdatePostParams holds every editable field of a post.
type UpdatePostParams struct {
	ID        int64
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Image     string
	Category  string
	Status    string
	UpdatedAt time.Time
}

// UpdatePost writes all editable fields and returns the stored row.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (Post, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, image = ?, category = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Excerpt, arg.Content, arg.Image, arg.Category, arg.Status, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return Post{}, wrapUnique(err)
	}
	return q.GetPost(ctx, arg.ID)
}

// DeletePost removes a post.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}
