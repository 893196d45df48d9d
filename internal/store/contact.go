// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

const contactColumns = `id, name, email, phone, subject, message, is_read, created_at`

func scanContactMessage(row scanner) (ContactMessage, error) {
	var m ContactMessage
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt)
	return m, err
}

// CreateContactMessageParams holds the values for a new contact message.
type CreateContactMessageParams struct {
	Name      string
	Email     string
	Phone     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessage stores an unread message.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, phone, subject, message, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Email, arg.Phone, arg.Subject, arg.Message, false, arg.CreatedAt,
	)
	if err != nil {
		return ContactMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ContactMessage{}, err
	}
	return scanContactMessage(q.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = ?`, id))
}

// ListContactMessages returns messages newest first, optionally unread only.
func (q *Queries) ListContactMessages(ctx context.Context, unreadOnly bool) ([]ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages`
	var args []any
	if unreadOnly {
		query += ` WHERE is_read = ?`
		args = append(args, false)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []ContactMessage{}
	for rows.Next() {
		m, err := scanContactMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CountUnreadContactMessages returns the number of unread messages.
func (q *Queries) CountUnreadContactMessages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages WHERE is_read = ?`, false).Scan(&n)
	return n, err
}

// MarkAllContactMessagesRead marks every unread message read and returns
// the number of rows changed.
func (q *Queries) MarkAllContactMessagesRead(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = ? WHERE is_read = ?`, true, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkContactMessagesRead marks the given messages read.
func (q *Queries) MarkContactMessagesRead(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	res, err := q.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = ? WHERE id IN `+in, append([]any{true}, args...)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteContactMessages removes the given messages and returns how many were deleted.
func (q *Queries) DeleteContactMessages(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	res, err := q.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id IN `+in, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
