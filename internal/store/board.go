// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// BoardMember is a member of the fund's board.
type BoardMember struct {
	ID           int64
	Name         string
	Role         string
	Image        string
	DisplayOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const boardMemberColumns = `id, name, role, image, display_order, created_at, updated_at`

func scanBoardMember(row scanner) (BoardMember, error) {
	var m BoardMember
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Image, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// CreateBoardMemberParams holds the values for a new board member.
type CreateBoardMemberParams struct {
	Name         string
	Role         string
	Image        string
	DisplayOrder int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateBoardMember inserts a board member and returns the stored row.
func (q *Queries) CreateBoardMember(ctx context.Context, arg CreateBoardMemberParams) (BoardMember, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO board_members (name, role, image, display_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Role, arg.Image, arg.DisplayOrder, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return BoardMember{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return BoardMember{}, err
	}
	return q.GetBoardMember(ctx, id)
}

// GetBoardMember returns the board member with the given id.
func (q *Queries) GetBoardMember(ctx context.Context, id int64) (BoardMember, error) {
	return scanBoardMember(q.db.QueryRowContext(ctx, `SELECT `+boardMemberColumns+` FROM board_members WHERE id = ?`, id))
}

// ListBoardMembers returns board members by display order.
func (q *Queries) ListBoardMembers(ctx context.Context) ([]BoardMember, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+boardMemberColumns+` FROM board_members ORDER BY display_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []BoardMember{}
	for rows.Next() {
		m, err := scanBoardMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// UpdateBoardMemberParams holds every editable field of a board member.
type UpdateBoardMemberParams struct {
	ID           int64
	Name         string
	Role         string
	Image        string
	DisplayOrder int64
	UpdatedAt    time.Time
}

// UpdateBoardMember writes all editable fields and returns the stored row.
func (q *Queries) UpdateBoardMember(ctx context.Context, arg UpdateBoardMemberParams) (BoardMember, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE board_members SET name = ?, role = ?, image = ?, display_order = ?, updated_at = ? WHERE id = ?`,
		arg.Name, arg.Role, arg.Image, arg.DisplayOrder, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return BoardMember{}, err
	}
	return q.GetBoardMember(ctx, arg.ID)
}

// DeleteBoardMember removes a board member.
func (q *Queries) DeleteBoardMember(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM board_members WHERE id = ?`, id)
	return err
}

// CountBoardMembers returns the number of board members.
func (q *Queries) CountBoardMembers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM board_members`).Scan(&n)
	return n, err
}
