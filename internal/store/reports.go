// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Report is a published annual report.
type Report struct {
	ID        int64
	Title     string
	Year      int64
	Summary   string
	PdfUrl    string
	CreatedAt time.Time
}

const reportColumns = `id, title, year, summary, pdf_url, created_at`

func scanReport(row scanner) (Report, error) {
	var r Report
	err := row.Scan(&r.ID, &r.Title, &r.Year, &r.Summary, &r.PdfUrl, &r.CreatedAt)
	return r, err
}

// CreateReportParams holds the values for a new report.
type CreateReportParams struct {
	Title     string
	Year      int64
	Summary   string
	PdfUrl    string
	CreatedAt time.Time
}

// CreateReport inserts a report and returns the stored row.
func (q *Queries) CreateReport(ctx context.Context, arg CreateReportParams) (Report, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reports (title, year, summary, pdf_url, created_at) VALUES (?, ?, ?, ?, ?)`,
		arg.Title, arg.Year, arg.Summary, arg.PdfUrl, arg.CreatedAt,
	)
	if err != nil {
		return Report{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Report{}, err
	}
	return q.GetReport(ctx, id)
}

// GetReport returns the report with the given id.
func (q *Queries) GetReport(ctx context.Context, id int64) (Report, error) {
	return scanReport(q.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id))
}

// ListReports returns all reports, most recent year first.
func (q *Queries) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM reports ORDER BY year DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// CountReports returns the number of reports.
func (q *Queries) CountReports(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n)
	return n, err
}

// UpdateReportParams holds every editable field of a report.
type UpdateReportParams struct {
	ID      int64
	Title   string
	Year    int64
	Summary string
	PdfUrl  string
}

// UpdateReport writes all editable fields and returns the stored row.
func (q *Queries) UpdateReport(ctx context.Context, arg UpdateReportParams) (Report, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE reports SET title = ?, year = ?, summary = ?, pdf_url = ? WHERE id = ?`,
		arg.Title, arg.Year, arg.Summary, arg.PdfUrl, arg.ID,
	)
	if err != nil {
		return Report{}, err
	}
	return q.GetReport(ctx, arg.ID)
}

// DeleteReport removes a report.
func (q *Queries) DeleteReport(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	return err
}
