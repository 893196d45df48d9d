// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/service"
	"github.com/olegiv/dhefar-go/internal/store"
)

// ReportResponse represents a report in API responses.
type ReportResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Year      int64     `json:"year"`
	Summary   string    `json:"summary"`
	PdfURL    string    `json:"pdfUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReportRequest is the body of report create and update calls.
// Description and FileURL are accepted as aliases of Summary and PdfURL;
// the canonical name wins when both are sent.
type ReportRequest struct {
	Title       *string `json:"title,omitempty"`
	Year        *int64  `json:"year,omitempty"`
	Summary     *string `json:"summary,omitempty"`
	PdfURL      *string `json:"pdfUrl,omitempty"`
	Description *string `json:"description,omitempty"`
	FileURL     *string `json:"fileUrl,omitempty"`
}

func (req ReportRequest) summary() *string {
	if req.Summary != nil {
		return req.Summary
	}
	return req.Description
}

func (req ReportRequest) pdfURL() *string {
	if req.PdfURL != nil {
		return req.PdfURL
	}
	return req.FileURL
}

func toReportResponse(r store.Report) ReportResponse {
	return ReportResponse{
		ID:        r.ID,
		Title:     r.Title,
		Year:      r.Year,
		Summary:   r.Summary,
		PdfURL:    r.PdfUrl,
		CreatedAt: r.CreatedAt,
	}
}

func validateReportYear(verr *service.ValidationError, year int64) {
	if year < 1900 || year > 9999 {
		verr.Add("year", "year must be a four-digit year")
	}
}

// ListReports handles GET /api/reports. Most recent year first.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.queries.ListReports(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]ReportResponse, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, toReportResponse(rep))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetReport handles GET /api/reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := requireEntityByID(w, r, func(id int64) (store.Report, error) {
		return h.queries.GetReport(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toReportResponse(report))
}

// CreateReport handles POST /api/reports.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.CreateReportParams{CreatedAt: h.now().UTC()}
	verr := &service.ValidationError{}
	if req.Title != nil {
		params.Title = strings.TrimSpace(*req.Title)
	}
	if params.Title == "" {
		verr.Add("title", "title is required")
	}
	if req.Year == nil {
		verr.Add("year", "year is required")
	} else {
		params.Year = *req.Year
		validateReportYear(verr, params.Year)
	}
	if s := req.summary(); s != nil {
		params.Summary = strings.TrimSpace(*s)
	}
	if u := req.pdfURL(); u != nil {
		params.PdfUrl = strings.TrimSpace(*u)
	}
	if err := verr.Err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	report, err := h.queries.CreateReport(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "report created", "category", model.EventCategoryContent, "report_id", report.ID)
	WriteJSON(w, http.StatusCreated, toReportResponse(report))
}

// UpdateReport handles PUT /api/reports/{id}.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, func(id int64) (store.Report, error) {
		return h.queries.GetReport(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := store.UpdateReportParams{
		ID:      existing.ID,
		Title:   existing.Title,
		Year:    existing.Year,
		Summary: existing.Summary,
		PdfUrl:  existing.PdfUrl,
	}
	verr := &service.ValidationError{}
	if req.Title != nil {
		params.Title = strings.TrimSpace(*req.Title)
		if params.Title == "" {
			verr.Add("title", "title is required")
		}
	}
	if req.Year != nil {
		params.Year = *req.Year
		validateReportYear(verr, params.Year)
	}
	if s := req.summary(); s != nil {
		params.Summary = strings.TrimSpace(*s)
	}
	if u := req.pdfURL(); u != nil {
		params.PdfUrl = strings.TrimSpace(*u)
	}
	if err := verr.Err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	report, err := h.queries.UpdateReport(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "report updated", "category", model.EventCategoryContent, "report_id", report.ID)
	WriteJSON(w, http.StatusOK, toReportResponse(report))
}

// DeleteReport handles DELETE /api/reports/{id}.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	report, ok := requireEntityByID(w, r, func(id int64) (store.Report, error) {
		return h.queries.GetReport(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteReport(r.Context(), report.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "report deleted", "category", model.EventCategoryContent, "report_id", report.ID)
	writeDeleted(w, "Report")
}
