// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports_CRUD(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()

	w := s.do(http.MethodPost, "/api/reports", map[string]any{
		"title":       "Annual report",
		"year":        2023,
		"description": "Summary via alias",
		"fileUrl":     "/uploads/reports/2023.pdf",
	}, cookie)
	requireStatus(t, w, http.StatusCreated)
	created := decodeBody[ReportResponse](t, w)
	assert.Equal(t, int64(2023), created.Year)
	assert.Equal(t, "Summary via alias", created.Summary)
	assert.Equal(t, "/uploads/reports/2023.pdf", created.PdfURL)

	s.do(http.MethodPost, "/api/reports", map[string]any{"title": "Older", "year": 2021}, cookie)

	w = s.do(http.MethodGet, "/api/reports", nil, nil)
	requireStatus(t, w, http.StatusOK)
	list := decodeBody[[]ReportResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2023), list[0].Year, "newest year first")

	path := fmt.Sprintf("/api/reports/%d", created.ID)
	w = s.do(http.MethodPut, path, map[string]any{"summary": "canonical", "description": "alias"}, cookie)
	requireStatus(t, w, http.StatusOK)
	updated := decodeBody[ReportResponse](t, w)
	assert.Equal(t, "canonical", updated.Summary)
	assert.Equal(t, "Annual report", updated.Title)

	w = s.do(http.MethodDelete, path, nil, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"message":"Report deleted"}`, w.Body.String())

	w = s.do(http.MethodGet, path, nil, nil)
	requireErrorCode(t, w, http.StatusNotFound, "not_found")
}

func TestReports_Validation(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"year": 2023}, "title"},
		{"missing year", map[string]any{"title": "R"}, "year"},
		{"bad year", map[string]any{"title": "R", "year": 23}, "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/reports", tt.body, cookie)
			resp := requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")
			assert.Contains(t, resp.Fields, tt.field)
		})
	}
}

func TestBoardMembers_CRUD(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()

	w := s.do(http.MethodPost, "/api/board-members", map[string]any{"name": "Second", "role": "Treasurer", "display_order": 2}, cookie)
	requireStatus(t, w, http.StatusCreated)
	second := decodeBody[BoardMemberResponse](t, w)
	assert.Equal(t, int64(2), second.DisplayOrder)

	w = s.do(http.MethodPost, "/api/board-members", map[string]any{"name": "First", "role": "Chair", "displayOrder": 1}, cookie)
	requireStatus(t, w, http.StatusCreated)

	w = s.do(http.MethodGet, "/api/board-members", nil, nil)
	requireStatus(t, w, http.StatusOK)
	list := decodeBody[[]BoardMemberResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Name)

	path := fmt.Sprintf("/api/board-members/%d", second.ID)
	w = s.do(http.MethodPut, path, map[string]any{"displayOrder": 0}, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(0), decodeBody[BoardMemberResponse](t, w).DisplayOrder)

	w = s.do(http.MethodPost, "/api/board-members", map[string]any{"role": "Nameless"}, cookie)
	requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")

	w = s.do(http.MethodDelete, path, nil, cookie)
	requireStatus(t, w, http.StatusOK)
	w = s.do(http.MethodDelete, path, nil, cookie)
	requireErrorCode(t, w, http.StatusNotFound, "not_found")
}

func TestBankAccounts_CRUD(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()

	w := s.do(http.MethodPost, "/api/bank-accounts", BankAccountRequest{
		BankName:      strPtr("Bank Muscat"),
		AccountName:   strPtr("Dhefar Fund"),
		AccountNumber: strPtr("0123456789"),
		IBAN:          strPtr("om81 0270 0000 0123 4567 89"),
	}, cookie)
	requireStatus(t, w, http.StatusCreated)
	acct := decodeBody[BankAccountResponse](t, w)
	assert.Equal(t, "OM81027000000123456789", acct.IBAN)

	path := fmt.Sprintf("/api/bank-accounts/%d", acct.ID)
	w = s.do(http.MethodPut, path, BankAccountRequest{Type: strPtr("zakat")}, cookie)
	requireStatus(t, w, http.StatusOK)
	updated := decodeBody[BankAccountResponse](t, w)
	assert.Equal(t, "zakat", updated.Type)
	assert.Equal(t, "Bank Muscat", updated.BankName)

	w = s.do(http.MethodPut, path, BankAccountRequest{IBAN: strPtr("  ")}, cookie)
	resp := requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")
	assert.Contains(t, resp.Fields, "iban")

	w = s.do(http.MethodGet, "/api/bank-accounts", nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decodeBody[[]BankAccountResponse](t, w), 1)

	w = s.do(http.MethodDelete, path, nil, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"message":"Bank account deleted"}`, w.Body.String())
}

func strPtr(s string) *string { return &s }
