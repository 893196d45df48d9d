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

// BankAccountResponse represents a bank account in API responses.
type BankAccountResponse struct {
	ID            int64     `json:"id"`
	BankName      string    `json:"bankName"`
	AccountName   string    `json:"accountName"`
	AccountNumber string    `json:"accountNumber"`
	IBAN          string    `json:"iban"`
	Type          string    `json:"type"`
	Logo          string    `json:"logo"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BankAccountRequest is the body of bank account create and update calls.
type BankAccountRequest struct {
	BankName      *string `json:"bankName,omitempty"`
	AccountName   *string `json:"accountName,omitempty"`
	AccountNumber *string `json:"accountNumber,omitempty"`
	IBAN          *string `json:"iban,omitempty"`
	Type          *string `json:"type,omitempty"`
	Logo          *string `json:"logo,omitempty"`
}

func toBankAccountResponse(b store.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:            b.ID,
		BankName:      b.BankName,
		AccountName:   b.AccountName,
		AccountNumber: b.AccountNumber,
		IBAN:          b.Iban,
		Type:          b.Type,
		Logo:          b.Logo,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// bankAccountFields is the merged, trimmed form of a request.
type bankAccountFields struct {
	bankName, accountName, accountNumber, iban, accountType, logo string
}

func (f *bankAccountFields) apply(req BankAccountRequest) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&f.bankName, req.BankName)
	set(&f.accountName, req.AccountName)
	set(&f.accountNumber, req.AccountNumber)
	set(&f.iban, req.IBAN)
	set(&f.accountType, req.Type)
	set(&f.logo, req.Logo)
	f.iban = strings.ToUpper(strings.ReplaceAll(f.iban, " ", ""))
}

func (f *bankAccountFields) validate() error {
	verr := &service.ValidationError{}
	if f.bankName == "" {
		verr.Add("bankName", "bankName is required")
	}
	if f.accountName == "" {
		verr.Add("accountName", "accountName is required")
	}
	if f.accountNumber == "" {
		verr.Add("accountNumber", "accountNumber is required")
	}
	if f.iban == "" {
		verr.Add("iban", "iban is required")
	}
	return verr.Err()
}

// ListBankAccounts handles GET /api/bank-accounts.
func (h *Handler) ListBankAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.queries.ListBankAccounts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]BankAccountResponse, 0, len(accounts))
	for _, b := range accounts {
		resp = append(resp, toBankAccountResponse(b))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetBankAccount handles GET /api/bank-accounts/{id}.
func (h *Handler) GetBankAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := requireEntityByID(w, r, func(id int64) (store.BankAccount, error) {
		return h.queries.GetBankAccount(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toBankAccountResponse(account))
}

// CreateBankAccount handles POST /api/bank-accounts.
func (h *Handler) CreateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req BankAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var f bankAccountFields
	f.apply(req)
	if err := f.validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	now := h.now().UTC()
	account, err := h.queries.CreateBankAccount(r.Context(), store.CreateBankAccountParams{
		BankName:      f.bankName,
		AccountName:   f.accountName,
		AccountNumber: f.accountNumber,
		Iban:          f.iban,
		Type:          f.accountType,
		Logo:          f.logo,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "bank account created", "category", model.EventCategoryContent, "account_id", account.ID)
	WriteJSON(w, http.StatusCreated, toBankAccountResponse(account))
}

// UpdateBankAccount handles PUT /api/bank-accounts/{id}.
func (h *Handler) UpdateBankAccount(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, func(id int64) (store.BankAccount, error) {
		return h.queries.GetBankAccount(r.Context(), id)
	})
	if !ok {
		return
	}

	var req BankAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f := bankAccountFields{
		bankName:      existing.BankName,
		accountName:   existing.AccountName,
		accountNumber: existing.AccountNumber,
		iban:          existing.Iban,
		accountType:   existing.Type,
		logo:          existing.Logo,
	}
	f.apply(req)
	if err := f.validate(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	account, err := h.queries.UpdateBankAccount(r.Context(), store.UpdateBankAccountParams{
		ID:            existing.ID,
		BankName:      f.bankName,
		AccountName:   f.accountName,
		AccountNumber: f.accountNumber,
		Iban:          f.iban,
		Type:          f.accountType,
		Logo:          f.logo,
		UpdatedAt:     h.now().UTC(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "bank account updated", "category", model.EventCategoryContent, "account_id", account.ID)
	WriteJSON(w, http.StatusOK, toBankAccountResponse(account))
}

// DeleteBankAccount handles DELETE /api/bank-accounts/{id}.
func (h *Handler) DeleteBankAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := requireEntityByID(w, r, func(id int64) (store.BankAccount, error) {
		return h.queries.GetBankAccount(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteBankAccount(r.Context(), account.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "bank account deleted", "category", model.EventCategoryContent, "account_id", account.ID)
	writeDeleted(w, "Bank account")
}
