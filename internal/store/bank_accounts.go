// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// BankAccount is a donation account published on the site.
type BankAccount struct {
	ID            int64
	BankName      string
	AccountName   string
	AccountNumber string
	Iban          string
	Type          string
	Logo          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const bankAccountColumns = `id, bank_name, account_name, account_number, iban, type, logo, created_at, updated_at`

func scanBankAccount(row scanner) (BankAccount, error) {
	var b BankAccount
	err := row.Scan(&b.ID, &b.BankName, &b.AccountName, &b.AccountNumber, &b.Iban, &b.Type, &b.Logo, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// CreateBankAccountParams holds the values for a new bank account.
type CreateBankAccountParams struct {
	BankName      string
	AccountName   string
	AccountNumber string
	Iban          string
	Type          string
	Logo          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateBankAccount inserts a bank account and returns the stored row.
func (q *Queries) CreateBankAccount(ctx context.Context, arg CreateBankAccountParams) (BankAccount, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO bank_accounts (bank_name, account_name, account_number, iban, type, logo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.BankName, arg.AccountName, arg.AccountNumber, arg.Iban, arg.Type, arg.Logo, arg.CreatedAt, arg.UpdatedAt,
	)
	if err != nil {
		return BankAccount{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return BankAccount{}, err
	}
	return q.GetBankAccount(ctx, id)
}

// GetBankAccount returns the bank account with the given id.
func (q *Queries) GetBankAccount(ctx context.Context, id int64) (BankAccount, error) {
	return scanBankAccount(q.db.QueryRowContext(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = ?`, id))
}

// ListBankAccounts returns bank accounts in creation order.
func (q *Queries) ListBankAccounts(ctx context.Context) ([]BankAccount, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+bankAccountColumns+` FROM bank_accounts ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []BankAccount{}
	for rows.Next() {
		b, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// UpdateBankAccountParams holds every editable field of a bank account.
type UpdateBankAccountParams struct {
	ID            int64
	BankName      string
	AccountName   string
	AccountNumber string
	Iban          string
	Type          string
	Logo          string
	UpdatedAt     time.Time
}

// UpdateBankAccount writes all editable fields and returns the stored row.
func (q *Queries) UpdateBankAccount(ctx context.Context, arg UpdateBankAccountParams) (BankAccount, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE bank_accounts SET bank_name = ?, account_name = ?, account_number = ?, iban = ?, type = ?, logo = ?, updated_at = ?
		WHERE id = ?`,
		arg.BankName, arg.AccountName, arg.AccountNumber, arg.Iban, arg.Type, arg.Logo, arg.UpdatedAt, arg.ID,
	)
	if err != nil {
		return BankAccount{}, err
	}
	return q.GetBankAccount(ctx, arg.ID)
}

// DeleteBankAccount removes a bank account.
func (q *Queries) DeleteBankAccount(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = ?`, id)
	return err
}

// CountBankAccounts returns the number of bank accounts.
func (q *Queries) CountBankAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bank_accounts`).Scan(&n)
	return n, err
}
