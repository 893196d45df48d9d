// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides database access: connection setup, migrations and
// typed query methods for every persisted entity.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate value")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs typed queries against a database or transaction.
type Queries struct {
	db      DBTX
	dialect Dialect
}

// New returns Queries for a SQLite database.
func New(db DBTX) *Queries {
	return &Queries{db: db, dialect: DialectSQLite}
}

// NewWithDialect returns Queries for a database of the given dialect.
func NewWithDialect(db DBTX, d Dialect) *Queries {
	return &Queries{db: db, dialect: d}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

// Dialect returns the SQL dialect the queries are written for.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

// isUniqueViolation reports whether err comes from a unique constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	// modernc.org/sqlite and mattn/go-sqlite3 both report the constraint in the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// wrapUnique maps unique violations to ErrDuplicate.
func wrapUnique(err error) error {
	if isUniqueViolation(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// inClause returns "(?, ?, ...)" and the args for ids.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
