// internal/repository/repository.go

// Package repository persists saved ideas and user profiles in PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrBackendFailed = errors.New("BACKEND_FAILED")
	ErrNotFound      = errors.New("NOT_FOUND")
)

// DBTX is the subset of *sql.DB the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func backendErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrBackendFailed, op, err)
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
