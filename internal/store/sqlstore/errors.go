package sqlstore

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"warehouse-backend/internal/core"
)

// Postgres SQLSTATE codes the store reacts to.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgQueryCanceled        = "57014"
)

// wrapErr turns an engine error into a core error. Core errors and
// core.ErrNoRow pass through unchanged.
func (d *dialect) wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var cerr *core.Error
	if errors.Is(err, core.ErrNoRow) || errors.As(err, &cerr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return core.StoreFailure(op, err)
	}
	if mapped := d.classify(op, err); mapped != nil {
		return mapped
	}
	return core.StoreFailure(op, err)
}

func classifyPostgres(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return &core.Error{Kind: core.KindConflict, Detail: op + ": concurrent update, retry", Retryable: true, Err: err}
	case pgUniqueViolation:
		return &core.Error{Kind: core.KindDomain, Detail: op + ": duplicate " + pgErr.ConstraintName, Err: err}
	case pgForeignKeyViolation, pgCheckViolation:
		return &core.Error{Kind: core.KindDomain, Detail: op + ": " + pgErr.Message, Err: err}
	case pgQueryCanceled:
		return &core.Error{Kind: core.KindStore, Detail: op, Retryable: true, Err: err}
	}
	return nil
}

// classifySQLite matches on the message text so it works for both the cgo
// and the pure Go driver.
func classifySQLite(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return &core.Error{Kind: core.KindConflict, Detail: op + ": database busy, retry", Retryable: true, Err: err}
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &core.Error{Kind: core.KindDomain, Detail: op + ": duplicate " + strings.TrimSpace(after(msg, "UNIQUE constraint failed:")), Err: err}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"), strings.Contains(msg, "CHECK constraint failed"):
		return &core.Error{Kind: core.KindDomain, Detail: op + ": " + msg, Err: err}
	}
	return nil
}

func after(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}
