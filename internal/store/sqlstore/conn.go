package sqlstore

import (
	"context"

	"warehouse-backend/internal/core"
)

// row is satisfied by pgx.Row, *sql.Row, pgx.Rows and *sql.Rows.
type row interface {
	Scan(dest ...any) error
}

type rows interface {
	row
	Next() bool
	Err() error
	Close()
}

// conn is the statement surface a driver exposes inside a transaction.
type conn interface {
	// Exec returns the number of rows affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// QueryRow reports a missing row as core.ErrNoRow from Scan.
	QueryRow(ctx context.Context, query string, args ...any) row
	Query(ctx context.Context, query string, args ...any) (rows, error)
}

type txConn interface {
	conn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// driver opens transactions on one engine.
type driver interface {
	begin(ctx context.Context, opts core.TxOptions) (txConn, error)
	ping(ctx context.Context) error
	close()
}
