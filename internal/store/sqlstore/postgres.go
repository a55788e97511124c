package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"warehouse-backend/internal/core"
)

// NewPostgres returns a store over pool. The store owns the pool and closes
// it in Close.
func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return newStore(&postgresDialect, &pgDriver{pool: pool}, log)
}

type pgDriver struct {
	pool *pgxpool.Pool
}

func (d *pgDriver) begin(ctx context.Context, opts core.TxOptions) (txConn, error) {
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	switch opts.Isolation {
	case core.RepeatableRead:
		txOpts.IsoLevel = pgx.RepeatableRead
	case core.Serializable:
		txOpts.IsoLevel = pgx.Serializable
	}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := d.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

func (d *pgDriver) ping(ctx context.Context) error { return d.pool.Ping(ctx) }

func (d *pgDriver) close() { d.pool.Close() }

// advisoryLock runs fn while holding a session advisory lock on a dedicated
// connection, so two migrators never interleave.
func (d *pgDriver) advisoryLock(ctx context.Context, key int64, fn func() error) error {
	c, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for lock: %w", err)
	}
	defer c.Release()

	var locked bool
	if err := c.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked); err != nil {
		return fmt.Errorf("failed to query advisory lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another migrator is currently running")
	}
	defer c.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", key)

	return fn()
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) QueryRow(ctx context.Context, query string, args ...any) row {
	return pgRow{t.tx.QueryRow(ctx, query, args...)}
}

func (t *pgTx) Query(ctx context.Context, query string, args ...any) (rows, error) {
	r, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (t *pgTx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

type pgRow struct {
	r pgx.Row
}

func (r pgRow) Scan(dest ...any) error {
	err := r.r.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNoRow
	}
	return err
}
