// Package sqlstore implements core.EntityStore on PostgreSQL (pgx) and
// SQLite (database/sql). Both engines share the same SQL; dialect covers
// the differences.
package sqlstore

import (
	"context"

	"github.com/rs/zerolog"

	"warehouse-backend/internal/core"
)

// Store is a core.EntityStore over one database.
type Store struct {
	d   *dialect
	drv driver
	log zerolog.Logger
}

func newStore(d *dialect, drv driver, log zerolog.Logger) *Store {
	return &Store{d: d, drv: drv, log: log.With().Str("component", "sqlstore").Str("dialect", d.name).Logger()}
}

// Dialect returns "postgres" or "sqlite".
func (s *Store) Dialect() string { return s.d.name }

func (s *Store) Begin(ctx context.Context, opts core.TxOptions) (core.Tx, error) {
	c, err := s.drv.begin(ctx, opts)
	if err != nil {
		return nil, s.d.wrapErr("begin", err)
	}
	return &unit{d: s.d, c: c}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.d.wrapErr("ping", s.drv.ping(ctx))
}

func (s *Store) Close() { s.drv.close() }

// unit is one open transaction.
type unit struct {
	d    *dialect
	c    txConn
	done bool
}

func (u *unit) Warehouses() core.Table[core.Warehouse] {
	return &table[core.Warehouse]{u: u, s: warehouseSchema}
}

func (u *unit) Categories() core.Table[core.Category] {
	return &table[core.Category]{u: u, s: categorySchema}
}

func (u *unit) Products() core.Table[core.Product] {
	return &table[core.Product]{u: u, s: productSchema}
}

func (u *unit) Statuses() core.Table[core.OrderStatus] {
	return &table[core.OrderStatus]{u: u, s: statusSchema}
}

func (u *unit) Employees() core.Table[core.Employee] {
	return &table[core.Employee]{u: u, s: employeeSchema}
}

func (u *unit) Users() core.Table[core.User] {
	return &table[core.User]{u: u, s: userSchema}
}

func (u *unit) Stock() core.StockTable {
	return &stockTable{table[core.Stock]{u: u, s: stockSchema}}
}

func (u *unit) Orders() core.OrderTable {
	return &orderTable{table[core.Order]{u: u, s: orderSchema}}
}

func (u *unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.d.wrapErr("commit", u.c.Commit(ctx))
}

func (u *unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.d.wrapErr("rollback", u.c.Rollback(ctx))
}
