package sqlstore

import (
	"context"
	"fmt"

	"warehouse-backend/internal/core"
)

type stockTable struct {
	table[core.Stock]
}

func (t *stockTable) Find(ctx context.Context, productID, warehouseID int64, lock bool) (*core.Stock, error) {
	b := &binder{d: t.u.d}
	q := fmt.Sprintf("SELECT %s FROM stock WHERE product_id = %s AND warehouse_id = %s AND NOT archived",
		t.s.selectList(), b.bind(productID), b.bind(warehouseID))
	if lock {
		q += t.u.d.lock
	}
	var st core.Stock
	if err := t.u.c.QueryRow(ctx, q, b.args...).Scan(t.s.scanTargets(&st)...); err != nil {
		return nil, t.u.d.wrapErr("find stock", err)
	}
	return &st, nil
}

// Decrement only applies when the row still holds qty units, so a reader that
// raced past an unlocked check cannot drive the quantity negative.
func (t *stockTable) Decrement(ctx context.Context, id, qty int64) error {
	b := &binder{d: t.u.d}
	q := fmt.Sprintf("UPDATE stock SET quantity = quantity - %s, updated_at = %s WHERE id = %s AND NOT archived AND quantity >= %s",
		b.bind(qty), t.u.d.now, b.bind(id), b.bind(qty))
	n, err := t.u.c.Exec(ctx, q, b.args...)
	if err != nil {
		return t.u.d.wrapErr("decrement stock", err)
	}
	if n == 0 {
		return core.Conflict("stock %d changed concurrently, retry", id)
	}
	return nil
}

func (t *stockTable) Adjust(ctx context.Context, id, delta int64) error {
	b := &binder{d: t.u.d}
	q := fmt.Sprintf("UPDATE stock SET quantity = quantity + %s, updated_at = %s WHERE id = %s AND quantity + %s >= 0",
		b.bind(delta), t.u.d.now, b.bind(id), b.bind(delta))
	n, err := t.u.c.Exec(ctx, q, b.args...)
	if err != nil {
		return t.u.d.wrapErr("adjust stock", err)
	}
	if n == 0 {
		if _, err := t.Get(ctx, id); err != nil {
			return err
		}
		return core.Domain("stock %d cannot drop below zero (delta %d)", id, delta)
	}
	return nil
}
