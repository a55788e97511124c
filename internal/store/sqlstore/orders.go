package sqlstore

import (
	"context"
	"fmt"

	"warehouse-backend/internal/core"
)

type orderTable struct {
	table[core.Order]
}

// InsertLines stores the lines of orderID and fills in their ids.
func (t *orderTable) InsertLines(ctx context.Context, orderID int64, lines []core.OrderLine) error {
	for i := range lines {
		l := &lines[i]
		l.OrderID = orderID
		b := &binder{d: t.u.d}
		q := fmt.Sprintf(`INSERT INTO order_lines (order_id, product_id, quantity, unit_price, line_total)
			VALUES (%s, %s, %s, %s, %s) RETURNING id`,
			b.bind(l.OrderID), b.bind(l.ProductID), b.bind(l.Quantity), b.bind(l.UnitPrice), b.bind(l.LineTotal))
		if err := t.u.c.QueryRow(ctx, q, b.args...).Scan(&l.ID); err != nil {
			return t.u.d.wrapErr("insert order line", err)
		}
	}
	return nil
}

func (t *orderTable) Lines(ctx context.Context, orderID int64) ([]core.OrderLine, error) {
	q := fmt.Sprintf(`SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_lines WHERE order_id = %s ORDER BY id`, t.u.d.placeholder(1))
	rs, err := t.u.c.Query(ctx, q, orderID)
	if err != nil {
		return nil, t.u.d.wrapErr("list order lines", err)
	}
	defer rs.Close()

	var lines []core.OrderLine
	for rs.Next() {
		var l core.OrderLine
		if err := rs.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, t.u.d.wrapErr("scan order line", err)
		}
		lines = append(lines, l)
	}
	if err := rs.Err(); err != nil {
		return nil, t.u.d.wrapErr("list order lines", err)
	}
	return lines, nil
}
