package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"warehouse-backend/internal/core"
)

// table implements core.Table for any entity described by a schema.
type table[T any] struct {
	u *unit
	s *schema[T]
}

func (t *table[T]) Get(ctx context.Context, id int64) (*T, error) {
	return t.get(ctx, id, false)
}

func (t *table[T]) get(ctx context.Context, id int64, lock bool) (*T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", t.s.selectList(), t.s.table, t.u.d.placeholder(1))
	if lock {
		q += t.u.d.lock
	}
	var row T
	if err := t.u.c.QueryRow(ctx, q, id).Scan(t.s.scanTargets(&row)...); err != nil {
		return nil, t.u.d.wrapErr("get "+t.s.table, err)
	}
	return &row, nil
}

// where renders the WHERE clause for q. Predicates on fields outside the
// schema's whitelist are rejected.
func (t *table[T]) where(q core.Query, b *binder) (string, error) {
	var conds []string
	if !q.IncludeArchived {
		conds = append(conds, "NOT archived")
	}
	for _, p := range q.Predicates {
		kind, ok := t.s.filters[p.Field]
		if !ok {
			return "", core.Validation(p.Field, "cannot filter %s by %q", t.s.table, p.Field)
		}
		cond, err := t.condition(p, kind, b)
		if err != nil {
			return "", err
		}
		conds = append(conds, cond)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func (t *table[T]) condition(p core.Predicate, kind colKind, b *binder) (string, error) {
	d := t.u.d
	col := p.Field
	if p.Op == core.OpContains {
		s, ok := p.Value.(string)
		if !ok || kind != colText {
			return "", core.Validation(p.Field, "%q does not support text search", p.Field)
		}
		return fmt.Sprintf("%s %s %s%s", col, d.like, b.bind(containsPattern(s)), d.escape), nil
	}

	var op string
	switch p.Op {
	case core.OpEq:
		op = "="
	case core.OpGte:
		op = ">="
	case core.OpLte:
		op = "<="
	default:
		return "", core.Validation(p.Field, "unsupported operator %q", p.Op)
	}
	ph := b.bind(p.Value)
	if kind == colDecimal {
		return fmt.Sprintf("%s %s %s", d.numeric(col), op, d.numeric(ph)), nil
	}
	return fmt.Sprintf("%s %s %s", col, op, ph), nil
}

// List counts the rows matching q and then reads the requested window of
// them, ordered by id. Both statements run in the caller's transaction.
func (t *table[T]) List(ctx context.Context, q core.Query) ([]T, int, error) {
	b := &binder{d: t.u.d}
	where, err := t.where(q, b)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.s.table, where)
	if err := t.u.c.QueryRow(ctx, countSQL, b.args...).Scan(&total); err != nil {
		return nil, 0, t.u.d.wrapErr("count "+t.s.table, err)
	}

	listSQL := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id", t.s.selectList(), t.s.table, where)
	if q.Limit > 0 {
		listSQL += fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
	}
	rs, err := t.u.c.Query(ctx, listSQL, b.args...)
	if err != nil {
		return nil, 0, t.u.d.wrapErr("list "+t.s.table, err)
	}
	defer rs.Close()

	var out []T
	for rs.Next() {
		var row T
		if err := rs.Scan(t.s.scanTargets(&row)...); err != nil {
			return nil, 0, t.u.d.wrapErr("scan "+t.s.table, err)
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, 0, t.u.d.wrapErr("list "+t.s.table, err)
	}
	return out, total, nil
}

// Insert stores row and fills in its id and timestamps.
func (t *table[T]) Insert(ctx context.Context, row *T) error {
	b := &binder{d: t.u.d}
	phs := make([]string, 0, len(t.s.columns)+1)
	for _, v := range t.s.values(row) {
		phs = append(phs, b.bind(v))
	}
	archived, _ := t.s.meta(row)
	phs = append(phs, b.bind(*archived))

	q := fmt.Sprintf("INSERT INTO %s (%s, archived) VALUES (%s) RETURNING id",
		t.s.table, strings.Join(t.s.columns, ", "), strings.Join(phs, ", "))
	var id int64
	if err := t.u.c.QueryRow(ctx, q, b.args...).Scan(&id); err != nil {
		return t.u.d.wrapErr("insert "+t.s.table, err)
	}
	return t.reload(ctx, id, row)
}

// Update writes every column of row and bumps updated_at. The archived flag
// is left alone; SetArchived owns it.
func (t *table[T]) Update(ctx context.Context, row *T) error {
	b := &binder{d: t.u.d}
	sets := make([]string, 0, len(t.s.columns)+1)
	for i, v := range t.s.values(row) {
		sets = append(sets, fmt.Sprintf("%s = %s", t.s.columns[i], b.bind(v)))
	}
	sets = append(sets, "updated_at = "+t.u.d.now)
	id := *t.s.id(row)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", t.s.table, strings.Join(sets, ", "), b.bind(id))

	n, err := t.u.c.Exec(ctx, q, b.args...)
	if err != nil {
		return t.u.d.wrapErr("update "+t.s.table, err)
	}
	if n == 0 {
		return core.ErrNoRow
	}
	return t.reload(ctx, id, row)
}

func (t *table[T]) SetArchived(ctx context.Context, id int64, archived bool) error {
	b := &binder{d: t.u.d}
	q := fmt.Sprintf("UPDATE %s SET archived = %s, updated_at = %s WHERE id = %s",
		t.s.table, b.bind(archived), t.u.d.now, b.bind(id))
	n, err := t.u.c.Exec(ctx, q, b.args...)
	if err != nil {
		return t.u.d.wrapErr("archive "+t.s.table, err)
	}
	if n == 0 {
		return core.ErrNoRow
	}
	return nil
}

// reload reads back the stored row so generated values reach the caller.
func (t *table[T]) reload(ctx context.Context, id int64, row *T) error {
	stored, err := t.Get(ctx, id)
	if err != nil {
		return err
	}
	*row = *stored
	return nil
}
