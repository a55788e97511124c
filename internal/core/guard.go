package core

import (
	"context"
	"errors"
)

// ResolveActive loads the row with id and fails with NotFound when it is
// missing or archived. The two cases look the same to the caller.
func ResolveActive[T Archivable](ctx context.Context, t Table[T], entity string, id int64) (*T, error) {
	row, err := ResolveAny(ctx, t, entity, id)
	if err != nil {
		return nil, err
	}
	if (*row).IsArchived() {
		return nil, NotFound(entity, id)
	}
	return row, nil
}

// ResolveAny loads the row with id whether or not it is archived.
// Admin restore flows use it.
func ResolveAny[T Archivable](ctx context.Context, t Table[T], entity string, id int64) (*T, error) {
	if id <= 0 {
		return nil, NotFound(entity, id)
	}
	row, err := t.Get(ctx, id)
	if errors.Is(err, ErrNoRow) {
		return nil, NotFound(entity, id)
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// requireActive resolves a reference that a mutation wants to use. Missing
// rows stay NotFound; archived rows become a Domain error, because the caller
// named a row that exists but may not be referenced any more.
func requireActive[T Archivable](ctx context.Context, t Table[T], entity string, id int64) (*T, error) {
	row, err := ResolveAny(ctx, t, entity, id)
	if err != nil {
		return nil, err
	}
	if (*row).IsArchived() {
		return nil, Domain("%s %d is archived", singular(entity), id)
	}
	return row, nil
}
