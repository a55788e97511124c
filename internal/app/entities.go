package app

import (
	"context"

	"warehouse-backend/internal/core"
)

// entityAccess adapts one generic core.EntityService to EntityAccess.
type entityAccess[T core.Archivable, S any] struct {
	name   string
	svc    *core.EntityService[T, S]
	filter func(ListParams) (core.Filter, error)
	create func(ctx context.Context, decode func(v any) error) (any, error)
}

func (e *entityAccess[T, S]) Name() string { return e.name }

func (e *entityAccess[T, S]) Get(ctx context.Context, id int64, includeArchived bool) (any, error) {
	if includeArchived {
		return e.svc.GetAnyByID(ctx, id)
	}
	return e.svc.GetByID(ctx, id)
}

func (e *entityAccess[T, S]) List(ctx context.Context, params ListParams) (*ListResult, error) {
	f, err := e.filter(params)
	if err != nil {
		return nil, err
	}
	page, err := e.svc.GetPaged(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Items:    page.Items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
		Pages:    page.Pages(),
	}, nil
}

func (e *entityAccess[T, S]) Create(ctx context.Context, decode func(v any) error) (any, error) {
	return e.create(ctx, decode)
}

func (e *entityAccess[T, S]) Archive(ctx context.Context, id int64) (bool, error) {
	return e.svc.Archive(ctx, id)
}

func (e *entityAccess[T, S]) Restore(ctx context.Context, id int64) (bool, error) {
	return e.svc.Restore(ctx, id)
}

// creator decodes a request of type R and hands it to fn.
func creator[R, S any](fn func(context.Context, R) (*S, error)) func(context.Context, func(any) error) (any, error) {
	return func(ctx context.Context, decode func(any) error) (any, error) {
		var req R
		if err := decode(&req); err != nil {
			verr := core.Validation("body", "invalid request body")
			verr.Err = err
			return nil, verr
		}
		return fn(ctx, req)
	}
}
