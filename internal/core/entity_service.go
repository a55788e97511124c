package core

import (
	"context"
	"errors"
	"time"
)

// Summarizer maps a stored row to its read model. It runs inside the read
// transaction, so it may look up related rows through uow.
type Summarizer[T, S any] func(ctx context.Context, uow UnitOfWork, row T) (S, error)

// EntityService provides paged listing, lookup, and archive/restore for one
// entity type and its summary projection. Features compose it rather than
// reimplementing these operations.
type EntityService[T Archivable, S any] struct {
	entity    string
	workflow  Workflow
	tx        *TxManager
	table     func(UnitOfWork) Table[T]
	summarize Summarizer[T, S]
	sink      AuditSink
	now       func() time.Time
}

// NewEntityService wires the framework for one entity. table selects the
// entity's table from a unit of work.
func NewEntityService[T Archivable, S any](
	entity string,
	workflow Workflow,
	tx *TxManager,
	table func(UnitOfWork) Table[T],
	summarize Summarizer[T, S],
	sink AuditSink,
) *EntityService[T, S] {
	if sink == nil {
		sink = NopSink{}
	}
	return &EntityService[T, S]{
		entity:    entity,
		workflow:  workflow,
		tx:        tx,
		table:     table,
		summarize: summarize,
		sink:      sink,
		now:       time.Now,
	}
}

// Entity returns the entity (table) name the service manages.
func (s *EntityService[T, S]) Entity() string { return s.entity }

// GetByID returns the summary of an active row. Archived rows are NotFound.
func (s *EntityService[T, S]) GetByID(ctx context.Context, id int64) (*S, error) {
	return ReadTx(ctx, s.tx, s.workflow, func(ctx context.Context, uow UnitOfWork) (*S, error) {
		return s.load(ctx, uow, id, false)
	})
}

// GetAnyByID returns the summary whether or not the row is archived.
// It backs administrative restore screens.
func (s *EntityService[T, S]) GetAnyByID(ctx context.Context, id int64) (*S, error) {
	return ReadTx(ctx, s.tx, s.workflow, func(ctx context.Context, uow UnitOfWork) (*S, error) {
		return s.load(ctx, uow, id, true)
	})
}

// load resolves and summarizes a row inside an existing unit of work.
func (s *EntityService[T, S]) load(ctx context.Context, uow UnitOfWork, id int64, includeArchived bool) (*S, error) {
	resolve := ResolveActive[T]
	if includeArchived {
		resolve = ResolveAny[T]
	}
	row, err := resolve(ctx, s.table(uow), s.entity, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(ctx, uow, *row)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetPaged lists one page. Entity predicates and the archived filter are
// applied first, then the total is counted, then offset and limit select
// the page. Count and page come from the same snapshot.
func (s *EntityService[T, S]) GetPaged(ctx context.Context, f Filter) (*PagedResult[S], error) {
	paging, err := f.Paging().Normalize()
	if err != nil {
		return nil, err
	}
	q := Query{
		Predicates:      f.Predicates(),
		IncludeArchived: paging.IncludeArchived,
		Limit:           paging.PageSize,
		Offset:          paging.Offset(),
	}

	return ReadTx(ctx, s.tx, s.workflow, func(ctx context.Context, uow UnitOfWork) (*PagedResult[S], error) {
		rows, total, err := s.table(uow).List(ctx, q)
		if err != nil {
			return nil, err
		}
		items := make([]S, 0, len(rows))
		for _, row := range rows {
			summary, err := s.summarize(ctx, uow, row)
			if err != nil {
				return nil, err
			}
			items = append(items, summary)
		}
		return &PagedResult[S]{
			Items:    items,
			Page:     paging.Page,
			PageSize: paging.PageSize,
			Total:    total,
		}, nil
	})
}

// Archive flags the row as archived. It converges: an already archived row
// reports true, and only a missing row reports false. Neither is an error.
func (s *EntityService[T, S]) Archive(ctx context.Context, id int64) (bool, error) {
	return s.setArchived(ctx, id, true)
}

// Restore clears the archived flag, with the same convergent outcomes as
// Archive.
func (s *EntityService[T, S]) Restore(ctx context.Context, id int64) (bool, error) {
	return s.setArchived(ctx, id, false)
}

func (s *EntityService[T, S]) setArchived(ctx context.Context, id int64, archived bool) (bool, error) {
	type outcome struct {
		found   bool
		changed bool
		before  *T
	}

	res, err := InTx(ctx, s.tx, s.workflow, func(ctx context.Context, uow UnitOfWork) (outcome, error) {
		row, err := ResolveAny(ctx, s.table(uow), s.entity, id)
		if errors.Is(err, ErrNotFound) {
			return outcome{}, nil
		}
		if err != nil {
			return outcome{}, err
		}
		if (*row).IsArchived() == archived {
			return outcome{found: true}, nil
		}
		if err := s.table(uow).SetArchived(ctx, id, archived); err != nil {
			return outcome{}, err
		}
		return outcome{found: true, changed: true, before: row}, nil
	})
	if err != nil {
		return false, err
	}

	if res.changed {
		op := OpArchive
		if !archived {
			op = OpRestore
		}
		notifyAll(ctx, s.sink, s.now(), []AuditEvent{{
			TableName: s.entity,
			Operation: op,
			RecordID:  id,
			OldState:  res.before,
			NewState:  map[string]any{"archived": archived},
		}})
	}
	return res.found, nil
}
