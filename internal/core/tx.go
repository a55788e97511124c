package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// TxManager runs units of work inside one transaction per workflow call.
type TxManager struct {
	store   EntityStore
	timeout time.Duration
	log     zerolog.Logger
}

// NewTxManager builds a TxManager. timeout bounds every transaction; zero
// leaves the store's own default in charge.
func NewTxManager(store EntityStore, timeout time.Duration, log zerolog.Logger) *TxManager {
	return &TxManager{store: store, timeout: timeout, log: log}
}

// workflowPolicies maps each workflow category to the options of its write
// transactions. The order workflow row-locks stock, so read committed is
// enough to keep two placements from sharing a quantity.
var workflowPolicies = map[Workflow]TxOptions{
	WorkflowOrder:   {Isolation: ReadCommitted},
	WorkflowUser:    {Isolation: ReadCommitted},
	WorkflowCatalog: {Isolation: ReadCommitted},
}

// policy returns the options for a workflow. Read-only transactions take a
// repeatable-read snapshot so a listing's count and page agree.
func policy(wf Workflow, readOnly bool) (TxOptions, error) {
	opts, ok := workflowPolicies[wf]
	if !ok {
		return TxOptions{}, fmt.Errorf("unknown workflow %q", wf)
	}
	if readOnly {
		return TxOptions{Isolation: RepeatableRead, ReadOnly: true}, nil
	}
	return opts, nil
}

// InTx runs work in a fresh transaction for the workflow. It commits when work
// succeeds and rolls back on error, panic, or cancellation. The error from
// work is returned unchanged. Calls do not nest: each opens its own
// transaction.
func InTx[T any](ctx context.Context, m *TxManager, wf Workflow, work func(ctx context.Context, uow UnitOfWork) (T, error)) (T, error) {
	return run(ctx, m, wf, false, work)
}

// ReadTx is InTx with a read-only transaction.
func ReadTx[T any](ctx context.Context, m *TxManager, wf Workflow, work func(ctx context.Context, uow UnitOfWork) (T, error)) (T, error) {
	return run(ctx, m, wf, true, work)
}

func run[T any](ctx context.Context, m *TxManager, wf Workflow, readOnly bool, work func(ctx context.Context, uow UnitOfWork) (T, error)) (result T, err error) {
	var zero T
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	opts, err := policy(wf, readOnly)
	if err != nil {
		return zero, err
	}
	tx, err := m.store.Begin(ctx, opts)
	if err != nil {
		return zero, asStoreError("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback must run even when ctx is already done.
		rbErr := tx.Rollback(context.WithoutCancel(ctx))
		if rbErr != nil {
			m.log.Warn().Err(rbErr).Str("workflow", string(wf)).Msg("rollback failed")
		}
		if rv := recover(); rv != nil {
			panic(rv)
		}
	}()

	result, err = work(ctx, tx)
	if err != nil {
		m.log.Debug().Err(err).Str("workflow", string(wf)).Str("kind", string(KindOf(err))).Msg("transaction rolled back")
		return zero, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, asStoreError("transaction cancelled before commit", ctxErr)
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, asStoreError("commit", err)
	}
	committed = true
	m.log.Debug().Str("workflow", string(wf)).Msg("transaction committed")
	return result, nil
}

// asStoreError keeps already classified errors and wraps the rest.
func asStoreError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return StoreFailure(fmt.Sprintf("%s failed", op), err)
}
