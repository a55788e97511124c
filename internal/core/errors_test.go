package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"warehouse-backend/internal/core"
)

func TestErrorKinds(t *testing.T) {
	nf := core.NotFound(core.EntityCategory, 7)
	assert.ErrorIs(t, nf, core.ErrNotFound)
	assert.NotErrorIs(t, nf, core.ErrDomain)
	assert.Equal(t, "not found: category 7 not found", nf.Error())

	v := core.Validation("lines[0].quantity", "quantity must be positive")
	assert.Equal(t, "validation error: quantity must be positive (lines[0].quantity)", v.Error())

	wrapped := fmt.Errorf("placing: %w", core.Conflict("stock row %d changed", 3))
	assert.ErrorIs(t, wrapped, core.ErrConflict)
	assert.Equal(t, core.KindConflict, core.KindOf(wrapped))
	assert.True(t, core.IsRetryable(wrapped))

	assert.False(t, core.IsRetryable(core.Domain("nope")))
	assert.Equal(t, core.KindStore, core.KindOf(errors.New("driver exploded")))

	timeout := core.StoreFailure("commit", context.DeadlineExceeded)
	assert.True(t, core.IsRetryable(timeout))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
	assert.False(t, core.IsRetryable(core.StoreFailure("commit", errors.New("disk full"))))
}

func TestStatusPolicy(t *testing.T) {
	open, err := core.ParseStatusPolicy("")
	assert.NoError(t, err)
	assert.False(t, open.Strict())
	assert.True(t, open.Allows("delivered", "created"))

	p, err := core.ParseStatusPolicy("Created->Assembling, assembling->shipped")
	assert.NoError(t, err)
	assert.True(t, p.Strict())
	assert.True(t, p.Allows("created", "ASSEMBLING"))
	assert.True(t, p.Allows("shipped", "shipped"))
	assert.False(t, p.Allows("created", "shipped"))
	assert.False(t, p.Allows("shipped", "created"))

	for _, bad := range []string{"created", "->shipped", "created->", "a->b,,"} {
		_, err := core.ParseStatusPolicy(bad)
		assert.Error(t, err, bad)
	}
}

func TestActorContext(t *testing.T) {
	_, ok := core.ActorFrom(context.Background())
	assert.False(t, ok)

	id, ok := core.ActorFrom(core.WithActor(context.Background(), 42))
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestArchiveEventCarriesActor(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)

	_, err := e.catalog.Warehouses.Archive(core.WithActor(e.ctx, f.user), f.warehouse)
	assert.NoError(t, err)
	events := e.sink.all()
	if assert.Len(t, events, 1) {
		assert.Equal(t, core.OpArchive, events[0].Operation)
		assert.Equal(t, f.warehouse, events[0].RecordID)
		if assert.NotNil(t, events[0].UserID) {
			assert.Equal(t, f.user, *events[0].UserID)
		}
	}
}
