package audit

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-backend/internal/core"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.AuditEvent
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, ev core.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.TableName)
	}
	return out
}

func TestDispatcher_PublishesInOrderAndDrainsOnShutdown(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, 8, zerolog.Nop())

	// Queue before the worker starts so the drain path is exercised.
	for _, table := range []string{"orders", "order_lines", "stock"} {
		d.Notify(context.Background(), core.AuditEvent{TableName: table, Operation: core.OpInsert})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []string{"orders", "order_lines", "stock"}, pub.tables())
	assert.Zero(t, d.Dropped())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub, 2, zerolog.Nop())

	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), core.AuditEvent{TableName: "stock", RecordID: int64(i)})
	}
	assert.EqualValues(t, 3, d.Dropped())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.Len(t, pub.tables(), 2)
}

func TestDispatcher_CountsFailures(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	d := NewDispatcher(pub, 4, zerolog.Nop())
	d.Notify(context.Background(), core.AuditEvent{TableName: "orders"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))
	assert.EqualValues(t, 1, d.Failed())
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "orders.insert", RoutingKey(core.AuditEvent{TableName: "orders", Operation: core.OpInsert}))
	assert.Equal(t, "stock.update", RoutingKey(core.AuditEvent{TableName: "stock", Operation: core.OpUpdate}))
}

func TestLogPublisher_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))
	uid := int64(7)
	require.NoError(t, p.Publish(context.Background(), core.AuditEvent{
		TableName: "orders", Operation: core.OpArchive, RecordID: 42, UserID: &uid,
	}))
	out := buf.String()
	assert.Contains(t, out, `"table":"orders"`)
	assert.Contains(t, out, `"operation":"ARCHIVE"`)
	assert.Contains(t, out, `"record_id":42`)
	assert.Contains(t, out, `"user_id":7`)
}
