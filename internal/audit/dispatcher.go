// Package audit delivers committed change events to an external log. The
// core hands events to a Dispatcher, which never blocks the request that
// produced them.
package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"warehouse-backend/internal/core"
)

// Publisher writes one event to its destination.
type Publisher interface {
	Publish(ctx context.Context, ev core.AuditEvent) error
	Close() error
}

const publishTimeout = 5 * time.Second

// Dispatcher is a core.AuditSink that queues events and publishes them from
// a single worker. When the queue is full new events are dropped and
// counted; a failed publish is logged and not retried.
type Dispatcher struct {
	pub     Publisher
	events  chan core.AuditEvent
	dropped atomic.Uint64
	failed  atomic.Uint64
	log     zerolog.Logger
}

func NewDispatcher(pub Publisher, buffer int, log zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	return &Dispatcher{
		pub:    pub,
		events: make(chan core.AuditEvent, buffer),
		log:    log.With().Str("component", "audit").Logger(),
	}
}

// Notify queues ev without blocking. Events without an id get one.
func (d *Dispatcher) Notify(_ context.Context, ev core.AuditEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	select {
	case d.events <- ev:
	default:
		d.dropped.Add(1)
		d.log.Warn().Str("table", ev.TableName).Str("operation", string(ev.Operation)).
			Int64("record_id", ev.RecordID).Msg("audit queue full, event dropped")
	}
}

// Run publishes queued events until ctx is done, then flushes what is left
// in the queue and returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-d.events:
			d.publish(ctx, ev)
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			return nil
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case ev := <-d.events:
			d.publish(ctx, ev)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, ev core.AuditEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := d.pub.Publish(ctx, ev); err != nil {
		d.failed.Add(1)
		d.log.Error().Err(err).Str("table", ev.TableName).Str("operation", string(ev.Operation)).
			Int64("record_id", ev.RecordID).Msg("audit publish failed")
	}
}

// Dropped is the number of events discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Failed is the number of events the publisher rejected.
func (d *Dispatcher) Failed() uint64 { return d.failed.Load() }

// Close releases the publisher. Call it after Run has returned.
func (d *Dispatcher) Close() error { return d.pub.Close() }
