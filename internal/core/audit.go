package core

import (
	"context"
	"time"
)

// Operation is the kind of change an audit event records.
type Operation string

const (
	OpInsert  Operation = "INSERT"
	OpUpdate  Operation = "UPDATE"
	OpArchive Operation = "ARCHIVE"
	OpRestore Operation = "RESTORE"
)

// AuditEvent describes one committed change. OldState and NewState hold the
// row before and after the change when they are known.
type AuditEvent struct {
	EventID    string    `json:"event_id,omitempty"`
	TableName  string    `json:"table_name"`
	Operation  Operation `json:"operation_type"`
	RecordID   int64     `json:"record_id"`
	OldState   any       `json:"old_state,omitempty"`
	NewState   any       `json:"new_state,omitempty"`
	UserID     *int64    `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditSink receives committed changes. Notify must not block the caller and
// has no outcome the core acts on.
type AuditSink interface {
	Notify(ctx context.Context, ev AuditEvent)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Notify(context.Context, AuditEvent) {}

type actorKey struct{}

// WithActor records the acting user on ctx for audit events.
func WithActor(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the acting user recorded by WithActor.
func ActorFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorKey{}).(int64)
	return id, ok
}

func actorPtr(ctx context.Context) *int64 {
	if id, ok := ActorFrom(ctx); ok {
		return &id
	}
	return nil
}

// notifyAll hands events to the sink after a commit. The sink is
// fire-and-forget, so nothing here can fail the request.
func notifyAll(ctx context.Context, sink AuditSink, now time.Time, events []AuditEvent) {
	if sink == nil {
		return
	}
	actor := actorPtr(ctx)
	for _, ev := range events {
		if ev.UserID == nil {
			ev.UserID = actor
		}
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = now
		}
		sink.Notify(context.WithoutCancel(ctx), ev)
	}
}
