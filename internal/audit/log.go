package audit

import (
	"context"

	"github.com/rs/zerolog"

	"warehouse-backend/internal/core"
)

// LogPublisher writes events to a logger. It is used when no broker is
// configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev core.AuditEvent) error {
	e := p.log.Info().
		Str("table", ev.TableName).
		Str("operation", string(ev.Operation)).
		Int64("record_id", ev.RecordID).
		Time("occurred_at", ev.OccurredAt).
		Interface("new_state", ev.NewState)
	if ev.UserID != nil {
		e = e.Int64("user_id", *ev.UserID)
	}
	e.Msg("audit")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
