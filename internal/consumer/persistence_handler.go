package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/mentalreset/internal/events"
)

// PersistenceHandler writes consumed events into reset_session_event_log.
// Redelivered records are ignored by their (topic, partition, offset).
type PersistenceHandler struct {
	pool *pgxpool.Pool
}

// NewPersistenceHandler constructs a handler backed by the provided pool.
func NewPersistenceHandler(pool *pgxpool.Pool) *PersistenceHandler {
	return &PersistenceHandler{pool: pool}
}

// Handle stores the event. Only reset_session.saved payloads are understood.
func (h *PersistenceHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != events.TypeSessionSaved {
		return fmt.Errorf("unsupported event_type %q", msg.EventType)
	}
	var event events.SessionSaved
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode %s: %w", msg.EventType, err)
	}
	userID := event.UserID
	if userID == "" {
		userID = msg.UserID
	}

	_, err := h.pool.Exec(ctx,
		`INSERT INTO reset_session_event_log (topic, partition, record_offset, event_type, session_id, user_id, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,COALESCE($8::timestamptz, NOW()))
         ON CONFLICT (topic, partition, record_offset) DO NOTHING`,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.EventType,
		event.SessionID,
		userID,
		msg.Payload,
		nullableTime(msg),
	)
	return err
}

func nullableTime(msg Message) any {
	if msg.Timestamp.IsZero() {
		return nil
	}
	return msg.Timestamp
}
