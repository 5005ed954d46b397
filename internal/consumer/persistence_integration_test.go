//go:build integration

package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/mentalreset/internal/events"
	"example.com/mentalreset/internal/testsupport"
)

func TestPersistenceHandlerStoresEvent(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)

	handler := NewPersistenceHandler(pool)

	payload := json.RawMessage(`{"session_id":"abc","user_id":"user-123","mood":"calm","activities":["walk"],"version":"v1"}`)
	msg := Message{
		EventType:     events.TypeSessionSaved,
		UserID:        "user-123",
		SchemaID:      42,
		SchemaSubject: events.SubjectResetSessions,
		Topic:         events.TopicResetSessions,
		Partition:     0,
		Offset:        5,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
	}

	require.NoError(t, handler.Handle(ctx, msg))
	require.NoError(t, handler.Handle(ctx, msg), "redelivery is a no-op")

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM reset_session_event_log`).Scan(&count))
	require.Equal(t, 1, count)

	var sessionID, userID string
	var storedPayload []byte
	err := pool.QueryRow(ctx, `SELECT session_id, user_id, payload FROM reset_session_event_log LIMIT 1`).Scan(&sessionID, &userID, &storedPayload)
	require.NoError(t, err)
	require.Equal(t, "abc", sessionID)
	require.Equal(t, "user-123", userID)
	require.JSONEq(t, string(payload), string(storedPayload))
}

func TestPersistenceHandlerRejectsUnknownEvents(t *testing.T) {
	ctx := context.Background()
	pool := testsupport.StartPostgres(ctx, t)

	err := NewPersistenceHandler(pool).Handle(ctx, Message{EventType: "reset_session.deleted", Payload: json.RawMessage(`{}`)})
	require.ErrorContains(t, err, "unsupported event_type")
}
