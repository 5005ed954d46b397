package consumer

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/mentalreset/internal/events"
	"example.com/mentalreset/internal/outbox"
)

func framed(schemaID int, payload string) []byte {
	value := make([]byte, 5+len(payload))
	binary.BigEndian.PutUint32(value[1:5], uint32(schemaID))
	copy(value[5:], payload)
	return value
}

func sessionRecord(offset int64, value []byte) kafka.Message {
	return kafka.Message{
		Topic:     events.TopicResetSessions,
		Partition: 0,
		Offset:    offset,
		Time:      time.Now().UTC(),
		Value:     value,
		Headers: []kafka.Header{
			{Key: outbox.HeaderEventType, Value: []byte(events.TypeSessionSaved)},
			{Key: outbox.HeaderUserID, Value: []byte("user-1")},
			{Key: outbox.HeaderSchemaSubject, Value: []byte(events.SubjectResetSessions)},
		},
	}
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	payload := `{"session_id":"abc","user_id":"user-1"}`
	reader := &stubReader{messages: []kafka.Message{sessionRecord(10, framed(42, payload))}}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))

	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, events.TypeSessionSaved, handler.last.EventType)
	require.Equal(t, "user-1", handler.last.UserID)
	require.Equal(t, events.SubjectResetSessions, handler.last.SchemaSubject)
	require.Equal(t, 42, handler.last.SchemaID)
	require.JSONEq(t, payload, string(handler.last.Payload))
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{sessionRecord(20, framed(99, `{"session_id":"def"}`))}}
	handler := &stubHandler{err: errors.New("boom")}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))

	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
}

func TestProcessorCommitsUndecodableRecords(t *testing.T) {
	missingHeader := sessionRecord(1, framed(1, `{}`))
	missingHeader.Headers = nil

	reader := &stubReader{messages: []kafka.Message{
		sessionRecord(0, []byte(`{"not":"framed"}`)),
		missingHeader,
		sessionRecord(2, framed(1, `not json`)),
	}}
	handler := &stubHandler{}
	before := testutil.ToFloat64(undecodable.WithLabelValues(events.TopicResetSessions))

	err := NewProcessor(reader, handler).Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, handler.calls)
	require.Equal(t, 3, reader.commitCalls)
	require.InDelta(t, before+3, testutil.ToFloat64(undecodable.WithLabelValues(events.TopicResetSessions)), 0.0001)
}

func TestProcessorStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := &stubReader{messages: []kafka.Message{sessionRecord(0, framed(1, `{}`))}}
	err := NewProcessor(reader, &stubHandler{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, reader.index)
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}
