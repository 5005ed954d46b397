// Package postgres stores reset sessions in Postgres and records their
// outbox events in the same transaction.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/mentalreset/internal/domain"
	"example.com/mentalreset/internal/events"
)

// Repository provides Postgres-backed persistence for reset sessions.
type Repository struct {
	pool   *pgxpool.Pool
	outbox bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithOutbox makes Insert also write a reset_session.saved outbox row.
func WithOutbox(enabled bool) Option {
	return func(r *Repository) {
		r.outbox = enabled
	}
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool, opts ...Option) *Repository {
	r := &Repository{pool: pool}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const sessionColumns = `id::text, user_id, date::text, mood, activities, custom_activity, control_answer, not_my_job_answer, five_days_answer, next_step, created_at`

// Insert persists record and, when enabled, its outbox event inside a single
// transaction scoped to the record's user.
func (r *Repository) Insert(ctx context.Context, record domain.SessionRecord) (stored domain.SessionRecord, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.SessionRecord{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", record.UserID); err != nil {
		return domain.SessionRecord{}, err
	}

	activities := record.Activities
	if activities == nil {
		activities = []string{}
	}

	const insert = `INSERT INTO mental_reset_entries (user_id, date, mood, activities, custom_activity, control_answer, not_my_job_answer, five_days_answer, next_step)
        VALUES ($1, ($2::text)::date, $3, $4, $5, $6, $7, $8, $9)
        RETURNING ` + sessionColumns

	row := tx.QueryRow(ctx, insert,
		record.UserID,
		record.Date,
		record.Mood,
		activities,
		record.CustomActivity,
		record.ControlAnswer,
		record.NotMyJobAnswer,
		record.FiveDaysAnswer,
		record.NextStep,
	)
	if stored, err = scanSession(row); err != nil {
		return domain.SessionRecord{}, err
	}

	if r.outbox {
		if err = insertOutbox(ctx, tx, stored); err != nil {
			return domain.SessionRecord{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.SessionRecord{}, err
	}
	return stored, nil
}

// ListByUser returns every session owned by userID, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT `+sessionColumns+`
        FROM mental_reset_entries WHERE user_id = $1
        ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.SessionRecord, 0)
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// Ping checks pool connectivity for /healthz.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanSession(row pgx.Row) (domain.SessionRecord, error) {
	var rec domain.SessionRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.Mood,
		&rec.Activities,
		&rec.CustomActivity,
		&rec.ControlAnswer,
		&rec.NotMyJobAnswer,
		&rec.FiveDaysAnswer,
		&rec.NextStep,
		&rec.CreatedAt,
	)
	if rec.Activities == nil {
		rec.Activities = []string{}
	}
	return rec, err
}

func insertOutbox(ctx context.Context, tx pgx.Tx, record domain.SessionRecord) error {
	meta, ok := eventCatalog[events.TypeSessionSaved]
	if !ok {
		return fmt.Errorf("unknown event type: %s", events.TypeSessionSaved)
	}

	body, err := json.Marshal(events.NewSessionSaved(record))
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (user_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		record.UserID,
		"reset_session",
		record.ID,
		events.TypeSessionSaved,
		meta.Topic,
		meta.SchemaSubject,
		meta.PartitionKeyFn(record),
		body,
		fmt.Sprintf("%s:%s", record.ID, events.TypeSessionSaved),
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(domain.SessionRecord) string
}

var eventCatalog = map[string]EventMetadata{
	events.TypeSessionSaved: {
		Topic:         events.TopicResetSessions,
		SchemaSubject: events.SubjectResetSessions,
		PartitionKeyFn: func(r domain.SessionRecord) string {
			return r.UserID
		},
	},
}
