// Package sqlite stores reset sessions in a local SQLite file for
// single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"example.com/mentalreset/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Repository is a SQLite-backed session repository.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repository{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert stores record with a fresh id and creation time.
func (r *Repository) Insert(ctx context.Context, record domain.SessionRecord) (domain.SessionRecord, error) {
	if record.Activities == nil {
		record.Activities = []string{}
	}
	activities, err := json.Marshal(record.Activities)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	record.ID = uuid.NewString()
	record.CreatedAt = r.now().UTC()

	_, err = r.db.ExecContext(ctx, `INSERT INTO mental_reset_entries
        (id, user_id, date, mood, activities, custom_activity, control_answer, not_my_job_answer, five_days_answer, next_step, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.Date,
		record.Mood,
		string(activities),
		record.CustomActivity,
		record.ControlAnswer,
		record.NotMyJobAnswer,
		record.FiveDaysAnswer,
		record.NextStep,
		record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("insert session: %w", err)
	}
	return record, nil
}

// ListByUser returns userID's sessions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, date, mood, activities, custom_activity, control_answer, not_my_job_answer, five_days_answer, next_step, created_at
        FROM mental_reset_entries WHERE user_id = ?
        ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SessionRecord, 0)
	for rows.Next() {
		var (
			rec        domain.SessionRecord
			activities string
			createdAt  int64
			optional   [5]sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Mood, &activities,
			&optional[0], &optional[1], &optional[2], &optional[3], &optional[4], &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(activities), &rec.Activities); err != nil {
			return nil, fmt.Errorf("decode activities for %s: %w", rec.ID, err)
		}
		if rec.Activities == nil {
			rec.Activities = []string{}
		}
		rec.CustomActivity = nullable(optional[0])
		rec.ControlAnswer = nullable(optional[1])
		rec.NotMyJobAnswer = nullable(optional[2])
		rec.FiveDaysAnswer = nullable(optional[3])
		rec.NextStep = nullable(optional[4])
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Ping checks the database handle.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
