// Package supabase stores reset sessions through the Supabase REST API.
package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	supabasego "github.com/supabase-community/supabase-go"

	"example.com/mentalreset/internal/domain"
)

// Table is the sessions table name.
const Table = "mental_reset_entries"

// Repository reads and writes sessions via PostgREST.
type Repository struct {
	client *supabasego.Client
}

// NewRepository connects to the Supabase project at url with key.
func NewRepository(url, key string) (*Repository, error) {
	if url == "" || key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client, err := supabasego.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Repository{client: client}, nil
}

// NewRepositoryFromClient wraps an existing client.
func NewRepositoryFromClient(client *supabasego.Client) *Repository {
	return &Repository{client: client}
}

type insertRow struct {
	UserID         string   `json:"user_id"`
	Date           string   `json:"date"`
	Mood           string   `json:"mood"`
	Activities     []string `json:"activities"`
	CustomActivity *string  `json:"custom_activity,omitempty"`
	ControlAnswer  *string  `json:"control_answer,omitempty"`
	NotMyJobAnswer *string  `json:"not_my_job_answer,omitempty"`
	FiveDaysAnswer *string  `json:"five_days_answer,omitempty"`
	NextStep       *string  `json:"next_step,omitempty"`
}

// Insert writes record and returns the representation stored by the backend.
// The client library has no context support, so ctx is only checked before
// the request is sent.
func (r *Repository) Insert(ctx context.Context, record domain.SessionRecord) (domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionRecord{}, err
	}
	activities := record.Activities
	if activities == nil {
		activities = []string{}
	}
	row := insertRow{
		UserID:         record.UserID,
		Date:           record.Date,
		Mood:           record.Mood,
		Activities:     activities,
		CustomActivity: record.CustomActivity,
		ControlAnswer:  record.ControlAnswer,
		NotMyJobAnswer: record.NotMyJobAnswer,
		FiveDaysAnswer: record.FiveDaysAnswer,
		NextStep:       record.NextStep,
	}

	var stored []domain.SessionRecord
	if _, err := r.client.From(Table).Insert(row, false, "", "representation", "").ExecuteTo(&stored); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("insert %s: %w", Table, err)
	}
	if len(stored) == 0 {
		return domain.SessionRecord{}, fmt.Errorf("insert %s: empty response", Table)
	}
	out := stored[0]
	if out.Activities == nil {
		out.Activities = []string{}
	}
	return out, nil
}

// ListByUser returns userID's sessions ordered by created_at descending.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records := make([]domain.SessionRecord, 0)
	_, err := r.client.From(Table).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&records)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", Table, err)
	}
	if records == nil {
		records = []domain.SessionRecord{}
	}
	return records, nil
}
