// Package domain defines the reset-session model and the rules around it.
package domain

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// SessionRepository is the storage backend for completed sessions. Insert
// returns the stored row, including the id and created_at assigned by the
// backend.
type SessionRepository interface {
	Insert(ctx context.Context, record SessionRecord) (SessionRecord, error)
	ListByUser(ctx context.Context, userID string) ([]SessionRecord, error)
}

// Gateway turns finished forms into stored sessions and reads them back.
type Gateway struct {
	repo SessionRepository
	now  func() time.Time
}

// GatewayOption customises a Gateway.
type GatewayOption func(*Gateway)

// WithClock overrides the clock used to stamp session dates.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway constructs a Gateway over repo.
func NewGateway(repo SessionRepository, opts ...GatewayOption) *Gateway {
	g := &Gateway{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SaveReceipt confirms a stored session.
type SaveReceipt struct {
	Record SessionRecord
	Date   string
}

// BuildRecord maps form contents onto the record shape sent to storage.
// Blank text fields are left nil so they are never written.
func (g *Gateway) BuildRecord(form Form, user User) SessionRecord {
	return SessionRecord{
		UserID:         user.ID,
		Date:           g.now().Format(DateLayout),
		Mood:           string(form.Mood),
		Activities:     form.Activities.Strings(),
		CustomActivity: optional(form.CustomActivity),
		ControlAnswer:  optional(form.Reflections.Control),
		NotMyJobAnswer: optional(form.Reflections.NotMyJob),
		FiveDaysAnswer: optional(form.Reflections.FiveDays),
		NextStep:       optional(form.NextStep),
	}
}

// Save stores the form for user. A nil user fails with ErrUnauthenticated
// before storage is touched.
func (g *Gateway) Save(ctx context.Context, form Form, user *User) (*SaveReceipt, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthenticated
	}

	record := g.BuildRecord(form, *user)
	stored, err := g.repo.Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if stored.Date == "" {
		stored.Date = record.Date
	}
	return &SaveReceipt{Record: stored, Date: stored.Date}, nil
}

// ListForUser returns every session owned by userID, newest first.
func (g *Gateway) ListForUser(ctx context.Context, userID string) ([]SessionRecord, error) {
	records, err := g.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if records == nil {
		records = []SessionRecord{}
	}
	slices.SortStableFunc(records, func(a, b SessionRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return records, nil
}
