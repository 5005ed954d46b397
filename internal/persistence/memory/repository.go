// Package memory provides an in-process session repository for tests and
// local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/mentalreset/internal/domain"
)

// Repository stores sessions in memory.
type Repository struct {
	mu      sync.RWMutex
	records []domain.SessionRecord
	now     func() time.Time
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

// Insert assigns an id and created_at, then stores the record.
func (r *Repository) Insert(_ context.Context, record domain.SessionRecord) (domain.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = uuid.NewString()
	record.CreatedAt = r.now().UTC()
	if record.Activities == nil {
		record.Activities = []string{}
	}
	r.records = append(r.records, record)
	return record, nil
}

// ListByUser returns userID's sessions, newest first.
func (r *Repository) ListByUser(_ context.Context, userID string) ([]domain.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SessionRecord, 0)
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}
