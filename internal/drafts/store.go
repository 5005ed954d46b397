// Package drafts keeps in-progress reset forms between requests.
package drafts

import (
	"context"
	"errors"
	"time"

	"example.com/mentalreset/internal/domain"
)

// DefaultTTL is how long an untouched draft is kept.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned for unknown or expired draft ids.
var ErrNotFound = errors.New("draft not found")

// Draft is one in-progress form. OwnerID is set once an authenticated
// request touches the draft.
type Draft struct {
	Form      domain.Form `json:"form"`
	OwnerID   string      `json:"owner_id,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store persists drafts by id.
type Store interface {
	Get(ctx context.Context, id string) (Draft, error)
	Put(ctx context.Context, id string, draft Draft) error
	// DiscardOwnedBy removes every draft owned by ownerID and reports how many went.
	DiscardOwnedBy(ctx context.Context, ownerID string) (int, error)
}
