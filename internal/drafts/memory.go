package drafts

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	drafts map[string]Draft
}

// NewMemoryStore constructs a MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	if s.expired(d) {
		delete(s.drafts, id)
		return Draft{}, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, draft Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, d := range s.drafts {
		if s.expired(d) {
			delete(s.drafts, key)
		}
	}
	draft.UpdatedAt = s.now()
	s.drafts[id] = draft
	return nil
}

func (s *MemoryStore) DiscardOwnedBy(_ context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, d := range s.drafts {
		if d.OwnerID == ownerID {
			delete(s.drafts, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) expired(d Draft) bool {
	return s.now().Sub(d.UpdatedAt) > s.ttl
}
