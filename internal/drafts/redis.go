package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix = "mentalreset:draft:"
	ownerKeyPrefix = "mentalreset:draft-owner:"
)

// RedisStore keeps drafts in Redis so several API replicas share them.
// Each draft is a JSON string with a TTL; a per-owner set indexes drafts for
// sign-out cleanup.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Draft, error) {
	raw, err := s.rdb.Get(ctx, draftKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, draft Draft) error {
	draft.UpdatedAt = s.now()
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, draftKeyPrefix+id, raw, s.ttl)
		if draft.OwnerID != "" {
			ownerKey := ownerKeyPrefix + draft.OwnerID
			pipe.SAdd(ctx, ownerKey, id)
			pipe.Expire(ctx, ownerKey, s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) DiscardOwnedBy(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, nil
	}
	ownerKey := ownerKeyPrefix + ownerID
	ids, err := s.rdb.SMembers(ctx, ownerKey).Result()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		d, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		// The draft may have been picked up by someone else since it was indexed.
		if d.OwnerID != ownerID {
			continue
		}
		n, err := s.rdb.Del(ctx, draftKeyPrefix+id).Result()
		if err != nil {
			return removed, err
		}
		removed += int(n)
	}
	if err := s.rdb.Del(ctx, ownerKey).Err(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
