package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/mentalreset/internal/auth"
	"example.com/mentalreset/internal/domain"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	form := domain.Form{Mood: domain.MoodCalm, NextStep: "tea"}
	require.NoError(t, store.Put(ctx, "d1", Draft{Form: form}))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, form, got.Form)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(ctx, "d1", Draft{}))
	now = now.Add(2 * time.Minute)

	_, err := store.Get(ctx, "d1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiscardOnSignOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	require.NoError(t, store.Put(ctx, "mine", Draft{OwnerID: "user-1"}))
	require.NoError(t, store.Put(ctx, "theirs", Draft{OwnerID: "user-2"}))
	require.NoError(t, store.Put(ctx, "anon", Draft{}))

	hub := auth.NewHub()
	unsubscribe := DiscardOnSignOut(hub, store, nil)

	hub.Publish(auth.Change{Event: auth.EventSignedIn, Session: auth.Session{UserID: "user-1"}})
	_, err := store.Get(ctx, "mine")
	require.NoError(t, err, "sign-in must not discard drafts")

	hub.Publish(auth.Change{Event: auth.EventSignedOut, Session: auth.Session{UserID: "user-1"}})
	_, err = store.Get(ctx, "mine")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "theirs")
	require.NoError(t, err)
	_, err = store.Get(ctx, "anon")
	require.NoError(t, err)

	unsubscribe()
	assert.Equal(t, 0, hub.Len())
}
