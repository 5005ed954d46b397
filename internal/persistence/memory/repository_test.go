package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/mentalreset/internal/domain"
)

func TestRepositoryListsNewestFirstPerUser(t *testing.T) {
	repo := NewRepository()
	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	a, err := repo.Insert(context.Background(), domain.SessionRecord{UserID: "u1"})
	require.NoError(t, err)
	_, err = repo.Insert(context.Background(), domain.SessionRecord{UserID: "u2"})
	require.NoError(t, err)
	b, err := repo.Insert(context.Background(), domain.SessionRecord{UserID: "u1"})
	require.NoError(t, err)

	listed, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, b.ID, listed[0].ID)
	assert.Equal(t, a.ID, listed[1].ID)
	assert.Equal(t, []string{}, listed[0].Activities)

	none, err := repo.ListByUser(context.Background(), "u3")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
