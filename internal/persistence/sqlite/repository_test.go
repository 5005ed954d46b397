package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/mentalreset/internal/domain"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	custom := "drink tea"
	first, err := repo.Insert(ctx, domain.SessionRecord{
		UserID:         "user-1",
		Date:           "2024-03-05",
		Mood:           "calm",
		Activities:     []string{"breathe", "water"},
		CustomActivity: &custom,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := repo.Insert(ctx, domain.SessionRecord{UserID: "user-1", Date: "2024-03-05"})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, domain.SessionRecord{UserID: "user-2", Date: "2024-03-05"})
	require.NoError(t, err)

	listed, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
	assert.Equal(t, []string{"breathe", "water"}, listed[1].Activities)
	require.NotNil(t, listed[1].CustomActivity)
	assert.Equal(t, "drink tea", *listed[1].CustomActivity)
	assert.Nil(t, listed[1].ControlAnswer)
	assert.Equal(t, []string{}, listed[0].Activities)
	assert.True(t, first.CreatedAt.Equal(listed[1].CreatedAt))
}

func TestRepositoryEmptyList(t *testing.T) {
	repo := openTestRepo(t)
	listed, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
