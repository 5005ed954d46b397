package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveWithoutUserNeverTouchesStorage(t *testing.T) {
	repo := &stubRepo{}
	gw := NewGateway(repo)

	receipt, err := gw.Save(context.Background(), Form{Mood: MoodCalm}, nil)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Nil(t, receipt)
	require.Zero(t, repo.inserts)
}

func TestSaveBuildsRecordAndOmitsBlankFields(t *testing.T) {
	repo := &stubRepo{}
	day := time.Date(2025, time.July, 21, 23, 30, 0, 0, time.Local)
	gw := NewGateway(repo, WithClock(func() time.Time { return day }))

	var form Form
	form.SetMood(MoodCalm)
	_, err := form.ToggleActivity(CappedPolicy{Max: 3}, ActivityWater)
	require.NoError(t, err)
	_, err = form.ToggleActivity(CappedPolicy{Max: 3}, ActivityBreathe)
	require.NoError(t, err)
	form.SetNextStep("drink tea")

	receipt, err := gw.Save(context.Background(), form, &User{ID: "user-1"})
	require.NoError(t, err)
	require.Equal(t, "2025-07-21", receipt.Date)

	got := repo.last
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, "calm", got.Mood)
	require.Equal(t, []string{"breathe", "water"}, got.Activities)
	require.NotNil(t, got.NextStep)
	require.Equal(t, "drink tea", *got.NextStep)
	require.Nil(t, got.ControlAnswer)
	require.Nil(t, got.NotMyJobAnswer)
	require.Nil(t, got.FiveDaysAnswer)
	require.Nil(t, got.CustomActivity)
}

func TestSaveWithoutMoodIsAllowed(t *testing.T) {
	repo := &stubRepo{}
	gw := NewGateway(repo)

	_, err := gw.Save(context.Background(), Form{}, &User{ID: "user-1"})
	require.NoError(t, err)
	require.Equal(t, "", repo.last.Mood)
	require.Equal(t, []string{}, repo.last.Activities)
}

func TestSaveFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	gw := NewGateway(&stubRepo{insertErr: cause})

	_, err := gw.Save(context.Background(), Form{}, &User{ID: "user-1"})
	require.ErrorIs(t, err, ErrSaveFailed)
	require.ErrorIs(t, err, cause)
}

func TestListForUserEmptyIsNotAnError(t *testing.T) {
	gw := NewGateway(&stubRepo{})

	records, err := gw.ListForUser(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestListForUserNewestFirst(t *testing.T) {
	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{records: []SessionRecord{
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "d", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
	}}
	gw := NewGateway(repo)

	records, err := gw.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	require.Equal(t, []string{"d", "c", "b", "a"}, ids)
}

func TestListForUserFailure(t *testing.T) {
	gw := NewGateway(&stubRepo{listErr: errors.New("timeout")})

	_, err := gw.ListForUser(context.Background(), "user-1")
	require.ErrorIs(t, err, ErrFetchFailed)
}

type stubRepo struct {
	inserts   int
	last      SessionRecord
	records   []SessionRecord
	insertErr error
	listErr   error
}

func (s *stubRepo) Insert(_ context.Context, record SessionRecord) (SessionRecord, error) {
	s.inserts++
	if s.insertErr != nil {
		return SessionRecord{}, s.insertErr
	}
	s.last = record
	record.ID = "generated"
	record.CreatedAt = time.Now()
	return record, nil
}

func (s *stubRepo) ListByUser(_ context.Context, _ string) ([]SessionRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}
