package domain

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetMoodKeepsOnlyLatest(t *testing.T) {
	var f Form
	f.SetMood(MoodAngry)
	f.SetMood(MoodCalm)
	require.Equal(t, MoodCalm, f.Mood)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		m := Moods[rng.Intn(len(Moods))]
		f.SetMood(m)
		require.Equal(t, m, f.Mood)
	}
}

func TestParseMood(t *testing.T) {
	m, err := ParseMood("overwhelmed")
	require.NoError(t, err)
	require.Equal(t, MoodOverwhelmed, m)

	m, err = ParseMood("")
	require.NoError(t, err)
	require.Equal(t, MoodNone, m)

	_, err = ParseMood("ecstatic")
	require.ErrorIs(t, err, ErrUnknownMood)
}

func TestCappedToggleNeverExceedsLimit(t *testing.T) {
	policy := CappedPolicy{Max: DefaultActivityLimit}
	rng := rand.New(rand.NewSource(42))
	var f Form

	for i := 0; i < 1000; i++ {
		key := ActivityKeys[rng.Intn(len(ActivityKeys))]
		before := f
		decision, err := f.ToggleActivity(policy, key)

		switch {
		case before.Activities.Has(key):
			require.NoError(t, err)
			require.Equal(t, DecisionDeselect, decision)
			require.False(t, f.Activities.Has(key))
		case before.SelectedCount() == DefaultActivityLimit:
			require.ErrorIs(t, err, ErrActivityLimitReached)
			require.Equal(t, DecisionRejectLimitReached, decision)
			require.Equal(t, before, f)
		default:
			require.NoError(t, err)
			require.Equal(t, DecisionSelect, decision)
			require.True(t, f.Activities.Has(key))
		}
		require.LessOrEqual(t, f.SelectedCount(), DefaultActivityLimit)
	}
}

func TestFourthActivityRejected(t *testing.T) {
	policy := CappedPolicy{Max: 3}
	var f Form
	for _, k := range []ActivityKey{ActivityBreathe, ActivityWater, ActivityCustom} {
		_, err := f.ToggleActivity(policy, k)
		require.NoError(t, err)
	}
	snapshot := f

	decision, err := f.ToggleActivity(policy, ActivityMove)
	require.ErrorIs(t, err, ErrActivityLimitReached)
	require.Equal(t, DecisionRejectLimitReached, decision)
	require.Equal(t, snapshot, f)

	decision, err = f.ToggleActivity(policy, ActivityWater)
	require.NoError(t, err)
	require.Equal(t, DecisionDeselect, decision)
	require.Equal(t, 2, f.SelectedCount())
}

func TestUnrestrictedPolicyAllowsEverything(t *testing.T) {
	var f Form
	for _, k := range ActivityKeys {
		decision, err := f.ToggleActivity(UnrestrictedPolicy{}, k)
		require.NoError(t, err)
		require.Equal(t, DecisionSelect, decision)
	}
	require.Equal(t, len(ActivityKeys), f.SelectedCount())
}

func TestToggleUnknownActivity(t *testing.T) {
	var f Form
	_, err := f.ToggleActivity(CappedPolicy{Max: 3}, ActivityKey("nap"))
	require.ErrorIs(t, err, ErrUnknownActivity)
}

func TestResetIsIdempotent(t *testing.T) {
	f := Form{}
	f.SetMood(MoodIrritated)
	_, _ = f.ToggleActivity(UnrestrictedPolicy{}, ActivityTidy)
	f.SetCustomActivity("call a friend")
	require.NoError(t, f.SetReflection(ReflectionFiveDays, "no"))
	f.SetNextStep("walk")

	f.Reset()
	require.Equal(t, Form{}, f)
	f.Reset()
	require.Equal(t, Form{}, f)
}

func TestSetReflectionUnknownField(t *testing.T) {
	var f Form
	err := f.SetReflection(ReflectionField("gratitude"), "x")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestActivitySetJSONUsesCanonicalOrder(t *testing.T) {
	set := NewActivitySet(ActivityMusic, ActivityBreathe, ActivityCustom)
	data, err := json.Marshal(set)
	require.NoError(t, err)
	require.JSONEq(t, `["breathe","music","custom"]`, string(data))

	var decoded ActivitySet
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, set, decoded)

	require.Error(t, json.Unmarshal([]byte(`["nap"]`), &decoded))
}

func TestPolicyFor(t *testing.T) {
	p, err := PolicyFor("capped", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultActivityLimit, p.Limit())

	p, err = PolicyFor("unrestricted", 3)
	require.NoError(t, err)
	require.Equal(t, 0, p.Limit())

	_, err = PolicyFor("strict", 3)
	require.Error(t, err)
}
