package domain

import "fmt"

// Mood is the single check-in feeling chosen for a reset session.
// The zero value means no mood was chosen.
type Mood string

const (
	MoodNone        Mood = ""
	MoodCalm        Mood = "calm"
	MoodIrritated   Mood = "irritated"
	MoodAngry       Mood = "angry"
	MoodOverwhelmed Mood = "overwhelmed"
)

// Moods lists the selectable moods in display order.
var Moods = []Mood{MoodCalm, MoodIrritated, MoodAngry, MoodOverwhelmed}

var moodEmoji = map[Mood]string{
	MoodCalm:        "😌",
	MoodIrritated:   "😔",
	MoodAngry:       "😠",
	MoodOverwhelmed: "😰",
}

// ParseMood converts a wire key into a Mood. An empty key yields MoodNone.
func ParseMood(raw string) (Mood, error) {
	if raw == "" {
		return MoodNone, nil
	}
	m := Mood(raw)
	if _, ok := moodEmoji[m]; !ok {
		return MoodNone, fmt.Errorf("%w: %q", ErrUnknownMood, raw)
	}
	return m, nil
}

// Emoji returns the face shown next to the mood, or "" for MoodNone.
func (m Mood) Emoji() string {
	return moodEmoji[m]
}

func (m Mood) String() string {
	return string(m)
}
