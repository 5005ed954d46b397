package domain

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

// ActivityKey identifies one of the fixed reset activities.
type ActivityKey string

const (
	ActivityBreathe     ActivityKey = "breathe"
	ActivityWater       ActivityKey = "water"
	ActivityStretch     ActivityKey = "stretch"
	ActivityOutside     ActivityKey = "outside"
	ActivityTidy        ActivityKey = "tidy"
	ActivityAffirmation ActivityKey = "affirmation"
	ActivityMusic       ActivityKey = "music"
	ActivityMove        ActivityKey = "move"
	ActivityCustom      ActivityKey = "custom"
)

// ActivityKeys is the canonical enumeration order. Persisted activity lists
// always follow it.
var ActivityKeys = []ActivityKey{
	ActivityBreathe,
	ActivityWater,
	ActivityStretch,
	ActivityOutside,
	ActivityTidy,
	ActivityAffirmation,
	ActivityMusic,
	ActivityMove,
	ActivityCustom,
}

var activityLabels = map[ActivityKey]string{
	ActivityBreathe:     "Take 3 slow breaths",
	ActivityWater:       "Drink water",
	ActivityStretch:     "Stretch for 30 seconds",
	ActivityOutside:     "Step outside briefly",
	ActivityTidy:        "Tidy one small thing",
	ActivityAffirmation: `Say: "I'm safe. I can do this."`,
	ActivityMusic:       "Put on calming music or silence",
	ActivityMove:        "Move your body",
	ActivityCustom:      "Write your own",
}

// ParseActivityKey validates a wire key.
func ParseActivityKey(raw string) (ActivityKey, error) {
	key := ActivityKey(raw)
	if key.index() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, raw)
	}
	return key, nil
}

// Label returns the prompt shown next to the activity checkbox.
func (k ActivityKey) Label() string {
	return activityLabels[k]
}

func (k ActivityKey) index() int {
	for i, key := range ActivityKeys {
		if key == k {
			return i
		}
	}
	return -1
}

// ActivitySet is the set of selected activities. The zero value is empty.
type ActivitySet uint16

// NewActivitySet builds a set from keys, ignoring unknown ones.
func NewActivitySet(keys ...ActivityKey) ActivitySet {
	var s ActivitySet
	for _, k := range keys {
		s = s.With(k)
	}
	return s
}

// Has reports whether key is selected.
func (s ActivitySet) Has(key ActivityKey) bool {
	i := key.index()
	return i >= 0 && s&(1<<uint(i)) != 0
}

// With returns a copy of s with key selected.
func (s ActivitySet) With(key ActivityKey) ActivitySet {
	i := key.index()
	if i < 0 {
		return s
	}
	return s | 1<<uint(i)
}

// Without returns a copy of s with key removed.
func (s ActivitySet) Without(key ActivityKey) ActivitySet {
	i := key.index()
	if i < 0 {
		return s
	}
	return s &^ (1 << uint(i))
}

// Len is the number of selected activities.
func (s ActivitySet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Keys returns the selected keys in canonical order.
func (s ActivitySet) Keys() []ActivityKey {
	out := make([]ActivityKey, 0, s.Len())
	for _, k := range ActivityKeys {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Strings returns Keys as plain strings, the shape stored in records.
func (s ActivitySet) Strings() []string {
	keys := s.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func (s ActivitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *ActivitySet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var set ActivitySet
	for _, r := range raw {
		key, err := ParseActivityKey(r)
		if err != nil {
			return err
		}
		set = set.With(key)
	}
	*s = set
	return nil
}
