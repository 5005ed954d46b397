package domain

import "fmt"

// ReflectionField names one of the "zoom out" prompts by its stored column.
type ReflectionField string

const (
	ReflectionControl  ReflectionField = "control_answer"
	ReflectionNotMyJob ReflectionField = "not_my_job_answer"
	ReflectionFiveDays ReflectionField = "five_days_answer"
)

// ReflectionFields lists the prompts in form order.
var ReflectionFields = []ReflectionField{ReflectionControl, ReflectionNotMyJob, ReflectionFiveDays}

var reflectionPrompts = map[ReflectionField]string{
	ReflectionControl:  "What can I control right now?",
	ReflectionNotMyJob: "What is not my job to fix?",
	ReflectionFiveDays: "Will this still matter in 5 days?",
}

// NextStepPrompt is the label of the one-small-action field.
const NextStepPrompt = "My next right step is:"

// ParseReflectionField validates a wire field name.
func ParseReflectionField(raw string) (ReflectionField, error) {
	f := ReflectionField(raw)
	if _, ok := reflectionPrompts[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
	return f, nil
}

// Prompt returns the question asked in the form.
func (f ReflectionField) Prompt() string {
	return reflectionPrompts[f]
}

// Reflections holds the free-text zoom-out answers. All are optional.
type Reflections struct {
	Control  string `json:"control_answer"`
	NotMyJob string `json:"not_my_job_answer"`
	FiveDays string `json:"five_days_answer"`
}

// Get returns the answer stored for field.
func (r Reflections) Get(field ReflectionField) string {
	switch field {
	case ReflectionControl:
		return r.Control
	case ReflectionNotMyJob:
		return r.NotMyJob
	case ReflectionFiveDays:
		return r.FiveDays
	}
	return ""
}

// Form is the in-progress reset session. The zero value is the initial,
// empty form.
type Form struct {
	Mood           Mood        `json:"mood"`
	Activities     ActivitySet `json:"activities"`
	CustomActivity string      `json:"custom_activity"`
	Reflections    Reflections `json:"reflections"`
	NextStep       string      `json:"next_step"`
}

// SetMood makes m the only chosen mood.
func (f *Form) SetMood(m Mood) {
	f.Mood = m
}

// ToggleActivity asks policy whether key may flip and applies the decision.
// A limit rejection leaves the form untouched and returns ErrActivityLimitReached.
func (f *Form) ToggleActivity(policy SelectionPolicy, key ActivityKey) (Decision, error) {
	if key.index() < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, key)
	}
	decision := policy.Decide(f.Activities, key)
	switch decision {
	case DecisionSelect:
		f.Activities = f.Activities.With(key)
	case DecisionDeselect:
		f.Activities = f.Activities.Without(key)
	case DecisionRejectLimitReached:
		return decision, ErrActivityLimitReached
	}
	return decision, nil
}

// SetReflection stores text for one of the zoom-out prompts.
func (f *Form) SetReflection(field ReflectionField, text string) error {
	switch field {
	case ReflectionControl:
		f.Reflections.Control = text
	case ReflectionNotMyJob:
		f.Reflections.NotMyJob = text
	case ReflectionFiveDays:
		f.Reflections.FiveDays = text
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func (f *Form) SetCustomActivity(text string) {
	f.CustomActivity = text
}

func (f *Form) SetNextStep(text string) {
	f.NextStep = text
}

// Reset restores every field to its initial value.
func (f *Form) Reset() {
	*f = Form{}
}

// SelectedCount is the number of selected activities.
func (f Form) SelectedCount() int {
	return f.Activities.Len()
}
