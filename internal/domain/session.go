package domain

import "time"

// DateLayout is the calendar-day format stored on every session.
const DateLayout = "2006-01-02"

// User is the authenticated identity a session belongs to.
type User struct {
	ID    string
	Email string
}

// SessionRecord is a completed reset session as stored in the
// mental_reset_entries table. Nil optional fields were left blank.
type SessionRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           string    `json:"date"`
	Mood           string    `json:"mood"`
	Activities     []string  `json:"activities"`
	CustomActivity *string   `json:"custom_activity,omitempty"`
	ControlAnswer  *string   `json:"control_answer,omitempty"`
	NotMyJobAnswer *string   `json:"not_my_job_answer,omitempty"`
	FiveDaysAnswer *string   `json:"five_days_answer,omitempty"`
	NextStep       *string   `json:"next_step,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Reflection returns the stored answer for field, or nil.
func (r SessionRecord) Reflection(field ReflectionField) *string {
	switch field {
	case ReflectionControl:
		return r.ControlAnswer
	case ReflectionNotMyJob:
		return r.NotMyJobAnswer
	case ReflectionFiveDays:
		return r.FiveDaysAnswer
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
