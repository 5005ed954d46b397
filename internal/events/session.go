// Package events defines payloads published when reset sessions change.
package events

import "example.com/mentalreset/internal/domain"

// Event types written to the outbox.
const (
	TypeSessionSaved = "reset_session.saved"
)

// Kafka routing for reset session events.
const (
	TopicResetSessions   = "reset_sessions"
	SubjectResetSessions = TopicResetSessions + "-value"
)

// SchemaVersion is stamped on every payload.
const SchemaVersion = "v1"

// SessionSaved is emitted once a reset session is stored. Free-text answers
// stay in the sessions table and are never published.
type SessionSaved struct {
	SessionID         string   `json:"session_id"`
	UserID            string   `json:"user_id"`
	Date              string   `json:"date"`
	Mood              string   `json:"mood"`
	Activities        []string `json:"activities"`
	ActivityCount     int      `json:"activity_count"`
	HasCustomActivity bool     `json:"has_custom_activity"`
	HasNextStep       bool     `json:"has_next_step"`
	Version           string   `json:"version"`
}

// NewSessionSaved derives the published payload from a stored record.
func NewSessionSaved(record domain.SessionRecord) SessionSaved {
	activities := record.Activities
	if activities == nil {
		activities = []string{}
	}
	return SessionSaved{
		SessionID:         record.ID,
		UserID:            record.UserID,
		Date:              record.Date,
		Mood:              record.Mood,
		Activities:        activities,
		ActivityCount:     len(activities),
		HasCustomActivity: record.CustomActivity != nil,
		HasNextStep:       record.NextStep != nil,
		Version:           SchemaVersion,
	}
}
